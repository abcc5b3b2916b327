package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"shop-telegram/models"
)

const IntegrationTypeTelegram = "telegram"

// Notifier delivers a created-order summary to an external channel. It is
// best-effort: implementations never return errors to the order pipeline.
type Notifier interface {
	NotifyOrderCreated(ctx context.Context, order *models.Order)
}

// TelegramNotifier sends the order summary to the first active Telegram
// integration's configured chat. Every failure on this path is logged and
// swallowed; the order's sent flag stays false.
type TelegramNotifier struct {
	integrations IntegrationStore
	orders       OrderRepository

	// send is swapped in tests.
	send func(token string, chatID int64, text string) error

	mu   sync.Mutex
	bots map[string]*tgbotapi.BotAPI
}

func NewTelegramNotifier(integrations IntegrationStore, orders OrderRepository) *TelegramNotifier {
	n := &TelegramNotifier{
		integrations: integrations,
		orders:       orders,
		bots:         make(map[string]*tgbotapi.BotAPI),
	}
	n.send = n.sendTelegram
	return n
}

func (n *TelegramNotifier) NotifyOrderCreated(ctx context.Context, order *models.Order) {
	integrations, err := n.integrations.ListActiveByType(ctx, IntegrationTypeTelegram)
	if err != nil {
		log.Printf("notify order %s: list integrations: %v", order.OrderNumber, err)
		return
	}
	if len(integrations) == 0 {
		log.Printf("notify order %s: no active telegram integration", order.OrderNumber)
		return
	}
	integration := integrations[0]

	chatIDRaw := integration.Settings["chat_id"]
	if chatIDRaw == "" {
		log.Printf("notify order %s: integration %s has no chat_id", order.OrderNumber, integration.Name)
		return
	}
	chatID, err := strconv.ParseInt(chatIDRaw, 10, 64)
	if err != nil {
		log.Printf("notify order %s: bad chat_id %q: %v", order.OrderNumber, chatIDRaw, err)
		return
	}
	token := integration.Credentials["bot_token"]
	if token == "" {
		log.Printf("notify order %s: integration %s has no bot_token", order.OrderNumber, integration.Name)
		return
	}

	if err := n.send(token, chatID, FormatOrderMessage(order)); err != nil {
		log.Printf("notify order %s: send: %v", order.OrderNumber, err)
		return
	}

	now := time.Now()
	order.IsSentToTelegram = true
	order.SentToTelegramAt = &now
	if err := n.orders.MarkSent(ctx, order.ID, now); err != nil {
		log.Printf("notify order %s: mark sent: %v", order.OrderNumber, err)
	}
}

func (n *TelegramNotifier) sendTelegram(token string, chatID int64, text string) error {
	n.mu.Lock()
	bot, ok := n.bots[token]
	n.mu.Unlock()
	if !ok {
		var err error
		bot, err = tgbotapi.NewBotAPI(token)
		if err != nil {
			return err
		}
		n.mu.Lock()
		n.bots[token] = bot
		n.mu.Unlock()
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := bot.Send(msg)
	return err
}

// FormatOrderMessage renders the human-readable order summary (Telegram HTML).
func FormatOrderMessage(o *models.Order) string {
	text := fmt.Sprintf("🛒 <b>Новый заказ #%s</b>\n", o.OrderNumber)

	text += "\n<b>Товары:</b>\n"
	for i, item := range o.Items {
		text += fmt.Sprintf("%d. <b>%s</b>\n", i+1, item.ProductName)
		text += fmt.Sprintf("   Количество: %d\n", item.Quantity)
		text += fmt.Sprintf("   Цена: %s %s\n", item.Price, o.Currency)
		text += fmt.Sprintf("   Итого: %s %s\n", item.Total, o.Currency)
	}

	c := o.Customer
	text += "\n<b>Клиент:</b>\n"
	text += fmt.Sprintf("Имя: %s %s\n", c.FirstName, c.LastName)
	text += "Email: " + c.Email + "\n"
	text += "Телефон: " + c.Phone + "\n"
	if c.Company != "" {
		text += "Компания: " + c.Company + "\n"
	}

	if a := o.DeliveryAddress; a != nil {
		text += "\n<b>Адрес доставки:</b>\n"
		text += a.Country + ", " + a.City + "\n"
		text += a.Street
		if a.Building != "" {
			text += ", " + a.Building
		}
		if a.Apartment != "" {
			text += ", кв. " + a.Apartment
		}
		text += "\n"
		if a.PostalCode != "" {
			text += "Индекс: " + a.PostalCode + "\n"
		}
		if a.Notes != "" {
			text += "Примечание: " + a.Notes + "\n"
		}
	}

	text += "\n<b>Оплата:</b> " + PaymentMethodLabel(o.PaymentMethod) + "\n"
	text += "<b>Доставка:</b> " + DeliveryMethodLabel(o.DeliveryMethod) + "\n"

	text += "\n<b>Сумма:</b>\n"
	text += fmt.Sprintf("Товары: %s %s\n", o.Subtotal, o.Currency)
	if o.Discount.GreaterThan(decimal.Zero) {
		text += fmt.Sprintf("Скидка: -%s %s\n", o.Discount, o.Currency)
	}
	text += fmt.Sprintf("Доставка: %s %s\n", o.DeliveryCost, o.Currency)
	text += fmt.Sprintf("<b>Итого: %s %s</b>\n", o.Total, o.Currency)

	card, cardFromNotes := extractCardInfo(o)

	// Notes that turned out to be card data are consumed by the card block
	// below; rendering them raw would leak the unmasked fields.
	if o.Notes != "" && !cardFromNotes {
		text += "\n<b>Комментарий:</b> " + o.Notes + "\n"
	}
	if o.PromoCode != "" {
		text += "\n<b>Промокод:</b> " + o.PromoCode + "\n"
	}

	text += "\nСтатус: " + StatusLabel(o.Status)

	if card != nil {
		text += "\n\n💳 <b>Оплата картой:</b>"
		if card.CardNumber != "" {
			text += "\nКарта: " + maskCardNumber(card.CardNumber)
		}
		if card.CardholderName != "" {
			text += "\nДержатель: " + card.CardholderName
		}
	}

	return text
}

// cardInfo carries payment-card fields found on an order. Only the masked
// number and cardholder name are ever rendered; CVC and expiry are parsed so
// their presence can be detected, but never leave the process.
type cardInfo struct {
	CardNumber     string `json:"cardNumber"`
	CVC            string `json:"cvc"`
	Expiry         string `json:"expiry"`
	CardholderName string `json:"cardholderName"`
}

// extractCardInfo reads card fields from order metadata, falling back to
// parsing the free-text notes as JSON. fromNotes reports that the notes field
// was the source, so the caller can keep it out of the rendered message.
func extractCardInfo(o *models.Order) (card *cardInfo, fromNotes bool) {
	if raw, ok := o.Metadata["card"]; ok {
		b, err := json.Marshal(raw)
		if err == nil {
			var c cardInfo
			if json.Unmarshal(b, &c) == nil && (c.CardNumber != "" || c.CVC != "") {
				return &c, false
			}
		}
	}
	if o.Notes != "" {
		var c cardInfo
		if json.Unmarshal([]byte(o.Notes), &c) == nil && (c.CardNumber != "" || c.CVC != "") {
			return &c, true
		}
	}
	return nil, false
}

// maskCardNumber keeps only the last four digits of a PAN.
func maskCardNumber(number string) string {
	var digits []rune
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return "****"
	}
	return "**** **** **** " + string(digits[len(digits)-4:])
}

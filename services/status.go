package services

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

const (
	PaymentMethodCash         = "cash"
	PaymentMethodCard         = "card"
	PaymentMethodOnline       = "online"
	PaymentMethodBankTransfer = "bank_transfer"
)

const (
	DeliveryMethodPickup  = "pickup"
	DeliveryMethodCourier = "courier"
	DeliveryMethodPost    = "post"
	DeliveryMethodExpress = "express"
)

var orderStatuses = map[string]bool{
	OrderStatusPending:    true,
	OrderStatusConfirmed:  true,
	OrderStatusProcessing: true,
	OrderStatusShipped:    true,
	OrderStatusDelivered:  true,
	OrderStatusCancelled:  true,
	OrderStatusRefunded:   true,
}

var paymentMethods = map[string]bool{
	PaymentMethodCash:         true,
	PaymentMethodCard:         true,
	PaymentMethodOnline:       true,
	PaymentMethodBankTransfer: true,
}

var deliveryMethods = map[string]bool{
	DeliveryMethodPickup:  true,
	DeliveryMethodCourier: true,
	DeliveryMethodPost:    true,
	DeliveryMethodExpress: true,
}

func KnownOrderStatus(status string) bool    { return orderStatuses[status] }
func KnownPaymentMethod(method string) bool  { return paymentMethods[method] }
func KnownDeliveryMethod(method string) bool { return deliveryMethods[method] }

// nextStatuses is the allowed transition table: the forward fulfilment chain,
// with cancelled and refunded reachable from any non-terminal state.
// delivered, cancelled and refunded are terminal.
var nextStatuses = map[string][]string{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
	OrderStatusRefunded:   {},
}

// ValidStatusTransition reports whether from -> to is allowed. Patching an
// order with its current status is a no-op and always allowed.
func ValidStatusTransition(from, to string) bool {
	if !KnownOrderStatus(from) || !KnownOrderStatus(to) {
		return false
	}
	if from == to {
		return true
	}
	for _, s := range nextStatuses[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StatusLabel returns the customer-facing status name. Unknown values fall
// back to the raw value.
func StatusLabel(status string) string {
	switch status {
	case OrderStatusPending:
		return "Ожидает обработки"
	case OrderStatusConfirmed:
		return "Подтвержден"
	case OrderStatusProcessing:
		return "В обработке"
	case OrderStatusShipped:
		return "Отправлен"
	case OrderStatusDelivered:
		return "Доставлен"
	case OrderStatusCancelled:
		return "Отменен"
	case OrderStatusRefunded:
		return "Возвращен"
	default:
		return status
	}
}

func PaymentMethodLabel(method string) string {
	switch method {
	case PaymentMethodCash:
		return "Наличные"
	case PaymentMethodCard:
		return "Карта"
	case PaymentMethodOnline:
		return "Онлайн"
	case PaymentMethodBankTransfer:
		return "Банковский перевод"
	default:
		return method
	}
}

func DeliveryMethodLabel(method string) string {
	switch method {
	case DeliveryMethodPickup:
		return "Самовывоз"
	case DeliveryMethodCourier:
		return "Курьер"
	case DeliveryMethodPost:
		return "Почта"
	case DeliveryMethodExpress:
		return "Экспресс доставка"
	default:
		return method
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop-telegram/models"
)

const (
	defaultCurrency        = "zł"
	orderNumberInsertTries = 3
)

// Orders is the order pipeline: pricing, persistence, best-effort
// notification and cart cleanup.
type Orders struct {
	catalog  Catalog
	repo     OrderRepository
	carts    CartStore
	notifier Notifier
	currency string

	wg sync.WaitGroup
}

func NewOrders(catalog Catalog, repo OrderRepository, carts CartStore, notifier Notifier) *Orders {
	return &Orders{
		catalog:  catalog,
		repo:     repo,
		carts:    carts,
		notifier: notifier,
		currency: defaultCurrency,
	}
}

// SetDefaultCurrency overrides the currency stamped on orders created without
// an explicit one.
func (s *Orders) SetDefaultCurrency(currency string) {
	if currency != "" {
		s.currency = currency
	}
}

// CreateOrderInput carries everything needed to turn a cart (or an explicit
// line list) into a priced order.
type CreateOrderInput struct {
	Items           []LineRequest
	Customer        models.Customer
	DeliveryAddress *models.DeliveryAddress
	PaymentMethod   string
	DeliveryMethod  string
	Discount        decimal.Decimal
	DeliveryCost    decimal.Decimal
	Currency        string
	Notes           string
	PromoCode       string
	Metadata        map[string]any
	SessionID       string
	IPAddress       string
	UserAgent       string
}

// UpdateOrderInput is a partial patch; nil fields are left untouched. Force
// bypasses the status transition table (admin override).
type UpdateOrderInput struct {
	Status       *string
	Force        bool
	IsPaid       *bool
	Discount     *decimal.Decimal
	DeliveryCost *decimal.Decimal
	Total        *decimal.Decimal
	Notes        *string
	PromoCode    *string
}

// Create prices and persists a new order, fires the notification as a
// decoupled task and deletes the originating session cart. Pricing or
// persistence failures abort with no side effects; notification failures
// never surface.
func (s *Orders) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	ids := distinctProductIDs(input.Items)
	products, err := s.catalog.ResolveByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(products) != len(ids) {
		return nil, &ValidationError{Field: "items", Message: "unknown product"}
	}

	priced, err := PriceOrder(products, input.Items, input.Discount, input.DeliveryCost)
	if err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = s.currency
	}
	now := time.Now()
	order := &models.Order{
		ID:              uuid.New().String(),
		Items:           priced.Items,
		Customer:        input.Customer,
		DeliveryAddress: input.DeliveryAddress,
		Status:          OrderStatusPending,
		PaymentMethod:   input.PaymentMethod,
		DeliveryMethod:  input.DeliveryMethod,
		Subtotal:        priced.Subtotal,
		Discount:        priced.Discount,
		DeliveryCost:    priced.DeliveryCost,
		Total:           priced.Total,
		Currency:        currency,
		Notes:           input.Notes,
		PromoCode:       input.PromoCode,
		Metadata:        input.Metadata,
		IPAddress:       input.IPAddress,
		UserAgent:       input.UserAgent,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.insertWithFreshNumber(ctx, order); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		// The notifier gets its own copy so its sent-flag mutation cannot
		// race the caller.
		notified := *order
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.notifier.NotifyOrderCreated(context.Background(), &notified)
		}()
	}

	if input.SessionID != "" {
		if err := s.carts.DeleteBySession(ctx, input.SessionID); err != nil {
			log.Printf("order %s: delete cart for session: %v", order.OrderNumber, err)
		}
	}

	return order, nil
}

// Wait blocks until all in-flight notification dispatches finish. Called on
// shutdown so best-effort sends are not cut off mid-request.
func (s *Orders) Wait() {
	s.wg.Wait()
}

func (s *Orders) insertWithFreshNumber(ctx context.Context, order *models.Order) error {
	for attempt := 0; attempt < orderNumberInsertTries; attempt++ {
		order.OrderNumber = generateOrderNumber()
		err := s.repo.Insert(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrOrderNumberTaken) {
			return err
		}
	}
	return fmt.Errorf("insert order: %w", ErrOrderNumberTaken)
}

// generateOrderNumber combines a millisecond timestamp with 48 random bits.
// Uniqueness is still backed by the storage constraint; collisions retry.
func generateOrderNumber() string {
	random := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), random)
}

// List returns all orders, newest first. Cancelled orders are excluded unless
// requested.
func (s *Orders) List(ctx context.Context, includeCancelled bool) ([]*models.Order, error) {
	return s.repo.List(ctx, includeCancelled)
}

func (s *Orders) Get(ctx context.Context, id string) (*models.Order, error) {
	if err := validateObjectID("order", id); err != nil {
		return nil, err
	}
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &NotFoundError{Entity: "order", Key: id}
	}
	return order, nil
}

func (s *Orders) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	if number == "" {
		return nil, &ValidationError{Field: "order number", Message: "must not be empty"}
	}
	order, err := s.repo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &NotFoundError{Entity: "order", Key: number}
	}
	return order, nil
}

// Update applies a partial patch. Status changes must follow the transition
// table unless Force is set.
func (s *Orders) Update(ctx context.Context, id string, patch UpdateOrderInput) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		next := *patch.Status
		if !KnownOrderStatus(next) {
			return nil, &ValidationError{Field: "status", Message: "unknown status " + next}
		}
		if !patch.Force && !ValidStatusTransition(order.Status, next) {
			return nil, &ValidationError{
				Field:   "status",
				Message: fmt.Sprintf("transition %s -> %s is not allowed", order.Status, next),
			}
		}
		order.Status = next
	}
	if patch.IsPaid != nil {
		order.IsPaid = *patch.IsPaid
	}
	if patch.Discount != nil {
		order.Discount = *patch.Discount
	}
	if patch.DeliveryCost != nil {
		order.DeliveryCost = *patch.DeliveryCost
	}
	if patch.Total != nil {
		order.Total = *patch.Total
	}
	if patch.Notes != nil {
		order.Notes = *patch.Notes
	}
	if patch.PromoCode != nil {
		order.PromoCode = *patch.PromoCode
	}
	order.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Orders) Delete(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return order, nil
}

// Statistics scans the full order set and aggregates it.
func (s *Orders) Statistics(ctx context.Context) (*Statistics, error) {
	orders, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	return AggregateStatistics(orders), nil
}

func validateCreateInput(input *CreateOrderInput) error {
	if len(input.Items) == 0 {
		return &ValidationError{Field: "items", Message: "at least one item is required"}
	}
	for _, line := range input.Items {
		if err := validateObjectID("product", line.ProductID); err != nil {
			return err
		}
	}
	c := input.Customer
	if c.FirstName == "" || c.LastName == "" || c.Email == "" || c.Phone == "" {
		return &ValidationError{Field: "customer", Message: "first name, last name, email and phone are required"}
	}
	if !KnownPaymentMethod(input.PaymentMethod) {
		return &ValidationError{Field: "payment method", Message: "unknown method " + input.PaymentMethod}
	}
	if !KnownDeliveryMethod(input.DeliveryMethod) {
		return &ValidationError{Field: "delivery method", Message: "unknown method " + input.DeliveryMethod}
	}
	return nil
}

func distinctProductIDs(lines []LineRequest) []string {
	seen := make(map[string]bool, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}
	return ids
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is an order row. Identity fields (number, items, customer, provenance)
// are set once at creation; status and money fields may change via patch.
type Order struct {
	ID               string
	OrderNumber      string
	Items            []OrderItem
	Customer         Customer
	DeliveryAddress  *DeliveryAddress
	Status           string
	PaymentMethod    string
	DeliveryMethod   string
	Subtotal         decimal.Decimal
	Discount         decimal.Decimal
	DeliveryCost     decimal.Decimal
	Total            decimal.Decimal
	Currency         string
	Notes            string
	PromoCode        string
	IsPaid           bool
	IsSentToTelegram bool
	SentToTelegramAt *time.Time
	IPAddress        string
	UserAgent        string
	Metadata         map[string]any
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OrderItem is one priced line. Product fields are snapshots: they reflect the
// catalog at the moment the order was created.
type OrderItem struct {
	ProductID    string            `json:"product_id"`
	ProductName  string            `json:"product_name"`
	ProductSlug  string            `json:"product_slug"`
	ProductImage string            `json:"product_image,omitempty"`
	Quantity     int               `json:"quantity"`
	Price        decimal.Decimal   `json:"price"`
	Discount     decimal.Decimal   `json:"discount"`
	Total        decimal.Decimal   `json:"total"`
	Variant      string            `json:"variant,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Company   string `json:"company,omitempty"`
}

type DeliveryAddress struct {
	Country    string `json:"country"`
	City       string `json:"city"`
	Street     string `json:"street"`
	Building   string `json:"building,omitempty"`
	Apartment  string `json:"apartment,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

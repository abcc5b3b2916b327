package models

import "time"

// Cart is keyed by exactly one of SessionID or UserID. Items live as a jsonb
// document on the row; line identity is the generated item ID.
type Cart struct {
	ID        string
	SessionID string
	UserID    string
	Items     []CartItem
	PromoCode string
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartItem struct {
	ID         string            `json:"id"`
	ProductID  string            `json:"product_id"`
	Quantity   int               `json:"quantity"`
	Variant    string            `json:"variant,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

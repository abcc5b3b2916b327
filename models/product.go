package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog snapshot returned by the lookup service. Order line
// items copy its fields at creation time and never re-sync to catalog changes.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Price     Price     `json:"price"`
	Images    []Image   `json:"images"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type Price struct {
	Current decimal.Decimal  `json:"current"`
	Old     *decimal.Decimal `json:"old,omitempty"`
}

type Image struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// FirstImage returns the URL of the first image, or "" if there is none.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

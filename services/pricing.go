package services

import (
	"github.com/shopspring/decimal"

	"shop-telegram/models"
)

// LineRequest is one requested order line before pricing.
type LineRequest struct {
	ProductID  string
	Quantity   int
	Variant    string
	Attributes map[string]string
}

// PricedOrder is the pricing engine output: snapshot line items plus the
// order-level money fields.
type PricedOrder struct {
	Items        []models.OrderItem
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	DeliveryCost decimal.Decimal
	Total        decimal.Decimal
}

// PriceOrder computes line totals and the order summary from already-resolved
// products. Every line's product must be present in products; unit price is
// the product's current price at resolution time. Line-level discount is
// always zero at creation. Total = subtotal - discount + deliveryCost, with
// no floor at zero: a discount above the subtotal yields a negative total.
func PriceOrder(products map[string]*models.Product, lines []LineRequest, discount, deliveryCost decimal.Decimal) (*PricedOrder, error) {
	if len(lines) == 0 {
		return nil, &ValidationError{Field: "items", Message: "at least one item is required"}
	}

	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, &ValidationError{Field: "items", Message: "quantity must be at least 1"}
		}
		product, ok := products[line.ProductID]
		if !ok {
			return nil, &ValidationError{Field: "items", Message: "unknown product " + line.ProductID}
		}

		price := product.Price.Current
		total := price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, models.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductSlug:  product.Slug,
			ProductImage: product.FirstImage(),
			Quantity:     line.Quantity,
			Price:        price,
			Discount:     decimal.Zero,
			Total:        total,
			Variant:      line.Variant,
			Attributes:   line.Attributes,
		})
		subtotal = subtotal.Add(total)
	}

	return &PricedOrder{
		Items:        items,
		Subtotal:     subtotal,
		Discount:     discount,
		DeliveryCost: deliveryCost,
		Total:        subtotal.Sub(discount).Add(deliveryCost),
	}, nil
}

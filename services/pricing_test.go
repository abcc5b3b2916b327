package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"shop-telegram/models"
)

func testProduct(id, name string, price string) *models.Product {
	return &models.Product{
		ID:   id,
		Name: name,
		Slug: name,
		Price: models.Price{
			Current: decimal.RequireFromString(price),
		},
		IsActive: true,
	}
}

func TestPriceOrder_Totals(t *testing.T) {
	products := map[string]*models.Product{
		"a": testProduct("a", "pillow", "19.99"),
		"b": testProduct("b", "blanket", "9.99"),
	}

	tests := []struct {
		name         string
		lines        []LineRequest
		discount     string
		deliveryCost string
		wantSubtotal string
		wantTotal    string
	}{
		{
			name:         "two lines with delivery",
			lines:        []LineRequest{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 1}},
			discount:     "0",
			deliveryCost: "5.00",
			wantSubtotal: "49.97",
			wantTotal:    "54.97",
		},
		{
			name:         "discount applied",
			lines:        []LineRequest{{ProductID: "a", Quantity: 1}},
			discount:     "5.00",
			deliveryCost: "0",
			wantSubtotal: "19.99",
			wantTotal:    "14.99",
		},
		{
			name:         "discount above subtotal goes negative",
			lines:        []LineRequest{{ProductID: "b", Quantity: 1}},
			discount:     "20.00",
			deliveryCost: "0",
			wantSubtotal: "9.99",
			wantTotal:    "-10.01",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			priced, err := PriceOrder(products, tt.lines,
				decimal.RequireFromString(tt.discount),
				decimal.RequireFromString(tt.deliveryCost))
			if err != nil {
				t.Fatalf("PriceOrder: %v", err)
			}
			if got := priced.Subtotal.String(); got != tt.wantSubtotal {
				t.Errorf("subtotal = %s, want %s", got, tt.wantSubtotal)
			}
			if got := priced.Total.String(); got != tt.wantTotal {
				t.Errorf("total = %s, want %s", got, tt.wantTotal)
			}
		})
	}
}

func TestPriceOrder_SubtotalIsSumOfLineTotals(t *testing.T) {
	products := map[string]*models.Product{
		"a": testProduct("a", "pillow", "0.10"),
	}
	// 100 x 0.10 must be exactly 10, not 9.999999...
	lines := []LineRequest{{ProductID: "a", Quantity: 100}}
	priced, err := PriceOrder(products, lines, decimal.Zero, decimal.Zero)
	if err != nil {
		t.Fatalf("PriceOrder: %v", err)
	}
	if !priced.Subtotal.Equal(decimal.RequireFromString("10")) {
		t.Errorf("subtotal = %s, want 10", priced.Subtotal)
	}
	sum := decimal.Zero
	for _, item := range priced.Items {
		sum = sum.Add(item.Total)
	}
	if !sum.Equal(priced.Subtotal) {
		t.Errorf("sum of line totals %s != subtotal %s", sum, priced.Subtotal)
	}
}

func TestPriceOrder_SnapshotFields(t *testing.T) {
	p := testProduct("a", "pillow", "19.99")
	p.Slug = "derila-pillow"
	p.Images = []models.Image{{URL: "/pod.svg"}}
	priced, err := PriceOrder(map[string]*models.Product{"a": p},
		[]LineRequest{{ProductID: "a", Quantity: 2, Variant: "white"}},
		decimal.Zero, decimal.Zero)
	if err != nil {
		t.Fatalf("PriceOrder: %v", err)
	}
	item := priced.Items[0]
	if item.ProductName != "pillow" || item.ProductSlug != "derila-pillow" || item.ProductImage != "/pod.svg" {
		t.Errorf("snapshot fields not copied: %+v", item)
	}
	if item.Variant != "white" {
		t.Errorf("variant = %q, want white", item.Variant)
	}
	if !item.Discount.IsZero() {
		t.Errorf("line discount = %s, want 0", item.Discount)
	}
	if item.Total.String() != "39.98" {
		t.Errorf("line total = %s, want 39.98", item.Total)
	}
}

func TestPriceOrder_UnknownProduct(t *testing.T) {
	products := map[string]*models.Product{
		"a": testProduct("a", "pillow", "19.99"),
	}
	_, err := PriceOrder(products, []LineRequest{{ProductID: "missing", Quantity: 1}}, decimal.Zero, decimal.Zero)
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestPriceOrder_BadQuantity(t *testing.T) {
	products := map[string]*models.Product{
		"a": testProduct("a", "pillow", "19.99"),
	}
	_, err := PriceOrder(products, []LineRequest{{ProductID: "a", Quantity: 0}}, decimal.Zero, decimal.Zero)
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestPriceOrder_NoLines(t *testing.T) {
	_, err := PriceOrder(map[string]*models.Product{}, nil, decimal.Zero, decimal.Zero)
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

package services

import "testing"

func TestValidStatusTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusProcessing, false},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusRefunded, true},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusConfirmed, OrderStatusPending, false},
		{OrderStatusConfirmed, OrderStatusDelivered, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, true},
		{OrderStatusDelivered, OrderStatusRefunded, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusRefunded, OrderStatusPending, false},
		{OrderStatusPending, OrderStatusPending, true},
		{"", OrderStatusPending, false},
		{OrderStatusPending, "", false},
		{OrderStatusPending, "bogus", false},
	}
	for _, tt := range tests {
		got := ValidStatusTransition(tt.from, tt.to)
		if got != tt.want {
			t.Errorf("ValidStatusTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStatusLabel_FallsBackToRawValue(t *testing.T) {
	if StatusLabel(OrderStatusPending) != "Ожидает обработки" {
		t.Errorf("unexpected label for pending: %s", StatusLabel(OrderStatusPending))
	}
	if StatusLabel("mystery") != "mystery" {
		t.Errorf("unknown status should fall back to raw value, got %s", StatusLabel("mystery"))
	}
}

func TestMethodLabels(t *testing.T) {
	if PaymentMethodLabel(PaymentMethodBankTransfer) != "Банковский перевод" {
		t.Errorf("unexpected bank transfer label: %s", PaymentMethodLabel(PaymentMethodBankTransfer))
	}
	if PaymentMethodLabel("sepa") != "sepa" {
		t.Errorf("unmapped payment method should fall back to raw value")
	}
	if DeliveryMethodLabel(DeliveryMethodExpress) != "Экспресс доставка" {
		t.Errorf("unexpected express label: %s", DeliveryMethodLabel(DeliveryMethodExpress))
	}
	if DeliveryMethodLabel("drone") != "drone" {
		t.Errorf("unmapped delivery method should fall back to raw value")
	}
}

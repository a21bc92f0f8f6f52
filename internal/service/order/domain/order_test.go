// internal/service/order/domain/order_test.go
package domain

import (
	"testing"
	"time"
)

func TestStatusCanTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusPreparing, false},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusPreparing, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusReady, false},
		{StatusPreparing, StatusReady, true},
		{StatusPreparing, StatusCancelled, false},
		{StatusReady, StatusOutForDelivery, true},
		{StatusReady, StatusCompleted, true},
		{StatusReady, StatusCancelled, false},
		{StatusReady, StatusPending, false},
		{StatusReady, StatusDelivered, false},
		{StatusOutForDelivery, StatusDelivered, true},
		{StatusOutForDelivery, StatusCompleted, false},
		{StatusOutForDelivery, StatusCancelled, false},
		{StatusDelivered, StatusCompleted, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusPreparing, StatusReady, StatusOutForDelivery, StatusDelivered} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []Status{StatusCompleted, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestAccrualPoints(t *testing.T) {
	tests := []struct {
		total float64
		want  int
	}{
		{1050.00, 100},
		{99.99, 0},
		{100, 10},
		{199.50, 10},
		{0, 0},
		{2500, 250},
	}
	for _, tt := range tests {
		o := Order{TotalAmount: tt.total}
		if got := o.AccrualPoints(); got != tt.want {
			t.Errorf("AccrualPoints(total=%.2f) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestOrderValidate(t *testing.T) {
	valid := func() *Order {
		return &Order{
			CustomerID:   "c1",
			RestaurantID: "r1",
			Type:         TypeTakeout,
			Items:        []OrderItem{{MenuItemID: 1, Quantity: 2, UnitPrice: 9.5}},
			TotalAmount:  19,
			OrderDate:    time.Now(),
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid order rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Order)
	}{
		{"missing customer", func(o *Order) { o.CustomerID = "" }},
		{"missing restaurant", func(o *Order) { o.RestaurantID = "" }},
		{"no items", func(o *Order) { o.Items = nil }},
		{"zero quantity", func(o *Order) { o.Items[0].Quantity = 0 }},
		{"negative total", func(o *Order) { o.TotalAmount = -1 }},
		{"delivery without address", func(o *Order) { o.Type = TypeDelivery }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := valid()
			tt.mutate(o)
			if err := o.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestItemTotal(t *testing.T) {
	o := Order{Items: []OrderItem{
		{Quantity: 2, UnitPrice: 10.5},
		{Quantity: 1, UnitPrice: 4},
	}}
	if got := o.ItemTotal(); got != 25 {
		t.Errorf("ItemTotal() = %v, want 25", got)
	}
}

func TestCapabilityAllows(t *testing.T) {
	courier := "courier-1"
	order := func(status Status, assigned bool) *Order {
		o := &Order{
			CustomerID:   "cust-1",
			RestaurantID: "rest-1",
			Type:         TypeDelivery,
			Status:       status,
		}
		if assigned {
			o.DeliveryPersonID = &courier
		}
		return o
	}

	tests := []struct {
		name string
		cap  Capability
		o    *Order
		to   Status
		want bool
	}{
		{"customer cancels own order", CustomerOf{"cust-1"}, order(StatusPending, false), StatusCancelled, true},
		{"customer cannot confirm", CustomerOf{"cust-1"}, order(StatusPending, false), StatusConfirmed, false},
		{"stranger cannot cancel", CustomerOf{"cust-2"}, order(StatusPending, false), StatusCancelled, false},
		{"staff confirms", StaffOf{"rest-1"}, order(StatusPending, false), StatusConfirmed, true},
		{"staff of other restaurant", StaffOf{"rest-2"}, order(StatusPending, false), StatusConfirmed, false},
		{"staff cannot dispatch unassigned", StaffOf{"rest-1"}, order(StatusReady, false), StatusOutForDelivery, false},
		{"staff dispatches assigned", StaffOf{"rest-1"}, order(StatusReady, true), StatusOutForDelivery, true},
		{"assigned courier delivers", AssignedCourier{courier}, order(StatusOutForDelivery, true), StatusDelivered, true},
		{"assigned courier completes", AssignedCourier{courier}, order(StatusDelivered, true), StatusCompleted, true},
		{"courier cannot confirm", AssignedCourier{courier}, order(StatusPending, true), StatusConfirmed, false},
		{"unassigned courier", AssignedCourier{"courier-2"}, order(StatusOutForDelivery, true), StatusDelivered, false},
		{"courier on unassigned order", AssignedCourier{courier}, order(StatusReady, false), StatusDelivered, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cap.Allows(tt.o, tt.to); got != tt.want {
				t.Errorf("Allows() = %v, want %v", got, tt.want)
			}
		})
	}
}

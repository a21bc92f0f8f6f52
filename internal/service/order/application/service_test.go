// internal/service/order/application/service_test.go
package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/trace/noop"

	"bistro/internal/service/order/domain"
	"bistro/internal/service/order/domain/port"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (r *fakeOrderRepo) ListByCustomer(_ context.Context, customerID string, _, _ int) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		if o.CustomerID == customerID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

// UpdateStatus 模拟存储层的条件更新：当前状态不是 from 就失败。
func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id string, from, to domain.Status, completedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if order.Status != from {
		return domain.ErrInvalidTransition
	}
	order.Status = to
	if completedAt != nil {
		order.CompletedAt = completedAt
	}
	return nil
}

type fakeMenu struct {
	items map[int64]port.MenuItem
}

func (m *fakeMenu) GetItem(_ context.Context, id int64) (*port.MenuItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

type fakeDirectory struct {
	staff map[string]string // userID -> restaurantID
}

func (d *fakeDirectory) IsStaffOrOwner(_ context.Context, restaurantID, userID string) (bool, error) {
	return d.staff[userID] == restaurantID, nil
}

type fakeNotifier struct{}

func (fakeNotifier) NotifyOrderCreated(context.Context, *domain.Order)                      {}
func (fakeNotifier) NotifyOrderStatusChanged(context.Context, *domain.Order, domain.Status) {}
func (fakeNotifier) NotifyOrderCancelled(context.Context, *domain.Order)                    {}

type fakeCoupons struct {
	discount *port.CouponDiscount
	err      error
	consumed []string
}

func (c *fakeCoupons) Consume(_ context.Context, code, _ string) (*port.CouponDiscount, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.consumed = append(c.consumed, code)
	return c.discount, nil
}

type fakeAccruer struct {
	mu    sync.Mutex
	calls []int
}

func (a *fakeAccruer) AccrueOrderPoints(_ context.Context, _, _ string, points int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, points)
	return nil
}

func newTestService(repo *fakeOrderRepo, coupons *fakeCoupons, accruer *fakeAccruer) *OrderService {
	menu := &fakeMenu{items: map[int64]port.MenuItem{
		1: {ID: 1, Name: "Margherita", Price: 12.5, IsAvailable: true},
		2: {ID: 2, Name: "Tiramisu", Price: 6, IsAvailable: true},
		3: {ID: 3, Name: "Off menu", Price: 9, IsAvailable: false},
	}}
	directory := &fakeDirectory{staff: map[string]string{"staff-1": "rest-1"}}
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewOrderService(repo, menu, directory, fakeNotifier{}, coupons, accruer, tracer)
}

func TestCreateOrderSnapshotsPrices(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, &fakeCoupons{}, &fakeAccruer{})

	order, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerID:   "cust-1",
		RestaurantID: "rest-1",
		Type:         string(domain.TypeTakeout),
		Items: []CreateOrderItemRequest{
			{MenuItemID: 1, Quantity: 2},
			{MenuItemID: 2, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.Status != domain.StatusPending {
		t.Errorf("new order status = %s, want PENDING", order.Status)
	}
	if order.TotalAmount != 31 {
		t.Errorf("total = %v, want 31", order.TotalAmount)
	}
	if len(order.Items) != 2 || order.Items[0].UnitPrice != 12.5 || order.Items[0].Name != "Margherita" {
		t.Errorf("items not snapshotted from menu: %+v", order.Items)
	}
	if _, err := repo.FindByID(context.Background(), order.ID); err != nil {
		t.Errorf("order not persisted: %v", err)
	}
}

func TestCreateOrderRejectsBadInput(t *testing.T) {
	svc := newTestService(newFakeOrderRepo(), &fakeCoupons{}, &fakeAccruer{})
	ctx := context.Background()

	tests := []struct {
		name string
		req  *CreateOrderRequest
		want error
	}{
		{
			"unavailable item",
			&CreateOrderRequest{CustomerID: "c", RestaurantID: "r", Type: "TAKEOUT",
				Items: []CreateOrderItemRequest{{MenuItemID: 3, Quantity: 1}}},
			domain.ErrItemUnavailable,
		},
		{
			"unknown item",
			&CreateOrderRequest{CustomerID: "c", RestaurantID: "r", Type: "TAKEOUT",
				Items: []CreateOrderItemRequest{{MenuItemID: 99, Quantity: 1}}},
			domain.ErrNotFound,
		},
		{
			"zero quantity",
			&CreateOrderRequest{CustomerID: "c", RestaurantID: "r", Type: "TAKEOUT",
				Items: []CreateOrderItemRequest{{MenuItemID: 1, Quantity: 0}}},
			domain.ErrValidation,
		},
		{
			"no items",
			&CreateOrderRequest{CustomerID: "c", RestaurantID: "r", Type: "TAKEOUT"},
			domain.ErrValidation,
		},
		{
			"unknown type",
			&CreateOrderRequest{CustomerID: "c", RestaurantID: "r", Type: "DRONE",
				Items: []CreateOrderItemRequest{{MenuItemID: 1, Quantity: 1}}},
			domain.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateOrder(ctx, tt.req); !errors.Is(err, tt.want) {
				t.Errorf("CreateOrder error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCreateOrderConsumesCoupon(t *testing.T) {
	coupons := &fakeCoupons{discount: &port.CouponDiscount{Percentage: 10}}
	svc := newTestService(newFakeOrderRepo(), coupons, &fakeAccruer{})

	order, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerID:   "cust-1",
		RestaurantID: "rest-1",
		Type:         string(domain.TypeTakeout),
		Items:        []CreateOrderItemRequest{{MenuItemID: 2, Quantity: 10}}, // 60
		CouponCode:   "CPT-ABCDEF1234",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if len(coupons.consumed) != 1 || coupons.consumed[0] != "CPT-ABCDEF1234" {
		t.Errorf("coupon not consumed: %v", coupons.consumed)
	}
	if order.TotalAmount != 54 {
		t.Errorf("discounted total = %v, want 54", order.TotalAmount)
	}
}

func TestCreateOrderTrustsCallerTotal(t *testing.T) {
	svc := newTestService(newFakeOrderRepo(), &fakeCoupons{discount: &port.CouponDiscount{Amount: 5}}, &fakeAccruer{})

	order, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerID:      "cust-1",
		RestaurantID:    "rest-1",
		Type:            string(domain.TypeDelivery),
		DeliveryAddress: "1 Main St",
		Items:           []CreateOrderItemRequest{{MenuItemID: 1, Quantity: 1}},
		TotalAmount:     17.5, // 12.5 + 10 fee - 5 coupon, composed by the caller
		CouponCode:      "CPT-XXXXXXXXXX",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.TotalAmount != 17.5 {
		t.Errorf("caller total overridden: got %v, want 17.5", order.TotalAmount)
	}
}

func TestCreateOrderFailsWhenCouponRejected(t *testing.T) {
	coupons := &fakeCoupons{err: errors.New("coupon already used")}
	svc := newTestService(newFakeOrderRepo(), coupons, &fakeAccruer{})

	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerID:   "cust-1",
		RestaurantID: "rest-1",
		Type:         string(domain.TypeTakeout),
		Items:        []CreateOrderItemRequest{{MenuItemID: 1, Quantity: 1}},
		CouponCode:   "CPT-USEDUSED99",
	})
	if err == nil {
		t.Fatal("expected error for rejected coupon")
	}
}

func TestCreateOrderInvalidRequestLeavesCouponUntouched(t *testing.T) {
	coupons := &fakeCoupons{discount: &port.CouponDiscount{Percentage: 10}}
	svc := newTestService(newFakeOrderRepo(), coupons, &fakeAccruer{})

	// 外卖单缺少地址：校验必须先失败，单次券不能被烧掉
	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		CustomerID:   "cust-1",
		RestaurantID: "rest-1",
		Type:         string(domain.TypeDelivery),
		Items:        []CreateOrderItemRequest{{MenuItemID: 1, Quantity: 1}},
		CouponCode:   "CPT-SAVEME1234",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if len(coupons.consumed) != 0 {
		t.Errorf("coupon consumed %d times on a request that never produced an order", len(coupons.consumed))
	}

	// 空的客户标识同样不能走到核销
	_, err = svc.CreateOrder(context.Background(), &CreateOrderRequest{
		RestaurantID: "rest-1",
		Type:         string(domain.TypeTakeout),
		Items:        []CreateOrderItemRequest{{MenuItemID: 1, Quantity: 1}},
		CouponCode:   "CPT-SAVEME1234",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if len(coupons.consumed) != 0 {
		t.Errorf("coupon consumed %d times on a request that never produced an order", len(coupons.consumed))
	}
}

func seedOrder(repo *fakeOrderRepo, status domain.Status, courier *string) *domain.Order {
	order := &domain.Order{
		ID:               "order-1",
		CustomerID:       "cust-1",
		RestaurantID:     "rest-1",
		Type:             domain.TypeDelivery,
		Status:           status,
		DeliveryPersonID: courier,
		DeliveryAddress:  "1 Main St",
		Items:            []domain.OrderItem{{MenuItemID: 1, Quantity: 1, UnitPrice: 1050}},
		TotalAmount:      1050,
		OrderDate:        time.Now(),
	}
	repo.Create(context.Background(), order)
	return order
}

func TestTransitionEnforcesGraphAndRoles(t *testing.T) {
	courier := "courier-1"
	tests := []struct {
		name    string
		status  domain.Status
		courier *string
		req     TransitionRequest
		wantErr error
	}{
		{
			"staff confirms pending", domain.StatusPending, nil,
			TransitionRequest{ActorID: "staff-1", ActorRole: RoleStaff, NewStatus: "CONFIRMED"},
			nil,
		},
		{
			"customer cancels pending", domain.StatusPending, nil,
			TransitionRequest{ActorID: "cust-1", ActorRole: RoleCustomer, NewStatus: "CANCELLED"},
			nil,
		},
		{
			"customer cannot cancel ready", domain.StatusReady, nil,
			TransitionRequest{ActorID: "cust-1", ActorRole: RoleCustomer, NewStatus: "CANCELLED"},
			domain.ErrInvalidTransition,
		},
		{
			"ready cannot go back to pending", domain.StatusReady, nil,
			TransitionRequest{ActorID: "staff-1", ActorRole: RoleStaff, NewStatus: "PENDING"},
			domain.ErrInvalidTransition,
		},
		{
			"stranger cannot cancel", domain.StatusPending, nil,
			TransitionRequest{ActorID: "cust-2", ActorRole: RoleCustomer, NewStatus: "CANCELLED"},
			domain.ErrForbidden,
		},
		{
			"non-staff forbidden", domain.StatusPending, nil,
			TransitionRequest{ActorID: "rando", ActorRole: RoleStaff, NewStatus: "CONFIRMED"},
			domain.ErrForbidden,
		},
		{
			"customer cannot confirm", domain.StatusPending, nil,
			TransitionRequest{ActorID: "cust-1", ActorRole: RoleCustomer, NewStatus: "CONFIRMED"},
			domain.ErrForbidden,
		},
		{
			"unassigned courier cannot deliver", domain.StatusOutForDelivery, nil,
			TransitionRequest{ActorID: courier, ActorRole: RoleCourier, NewStatus: "DELIVERED"},
			domain.ErrForbidden,
		},
		{
			"assigned courier delivers", domain.StatusOutForDelivery, &courier,
			TransitionRequest{ActorID: courier, ActorRole: RoleCourier, NewStatus: "DELIVERED"},
			nil,
		},
		{
			"staff cannot dispatch unassigned", domain.StatusReady, nil,
			TransitionRequest{ActorID: "staff-1", ActorRole: RoleStaff, NewStatus: "OUT_FOR_DELIVERY"},
			domain.ErrForbidden,
		},
		{
			"unknown order", domain.StatusPending, nil,
			TransitionRequest{OrderID: "missing", ActorID: "staff-1", ActorRole: RoleStaff, NewStatus: "CONFIRMED"},
			domain.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeOrderRepo()
			svc := newTestService(repo, &fakeCoupons{}, &fakeAccruer{})
			seedOrder(repo, tt.status, tt.courier)

			req := tt.req
			if req.OrderID == "" {
				req.OrderID = "order-1"
			}
			_, err := svc.Transition(context.Background(), &req)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Transition: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Transition error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransitionStampsCompletedAt(t *testing.T) {
	courier := "courier-1"
	repo := newFakeOrderRepo()
	svc := newTestService(repo, &fakeCoupons{}, &fakeAccruer{})
	seedOrder(repo, domain.StatusOutForDelivery, &courier)

	order, err := svc.Transition(context.Background(), &TransitionRequest{
		OrderID: "order-1", ActorID: courier, ActorRole: RoleCourier, NewStatus: "DELIVERED",
	})
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if order.CompletedAt == nil {
		t.Error("DELIVERED should stamp completedAt")
	}
}

func TestCompletionAccruesPointsExactlyOnce(t *testing.T) {
	courier := "courier-1"
	repo := newFakeOrderRepo()
	accruer := &fakeAccruer{}
	svc := newTestService(repo, &fakeCoupons{}, accruer)
	seedOrder(repo, domain.StatusDelivered, &courier)

	if _, err := svc.Transition(context.Background(), &TransitionRequest{
		OrderID: "order-1", ActorID: courier, ActorRole: RoleCourier, NewStatus: "COMPLETED",
	}); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	// 已经 COMPLETED，重复请求必须输在条件更新上
	if _, err := svc.Transition(context.Background(), &TransitionRequest{
		OrderID: "order-1", ActorID: courier, ActorRole: RoleCourier, NewStatus: "COMPLETED",
	}); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("second completion error = %v, want ErrInvalidTransition", err)
	}

	accruer.mu.Lock()
	defer accruer.mu.Unlock()
	if len(accruer.calls) != 1 {
		t.Fatalf("accrual calls = %d, want exactly 1", len(accruer.calls))
	}
	if accruer.calls[0] != 100 {
		t.Errorf("accrued points = %d, want floor(1050/100)*10 = 100", accruer.calls[0])
	}
}

func TestCancelShortcut(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newTestService(repo, &fakeCoupons{}, &fakeAccruer{})
	seedOrder(repo, domain.StatusConfirmed, nil)

	order, err := svc.Cancel(context.Background(), "order-1", "cust-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if order.Status != domain.StatusCancelled {
		t.Errorf("status = %s, want CANCELLED", order.Status)
	}
}

func TestApplyDiscount(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		discount *port.CouponDiscount
		want     float64
	}{
		{"nil discount", 100, nil, 100},
		{"percentage", 200, &port.CouponDiscount{Percentage: 25}, 150},
		{"amount", 50, &port.CouponDiscount{Amount: 20}, 30},
		{"amount exceeds total", 10, &port.CouponDiscount{Amount: 15}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := applyDiscount(tt.total, tt.discount); got != tt.want {
				t.Errorf("applyDiscount(%v) = %v, want %v", tt.total, got, tt.want)
			}
		})
	}
}

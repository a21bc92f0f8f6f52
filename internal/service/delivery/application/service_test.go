// internal/service/delivery/application/service_test.go
package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/trace/noop"

	"bistro/internal/service/delivery/domain"
	orderapp "bistro/internal/service/order/application"
	orderdomain "bistro/internal/service/order/domain"
	orderport "bistro/internal/service/order/domain/port"
)

// fakeStore 同时扮演订单仓储与派单仓储，占位语义与
// 数据库实现一致：每骑手一条、每单一条，检查与写入同锁。
type fakeStore struct {
	mu     sync.Mutex
	orders map[string]*orderdomain.Order
	claims map[string]string // courierID -> orderID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders: make(map[string]*orderdomain.Order),
		claims: make(map[string]string),
	}
}

func (s *fakeStore) Create(_ context.Context, order *orderdomain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *order
	s.orders[order.ID] = &cp
	return nil
}

func (s *fakeStore) FindByID(_ context.Context, id string) (*orderdomain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, orderdomain.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (s *fakeStore) ListByCustomer(context.Context, string, int, int) ([]*orderdomain.Order, error) {
	return nil, nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, id string, from, to orderdomain.Status, completedAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return orderdomain.ErrNotFound
	}
	if order.Status != from {
		return orderdomain.ErrInvalidTransition
	}
	order.Status = to
	if completedAt != nil {
		order.CompletedAt = completedAt
	}
	if to == orderdomain.StatusDelivered || to == orderdomain.StatusCompleted || to == orderdomain.StatusCancelled {
		for courier, claimed := range s.claims {
			if claimed == id {
				delete(s.claims, courier)
			}
		}
	}
	return nil
}

func (s *fakeStore) ListAvailable(context.Context, int, int) ([]*orderdomain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*orderdomain.Order
	for _, o := range s.orders {
		if o.Status == orderdomain.StatusReady && o.Type == orderdomain.TypeDelivery && o.DeliveryPersonID == nil {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) Claim(_ context.Context, orderID, courierID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.claims[courierID]; busy {
		return domain.ErrCourierBusy
	}
	order, ok := s.orders[orderID]
	if !ok {
		return domain.ErrNotFound
	}
	if order.DeliveryPersonID != nil {
		return domain.ErrAlreadyAssigned
	}
	if order.Status != orderdomain.StatusReady || order.Type != orderdomain.TypeDelivery {
		return domain.ErrInvalidState
	}
	courier := courierID
	order.DeliveryPersonID = &courier
	order.Status = orderdomain.StatusOutForDelivery
	s.claims[courierID] = orderID
	return nil
}

func (s *fakeStore) ActiveClaim(_ context.Context, courierID string) (*domain.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orderID, ok := s.claims[courierID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Claim{CourierID: courierID, OrderID: orderID}, nil
}

type fakeMenu struct{}

func (fakeMenu) GetItem(context.Context, int64) (*orderport.MenuItem, error) {
	return &orderport.MenuItem{IsAvailable: true}, nil
}

type fakeDirectory struct{}

func (fakeDirectory) IsStaffOrOwner(context.Context, string, string) (bool, error) { return true, nil }

type fakeNotifier struct{}

func (fakeNotifier) NotifyOrderCreated(context.Context, *orderdomain.Order) {}
func (fakeNotifier) NotifyOrderStatusChanged(context.Context, *orderdomain.Order, orderdomain.Status) {
}
func (fakeNotifier) NotifyOrderCancelled(context.Context, *orderdomain.Order) {}

type fakeCoupons struct{}

func (fakeCoupons) Consume(context.Context, string, string) (*orderport.CouponDiscount, error) {
	return nil, nil
}

type fakeAccruer struct{}

func (fakeAccruer) AccrueOrderPoints(context.Context, string, string, int) error { return nil }

func newTestService(store *fakeStore) *DeliveryService {
	tracer := noop.NewTracerProvider().Tracer("test")
	orders := orderapp.NewOrderService(store, fakeMenu{}, fakeDirectory{},
		fakeNotifier{}, fakeCoupons{}, fakeAccruer{}, tracer)
	return NewDeliveryService(store, orders, fakeNotifier{}, tracer)
}

func seedReadyOrder(store *fakeStore, id string) {
	store.Create(context.Background(), &orderdomain.Order{
		ID:              id,
		CustomerID:      "cust-1",
		RestaurantID:    "rest-1",
		Type:            orderdomain.TypeDelivery,
		Status:          orderdomain.StatusReady,
		DeliveryAddress: "1 Main St",
		TotalAmount:     42,
	})
}

func TestAcceptAssignsAndDispatches(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	seedReadyOrder(store, "order-1")

	order, err := svc.Accept(context.Background(), "order-1", "courier-1")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if order.Status != orderdomain.StatusOutForDelivery {
		t.Errorf("status = %s, want OUT_FOR_DELIVERY", order.Status)
	}
	if order.DeliveryPersonID == nil || *order.DeliveryPersonID != "courier-1" {
		t.Errorf("courier not assigned: %+v", order.DeliveryPersonID)
	}
}

func TestConcurrentAcceptSameOrder(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	seedReadyOrder(store, "order-1")

	const racers = 8
	errs := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Accept(context.Background(), "order-1", courierName(i))
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrAlreadyAssigned):
			losses++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("winners = %d, want exactly 1", wins)
	}
	if losses != racers-1 {
		t.Errorf("losers with ErrAlreadyAssigned = %d, want %d", losses, racers-1)
	}
}

func TestConcurrentAcceptSameCourier(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	seedReadyOrder(store, "order-1")
	seedReadyOrder(store, "order-2")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, orderID := range []string{"order-1", "order-2"} {
		wg.Add(1)
		go func(i int, orderID string) {
			defer wg.Done()
			_, errs[i] = svc.Accept(context.Background(), orderID, "courier-1")
		}(i, orderID)
	}
	wg.Wait()

	var wins, busy int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrCourierBusy):
			busy++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 || busy != 1 {
		t.Errorf("wins = %d, busy = %d, want 1 and 1", wins, busy)
	}
}

func TestAcceptRejectsNonReadyOrder(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	store.Create(context.Background(), &orderdomain.Order{
		ID: "order-1", Type: orderdomain.TypeDelivery, Status: orderdomain.StatusPreparing,
	})

	if _, err := svc.Accept(context.Background(), "order-1", "courier-1"); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("error = %v, want ErrInvalidState", err)
	}
	if _, err := svc.Accept(context.Background(), "missing", "courier-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDeliveredReleasesCourier(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	seedReadyOrder(store, "order-1")
	seedReadyOrder(store, "order-2")

	if _, err := svc.Accept(context.Background(), "order-1", "courier-1"); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if _, err := svc.Accept(context.Background(), "order-2", "courier-1"); !errors.Is(err, domain.ErrCourierBusy) {
		t.Fatalf("second accept error = %v, want ErrCourierBusy", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), "order-1", "courier-1", orderdomain.StatusDelivered); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	// 交付后骑手空闲，可以接下一单
	if _, err := svc.Accept(context.Background(), "order-2", "courier-1"); err != nil {
		t.Fatalf("accept after delivery: %v", err)
	}
}

func TestUpdateStatusRestrictedToAssignedCourier(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	seedReadyOrder(store, "order-1")

	if _, err := svc.Accept(context.Background(), "order-1", "courier-1"); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), "order-1", "courier-2", orderdomain.StatusDelivered); !errors.Is(err, orderdomain.ErrForbidden) {
		t.Errorf("error = %v, want ErrForbidden", err)
	}
}

func TestListAvailableAndActiveDelivery(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	seedReadyOrder(store, "order-1")

	orders, err := svc.ListAvailable(context.Background(), 1, 20)
	if err != nil || len(orders) != 1 {
		t.Fatalf("ListAvailable = %v, %v; want one order", orders, err)
	}

	if _, err := svc.ActiveDelivery(context.Background(), "courier-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("idle courier error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Accept(context.Background(), "order-1", "courier-1"); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	active, err := svc.ActiveDelivery(context.Background(), "courier-1")
	if err != nil {
		t.Fatalf("ActiveDelivery: %v", err)
	}
	if active.ID != "order-1" {
		t.Errorf("active order = %s, want order-1", active.ID)
	}
}

func courierName(i int) string {
	return "courier-" + string(rune('a'+i))
}

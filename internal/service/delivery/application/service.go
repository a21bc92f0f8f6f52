// internal/service/delivery/application/service.go
package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/metrics"
	"bistro/internal/service/delivery/domain"
	orderapp "bistro/internal/service/order/application"
	orderdomain "bistro/internal/service/order/domain"
	orderport "bistro/internal/service/order/domain/port"
)

// DeliveryService 实现派单：待认领列表、认领、骑手侧状态推进。
type DeliveryService struct {
	repo     domain.DeliveryRepository
	orders   *orderapp.OrderService
	notifier orderport.Notifier
	tracer   trace.Tracer
}

func NewDeliveryService(repo domain.DeliveryRepository, orders *orderapp.OrderService,
	notifier orderport.Notifier, tracer trace.Tracer) *DeliveryService {
	return &DeliveryService{repo: repo, orders: orders, notifier: notifier, tracer: tracer}
}

func (s *DeliveryService) ListAvailable(ctx context.Context, page, size int) ([]*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "delivery.ListAvailable")
	defer span.End()
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.repo.ListAvailable(ctx, page, size)
}

// Accept 认领一笔待配送订单。占位插入与条件指派在存储层的
// 同一个事务里完成：两个骑手抢同一单，或一个骑手抢两单，
// 都只会有一个成功，输家拿到明确的哨兵错误。
// 认领成功即进入 OUT_FOR_DELIVERY，这是状态图里 READY 之后
// 外送分支的唯一入口。
func (s *DeliveryService) Accept(ctx context.Context, orderID, courierID string) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "delivery.Accept")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("courier.id", courierID),
	)

	if err := s.repo.Claim(ctx, orderID, courierID, time.Now()); err != nil {
		span.RecordError(err)
		return nil, err
	}

	metrics.DeliveriesAccepted.Inc()
	metrics.OrderTransitions.WithLabelValues(
		string(orderdomain.StatusReady), string(orderdomain.StatusOutForDelivery)).Inc()
	logger.Ctx(ctx).Info().
		Str("order_id", orderID).
		Str("courier_id", courierID).
		Msg("delivery accepted")

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "claim committed but order reload failed")
	}
	s.notifyAsync(ctx, func(ctx context.Context) {
		s.notifier.NotifyOrderStatusChanged(ctx, order, orderdomain.StatusOutForDelivery)
	})
	return order, nil
}

// UpdateStatus 骑手推进在途订单，只允许 DELIVERED / COMPLETED。
// 走订单服务的统一流转：归属校验、占位释放和完成入账都在那边。
func (s *DeliveryService) UpdateStatus(ctx context.Context, orderID, courierID string, newStatus orderdomain.Status) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "delivery.UpdateStatus")
	defer span.End()
	return s.orders.Transition(ctx, &orderapp.TransitionRequest{
		OrderID:   orderID,
		ActorID:   courierID,
		ActorRole: orderapp.RoleCourier,
		NewStatus: string(newStatus),
	})
}

// ActiveDelivery 返回骑手当前在途的订单，没有则 ErrNotFound。
func (s *DeliveryService) ActiveDelivery(ctx context.Context, courierID string) (*orderdomain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "delivery.ActiveDelivery")
	defer span.End()

	claim, err := s.repo.ActiveClaim(ctx, courierID)
	if err != nil {
		return nil, err
	}
	return s.orders.GetOrder(ctx, claim.OrderID)
}

func (s *DeliveryService) notifyAsync(ctx context.Context, fn func(ctx context.Context)) {
	if s.notifier == nil {
		return
	}
	detached := logger.WithContext(context.Background(), *logger.Ctx(ctx))
	go fn(detached)
}

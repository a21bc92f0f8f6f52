// internal/service/order/application/service.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/metrics"
	"bistro/internal/service/order/domain"
	"bistro/internal/service/order/domain/port"
)

// OrderService 实现订单生命周期：创建、状态推进、取消、查询。
type OrderService struct {
	orderRepo domain.OrderRepository
	menu      port.MenuCatalog
	directory port.Directory
	notifier  port.Notifier
	coupons   port.CouponRedeemer
	accruer   port.PointsAccruer
	tracer    trace.Tracer
}

func NewOrderService(orderRepo domain.OrderRepository, menu port.MenuCatalog, directory port.Directory,
	notifier port.Notifier, coupons port.CouponRedeemer, accruer port.PointsAccruer, tracer trace.Tracer) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		menu:      menu,
		directory: directory,
		notifier:  notifier,
		coupons:   coupons,
		accruer:   accruer,
		tracer:    tracer,
	}
}

// CreateOrder 校验并快照菜单项、核销可选的券、落库一笔 PENDING 订单。
// 券的核销先于订单插入提交；插入失败时券已作废，这是接口契约的
// 已知边界，调用方可走客服补偿，不在这里回滚。
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.CreateOrder")
	defer span.End()
	span.SetAttributes(
		attribute.String("customer.id", req.CustomerID),
		attribute.String("restaurant.id", req.RestaurantID),
	)

	orderType := domain.Type(req.Type)
	switch orderType {
	case domain.TypeDineIn, domain.TypeTakeout, domain.TypeDelivery:
	default:
		return nil, errors.Wrap(domain.ErrValidation, "unknown order type")
	}
	if len(req.Items) == 0 {
		return nil, errors.Wrap(domain.ErrValidation, "order has no items")
	}

	order := &domain.Order{
		ID:              uuid.New().String(),
		CustomerID:      req.CustomerID,
		RestaurantID:    req.RestaurantID,
		TableID:         req.TableID,
		Type:            orderType,
		Status:          domain.StatusPending,
		OrderDate:       time.Now(),
		DeliveryAddress: req.DeliveryAddress,
		CouponCode:      req.CouponCode,
	}

	for _, line := range req.Items {
		if line.Quantity < 1 {
			return nil, errors.Wrap(domain.ErrValidation, "quantity must be at least 1")
		}
		item, err := s.menu.GetItem(ctx, line.MenuItemID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if !item.IsAvailable {
			return nil, errors.Wrapf(domain.ErrItemUnavailable, "menu item %d", line.MenuItemID)
		}
		order.Items = append(order.Items, domain.OrderItem{
			OrderID:    order.ID,
			MenuItemID: item.ID,
			Name:       item.Name,
			Quantity:   line.Quantity,
			UnitPrice:  item.Price,
		})
	}

	// 结构校验先于券核销：不合法的请求不能烧掉客户的单次券
	if req.TotalAmount > 0 {
		order.TotalAmount = req.TotalAmount
	} else {
		order.TotalAmount = order.ItemTotal()
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	if req.CouponCode != "" {
		discount, err := s.coupons.Consume(ctx, req.CouponCode, req.CustomerID)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		// 调用方给出的总价视为已含折扣，只有自算总价才应用折扣
		if req.TotalAmount <= 0 {
			order.TotalAmount = applyDiscount(order.ItemTotal(), discount)
		}
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		span.RecordError(err)
		return nil, err
	}

	metrics.OrdersCreated.WithLabelValues(string(order.Type)).Inc()
	logger.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Str("customer_id", order.CustomerID).
		Str("type", string(order.Type)).
		Float64("total", order.TotalAmount).
		Msg("order created")

	s.notifyAsync(ctx, func(ctx context.Context) {
		s.notifier.NotifyOrderCreated(ctx, order)
	})
	return order, nil
}

func applyDiscount(total float64, discount *port.CouponDiscount) float64 {
	if discount == nil {
		return total
	}
	if discount.Percentage > 0 {
		total -= total * float64(discount.Percentage) / 100
	} else {
		total -= discount.Amount
	}
	if total < 0 {
		return 0
	}
	return total
}

// Transition 在角色资格与状态图的双重约束下推进订单。
// 存储层的条件更新保证并发下只有一个推进生效，
// 因此 COMPLETED 的积分入账天然只会发生一次。
func (s *OrderService) Transition(ctx context.Context, req *TransitionRequest) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.Transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.String("order.new_status", req.NewStatus),
	)

	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	newStatus := domain.Status(req.NewStatus)
	if !order.Status.CanTransition(newStatus) {
		return nil, errors.Wrapf(domain.ErrInvalidTransition, "%s -> %s", order.Status, newStatus)
	}

	capability, err := s.resolveCapability(ctx, order, req.ActorRole, req.ActorID)
	if err != nil {
		return nil, err
	}
	if !capability.Allows(order, newStatus) {
		return nil, domain.ErrForbidden
	}

	var completedAt *time.Time
	if newStatus == domain.StatusDelivered || newStatus == domain.StatusCompleted {
		now := time.Now()
		completedAt = &now
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, order.Status, newStatus, completedAt); err != nil {
		span.RecordError(err)
		return nil, err
	}

	metrics.OrderTransitions.WithLabelValues(string(order.Status), string(newStatus)).Inc()
	logger.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Str("from", string(order.Status)).
		Str("to", string(newStatus)).
		Str("actor_id", req.ActorID).
		Msg("order transitioned")

	order.Status = newStatus
	order.CompletedAt = completedAt

	if newStatus == domain.StatusCompleted {
		s.accruePoints(ctx, order)
	}

	s.notifyAsync(ctx, func(ctx context.Context) {
		if newStatus == domain.StatusCancelled {
			s.notifier.NotifyOrderCancelled(ctx, order)
		} else {
			s.notifier.NotifyOrderStatusChanged(ctx, order, newStatus)
		}
	})
	return order, nil
}

// Cancel 是客户侧取消的便捷入口，PENDING / CONFIRMED 之外一律拒绝。
func (s *OrderService) Cancel(ctx context.Context, orderID, customerID string) (*domain.Order, error) {
	return s.Transition(ctx, &TransitionRequest{
		OrderID:   orderID,
		ActorID:   customerID,
		ActorRole: RoleCustomer,
		NewStatus: string(domain.StatusCancelled),
	})
}

func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.GetOrder")
	defer span.End()
	return s.orderRepo.FindByID(ctx, orderID)
}

func (s *OrderService) ListCustomerOrders(ctx context.Context, customerID string, page, size int) ([]*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "order.ListCustomerOrders")
	defer span.End()
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.orderRepo.ListByCustomer(ctx, customerID, page, size)
}

// resolveCapability 把 (角色, 操作者) 解析成一个已归属校验的资格。
func (s *OrderService) resolveCapability(ctx context.Context, order *domain.Order, role Role, actorID string) (domain.Capability, error) {
	switch role {
	case RoleCustomer:
		if order.CustomerID != actorID {
			return nil, domain.ErrForbidden
		}
		return domain.CustomerOf{CustomerID: actorID}, nil
	case RoleStaff:
		ok, err := s.directory.IsStaffOrOwner(ctx, order.RestaurantID, actorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrForbidden
		}
		return domain.StaffOf{RestaurantID: order.RestaurantID}, nil
	case RoleCourier:
		return domain.AssignedCourier{CourierID: actorID}, nil
	default:
		return nil, errors.Wrapf(domain.ErrValidation, "unknown role %q", role)
	}
}

// accruePoints 订单完成后的积分入账。状态已经提交，
// 入账失败只记日志，由运营对账补偿，不回滚完成状态。
func (s *OrderService) accruePoints(ctx context.Context, order *domain.Order) {
	points := order.AccrualPoints()
	if points <= 0 {
		return
	}
	if err := s.accruer.AccrueOrderPoints(ctx, order.CustomerID, order.RestaurantID, points); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("order_id", order.ID).
			Int("points", points).
			Msg("failed to accrue loyalty points for completed order")
	}
}

// notifyAsync 把通知放到独立的 goroutine 和独立的 context 里执行。
func (s *OrderService) notifyAsync(ctx context.Context, fn func(ctx context.Context)) {
	if s.notifier == nil {
		return
	}
	detached := logger.WithContext(context.Background(), *logger.Ctx(ctx))
	go fn(detached)
}

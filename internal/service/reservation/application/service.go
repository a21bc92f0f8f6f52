// internal/service/reservation/application/service.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/metrics"
	"bistro/internal/service/reservation/domain"
	"bistro/internal/service/reservation/domain/port"
)

// ReservationService 是桌位可用性匹配器与预订生命周期的应用服务。
type ReservationService struct {
	tableRepo       domain.TableRepository
	reservationRepo domain.ReservationRepository
	locker          port.TableLocker
	notifier        port.Notifier
	directory       port.Directory
	tracer          trace.Tracer
}

// NewReservationService 创建一个新的预订服务实例。
func NewReservationService(tableRepo domain.TableRepository, reservationRepo domain.ReservationRepository,
	locker port.TableLocker, notifier port.Notifier, directory port.Directory, tracer trace.Tracer) *ReservationService {
	if locker == nil {
		locker = port.NoopLocker{}
	}
	return &ReservationService{
		tableRepo:       tableRepo,
		reservationRepo: reservationRepo,
		locker:          locker,
		notifier:        notifier,
		directory:       directory,
		tracer:          tracer,
	}
}

// FindAvailableTables 返回请求窗口内可订的桌位，容量升序，最贴合的在前。
// 这是个列表读，允许快照隔离；真正的冲突保证在写入事务里。
func (s *ReservationService) FindAvailableTables(ctx context.Context, restaurantID string, requestedDate time.Time, partySize int) ([]*domain.Table, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.FindAvailableTables")
	defer span.End()
	span.SetAttributes(
		attribute.String("restaurant.id", restaurantID),
		attribute.Int("party.size", partySize),
	)

	if partySize < 1 {
		return nil, domain.ErrValidation
	}
	from := requestedDate.Add(-domain.ConflictWindow)
	to := requestedDate.Add(domain.ConflictWindow)
	return s.tableRepo.FindAvailable(ctx, restaurantID, partySize, from, to)
}

// IsTableAvailable 检查单张桌在请求时刻是否可订。
// 过去的时刻和未开放的桌位直接判否。
func (s *ReservationService) IsTableAvailable(ctx context.Context, tableID int64, requestedDate time.Time) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.IsTableAvailable")
	defer span.End()

	if !requestedDate.After(time.Now()) {
		return false, nil
	}
	table, err := s.tableRepo.FindByID(ctx, tableID)
	if err != nil {
		return false, err
	}
	if !table.Bookable() {
		return false, nil
	}
	from := requestedDate.Add(-domain.ConflictWindow)
	to := requestedDate.Add(domain.ConflictWindow)
	conflicts, err := s.reservationRepo.CountActiveInWindow(ctx, tableID, from, to, "")
	if err != nil {
		return false, err
	}
	return conflicts == 0, nil
}

// CreateReservation 创建一条预订。
// 指定了桌位就校验那张桌，否则取匹配器的第一个结果。
// 窗口复查和插入在仓储的同一个事务里完成，相邻时段的并发请求不会都成功。
func (s *ReservationService) CreateReservation(ctx context.Context, req *CreateReservationRequest) (*domain.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.CreateReservation")
	defer span.End()
	span.SetAttributes(
		attribute.String("customer.id", req.CustomerID),
		attribute.String("restaurant.id", req.RestaurantID),
	)

	// 日期和人数是本地校验，先于任何可用性探测：
	// 过期的请求在两条路径上都报 ErrValidation，而不是被判成没有空桌
	now := time.Now()
	if !req.ReservationDate.After(now) || req.NumberOfGuests < 1 {
		return nil, domain.ErrValidation
	}

	tableID := req.TableID
	if tableID != 0 {
		available, err := s.IsTableAvailable(ctx, tableID, req.ReservationDate)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if !available {
			return nil, domain.ErrNoAvailability
		}
	} else {
		candidates, err := s.FindAvailableTables(ctx, req.RestaurantID, req.ReservationDate, req.NumberOfGuests)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, domain.ErrNoAvailability
		}
		tableID = candidates[0].ID
	}

	reservation, err := domain.NewReservation(uuid.New().String(), req.CustomerID, req.RestaurantID,
		tableID, req.ReservationDate, req.NumberOfGuests, req.SpecialRequests, now)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.locker.WithLock(tableID, func() error {
		return s.reservationRepo.CreateInWindow(ctx, reservation)
	}); err != nil {
		span.RecordError(err)
		return nil, err
	}

	metrics.ReservationsCreated.Inc()
	s.notifyAsync(ctx, func(ctx context.Context) {
		s.notifier.NotifyReservationCreated(ctx, reservation)
	})
	logger.Ctx(ctx).Info().
		Str("reservation_id", reservation.ID).
		Int64("table_id", tableID).
		Time("date", reservation.ReservationDate).
		Msg("reservation created")
	return reservation, nil
}

// UpdateReservation 修改一条预订。
// 只有日期或人数真的变化时才重新校验可用性；
// 原桌位装不下新条件时重新跑一遍匹配器。
func (s *ReservationService) UpdateReservation(ctx context.Context, req *UpdateReservationRequest) (*domain.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.UpdateReservation")
	defer span.End()

	reservation, err := s.reservationRepo.FindByID(ctx, req.ReservationID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if reservation.CustomerID != req.CustomerID {
		return nil, domain.ErrForbidden
	}
	if !reservation.Status.Active() {
		return nil, domain.ErrInvalidTransition
	}

	newDate := reservation.ReservationDate
	if req.ReservationDate != nil {
		newDate = *req.ReservationDate
	}
	newGuests := reservation.NumberOfGuests
	if req.NumberOfGuests != nil {
		newGuests = *req.NumberOfGuests
	}
	if req.SpecialRequests != nil {
		reservation.SpecialRequests = *req.SpecialRequests
	}

	dateChanged := !newDate.Equal(reservation.ReservationDate)
	sizeChanged := newGuests != reservation.NumberOfGuests

	if !dateChanged && !sizeChanged {
		// 只改备注，不触发任何可用性校验
		if err := s.reservationRepo.UpdateInWindow(ctx, reservation); err != nil {
			span.RecordError(err)
			return nil, err
		}
		return reservation, nil
	}

	if newGuests < 1 || !newDate.After(time.Now()) {
		return nil, domain.ErrValidation
	}

	reservation.ReservationDate = newDate
	reservation.NumberOfGuests = newGuests

	// 原桌位在新条件下还能用就留在原桌，否则重新匹配
	keepTable, err := s.tableStillFits(ctx, reservation)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !keepTable {
		candidates, err := s.FindAvailableTables(ctx, reservation.RestaurantID, newDate, newGuests)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, domain.ErrNoAvailability
		}
		reservation.TableID = candidates[0].ID
	}

	if err := s.locker.WithLock(reservation.TableID, func() error {
		return s.reservationRepo.UpdateInWindow(ctx, reservation)
	}); err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("reservation_id", reservation.ID).
		Int64("table_id", reservation.TableID).
		Msg("reservation updated")
	return reservation, nil
}

func (s *ReservationService) tableStillFits(ctx context.Context, reservation *domain.Reservation) (bool, error) {
	table, err := s.tableRepo.FindByID(ctx, reservation.TableID)
	if err != nil {
		return false, err
	}
	if !table.Bookable() || table.Capacity < reservation.NumberOfGuests {
		return false, nil
	}
	from, to := reservation.Window()
	conflicts, err := s.reservationRepo.CountActiveInWindow(ctx, reservation.TableID, from, to, reservation.ID)
	if err != nil {
		return false, err
	}
	return conflicts == 0, nil
}

// CancelReservation 由预订所属客户取消一条活跃预订。
func (s *ReservationService) CancelReservation(ctx context.Context, reservationID, customerID string) error {
	ctx, span := s.tracer.Start(ctx, "reservation.CancelReservation")
	defer span.End()

	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if reservation.CustomerID != customerID {
		return domain.ErrForbidden
	}
	if !reservation.Status.CanTransition(domain.StatusCancelled) {
		return domain.ErrInvalidTransition
	}
	if err := s.reservationRepo.UpdateStatus(ctx, reservationID, reservation.Status, domain.StatusCancelled); err != nil {
		span.RecordError(err)
		return err
	}

	s.notifyAsync(ctx, func(ctx context.Context) {
		s.notifier.NotifyReservationCancelled(ctx, reservation)
	})
	return nil
}

// SetStatus 由店员/店主推进预订状态（确认、完成或取消）。
func (s *ReservationService) SetStatus(ctx context.Context, reservationID, staffID string, newStatus domain.Status) error {
	ctx, span := s.tracer.Start(ctx, "reservation.SetStatus")
	defer span.End()

	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	ok, err := s.directory.IsStaffOrOwner(ctx, reservation.RestaurantID, staffID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}
	if !reservation.Status.CanTransition(newStatus) {
		return domain.ErrInvalidTransition
	}
	if err := s.reservationRepo.UpdateStatus(ctx, reservationID, reservation.Status, newStatus); err != nil {
		span.RecordError(err)
		return err
	}

	s.notifyAsync(ctx, func(ctx context.Context) {
		if newStatus == domain.StatusCancelled {
			s.notifier.NotifyReservationCancelled(ctx, reservation)
			return
		}
		s.notifier.NotifyReservationStatusChanged(ctx, reservation, newStatus)
	})
	return nil
}

// ListByCustomer 分页返回某客户的预订。
func (s *ReservationService) ListByCustomer(ctx context.Context, customerID string, page, size int) ([]*domain.Reservation, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.ListByCustomer")
	defer span.End()
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.reservationRepo.ListByCustomer(ctx, customerID, page, size)
}

// notifyAsync 把通知放到独立的 goroutine 和独立的 context 里执行。
// 通知不占事务，不阻塞请求，失败也不回滚任何核心状态。
func (s *ReservationService) notifyAsync(ctx context.Context, fn func(ctx context.Context)) {
	if s.notifier == nil {
		return
	}
	detached := logger.WithContext(context.Background(), *logger.Ctx(ctx))
	go fn(detached)
}

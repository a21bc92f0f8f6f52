// internal/service/reservation/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bistro/internal/service/reservation/domain"
)

// activeStatuses 是占用冲突窗口的预订状态。
var activeStatuses = []domain.Status{domain.StatusPending, domain.StatusConfirmed}

// GormTableRepository 是 TableRepository 的 GORM 实现。
type GormTableRepository struct {
	db *gorm.DB
}

func NewGormTableRepository(db *gorm.DB) *GormTableRepository {
	return &GormTableRepository{db: db}
}

func (r *GormTableRepository) FindByID(ctx context.Context, id int64) (*domain.Table, error) {
	var model TableModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find table")
	}
	return ToDomainTable(&model), nil
}

// FindAvailable 用一条带 NOT EXISTS 子查询的语句完成候选筛选，容量升序。
// 这是列表读，不加锁；写入前的复查在 CreateInWindow 的事务里。
func (r *GormTableRepository) FindAvailable(ctx context.Context, restaurantID string, partySize int, from, to time.Time) ([]*domain.Table, error) {
	var models []TableModel
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND status = ? AND capacity >= ?", restaurantID, domain.TableAvailable, partySize).
		Where("NOT EXISTS (SELECT 1 FROM reservations WHERE reservations.table_id = tables.id AND reservations.status IN ? AND reservations.reservation_date BETWEEN ? AND ?)",
			activeStatuses, from, to).
		Order("capacity ASC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find available tables")
	}
	tables := make([]*domain.Table, 0, len(models))
	for i := range models {
		tables = append(tables, ToDomainTable(&models[i]))
	}
	return tables, nil
}

// GormReservationRepository 是 ReservationRepository 的 GORM 实现。
type GormReservationRepository struct {
	db *gorm.DB
}

func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

func (r *GormReservationRepository) FindByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var model ReservationModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find reservation")
	}
	return ToDomainReservation(&model), nil
}

func (r *GormReservationRepository) ListByCustomer(ctx context.Context, customerID string, page, size int) ([]*domain.Reservation, error) {
	var models []ReservationModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("reservation_date DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reservations")
	}
	reservations := make([]*domain.Reservation, 0, len(models))
	for i := range models {
		reservations = append(reservations, ToDomainReservation(&models[i]))
	}
	return reservations, nil
}

func (r *GormReservationRepository) CountActiveInWindow(ctx context.Context, tableID int64, from, to time.Time, excludeID string) (int64, error) {
	return countActiveInWindow(r.db.WithContext(ctx), tableID, from, to, excludeID)
}

func countActiveInWindow(db *gorm.DB, tableID int64, from, to time.Time, excludeID string) (int64, error) {
	var count int64
	q := db.Model(&ReservationModel{}).
		Where("table_id = ? AND status IN ? AND reservation_date BETWEEN ? AND ?", tableID, activeStatuses, from, to)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count reservations in window")
	}
	return count, nil
}

// CreateInWindow 先对桌位行 FOR UPDATE，再复查冲突窗口，最后插入。
// 所有写路径都先锁同一行，两个抢相邻时段的事务必然串行，
// 后到的一方在复查时看到冲突，拿到 ErrNoAvailability。
func (r *GormReservationRepository) CreateInWindow(ctx context.Context, reservation *domain.Reservation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table TableModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&table, reservation.TableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return errors.Wrap(err, "failed to lock table row")
		}
		if domain.TableStatus(table.Status) != domain.TableAvailable {
			return domain.ErrNoAvailability
		}
		if table.Capacity < reservation.NumberOfGuests {
			return domain.ErrNoAvailability
		}

		from, to := reservation.Window()
		count, err := countActiveInWindow(tx, reservation.TableID, from, to, "")
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrNoAvailability
		}

		if err := tx.Create(FromDomainReservation(reservation)).Error; err != nil {
			return errors.Wrap(err, "failed to create reservation")
		}
		return nil
	})
}

// UpdateInWindow 与 CreateInWindow 相同的锁序，冲突复查时排除自身。
func (r *GormReservationRepository) UpdateInWindow(ctx context.Context, reservation *domain.Reservation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table TableModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&table, reservation.TableID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return errors.Wrap(err, "failed to lock table row")
		}

		from, to := reservation.Window()
		count, err := countActiveInWindow(tx, reservation.TableID, from, to, reservation.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrNoAvailability
		}

		res := tx.Model(&ReservationModel{}).
			Where("id = ?", reservation.ID).
			Updates(map[string]interface{}{
				"table_id":         reservation.TableID,
				"reservation_date": reservation.ReservationDate,
				"number_of_guests": reservation.NumberOfGuests,
				"special_requests": reservation.SpecialRequests,
			})
		if res.Error != nil {
			return errors.Wrap(res.Error, "failed to update reservation")
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// UpdateStatus 条件状态更新，当前状态已变时失败。
func (r *GormReservationRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status) error {
	res := r.db.WithContext(ctx).Model(&ReservationModel{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update reservation status")
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

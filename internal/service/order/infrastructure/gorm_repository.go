// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"bistro/internal/service/order/domain"
)

// GormOrderRepository 是 OrderRepository 的 GORM 实现。
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	model, items := FromDomainOrder(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return errors.Wrap(err, "failed to create order")
		}
		if err := tx.Create(&items).Error; err != nil {
			return errors.Wrap(err, "failed to create order items")
		}
		return nil
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find order")
	}
	var items []OrderItemModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).Order("id ASC").Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load order items")
	}
	return ToDomainOrder(&model, items), nil
}

func (r *GormOrderRepository) ListByCustomer(ctx context.Context, customerID string, page, size int) ([]*domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("order_date DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, ToDomainOrder(&models[i], nil))
	}
	return orders, nil
}

// UpdateStatus 以当前状态为守卫做条件更新。两个并发推进里
// 只有先提交的一方改到行，后到的守卫失配，RowsAffected 为 0。
// 进入终点状态时顺带释放骑手占位，同一事务提交。
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id string, from, to domain.Status, completedAt *time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": to}
		if completedAt != nil {
			updates["completed_at"] = *completedAt
		}
		res := tx.Model(&OrderModel{}).
			Where("id = ? AND status = ?", id, from).
			Updates(updates)
		if res.Error != nil {
			return errors.Wrap(res.Error, "failed to update order status")
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&OrderModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return errors.Wrap(err, "failed to check order existence")
			}
			if count == 0 {
				return domain.ErrNotFound
			}
			return domain.ErrInvalidTransition
		}

		if to == domain.StatusDelivered || to == domain.StatusCompleted || to == domain.StatusCancelled {
			if err := tx.Exec("DELETE FROM courier_active_deliveries WHERE order_id = ?", id).Error; err != nil {
				return errors.Wrap(err, "failed to release courier claim")
			}
		}
		return nil
	})
}

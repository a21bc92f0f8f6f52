// internal/service/delivery/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"bistro/internal/service/delivery/domain"
	orderdomain "bistro/internal/service/order/domain"
	orderinfra "bistro/internal/service/order/infrastructure"
)

// isDuplicateEntry 识别 MySQL 1062 唯一键冲突。
func isDuplicateEntry(err error) bool {
	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// GormDeliveryRepository 是 DeliveryRepository 的 GORM 实现。
type GormDeliveryRepository struct {
	db *gorm.DB
}

func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

func (r *GormDeliveryRepository) ListAvailable(ctx context.Context, page, size int) ([]*orderdomain.Order, error) {
	var models []orderinfra.OrderModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND type = ? AND delivery_person_id IS NULL",
			orderdomain.StatusReady, orderdomain.TypeDelivery).
		Order("order_date ASC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list available deliveries")
	}
	orders := make([]*orderdomain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, orderinfra.ToDomainOrder(&models[i], nil))
	}
	return orders, nil
}

// Claim 的原子性来自两道数据库约束加一次条件更新：
// 占位表主键挡住一骑手两单，order_id 唯一索引和
// 指派列的 IS NULL 守卫挡住两骑手一单。
// RowsAffected 为 0 时重读订单行，区分三种失败。
func (r *GormDeliveryRepository) Claim(ctx context.Context, orderID, courierID string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := CourierClaimModel{CourierID: courierID, OrderID: orderID, ClaimedAt: now}
		if err := tx.Create(&claim).Error; err != nil {
			if isDuplicateEntry(err) {
				// 1062 有两个来源：主键撞上是骑手忙，
				// order_id 唯一索引撞上是订单已被抢。
				var count int64
				if err := tx.Model(&CourierClaimModel{}).
					Where("courier_id = ?", courierID).Count(&count).Error; err != nil {
					return errors.Wrap(err, "failed to inspect claim conflict")
				}
				if count > 0 {
					return domain.ErrCourierBusy
				}
				return domain.ErrAlreadyAssigned
			}
			return errors.Wrap(err, "failed to insert courier claim")
		}

		res := tx.Model(&orderinfra.OrderModel{}).
			Where("id = ? AND status = ? AND type = ? AND delivery_person_id IS NULL",
				orderID, orderdomain.StatusReady, orderdomain.TypeDelivery).
			Updates(map[string]interface{}{
				"delivery_person_id": courierID,
				"status":             orderdomain.StatusOutForDelivery,
			})
		if res.Error != nil {
			return errors.Wrap(res.Error, "failed to assign order")
		}
		if res.RowsAffected == 0 {
			var order orderinfra.OrderModel
			if err := tx.Where("id = ?", orderID).First(&order).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrNotFound
				}
				return errors.Wrap(err, "failed to reload order")
			}
			if order.DeliveryPersonID.Valid {
				return domain.ErrAlreadyAssigned
			}
			return domain.ErrInvalidState
		}
		return nil
	})
}

func (r *GormDeliveryRepository) ActiveClaim(ctx context.Context, courierID string) (*domain.Claim, error) {
	var model CourierClaimModel
	err := r.db.WithContext(ctx).Where("courier_id = ?", courierID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to load courier claim")
	}
	return &domain.Claim{
		CourierID: model.CourierID,
		OrderID:   model.OrderID,
		ClaimedAt: model.ClaimedAt,
	}, nil
}

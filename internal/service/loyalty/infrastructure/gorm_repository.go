// internal/service/loyalty/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bistro/internal/service/loyalty/domain"
)

// isDuplicateEntry 识别 MySQL 1062 唯一键冲突。
func isDuplicateEntry(err error) bool {
	var mysqlErr *gomysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// sumBalance 在给定的 db/tx 上从流水推导余额：
// 未过期的正向流水 + 全部扣点流水（扣点本身是负数）。
func sumBalance(db *gorm.DB, customerID, restaurantID string, now time.Time) (int, error) {
	var balance int64
	err := db.Model(&LoyaltyPointModel{}).
		Select("COALESCE(SUM(points), 0)").
		Where("customer_id = ? AND restaurant_id = ?", customerID, restaurantID).
		Where("type = ? OR expires_at IS NULL OR expires_at > ?", domain.EntryRedeemed, now).
		Scan(&balance).Error
	if err != nil {
		return 0, errors.Wrap(err, "failed to sum ledger balance")
	}
	return int(balance), nil
}

// GormLedgerRepository 是 LedgerRepository 的 GORM 实现。
type GormLedgerRepository struct {
	db *gorm.DB
}

func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

func (r *GormLedgerRepository) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	if err := r.db.WithContext(ctx).Create(FromDomainEntry(entry)).Error; err != nil {
		return errors.Wrap(err, "failed to append ledger entry")
	}
	return nil
}

func (r *GormLedgerRepository) Balance(ctx context.Context, customerID, restaurantID string, now time.Time) (int, error) {
	return sumBalance(r.db.WithContext(ctx), customerID, restaurantID, now)
}

func (r *GormLedgerRepository) List(ctx context.Context, customerID, restaurantID string, page, size int) ([]*domain.LedgerEntry, error) {
	var models []LoyaltyPointModel
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND restaurant_id = ?", customerID, restaurantID).
		Order("earned_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list ledger entries")
	}
	entries := make([]*domain.LedgerEntry, 0, len(models))
	for i := range models {
		entries = append(entries, ToDomainEntry(&models[i]))
	}
	return entries, nil
}

// GormRewardRepository 是 RewardRepository 的 GORM 实现。
type GormRewardRepository struct {
	db *gorm.DB
}

func NewGormRewardRepository(db *gorm.DB) *GormRewardRepository {
	return &GormRewardRepository{db: db}
}

func (r *GormRewardRepository) FindByID(ctx context.Context, id int64) (*domain.Reward, error) {
	var model RewardModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find reward")
	}
	return ToDomainReward(&model), nil
}

func (r *GormRewardRepository) ListActive(ctx context.Context, restaurantID string, now time.Time) ([]*domain.Reward, error) {
	var models []RewardModel
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND is_active = ?", restaurantID, true).
		Where("start_date IS NULL OR start_date <= ?", now).
		Where("end_date IS NULL OR end_date >= ?", now).
		Where("max_redemptions IS NULL OR current_redemptions < max_redemptions").
		Order("points_required ASC").
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active rewards")
	}
	rewards := make([]*domain.Reward, 0, len(models))
	for i := range models {
		rewards = append(rewards, ToDomainReward(&models[i]))
	}
	return rewards, nil
}

// Redeem 把一次兑换的全部写入放进一个事务：
// 锁定奖励行复查上限，锁定客户账户锚点复查余额，
// 然后写兑换记录、写扣点流水、奖励计数 +1。
// 余额检查和扣点之间不存在窗口，经典的双花在这里不可能发生。
func (r *GormRewardRepository) Redeem(ctx context.Context, redemption *domain.RewardRedemption, now time.Time) (*domain.RewardRedemption, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rewardModel RewardModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&rewardModel, redemption.RewardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return errors.Wrap(err, "failed to lock reward row")
		}
		reward := ToDomainReward(&rewardModel)
		if err := reward.CanRedeem(now); err != nil {
			return err
		}

		// 账户锚点：每个 (customer, restaurant) 一行。
		// 先保证存在，再 FOR UPDATE，串行化同一客户在同一餐厅的并发兑换。
		anchor := LoyaltyAccountModel{
			CustomerID:   redemption.CustomerID,
			RestaurantID: reward.RestaurantID,
			CreatedAt:    now,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&anchor).Error; err != nil {
			return errors.Wrap(err, "failed to ensure loyalty account anchor")
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("customer_id = ? AND restaurant_id = ?", redemption.CustomerID, reward.RestaurantID).
			First(&LoyaltyAccountModel{}).Error; err != nil {
			return errors.Wrap(err, "failed to lock loyalty account anchor")
		}

		// 持有锚点锁之后重算余额，此时不可能再有并发扣点挤进来
		balance, err := sumBalance(tx, redemption.CustomerID, reward.RestaurantID, now)
		if err != nil {
			return err
		}
		if balance < reward.PointsRequired {
			return domain.ErrInsufficientPoints
		}

		if err := tx.Create(FromDomainRedemption(redemption)).Error; err != nil {
			if isDuplicateEntry(err) {
				return domain.ErrCodeCollision
			}
			return errors.Wrap(err, "failed to create redemption")
		}

		debit, err := domain.NewDebit(uuid.New().String(), redemption.CustomerID, reward.RestaurantID,
			reward.PointsRequired, "reward redemption "+redemption.CouponCode, now)
		if err != nil {
			return err
		}
		if err := tx.Create(FromDomainEntry(debit)).Error; err != nil {
			return errors.Wrap(err, "failed to append debit entry")
		}

		if err := tx.Model(&RewardModel{}).
			Where("id = ?", reward.ID).
			UpdateColumn("current_redemptions", gorm.Expr("current_redemptions + 1")).Error; err != nil {
			return errors.Wrap(err, "failed to increment redemption counter")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return redemption, nil
}

// GormRedemptionRepository 是 RedemptionRepository 的 GORM 实现。
type GormRedemptionRepository struct {
	db *gorm.DB
}

func NewGormRedemptionRepository(db *gorm.DB) *GormRedemptionRepository {
	return &GormRedemptionRepository{db: db}
}

func (r *GormRedemptionRepository) FindByCode(ctx context.Context, code string) (*domain.RewardRedemption, error) {
	var model RewardRedemptionModel
	err := r.db.WithContext(ctx).Where("coupon_code = ?", code).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find redemption")
	}
	return ToDomainRedemption(&model), nil
}

// Consume 用一次条件更新完成券的单次翻转。
// 两个并发核销只有一个能改到行，输家按行的当前状态拿到确切的失败原因。
func (r *GormRedemptionRepository) Consume(ctx context.Context, code, customerID string, now time.Time) (*domain.RewardRedemption, error) {
	res := r.db.WithContext(ctx).Model(&RewardRedemptionModel{}).
		Where("coupon_code = ? AND customer_id = ? AND is_used = ? AND expires_at > ?", code, customerID, false, now).
		Updates(map[string]interface{}{"is_used": true, "used_at": now})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "failed to consume coupon")
	}
	if res.RowsAffected == 0 {
		var model RewardRedemptionModel
		err := r.db.WithContext(ctx).
			Where("coupon_code = ? AND customer_id = ?", code, customerID).
			First(&model).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, errors.Wrap(err, "failed to inspect coupon")
		}
		if model.IsUsed {
			return nil, domain.ErrAlreadyUsed
		}
		return nil, domain.ErrExpired
	}

	var model RewardRedemptionModel
	if err := r.db.WithContext(ctx).Where("coupon_code = ?", code).First(&model).Error; err != nil {
		return nil, errors.Wrap(err, "failed to reload consumed coupon")
	}
	return ToDomainRedemption(&model), nil
}

// GormCodeRepository 是 CodeRepository 的 GORM 实现。
type GormCodeRepository struct {
	db *gorm.DB
}

func NewGormCodeRepository(db *gorm.DB) *GormCodeRepository {
	return &GormCodeRepository{db: db}
}

func (r *GormCodeRepository) FindByCode(ctx context.Context, code string) (*domain.LoyaltyCode, error) {
	var model LoyaltyCodeModel
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to find loyalty code")
	}
	return ToDomainCode(&model), nil
}

// Redeem 在一个事务里完成赠点码的条件计数和 Bonus 流水写入。
// 用量上限在 UPDATE 的 WHERE 里复查，最后一个名额只会被一个请求拿到。
func (r *GormCodeRepository) Redeem(ctx context.Context, code, customerID, entryID string, now time.Time) (*domain.LedgerEntry, error) {
	var entry *domain.LedgerEntry
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&LoyaltyCodeModel{}).
			Where("code = ? AND is_active = ? AND is_used = ? AND current_uses < max_uses", code, true, false).
			Where("expires_at IS NULL OR expires_at > ?", now).
			UpdateColumn("current_uses", gorm.Expr("current_uses + 1"))
		if res.Error != nil {
			return errors.Wrap(res.Error, "failed to claim loyalty code use")
		}
		if res.RowsAffected == 0 {
			var model LoyaltyCodeModel
			if err := tx.Where("code = ?", code).First(&model).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return domain.ErrNotFound
				}
				return errors.Wrap(err, "failed to inspect loyalty code")
			}
			if err := ToDomainCode(&model).CanRedeem(now); err != nil {
				return err
			}
			return domain.ErrInactive
		}

		var model LoyaltyCodeModel
		if err := tx.Where("code = ?", code).First(&model).Error; err != nil {
			return errors.Wrap(err, "failed to reload loyalty code")
		}
		// 一次性码在兑付的同时翻转使用标记
		if model.MaxUses == 1 {
			if err := tx.Model(&LoyaltyCodeModel{}).Where("id = ?", model.ID).
				Updates(map[string]interface{}{"is_used": true, "used_by": customerID}).Error; err != nil {
				return errors.Wrap(err, "failed to mark single-use code")
			}
		}

		restaurantID := ""
		if model.RestaurantID.Valid {
			restaurantID = model.RestaurantID.String
		}
		credited, err := domain.NewCredit(entryID, customerID, restaurantID,
			model.PointValue, domain.EntryBonus, "loyalty code "+code, now, nil)
		if err != nil {
			return err
		}
		if err := tx.Create(FromDomainEntry(credited)).Error; err != nil {
			return errors.Wrap(err, "failed to append bonus entry")
		}
		entry = credited
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

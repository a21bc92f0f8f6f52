// internal/service/loyalty/domain/repository.go
package domain

import (
	"context"
	"time"
)

// LedgerRepository 定义积分流水的持久化接口，由基础设施层实现。
type LedgerRepository interface {
	// Append 追加一条流水。流水不可更新不可删除。
	Append(ctx context.Context, entry *LedgerEntry) error

	// Balance 从流水推导余额：未过期的正向流水之和加上全部扣点流水。
	Balance(ctx context.Context, customerID, restaurantID string, now time.Time) (int, error)

	// List 按时间倒序分页返回流水。
	List(ctx context.Context, customerID, restaurantID string, page, size int) ([]*LedgerEntry, error)
}

// RewardRepository 定义奖励及兑换的持久化接口。
type RewardRepository interface {
	FindByID(ctx context.Context, id int64) (*Reward, error)
	ListActive(ctx context.Context, restaurantID string, now time.Time) ([]*Reward, error)

	// Redeem 在单个事务里完成一次兑换的全部写入：
	// 锁定奖励行并复查上限，锁定客户账户锚点并复查余额，
	// 写入兑换记录与扣点流水，奖励计数 +1。
	// 并发下输掉的一方得到 ErrInsufficientPoints 或 ErrRedemptionLimitReached，
	// 券码撞唯一索引返回 ErrCodeCollision。
	Redeem(ctx context.Context, redemption *RewardRedemption, now time.Time) (*RewardRedemption, error)
}

// RedemptionRepository 定义券的查找与核销接口。
type RedemptionRepository interface {
	FindByCode(ctx context.Context, code string) (*RewardRedemption, error)

	// Consume 对未使用、未过期且属于该客户的券做一次条件翻转。
	// 翻转失败时按当前行状态返回 ErrAlreadyUsed / ErrExpired / ErrNotFound。
	Consume(ctx context.Context, code, customerID string, now time.Time) (*RewardRedemption, error)
}

// CodeRepository 定义赠点码的兑付接口。
type CodeRepository interface {
	FindByCode(ctx context.Context, code string) (*LoyaltyCode, error)

	// Redeem 在单个事务里完成条件计数 +1（maxUses==1 时同时翻转 IsUsed）
	// 并写入对应的 Bonus 流水。
	Redeem(ctx context.Context, code, customerID, entryID string, now time.Time) (*LedgerEntry, error)
}

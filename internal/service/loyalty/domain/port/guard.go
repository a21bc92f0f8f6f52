// internal/service/loyalty/domain/port/guard.go
package port

import "context"

// GuardResult 是快速路径预扣的业务状态码。
type GuardResult int

const (
	GuardSoldOut GuardResult = 0 // 限量已抢完
	GuardOK      GuardResult = 1 // 预扣成功
)

// RedemptionGuard 是限量奖励的快速路径预扣。
// 只负责在热点场景下提前挡掉注定失败的请求，
// 最终的上限与余额校验仍然发生在数据库事务里。
type RedemptionGuard interface {
	// Prepare 初始化某个奖励的剩余名额。
	Prepare(ctx context.Context, rewardID int64, remaining int) error

	// Attempt 原子地扣减一个名额。
	Attempt(ctx context.Context, rewardID int64) (GuardResult, error)

	// Release 在数据库事务失败后归还名额。
	Release(ctx context.Context, rewardID int64) error
}

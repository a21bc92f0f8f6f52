// internal/service/loyalty/infrastructure/adapter/reward_redis_adapter.go
package adapter

import (
	"context"
	"fmt"

	"bistro/internal/pkg/redis"
	"bistro/internal/service/loyalty/domain/port"
)

const claimScriptName = "reward_claim"

// 原子地检查并扣减剩余名额。key 不存在视为未启用快速路径，直接放行。
const claimScriptSrc = `
local remaining = redis.call('GET', KEYS[1])
if remaining == false then
    return 1
end
if tonumber(remaining) <= 0 then
    return 0
end
redis.call('DECR', KEYS[1])
return 1
`

// RewardRedisAdapter 是 port.RedemptionGuard 的 redis 实现。
// 限量奖励开抢时先在 redis 里扣名额，把注定失败的请求挡在数据库事务之外。
// 名额只是预估，最终上限仍由数据库事务里的条件检查保证。
type RewardRedisAdapter struct {
	client *redis.Client
}

// NewRewardRedisAdapter 创建一个快速路径适配器。
func NewRewardRedisAdapter(client *redis.Client) *RewardRedisAdapter {
	client.RegisterScript(claimScriptName, claimScriptSrc)
	return &RewardRedisAdapter{client: client}
}

func stockKey(rewardID int64) string {
	return fmt.Sprintf("reward:stock:{%d}", rewardID)
}

// Prepare 初始化某个奖励的剩余名额。
func (a *RewardRedisAdapter) Prepare(ctx context.Context, rewardID int64, remaining int) error {
	if err := a.client.GetClient().Set(ctx, stockKey(rewardID), remaining, 0).Err(); err != nil {
		return fmt.Errorf("failed to prepare reward stock: %w", err)
	}
	return nil
}

// Attempt 扣减一个名额。
func (a *RewardRedisAdapter) Attempt(ctx context.Context, rewardID int64) (port.GuardResult, error) {
	result, err := a.client.RunScript(ctx, claimScriptName, []string{stockKey(rewardID)})
	if err != nil {
		return port.GuardSoldOut, fmt.Errorf("failed to run claim script: %w", err)
	}
	code, ok := result.(int64)
	if !ok {
		return port.GuardSoldOut, fmt.Errorf("unexpected result type from claim script: %T", result)
	}
	return port.GuardResult(code), nil
}

// Release 在数据库事务失败后归还名额。
func (a *RewardRedisAdapter) Release(ctx context.Context, rewardID int64) error {
	return a.client.GetClient().Incr(ctx, stockKey(rewardID)).Err()
}

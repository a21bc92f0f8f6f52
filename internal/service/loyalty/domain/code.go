// internal/service/loyalty/domain/code.go
package domain

import "time"

// LoyaltyCode 是管理员批量发放的赠点码。
// 兑付一次产生一条 Bonus 流水；maxUses==1 的码在兑付时同时翻转 IsUsed。
type LoyaltyCode struct {
	ID           int64
	Code         string
	PointValue   int
	RestaurantID *string // 为空表示全平台通用
	MaxUses      int
	CurrentUses  int
	IsActive     bool
	ExpiresAt    *time.Time
	IsUsed       bool
	UsedBy       *string
}

// CanRedeem 检查赠点码在 now 时刻是否还能兑付。
func (c *LoyaltyCode) CanRedeem(now time.Time) error {
	if !c.IsActive || c.IsUsed {
		return ErrInactive
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return ErrExpired
	}
	if c.CurrentUses >= c.MaxUses {
		return ErrRedemptionLimitReached
	}
	return nil
}

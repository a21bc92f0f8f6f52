// internal/service/loyalty/domain/reward.go
package domain

import "time"

// Reward 是餐厅配置的可兑换奖励。
// DiscountAmount 与 DiscountPercentage 二选一。
type Reward struct {
	ID                 int64
	RestaurantID       string
	Name               string
	Description        string
	PointsRequired     int
	DiscountAmount     *float64
	DiscountPercentage *int // 1–100
	IsActive           bool
	StartDate          *time.Time
	EndDate            *time.Time
	MaxRedemptions     *int
	CurrentRedemptions int
	// 可选的 CEL 资格表达式，空串表示无附加条件
	EligibilityRule string
}

// Discount 是券兑付时应用的折扣，金额与百分比互斥。
type Discount struct {
	Amount     float64
	Percentage int
}

// Validate 校验奖励定义本身的合法性。
func (r *Reward) Validate() error {
	if r.PointsRequired <= 0 {
		return ErrValidation
	}
	hasAmount := r.DiscountAmount != nil
	hasPercent := r.DiscountPercentage != nil
	if hasAmount == hasPercent {
		return ErrValidation
	}
	if hasPercent && (*r.DiscountPercentage < 1 || *r.DiscountPercentage > 100) {
		return ErrValidation
	}
	return nil
}

// CanRedeem 检查奖励在 now 时刻是否可被兑换。
func (r *Reward) CanRedeem(now time.Time) error {
	if !r.IsActive {
		return ErrInactive
	}
	if r.StartDate != nil && now.Before(*r.StartDate) {
		return ErrInactive
	}
	if r.EndDate != nil && now.After(*r.EndDate) {
		return ErrExpired
	}
	if r.MaxRedemptions != nil && r.CurrentRedemptions >= *r.MaxRedemptions {
		return ErrRedemptionLimitReached
	}
	return nil
}

// Discount 返回该奖励对应的折扣。
func (r *Reward) Discount() Discount {
	if r.DiscountAmount != nil {
		return Discount{Amount: *r.DiscountAmount}
	}
	if r.DiscountPercentage != nil {
		return Discount{Percentage: *r.DiscountPercentage}
	}
	return Discount{}
}

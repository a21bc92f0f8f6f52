// internal/service/loyalty/domain/redemption.go
package domain

import (
	"crypto/rand"
	"fmt"
	"time"
)

// RedemptionValidity 是兑换产生的券的有效期。
const RedemptionValidity = 30 * 24 * time.Hour

// RewardRedemption 是一次奖励兑换及其产出的单次使用券。
// IsUsed 只允许翻转一次，由存储层的条件更新保证。
type RewardRedemption struct {
	ID          string
	CustomerID  string
	RewardID    int64
	PointsSpent int
	CouponCode  string
	RedeemedAt  time.Time
	ExpiresAt   time.Time
	IsUsed      bool
	UsedAt      *time.Time
}

// Usable 判断券在 now 时刻是否还能被核销。
func (r *RewardRedemption) Usable(now time.Time) error {
	if r.IsUsed {
		return ErrAlreadyUsed
	}
	if now.After(r.ExpiresAt) {
		return ErrExpired
	}
	return nil
}

const (
	couponPrefix  = "CPT-"
	couponCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	couponLength  = 10
)

// GenerateCouponCode 生成一个 CPT- 前缀、10 位大写字母数字的券码。
// 撞码概率在预期规模下可以忽略，但唯一性最终由存储的唯一索引兜底。
func GenerateCouponCode() (string, error) {
	buf := make([]byte, couponLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate coupon code: %w", err)
	}
	for i, b := range buf {
		buf[i] = couponCharset[int(b)%len(couponCharset)]
	}
	return couponPrefix + string(buf), nil
}

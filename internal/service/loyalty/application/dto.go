// internal/service/loyalty/application/dto.go
package application

import (
	"time"

	"bistro/internal/service/loyalty/domain"
)

// CreditRequest 是积分入账的应用层请求。
type CreditRequest struct {
	CustomerID   string           `json:"customer_id"`
	RestaurantID string           `json:"restaurant_id"`
	Points       int              `json:"points"`
	Type         domain.EntryType `json:"type"`
	Reason       string           `json:"reason"`
	ExpiresAt    *time.Time       `json:"expires_at,omitempty"`
}

// DebitRequest 是积分扣减的应用层请求。
// 余额充足性由调用方在自己的原子单元内保证。
type DebitRequest struct {
	CustomerID   string `json:"customer_id"`
	RestaurantID string `json:"restaurant_id"`
	Points       int    `json:"points"`
	Reason       string `json:"reason"`
}

// RedeemResponse 返回给调用方的兑换结果。
type RedeemResponse struct {
	RedemptionID string    `json:"redemption_id"`
	CouponCode   string    `json:"coupon_code"`
	PointsSpent  int       `json:"points_spent"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// DiscountResponse 是券核销后返回的折扣描述。
type DiscountResponse struct {
	Amount     float64 `json:"amount,omitempty"`
	Percentage int     `json:"percentage,omitempty"`
}

// internal/service/order/domain/port/coupon.go
package port

import "context"

// CouponDiscount 是核销后得到的折扣描述，金额与百分比二选一。
type CouponDiscount struct {
	Amount     float64
	Percentage int
}

// CouponRedeemer 核销一张券并返回其折扣，同一张券第二次核销会失败。
type CouponRedeemer interface {
	Consume(ctx context.Context, code, customerID string) (*CouponDiscount, error)
}

// PointsAccruer 在订单完成时入账积分。
type PointsAccruer interface {
	AccrueOrderPoints(ctx context.Context, customerID, restaurantID string, points int) error
}

// internal/service/order/infrastructure/adapter/loyalty_adapter.go
package adapter

import (
	"context"
	"time"

	"github.com/pkg/errors"

	loyaltyapp "bistro/internal/service/loyalty/application"
	loyaltydomain "bistro/internal/service/loyalty/domain"
	"bistro/internal/service/order/domain"
	"bistro/internal/service/order/domain/port"
)

// LoyaltyAdapter 把订单侧的券核销与积分入账桥接到积分服务。
// 两个服务跑在同一进程里，走进程内调用而不是 HTTP。
type LoyaltyAdapter struct {
	rewards *loyaltyapp.RewardService
	ledger  *loyaltyapp.LedgerService
}

func NewLoyaltyAdapter(rewards *loyaltyapp.RewardService, ledger *loyaltyapp.LedgerService) *LoyaltyAdapter {
	return &LoyaltyAdapter{rewards: rewards, ledger: ledger}
}

func (a *LoyaltyAdapter) Consume(ctx context.Context, code, customerID string) (*port.CouponDiscount, error) {
	discount, err := a.rewards.ConsumeCoupon(ctx, code, customerID)
	if err != nil {
		return nil, translateCouponErr(err)
	}
	return &port.CouponDiscount{Amount: discount.Amount, Percentage: discount.Percentage}, nil
}

func (a *LoyaltyAdapter) AccrueOrderPoints(ctx context.Context, customerID, restaurantID string, points int) error {
	expiresAt := time.Now().Add(domain.AccrualExpiry)
	_, err := a.ledger.Credit(ctx, &loyaltyapp.CreditRequest{
		CustomerID:   customerID,
		RestaurantID: restaurantID,
		Points:       points,
		Type:         loyaltydomain.EntryEarned,
		Reason:       "order completed",
		ExpiresAt:    &expiresAt,
	})
	return err
}

// translateCouponErr 把积分侧的哨兵错误翻译成订单侧的语义。
// 已用 / 过期的券保留原始错误，HTTP 层按 422 报出。
func translateCouponErr(err error) error {
	if errors.Is(err, loyaltydomain.ErrNotFound) {
		return errors.Wrap(domain.ErrNotFound, "coupon")
	}
	return err
}

// internal/service/loyalty/application/reward_service.go
package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/metrics"
	"bistro/internal/service/loyalty/domain"
	"bistro/internal/service/loyalty/domain/port"
)

// 券码撞唯一索引时的重试次数。撞码概率本身可以忽略，兜底而已。
const couponCodeRetries = 3

// RewardService 是奖励兑换引擎：花掉台账余额，发出单次使用券。
type RewardService struct {
	rewardRepo     domain.RewardRepository
	redemptionRepo domain.RedemptionRepository
	ledgerRepo     domain.LedgerRepository
	ruleEngine     port.RuleEngine      // 可为 nil，表示不启用资格规则
	guard          port.RedemptionGuard // 可为 nil，表示不启用快速路径
	tracer         trace.Tracer
}

// NewRewardService 创建一个新的兑换引擎实例。
func NewRewardService(rewardRepo domain.RewardRepository, redemptionRepo domain.RedemptionRepository,
	ledgerRepo domain.LedgerRepository, ruleEngine port.RuleEngine, guard port.RedemptionGuard,
	tracer trace.Tracer) *RewardService {
	return &RewardService{
		rewardRepo:     rewardRepo,
		redemptionRepo: redemptionRepo,
		ledgerRepo:     ledgerRepo,
		ruleEngine:     ruleEngine,
		guard:          guard,
		tracer:         tracer,
	}
}

// Redeem 用客户的积分兑换一个奖励，发出一张券。
// 这里的校验只是预检，事务内仓储会对上限与余额做最终复查，
// 两个并发请求不可能都通过同一份积分的余额检查。
func (s *RewardService) Redeem(ctx context.Context, rewardID int64, customerID string) (*domain.RewardRedemption, error) {
	ctx, span := s.tracer.Start(ctx, "loyalty.Redeem")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("reward.id", rewardID),
		attribute.String("customer.id", customerID),
	)

	now := time.Now()

	reward, err := s.rewardRepo.FindByID(ctx, rewardID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := reward.CanRedeem(now); err != nil {
		span.RecordError(err)
		return nil, err
	}

	balance, err := s.ledgerRepo.Balance(ctx, customerID, reward.RestaurantID, now)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if balance < reward.PointsRequired {
		return nil, domain.ErrInsufficientPoints
	}

	if s.ruleEngine != nil && reward.EligibilityRule != "" {
		ok, err := s.ruleEngine.Evaluate(reward.EligibilityRule, port.Fact{
			CustomerID:   customerID,
			RestaurantID: reward.RestaurantID,
			Balance:      balance,
		})
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if !ok {
			return nil, domain.ErrNotEligible
		}
	}

	// 限量奖励先走快速路径预扣，热点场景下挡掉注定失败的事务
	guarded := s.guard != nil && reward.MaxRedemptions != nil
	if guarded {
		result, err := s.guard.Attempt(ctx, rewardID)
		if err != nil {
			// 快速路径不可用不阻塞兑换，数据库事务仍会兜底
			logger.Ctx(ctx).Warn().Err(err).Int64("reward_id", rewardID).Msg("redemption guard unavailable")
			guarded = false
		} else if result == port.GuardSoldOut {
			return nil, domain.ErrRedemptionLimitReached
		}
	}

	redemption, err := s.redeemWithFreshCode(ctx, reward, customerID, now)
	if err != nil {
		if guarded {
			if releaseErr := s.guard.Release(ctx, rewardID); releaseErr != nil {
				logger.Ctx(ctx).Warn().Err(releaseErr).Int64("reward_id", rewardID).Msg("failed to release guard slot")
			}
		}
		span.RecordError(err)
		return nil, err
	}

	metrics.RewardRedemptions.Inc()
	logger.Ctx(ctx).Info().
		Str("customer_id", customerID).
		Int64("reward_id", rewardID).
		Str("coupon_code", redemption.CouponCode).
		Int("points_spent", redemption.PointsSpent).
		Msg("reward redeemed")
	return redemption, nil
}

func (s *RewardService) redeemWithFreshCode(ctx context.Context, reward *domain.Reward, customerID string, now time.Time) (*domain.RewardRedemption, error) {
	var lastErr error
	for i := 0; i < couponCodeRetries; i++ {
		code, err := domain.GenerateCouponCode()
		if err != nil {
			return nil, err
		}
		redemption := &domain.RewardRedemption{
			ID:          uuid.New().String(),
			CustomerID:  customerID,
			RewardID:    reward.ID,
			PointsSpent: reward.PointsRequired,
			CouponCode:  code,
			RedeemedAt:  now,
			ExpiresAt:   now.Add(domain.RedemptionValidity),
		}
		created, err := s.rewardRepo.Redeem(ctx, redemption, now)
		if err == nil {
			return created, nil
		}
		if !errors.Is(err, domain.ErrCodeCollision) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// ConsumeCoupon 核销一张券并返回其折扣。
// 翻转是存储层的单次条件更新，第二次核销必然失败。
func (s *RewardService) ConsumeCoupon(ctx context.Context, code, customerID string) (domain.Discount, error) {
	ctx, span := s.tracer.Start(ctx, "loyalty.ConsumeCoupon")
	defer span.End()
	span.SetAttributes(attribute.String("coupon.code", code))

	redemption, err := s.redemptionRepo.Consume(ctx, code, customerID, time.Now())
	if err != nil {
		span.RecordError(err)
		return domain.Discount{}, err
	}

	reward, err := s.rewardRepo.FindByID(ctx, redemption.RewardID)
	if err != nil {
		span.RecordError(err)
		return domain.Discount{}, err
	}

	metrics.CouponsConsumed.Inc()
	logger.Ctx(ctx).Info().
		Str("customer_id", customerID).
		Str("coupon_code", code).
		Msg("coupon consumed")
	return reward.Discount(), nil
}

// ListRewards 返回餐厅当前可兑换的奖励。
func (s *RewardService) ListRewards(ctx context.Context, restaurantID string) ([]*domain.Reward, error) {
	ctx, span := s.tracer.Start(ctx, "loyalty.ListRewards")
	defer span.End()
	return s.rewardRepo.ListActive(ctx, restaurantID, time.Now())
}

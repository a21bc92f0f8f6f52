// internal/service/loyalty/application/ledger_service.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"bistro/internal/pkg/logger"
	"bistro/internal/service/loyalty/domain"
)

// LedgerService 实现积分台账的所有用例。
// 台账只追加；余额永远从流水推导。
type LedgerService struct {
	ledgerRepo domain.LedgerRepository
	codeRepo   domain.CodeRepository
	tracer     trace.Tracer
}

// NewLedgerService 创建一个新的台账服务实例。
func NewLedgerService(ledgerRepo domain.LedgerRepository, codeRepo domain.CodeRepository, tracer trace.Tracer) *LedgerService {
	return &LedgerService{ledgerRepo: ledgerRepo, codeRepo: codeRepo, tracer: tracer}
}

// Balance 返回某客户在某餐厅的当前可用积分。
func (s *LedgerService) Balance(ctx context.Context, customerID, restaurantID string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "loyalty.Balance")
	defer span.End()

	balance, err := s.ledgerRepo.Balance(ctx, customerID, restaurantID, time.Now())
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	span.SetAttributes(attribute.Int("loyalty.balance", balance))
	return balance, nil
}

// Credit 追加一条正向流水。
func (s *LedgerService) Credit(ctx context.Context, req *CreditRequest) (*domain.LedgerEntry, error) {
	ctx, span := s.tracer.Start(ctx, "loyalty.Credit")
	defer span.End()

	entry, err := domain.NewCredit(uuid.New().String(), req.CustomerID, req.RestaurantID,
		req.Points, req.Type, req.Reason, time.Now(), req.ExpiresAt)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.ledgerRepo.Append(ctx, entry); err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("customer_id", req.CustomerID).
		Str("restaurant_id", req.RestaurantID).
		Int("points", req.Points).
		Str("type", string(req.Type)).
		Msg("loyalty points credited")
	return entry, nil
}

// Debit 追加一条扣点流水。不复查余额，单写者纪律由兑换引擎保证。
func (s *LedgerService) Debit(ctx context.Context, req *DebitRequest) (*domain.LedgerEntry, error) {
	ctx, span := s.tracer.Start(ctx, "loyalty.Debit")
	defer span.End()

	entry, err := domain.NewDebit(uuid.New().String(), req.CustomerID, req.RestaurantID,
		req.Points, req.Reason, time.Now())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.ledgerRepo.Append(ctx, entry); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return entry, nil
}

// RedeemCode 兑付一个赠点码，成功后返回产生的 Bonus 流水。
// 计数与流水写入在仓储的同一个事务里完成，超发的并发请求会在条件更新上失败。
func (s *LedgerService) RedeemCode(ctx context.Context, code, customerID string) (*domain.LedgerEntry, error) {
	ctx, span := s.tracer.Start(ctx, "loyalty.RedeemCode")
	defer span.End()
	span.SetAttributes(attribute.String("loyalty.code", code))

	entry, err := s.codeRepo.Redeem(ctx, code, customerID, uuid.New().String(), time.Now())
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("customer_id", customerID).
		Str("code", code).
		Int("points", entry.Points).
		Msg("loyalty code redeemed")
	return entry, nil
}

// History 分页返回客户在某餐厅的积分流水。
func (s *LedgerService) History(ctx context.Context, customerID, restaurantID string, page, size int) ([]*domain.LedgerEntry, error) {
	ctx, span := s.tracer.Start(ctx, "loyalty.History")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.ledgerRepo.List(ctx, customerID, restaurantID, page, size)
}

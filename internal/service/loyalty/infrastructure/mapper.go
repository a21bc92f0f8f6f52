// internal/service/loyalty/infrastructure/mapper.go
package infrastructure

import (
	"database/sql"

	"bistro/internal/service/loyalty/domain"
)

// ToDomainEntry 将数据库模型转换为领域模型。
func ToDomainEntry(model *LoyaltyPointModel) *domain.LedgerEntry {
	if model == nil {
		return nil
	}
	entry := &domain.LedgerEntry{
		ID:           model.ID,
		CustomerID:   model.CustomerID,
		RestaurantID: model.RestaurantID,
		Points:       model.Points,
		Type:         model.Type,
		Reason:       model.Reason,
		EarnedAt:     model.EarnedAt,
	}
	if model.ExpiresAt.Valid {
		t := model.ExpiresAt.Time
		entry.ExpiresAt = &t
	}
	return entry
}

// FromDomainEntry 将领域模型转换为数据库模型（用于插入）。
func FromDomainEntry(entry *domain.LedgerEntry) *LoyaltyPointModel {
	model := &LoyaltyPointModel{
		ID:           entry.ID,
		CustomerID:   entry.CustomerID,
		RestaurantID: entry.RestaurantID,
		Points:       entry.Points,
		Type:         entry.Type,
		Reason:       entry.Reason,
		EarnedAt:     entry.EarnedAt,
	}
	if entry.ExpiresAt != nil {
		model.ExpiresAt = sql.NullTime{Time: *entry.ExpiresAt, Valid: true}
	}
	return model
}

// ToDomainReward 将数据库模型转换为领域模型。
func ToDomainReward(model *RewardModel) *domain.Reward {
	if model == nil {
		return nil
	}
	reward := &domain.Reward{
		ID:                 model.ID,
		RestaurantID:       model.RestaurantID,
		Name:               model.Name,
		Description:        model.Description,
		PointsRequired:     model.PointsRequired,
		IsActive:           model.IsActive,
		CurrentRedemptions: model.CurrentRedemptions,
		EligibilityRule:    model.EligibilityRule,
	}
	if model.DiscountAmount.Valid {
		v := model.DiscountAmount.Float64
		reward.DiscountAmount = &v
	}
	if model.DiscountPercentage.Valid {
		v := int(model.DiscountPercentage.Int32)
		reward.DiscountPercentage = &v
	}
	if model.StartDate.Valid {
		t := model.StartDate.Time
		reward.StartDate = &t
	}
	if model.EndDate.Valid {
		t := model.EndDate.Time
		reward.EndDate = &t
	}
	if model.MaxRedemptions.Valid {
		v := int(model.MaxRedemptions.Int32)
		reward.MaxRedemptions = &v
	}
	return reward
}

// ToDomainRedemption 将数据库模型转换为领域模型。
func ToDomainRedemption(model *RewardRedemptionModel) *domain.RewardRedemption {
	if model == nil {
		return nil
	}
	redemption := &domain.RewardRedemption{
		ID:          model.ID,
		CustomerID:  model.CustomerID,
		RewardID:    model.RewardID,
		PointsSpent: model.PointsSpent,
		CouponCode:  model.CouponCode,
		RedeemedAt:  model.RedeemedAt,
		ExpiresAt:   model.ExpiresAt,
		IsUsed:      model.IsUsed,
	}
	if model.UsedAt.Valid {
		t := model.UsedAt.Time
		redemption.UsedAt = &t
	}
	return redemption
}

// FromDomainRedemption 将领域模型转换为数据库模型（用于插入）。
func FromDomainRedemption(r *domain.RewardRedemption) *RewardRedemptionModel {
	model := &RewardRedemptionModel{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		RewardID:    r.RewardID,
		PointsSpent: r.PointsSpent,
		CouponCode:  r.CouponCode,
		RedeemedAt:  r.RedeemedAt,
		ExpiresAt:   r.ExpiresAt,
		IsUsed:      r.IsUsed,
	}
	if r.UsedAt != nil {
		model.UsedAt = sql.NullTime{Time: *r.UsedAt, Valid: true}
	}
	return model
}

// ToDomainCode 将数据库模型转换为领域模型。
func ToDomainCode(model *LoyaltyCodeModel) *domain.LoyaltyCode {
	if model == nil {
		return nil
	}
	code := &domain.LoyaltyCode{
		ID:          model.ID,
		Code:        model.Code,
		PointValue:  model.PointValue,
		MaxUses:     model.MaxUses,
		CurrentUses: model.CurrentUses,
		IsActive:    model.IsActive,
		IsUsed:      model.IsUsed,
	}
	if model.RestaurantID.Valid {
		v := model.RestaurantID.String
		code.RestaurantID = &v
	}
	if model.ExpiresAt.Valid {
		t := model.ExpiresAt.Time
		code.ExpiresAt = &t
	}
	if model.UsedBy.Valid {
		v := model.UsedBy.String
		code.UsedBy = &v
	}
	return code
}

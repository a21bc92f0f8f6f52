// internal/service/loyalty/infrastructure/models.go
package infrastructure

import (
	"database/sql"
	"time"

	"bistro/internal/service/loyalty/domain"
)

// LoyaltyPointModel 对应 loyalty_points 表。只插入，永不更新。
type LoyaltyPointModel struct {
	ID           string           `gorm:"primaryKey;size:36"`
	CustomerID   string           `gorm:"size:36;index:idx_customer_restaurant"`
	RestaurantID string           `gorm:"size:36;index:idx_customer_restaurant"`
	Points       int              `gorm:"not null"`
	Type         domain.EntryType `gorm:"size:16;not null"`
	Reason       string           `gorm:"size:255"`
	EarnedAt     time.Time
	ExpiresAt    sql.NullTime
}

func (LoyaltyPointModel) TableName() string {
	return "loyalty_points"
}

// RewardModel 对应 rewards 表。
type RewardModel struct {
	ID                 int64  `gorm:"primaryKey;autoIncrement"`
	RestaurantID       string `gorm:"size:36;index"`
	Name               string `gorm:"size:128"`
	Description        string `gorm:"size:512"`
	PointsRequired     int
	DiscountAmount     sql.NullFloat64 `gorm:"type:decimal(10,2)"`
	DiscountPercentage sql.NullInt32
	IsActive           bool
	StartDate          sql.NullTime
	EndDate            sql.NullTime
	MaxRedemptions     sql.NullInt32
	CurrentRedemptions int
	EligibilityRule    string `gorm:"type:text"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (RewardModel) TableName() string {
	return "rewards"
}

// RewardRedemptionModel 对应 reward_redemptions 表。
// coupon_code 上的唯一索引是券码全局唯一的最终保证。
type RewardRedemptionModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	CustomerID  string `gorm:"size:36;index"`
	RewardID    int64  `gorm:"index"`
	PointsSpent int
	CouponCode  string `gorm:"size:16;uniqueIndex"`
	RedeemedAt  time.Time
	ExpiresAt   time.Time
	IsUsed      bool `gorm:"default:false"`
	UsedAt      sql.NullTime
}

func (RewardRedemptionModel) TableName() string {
	return "reward_redemptions"
}

// LoyaltyCodeModel 对应 loyalty_codes 表。
type LoyaltyCodeModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Code         string `gorm:"size:64;uniqueIndex"`
	PointValue   int
	RestaurantID sql.NullString `gorm:"size:36"`
	MaxUses      int
	CurrentUses  int
	IsActive     bool
	ExpiresAt    sql.NullTime
	IsUsed       bool `gorm:"default:false"`
	UsedBy       sql.NullString `gorm:"size:36"`
	CreatedAt    time.Time
}

func (LoyaltyCodeModel) TableName() string {
	return "loyalty_codes"
}

// LoyaltyAccountModel 对应 loyalty_accounts 表。
// 每个 (customer, restaurant) 一行，纯粹作为兑换事务的 FOR UPDATE 锁锚点，
// 不存余额，也没有任何读取方。
type LoyaltyAccountModel struct {
	CustomerID   string `gorm:"primaryKey;size:36"`
	RestaurantID string `gorm:"primaryKey;size:36"`
	CreatedAt    time.Time
}

func (LoyaltyAccountModel) TableName() string {
	return "loyalty_accounts"
}

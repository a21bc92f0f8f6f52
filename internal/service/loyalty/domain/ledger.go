// internal/service/loyalty/domain/ledger.go
package domain

import "time"

// EntryType 区分积分流水的三种来源。
type EntryType string

const (
	EntryEarned   EntryType = "EARNED"   // 订单完成返点
	EntryBonus    EntryType = "BONUS"    // 活动码赠点
	EntryRedeemed EntryType = "REDEEMED" // 兑换扣点
)

// LedgerEntry 是一条不可变的积分流水。
// 只追加，不更新不删除；余额永远由流水推导，不单独落库。
type LedgerEntry struct {
	ID           string
	CustomerID   string
	RestaurantID string
	// Earned/Bonus 为正，Redeemed 为负
	Points    int
	Type      EntryType
	Reason    string
	EarnedAt  time.Time
	ExpiresAt *time.Time
}

// NewCredit 构造一条正向流水。points 必须大于 0。
func NewCredit(id, customerID, restaurantID string, points int, entryType EntryType, reason string, now time.Time, expiresAt *time.Time) (*LedgerEntry, error) {
	if points <= 0 {
		return nil, ErrValidation
	}
	if entryType != EntryEarned && entryType != EntryBonus {
		return nil, ErrValidation
	}
	return &LedgerEntry{
		ID:           id,
		CustomerID:   customerID,
		RestaurantID: restaurantID,
		Points:       points,
		Type:         entryType,
		Reason:       reason,
		EarnedAt:     now,
		ExpiresAt:    expiresAt,
	}, nil
}

// NewDebit 构造一条扣点流水，points 传正数，内部取负。
// 余额是否充足由调用方（兑换引擎）在同一个原子单元里保证，这里不再复查。
func NewDebit(id, customerID, restaurantID string, points int, reason string, now time.Time) (*LedgerEntry, error) {
	if points <= 0 {
		return nil, ErrValidation
	}
	return &LedgerEntry{
		ID:           id,
		CustomerID:   customerID,
		RestaurantID: restaurantID,
		Points:       -points,
		Type:         EntryRedeemed,
		Reason:       reason,
		EarnedAt:     now,
	}, nil
}

// Expired 判断一条正向流水在 now 时刻是否已过期。
func (e *LedgerEntry) Expired(now time.Time) bool {
	if e.Type == EntryRedeemed || e.ExpiresAt == nil {
		return false
	}
	return !e.ExpiresAt.After(now)
}

// internal/service/loyalty/domain/loyalty_test.go
package domain

import (
	"regexp"
	"testing"
	"time"
)

func TestNewCredit(t *testing.T) {
	now := time.Now()
	entry, err := NewCredit("id", "c", "r", 100, EntryEarned, "order completed", now, nil)
	if err != nil {
		t.Fatalf("NewCredit: %v", err)
	}
	if entry.Points != 100 || entry.Type != EntryEarned {
		t.Errorf("entry = %+v", entry)
	}

	if _, err := NewCredit("id", "c", "r", 0, EntryEarned, "", now, nil); err != ErrValidation {
		t.Errorf("zero points error = %v, want ErrValidation", err)
	}
	if _, err := NewCredit("id", "c", "r", -5, EntryBonus, "", now, nil); err != ErrValidation {
		t.Errorf("negative points error = %v, want ErrValidation", err)
	}
	if _, err := NewCredit("id", "c", "r", 5, EntryRedeemed, "", now, nil); err != ErrValidation {
		t.Errorf("redeemed credit error = %v, want ErrValidation", err)
	}
}

func TestNewDebitStoresNegative(t *testing.T) {
	entry, err := NewDebit("id", "c", "r", 300, "reward", time.Now())
	if err != nil {
		t.Fatalf("NewDebit: %v", err)
	}
	if entry.Points != -300 || entry.Type != EntryRedeemed {
		t.Errorf("debit entry = %+v, want points -300 type REDEEMED", entry)
	}
	if _, err := NewDebit("id", "c", "r", 0, "", time.Now()); err != ErrValidation {
		t.Errorf("zero debit error = %v, want ErrValidation", err)
	}
}

func TestEntryExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name  string
		entry LedgerEntry
		want  bool
	}{
		{"no expiry", LedgerEntry{Type: EntryEarned}, false},
		{"future expiry", LedgerEntry{Type: EntryEarned, ExpiresAt: &future}, false},
		{"past expiry", LedgerEntry{Type: EntryEarned, ExpiresAt: &past}, true},
		{"debit never expires", LedgerEntry{Type: EntryRedeemed, ExpiresAt: &past}, false},
	}
	for _, tt := range tests {
		if got := tt.entry.Expired(now); got != tt.want {
			t.Errorf("%s: Expired() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCouponCodeFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^CPT-[A-Z0-9]{10}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateCouponCode()
		if err != nil {
			t.Fatalf("GenerateCouponCode: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("code %q does not match CPT-[A-Z0-9]{10}", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code generated: %q", code)
		}
		seen[code] = true
	}
}

func TestRewardValidate(t *testing.T) {
	amount := 10.0
	percent := 25
	badPercent := 150

	tests := []struct {
		name   string
		reward Reward
		ok     bool
	}{
		{"amount discount", Reward{PointsRequired: 100, DiscountAmount: &amount}, true},
		{"percentage discount", Reward{PointsRequired: 100, DiscountPercentage: &percent}, true},
		{"both set", Reward{PointsRequired: 100, DiscountAmount: &amount, DiscountPercentage: &percent}, false},
		{"neither set", Reward{PointsRequired: 100}, false},
		{"zero points", Reward{PointsRequired: 0, DiscountAmount: &amount}, false},
		{"percentage out of range", Reward{PointsRequired: 100, DiscountPercentage: &badPercent}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reward.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestRewardCanRedeem(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	limit := 5

	tests := []struct {
		name   string
		reward Reward
		want   error
	}{
		{"active", Reward{IsActive: true}, nil},
		{"inactive", Reward{IsActive: false}, ErrInactive},
		{"not started", Reward{IsActive: true, StartDate: &future}, ErrInactive},
		{"ended", Reward{IsActive: true, EndDate: &past}, ErrExpired},
		{"limit reached", Reward{IsActive: true, MaxRedemptions: &limit, CurrentRedemptions: 5}, ErrRedemptionLimitReached},
		{"under limit", Reward{IsActive: true, MaxRedemptions: &limit, CurrentRedemptions: 4}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reward.CanRedeem(now); got != tt.want {
				t.Errorf("CanRedeem() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRedemptionUsable(t *testing.T) {
	now := time.Now()
	fresh := RewardRedemption{ExpiresAt: now.Add(24 * time.Hour)}
	if err := fresh.Usable(now); err != nil {
		t.Errorf("fresh coupon Usable() = %v, want nil", err)
	}
	used := RewardRedemption{IsUsed: true, ExpiresAt: now.Add(24 * time.Hour)}
	if err := used.Usable(now); err != ErrAlreadyUsed {
		t.Errorf("used coupon error = %v, want ErrAlreadyUsed", err)
	}
	expired := RewardRedemption{ExpiresAt: now.Add(-time.Hour)}
	if err := expired.Usable(now); err != ErrExpired {
		t.Errorf("expired coupon error = %v, want ErrExpired", err)
	}
}

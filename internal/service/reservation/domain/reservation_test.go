// internal/service/reservation/domain/reservation_test.go
package domain

import (
	"testing"
	"time"
)

func TestNewReservationValidation(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)

	if _, err := NewReservation("id", "c", "r", 1, future, 2, "", now); err != nil {
		t.Fatalf("valid reservation rejected: %v", err)
	}
	if _, err := NewReservation("id", "c", "r", 1, now.Add(-time.Hour), 2, "", now); err != ErrValidation {
		t.Errorf("past date error = %v, want ErrValidation", err)
	}
	if _, err := NewReservation("id", "c", "r", 1, now, 2, "", now); err != ErrValidation {
		t.Errorf("non-future date error = %v, want ErrValidation", err)
	}
	if _, err := NewReservation("id", "c", "r", 1, future, 0, "", now); err != ErrValidation {
		t.Errorf("zero guests error = %v, want ErrValidation", err)
	}
}

func TestWindow(t *testing.T) {
	date := time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC)
	r := Reservation{ReservationDate: date}
	from, to := r.Window()
	if !from.Equal(date.Add(-2 * time.Hour)) {
		t.Errorf("window start = %v, want %v", from, date.Add(-2*time.Hour))
	}
	if !to.Equal(date.Add(2 * time.Hour)) {
		t.Errorf("window end = %v, want %v", to, date.Add(2*time.Hour))
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStatusActive(t *testing.T) {
	if !StatusPending.Active() || !StatusConfirmed.Active() {
		t.Error("PENDING and CONFIRMED must occupy the conflict window")
	}
	if StatusCompleted.Active() || StatusCancelled.Active() {
		t.Error("terminal statuses must not occupy the conflict window")
	}
}

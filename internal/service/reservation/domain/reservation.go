// internal/service/reservation/domain/reservation.go
package domain

import "time"

// ConflictWindow 是预订时刻两侧的冲突半径：
// 同一张桌上两条活跃预订的时间间隔不得小于 2 倍窗口（4 小时）。
const ConflictWindow = 2 * time.Hour

// Status 是预订的生命周期状态。
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Active 判断该状态是否占用冲突窗口。
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransition 校验预订的状态流转。
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}

// Reservation 是一条桌位预订。
type Reservation struct {
	ID              string
	CustomerID      string
	RestaurantID    string
	TableID         int64
	ReservationDate time.Time
	NumberOfGuests  int
	Status          Status
	SpecialRequests string
	CreatedAt       time.Time
}

// NewReservation 构造一条待确认的预订。
func NewReservation(id, customerID, restaurantID string, tableID int64, date time.Time, guests int, specialRequests string, now time.Time) (*Reservation, error) {
	if !date.After(now) {
		return nil, ErrValidation
	}
	if guests < 1 {
		return nil, ErrValidation
	}
	return &Reservation{
		ID:              id,
		CustomerID:      customerID,
		RestaurantID:    restaurantID,
		TableID:         tableID,
		ReservationDate: date,
		NumberOfGuests:  guests,
		Status:          StatusPending,
		SpecialRequests: specialRequests,
		CreatedAt:       now,
	}, nil
}

// Window 返回该预订占用的冲突区间 [date-2h, date+2h]。
func (r *Reservation) Window() (time.Time, time.Time) {
	return r.ReservationDate.Add(-ConflictWindow), r.ReservationDate.Add(ConflictWindow)
}

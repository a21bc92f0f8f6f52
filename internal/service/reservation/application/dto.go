// internal/service/reservation/application/dto.go
package application

import "time"

// CreateReservationRequest 是创建预订的应用层请求。
// TableID 为 0 时由匹配器自动选桌。
type CreateReservationRequest struct {
	CustomerID      string    `json:"customer_id"`
	RestaurantID    string    `json:"restaurant_id"`
	ReservationDate time.Time `json:"reservation_date"`
	NumberOfGuests  int       `json:"number_of_guests"`
	TableID         int64     `json:"table_id,omitempty"`
	SpecialRequests string    `json:"special_requests,omitempty"`
}

// UpdateReservationRequest 是改期/改人数/改备注的应用层请求。
// 空值字段表示不改。
type UpdateReservationRequest struct {
	ReservationID   string     `json:"reservation_id"`
	CustomerID      string     `json:"customer_id"`
	ReservationDate *time.Time `json:"reservation_date,omitempty"`
	NumberOfGuests  *int       `json:"number_of_guests,omitempty"`
	SpecialRequests *string    `json:"special_requests,omitempty"`
}

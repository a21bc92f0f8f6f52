// internal/service/reservation/infrastructure/models.go
package infrastructure

import (
	"time"

	"bistro/internal/service/reservation/domain"
)

// TableModel 对应 tables 表。
// table_number 在未删除的同餐厅桌位内唯一。
type TableModel struct {
	ID           int64              `gorm:"primaryKey;autoIncrement"`
	RestaurantID string             `gorm:"size:36;uniqueIndex:idx_restaurant_table_number"`
	TableNumber  int                `gorm:"uniqueIndex:idx_restaurant_table_number"`
	Capacity     int                `gorm:"not null"`
	Status       domain.TableStatus `gorm:"size:16;default:'AVAILABLE'"`
	Location     string             `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (TableModel) TableName() string {
	return "tables"
}

// ReservationModel 对应 reservations 表。
// (table_id, reservation_date) 上的索引支撑窗口冲突查询。
type ReservationModel struct {
	ID              string        `gorm:"primaryKey;size:36"`
	CustomerID      string        `gorm:"size:36;index"`
	RestaurantID    string        `gorm:"size:36;index"`
	TableID         int64         `gorm:"index:idx_table_date"`
	ReservationDate time.Time     `gorm:"index:idx_table_date"`
	NumberOfGuests  int           `gorm:"not null"`
	Status          domain.Status `gorm:"size:16;default:'PENDING'"`
	SpecialRequests string        `gorm:"size:512"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (ReservationModel) TableName() string {
	return "reservations"
}

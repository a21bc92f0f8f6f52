// internal/service/order/infrastructure/models.go
package infrastructure

import (
	"database/sql"
	"time"

	"bistro/internal/service/order/domain"
)

// OrderModel 对应 orders 表。
type OrderModel struct {
	ID               string         `gorm:"primaryKey;size:36"`
	CustomerID       string         `gorm:"size:36;index"`
	RestaurantID     string         `gorm:"size:36;index"`
	TableID          sql.NullInt64  ``
	DeliveryPersonID sql.NullString `gorm:"size:36;index"`
	Type             domain.Type    `gorm:"size:16;not null"`
	Status           domain.Status  `gorm:"size:24;index;default:'PENDING'"`
	TotalAmount      float64        `gorm:"type:decimal(10,2)"`
	OrderDate        time.Time
	CompletedAt      sql.NullTime
	DeliveryAddress  string `gorm:"size:255"`
	CouponCode       string `gorm:"size:16"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel 对应 order_items 表。单价是下单时的快照。
type OrderItemModel struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	OrderID    string `gorm:"size:36;index"`
	MenuItemID int64
	Name       string  `gorm:"size:128"`
	Quantity   int     `gorm:"not null"`
	UnitPrice  float64 `gorm:"type:decimal(10,2)"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}

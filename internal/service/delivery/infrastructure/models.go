// internal/service/delivery/infrastructure/models.go
package infrastructure

import "time"

// CourierClaimModel 对应 courier_active_deliveries 表。
// courier_id 是主键：一个骑手至多一条活跃占位，重复插入
// 在数据库层直接失败。order_id 上的唯一索引挡住同一单被
// 两个骑手同时占位的另一半竞态。
type CourierClaimModel struct {
	CourierID string `gorm:"primaryKey;size:36"`
	OrderID   string `gorm:"size:36;uniqueIndex"`
	ClaimedAt time.Time
}

func (CourierClaimModel) TableName() string {
	return "courier_active_deliveries"
}

// internal/service/reservation/domain/table.go
package domain

// TableStatus 是桌位自身的状态开关，由店员维护。
// 某个时刻能不能订，则由预订窗口推导，不落在这个字段上。
type TableStatus string

const (
	TableAvailable   TableStatus = "AVAILABLE"
	TableReserved    TableStatus = "RESERVED"
	TableOccupied    TableStatus = "OCCUPIED"
	TableUnavailable TableStatus = "UNAVAILABLE"
)

// Table 是餐厅的一张桌子。
type Table struct {
	ID           int64
	RestaurantID string
	TableNumber  int // 同一餐厅内唯一
	Capacity     int
	Status       TableStatus
	Location     string
}

// Bookable 判断桌位本身是否开放预订。
func (t *Table) Bookable() bool {
	return t.Status == TableAvailable
}

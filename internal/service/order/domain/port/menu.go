// internal/service/order/domain/port/menu.go
package port

import "context"

// MenuItem 是菜单目录服务返回的条目快照。
type MenuItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	IsAvailable bool    `json:"is_available"`
}

// MenuCatalog 是菜单目录的只读出站端口，下单时用来快照单价。
type MenuCatalog interface {
	GetItem(ctx context.Context, menuItemID int64) (*MenuItem, error)
}

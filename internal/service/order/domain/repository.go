// internal/service/order/domain/repository.go
package domain

import (
	"context"
	"time"
)

// OrderRepository 是订单的持久化端口。
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	ListByCustomer(ctx context.Context, customerID string, page, size int) ([]*Order, error)

	// UpdateStatus 条件状态更新：只有当前状态仍为 from 时才生效，
	// 并发下后写的一方拿到 ErrInvalidTransition。
	// 进入 DELIVERED / COMPLETED / CANCELLED 时同一事务里释放骑手占位。
	UpdateStatus(ctx context.Context, id string, from, to Status, completedAt *time.Time) error
}

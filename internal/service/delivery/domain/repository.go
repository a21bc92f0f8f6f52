// internal/service/delivery/domain/repository.go
package domain

import (
	"context"
	"time"

	orderdomain "bistro/internal/service/order/domain"
)

// DeliveryRepository 是派单侧的持久化端口。
type DeliveryRepository interface {
	// ListAvailable 返回待认领的外送单：READY、外送类型、未指派。
	ListAvailable(ctx context.Context, page, size int) ([]*orderdomain.Order, error)

	// Claim 在一个事务里完成占位插入与订单的条件指派。
	// 骑手已有占位 → ErrCourierBusy；订单已被别人抢走 →
	// ErrAlreadyAssigned；订单不在 READY → ErrInvalidState。
	// 任何失败都回滚占位，两个并发认领至多一个成功。
	Claim(ctx context.Context, orderID, courierID string, now time.Time) error

	// ActiveClaim 返回骑手当前的占位，没有则 ErrNotFound。
	ActiveClaim(ctx context.Context, courierID string) (*Claim, error)
}

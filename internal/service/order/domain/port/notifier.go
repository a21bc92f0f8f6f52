// internal/service/order/domain/port/notifier.go
package port

import (
	"context"

	"bistro/internal/service/order/domain"
)

// Notifier 是订单侧的外部通知出站端口。
// 尽力而为：失败只记日志，绝不影响核心操作的结果。
type Notifier interface {
	NotifyOrderCreated(ctx context.Context, order *domain.Order)
	NotifyOrderStatusChanged(ctx context.Context, order *domain.Order, newStatus domain.Status)
	NotifyOrderCancelled(ctx context.Context, order *domain.Order)
}

// Directory 回答某用户是否是某餐厅的店员或店主。
type Directory interface {
	IsStaffOrOwner(ctx context.Context, restaurantID, userID string) (bool, error)
}

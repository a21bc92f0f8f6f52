// internal/service/reservation/domain/port/notifier.go
package port

import (
	"context"

	"bistro/internal/service/reservation/domain"
)

// Notifier 是预订侧的外部通知出站端口。
// 尽力而为：失败只记日志，绝不影响核心操作的结果。
type Notifier interface {
	NotifyReservationCreated(ctx context.Context, reservation *domain.Reservation)
	NotifyReservationStatusChanged(ctx context.Context, reservation *domain.Reservation, newStatus domain.Status)
	NotifyReservationCancelled(ctx context.Context, reservation *domain.Reservation)
}

// Directory 回答某用户是否是某餐厅的店员或店主。
type Directory interface {
	IsStaffOrOwner(ctx context.Context, restaurantID, userID string) (bool, error)
}

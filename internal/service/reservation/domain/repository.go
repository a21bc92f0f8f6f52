// internal/service/reservation/domain/repository.go
package domain

import (
	"context"
	"time"
)

// TableRepository 定义桌位的读取接口。桌位的增删改由店员 CRUD 负责，不在此核心内。
type TableRepository interface {
	FindByID(ctx context.Context, id int64) (*Table, error)

	// FindAvailable 返回餐厅内开放预订、容量足够、
	// 且在 [from, to] 窗口内没有活跃预订的桌位，按容量升序（最贴合的在前）。
	FindAvailable(ctx context.Context, restaurantID string, partySize int, from, to time.Time) ([]*Table, error)
}

// ReservationRepository 定义预订的持久化接口。
type ReservationRepository interface {
	FindByID(ctx context.Context, id string) (*Reservation, error)
	ListByCustomer(ctx context.Context, customerID string, page, size int) ([]*Reservation, error)

	// CountActiveInWindow 统计某张桌在 [from, to] 内的活跃预订数，
	// excludeID 非空时排除指定预订（改期场景下排除自己）。
	CountActiveInWindow(ctx context.Context, tableID int64, from, to time.Time, excludeID string) (int64, error)

	// CreateInWindow 在单个事务里锁定桌位行、复查冲突窗口、插入预订。
	// 两个并发请求抢同一窗口时只有先拿到行锁的能通过复查，
	// 输家得到 ErrNoAvailability。
	CreateInWindow(ctx context.Context, reservation *Reservation) error

	// UpdateInWindow 以同样的原子方式落一次改期/改人数，冲突复查时排除自身。
	UpdateInWindow(ctx context.Context, reservation *Reservation) error

	// UpdateStatus 条件更新状态，当前状态不等于 from 时返回 ErrInvalidTransition。
	UpdateStatus(ctx context.Context, id string, from, to Status) error
}

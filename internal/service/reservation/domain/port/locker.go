// internal/service/reservation/domain/port/locker.go
package port

// TableLocker 在数据库事务外再套一层按桌串行化。
// 多实例部署时由分布式锁实现；单实例或未配置时用 NoopLocker。
type TableLocker interface {
	WithLock(tableID int64, fn func() error) error
}

// NoopLocker 直接执行，不加锁。数据库事务本身已足以保证正确性，
// 外层锁只是把冲突消解从"事务失败"前移为"排队等待"。
type NoopLocker struct{}

func (NoopLocker) WithLock(_ int64, fn func() error) error {
	return fn()
}

// internal/service/reservation/infrastructure/adapter/zk_locker.go
package adapter

import (
	"fmt"

	"github.com/pkg/errors"

	"bistro/internal/zookeeper"
)

// ZKTableLocker 用 zookeeper 临时顺序节点实现按桌互斥。
// 多实例部署时避免不同实例上的事务在数据库行锁上互相等待。
type ZKTableLocker struct {
	conn *zookeeper.Conn
}

func NewZKTableLocker(conn *zookeeper.Conn) *ZKTableLocker {
	return &ZKTableLocker{conn: conn}
}

func (l *ZKTableLocker) WithLock(tableID int64, fn func() error) error {
	lock := zookeeper.NewDistributedLock(l.conn, fmt.Sprintf("table-%d", tableID))
	if err := lock.Lock(); err != nil {
		return errors.Wrap(err, "failed to acquire table lock")
	}
	defer lock.Unlock()
	return fn()
}

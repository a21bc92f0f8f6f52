// internal/zookeeper/lock.go
package zookeeper

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-zookeeper/zk"
)

const (
	lockRoot = "/bistro_locks" // 所有分布式锁的根节点
)

// DistributedLock 基于临时顺序节点实现的分布式锁。
// 预订服务用它按桌号串行化跨实例的"查窗口-写预订"序列。
type DistributedLock struct {
	conn     *Conn
	path     string // 锁的路径，例如 /bistro_locks/table-123
	lockNode string // 成功排队后自己创建的节点路径
}

// NewDistributedLock 创建一个新的分布式锁实例。
func NewDistributedLock(conn *Conn, resourceID string) *DistributedLock {
	ensureNode(conn, lockRoot)
	lockPath := lockRoot + "/" + resourceID
	ensureNode(conn, lockPath)

	return &DistributedLock{conn: conn, path: lockPath}
}

func ensureNode(conn *Conn, path string) {
	exists, _, err := conn.Exists(path)
	if err == nil && exists {
		return
	}
	_, createErr := conn.Create(path, []byte(""), 0, zk.WorldACL(zk.PermAll))
	if createErr != nil && createErr != zk.ErrNodeExists {
		panic(fmt.Sprintf("failed to create lock node %s: %v", path, createErr))
	}
}

// Lock 尝试获取锁，获取不到则阻塞等待，最长 30 秒。
func (l *DistributedLock) Lock() error {
	// 1. 创建临时顺序节点，格式为 /bistro_locks/resourceID/lock-
	nodePath, err := l.conn.CreateProtectedEphemeralSequential(l.path+"/lock-", []byte(""), zk.WorldACL(zk.PermAll))
	if err != nil {
		return fmt.Errorf("failed to create sequential node: %w", err)
	}
	l.lockNode = nodePath

	for {
		// 2. 取出所有排队节点并排序
		children, _, err := l.conn.Children(l.path)
		if err != nil {
			return fmt.Errorf("failed to get children nodes: %w", err)
		}
		sort.Strings(children)

		// 3. 自己是最小节点则获得锁
		myNodeName := strings.TrimPrefix(l.lockNode, l.path+"/")
		if myNodeName == children[0] {
			return nil
		}

		// 4. 否则监听前一个节点
		prevNodeIndex := -1
		for i, child := range children {
			if child == myNodeName {
				prevNodeIndex = i - 1
				break
			}
		}
		if prevNodeIndex < 0 {
			return errors.New("cannot find previous node, something is wrong")
		}
		prevNodePath := l.path + "/" + children[prevNodeIndex]

		exists, _, eventChan, err := l.conn.ExistsW(prevNodePath)
		if err != nil {
			if err == zk.ErrNoNode {
				continue
			}
			return fmt.Errorf("failed to watch previous node: %w", err)
		}
		if !exists {
			// 前一个节点在设置 watcher 前刚好释放，重新竞争
			continue
		}

		select {
		case event := <-eventChan:
			if event.Type == zk.EventNodeDeleted {
				continue
			}
		case <-time.After(30 * time.Second):
			return errors.New("timeout waiting for lock")
		}
	}
}

// Unlock 释放锁。
func (l *DistributedLock) Unlock() error {
	if l.lockNode == "" {
		return errors.New("lock is not held")
	}
	if err := l.conn.Delete(l.lockNode, -1); err != nil && err != zk.ErrNoNode {
		return fmt.Errorf("failed to delete lock node: %w", err)
	}
	l.lockNode = ""
	return nil
}

// internal/pkg/session/manager.go
package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "push:session:"
	sessionTTL       = 24 * time.Hour
)

// Manager 在 redis 中维护 userID 到推送网关节点的映射。
// 多网关部署时，消息路由方据此找到用户所在的节点。
type Manager struct {
	rdb *redis.Client
}

// NewManager 创建一个会话管理器。
func NewManager(addr string) *Manager {
	return &Manager{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

// SetUserGateway 记录用户连接到了哪个网关节点。
func (m *Manager) SetUserGateway(ctx context.Context, userID, nodeID string) error {
	return m.rdb.Set(ctx, sessionKeyPrefix+userID, nodeID, sessionTTL).Err()
}

// GetUserGateway 查询用户所在的网关节点，未连接时返回空串。
func (m *Manager) GetUserGateway(ctx context.Context, userID string) (string, error) {
	nodeID, err := m.rdb.Get(ctx, sessionKeyPrefix+userID).Result()
	if err == redis.Nil {
		return "", nil
	}
	return nodeID, err
}

// RemoveUserGateway 清除用户的会话信息，连接断开时调用。
func (m *Manager) RemoveUserGateway(ctx context.Context, userID string) error {
	return m.rdb.Del(ctx, sessionKeyPrefix+userID).Err()
}

// internal/service/push/hub.go
package push

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/session"
)

// Hub 维护本节点的在线 websocket 连接，按 userID 索引。
// 用户连到哪个节点记在 redis 会话表里，跨节点路由由生产侧
// 按 customer_id 分区保证同一用户的事件有序。
type Hub struct {
	nodeID   string
	sessions *session.Manager

	mu    sync.RWMutex
	conns map[string]*websocket.Conn
}

func NewHub(nodeID string, sessions *session.Manager) *Hub {
	return &Hub{
		nodeID:   nodeID,
		sessions: sessions,
		conns:    make(map[string]*websocket.Conn),
	}
}

// Register 登记一条新连接。同一用户重复连接时顶掉旧连接。
func (h *Hub) Register(ctx context.Context, userID string, conn *websocket.Conn) {
	h.mu.Lock()
	if old, ok := h.conns[userID]; ok {
		old.Close()
	}
	h.conns[userID] = conn
	h.mu.Unlock()

	if err := h.sessions.SetUserGateway(ctx, userID, h.nodeID); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("user_id", userID).Msg("failed to record gateway session")
	}
	logger.Ctx(ctx).Info().Str("user_id", userID).Msg("websocket connected")
}

// Unregister 摘除连接。连接已被新连接顶掉时不动会话表。
func (h *Hub) Unregister(ctx context.Context, userID string, conn *websocket.Conn) {
	h.mu.Lock()
	current, ok := h.conns[userID]
	if ok && current == conn {
		delete(h.conns, userID)
	}
	h.mu.Unlock()
	conn.Close()

	if ok && current == conn {
		if err := h.sessions.RemoveUserGateway(ctx, userID); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("user_id", userID).Msg("failed to clear gateway session")
		}
	}
}

// Push 把一条事件推给本节点在线的用户。不在线返回 false，
// 调用方可以据此决定是否转投离线渠道。
func (h *Hub) Push(ctx context.Context, userID string, payload []byte) bool {
	h.mu.RLock()
	conn, ok := h.conns[userID]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("user_id", userID).Msg("websocket write failed, dropping connection")
		h.Unregister(ctx, userID, conn)
		return false
	}
	return true
}

// Online 返回本节点在线连接数。
func (h *Hub) Online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

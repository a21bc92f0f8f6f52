// cmd/push-gateway/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"bistro/internal/pkg/bootstrap"
	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/mq"
	"bistro/internal/pkg/session"
	"bistro/internal/service/push"
)

const (
	serviceName   = "push-gateway"
	consumerGroup = "push-gateway"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 网关前面有接入层做跨域校验
	CheckOrigin: func(r *http.Request) bool { return true },
}

// 推送网关把通知 topic 的事件实时推给在线的 websocket 客户端。
func main() {
	bootstrap.Init()
	logger.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	nodeID := nodeIdentity()
	hub := push.NewHub(nodeID, session.NewManager(cfg.Infra.Redis.Addr))

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	go consume(consumerCtx, hub, cfg)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8085,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
				serveWS(hub, w, r)
			})
			appCtx.Mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		},
	})
}

func serveWS(hub *push.Hub, w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	ctx := context.Background()
	hub.Register(ctx, userID, conn)
	defer hub.Unregister(ctx, userID, conn)

	// 客户端不上行业务数据，读循环只用来感知断连
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// consume 把通知事件按 customer_id 投给本节点的在线连接。
// 不在线的用户靠通知服务的离线渠道兜底，这里直接跳过。
func consume(ctx context.Context, hub *push.Hub, cfg *bootstrap.Config) {
	reader := mq.NewReader(cfg.Infra.Kafka.Brokers, cfg.App.NotificationTopic, consumerGroup)
	defer reader.Close()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Ctx(ctx).Error().Err(err).Msg("failed to read notification event")
			continue
		}
		msgCtx := mq.ExtractTraceContext(ctx, &msg)

		var ev struct {
			CustomerID string `json:"customer_id"`
		}
		if err := json.Unmarshal(msg.Value, &ev); err != nil || ev.CustomerID == "" {
			logger.Ctx(msgCtx).Error().Err(err).Msg("malformed push event, skipping")
			continue
		}
		hub.Push(msgCtx, ev.CustomerID, msg.Value)
	}
}

func nodeIdentity() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return uuid.New().String()
}

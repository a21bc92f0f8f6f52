// cmd/notification-service/main.go
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"bistro/internal/pkg/bootstrap"
	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/mq"
)

const (
	serviceName   = "notification-service"
	consumerGroup = "notification-service"
	workerCount   = 4
)

// event 只解出路由需要的公共字段，其余原样透传给渠道模板。
type event struct {
	Kind       string `json:"kind"`
	CustomerID string `json:"customer_id"`
}

// 通知服务消费预订与订单事件，扇出到下游渠道（邮件、短信）。
// 渠道投递是尽力而为的，失败只记日志，不回查业务状态。
func main() {
	bootstrap.Init()
	logger.Init(serviceName)
	cfg := bootstrap.GetCurrentConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workerCount; i++ {
		reader := mq.NewReader(cfg.Infra.Kafka.Brokers, cfg.App.NotificationTopic, consumerGroup)
		g.Go(func() error {
			defer reader.Close()
			for {
				msg, err := reader.FetchMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				msgCtx := mq.ExtractTraceContext(ctx, &msg)

				var ev event
				if err := json.Unmarshal(msg.Value, &ev); err != nil {
					logger.Ctx(msgCtx).Error().Err(err).Msg("malformed notification event, skipping")
				} else {
					logger.Ctx(msgCtx).Info().
						Str("kind", ev.Kind).
						Str("customer_id", ev.CustomerID).
						Msg("notification dispatched")
				}

				if err := reader.CommitMessages(ctx, msg); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
			}
		})
	}

	log.Printf("%s consuming topic %s", serviceName, cfg.App.NotificationTopic)
	if err := g.Wait(); err != nil {
		log.Fatalf("consumer group failed: %v", err)
	}
	log.Printf("%s shut down", serviceName)
}

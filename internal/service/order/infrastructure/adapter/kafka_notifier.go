// internal/service/order/infrastructure/adapter/kafka_notifier.go
package adapter

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/mq"
	"bistro/internal/service/order/domain"
)

// orderEvent 是写入通知 topic 的事件载荷。
type orderEvent struct {
	Kind         string  `json:"kind"`
	OrderID      string  `json:"order_id"`
	CustomerID   string  `json:"customer_id"`
	RestaurantID string  `json:"restaurant_id"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	TotalAmount  float64 `json:"total_amount"`
}

// KafkaNotifier 把订单事件投递到 kafka。尽力而为，失败只记日志。
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(writer *kafka.Writer) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

func (n *KafkaNotifier) NotifyOrderCreated(ctx context.Context, order *domain.Order) {
	n.publish(ctx, "order_created", order, order.Status)
}

func (n *KafkaNotifier) NotifyOrderStatusChanged(ctx context.Context, order *domain.Order, newStatus domain.Status) {
	n.publish(ctx, "order_status_changed", order, newStatus)
}

func (n *KafkaNotifier) NotifyOrderCancelled(ctx context.Context, order *domain.Order) {
	n.publish(ctx, "order_cancelled", order, domain.StatusCancelled)
}

func (n *KafkaNotifier) publish(ctx context.Context, kind string, order *domain.Order, status domain.Status) {
	payload, err := json.Marshal(orderEvent{
		Kind:         kind,
		OrderID:      order.ID,
		CustomerID:   order.CustomerID,
		RestaurantID: order.RestaurantID,
		Type:         string(order.Type),
		Status:       string(status),
		TotalAmount:  order.TotalAmount,
	})
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("kind", kind).Msg("failed to marshal order event")
		return
	}
	if err := mq.ProduceMessage(ctx, n.writer, []byte(order.CustomerID), payload); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("kind", kind).
			Str("order_id", order.ID).
			Msg("failed to publish order event")
	}
}

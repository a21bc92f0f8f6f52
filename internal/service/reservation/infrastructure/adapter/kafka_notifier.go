// internal/service/reservation/infrastructure/adapter/kafka_notifier.go
package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"bistro/internal/pkg/logger"
	"bistro/internal/pkg/mq"
	"bistro/internal/service/reservation/domain"
)

// reservationEvent 是写入通知 topic 的事件载荷。
// 消费侧（通知服务、推送网关）按 customer_id 路由。
type reservationEvent struct {
	Kind            string    `json:"kind"`
	ReservationID   string    `json:"reservation_id"`
	CustomerID      string    `json:"customer_id"`
	RestaurantID    string    `json:"restaurant_id"`
	TableID         int64     `json:"table_id"`
	ReservationDate time.Time `json:"reservation_date"`
	NumberOfGuests  int       `json:"number_of_guests"`
	Status          string    `json:"status"`
}

// KafkaNotifier 把预订事件投递到 kafka。尽力而为，失败只记日志。
type KafkaNotifier struct {
	writer *kafka.Writer
}

func NewKafkaNotifier(writer *kafka.Writer) *KafkaNotifier {
	return &KafkaNotifier{writer: writer}
}

func (n *KafkaNotifier) NotifyReservationCreated(ctx context.Context, reservation *domain.Reservation) {
	n.publish(ctx, "reservation_created", reservation, reservation.Status)
}

func (n *KafkaNotifier) NotifyReservationStatusChanged(ctx context.Context, reservation *domain.Reservation, newStatus domain.Status) {
	n.publish(ctx, "reservation_status_changed", reservation, newStatus)
}

func (n *KafkaNotifier) NotifyReservationCancelled(ctx context.Context, reservation *domain.Reservation) {
	n.publish(ctx, "reservation_cancelled", reservation, domain.StatusCancelled)
}

func (n *KafkaNotifier) publish(ctx context.Context, kind string, reservation *domain.Reservation, status domain.Status) {
	event := reservationEvent{
		Kind:            kind,
		ReservationID:   reservation.ID,
		CustomerID:      reservation.CustomerID,
		RestaurantID:    reservation.RestaurantID,
		TableID:         reservation.TableID,
		ReservationDate: reservation.ReservationDate,
		NumberOfGuests:  reservation.NumberOfGuests,
		Status:          string(status),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("kind", kind).Msg("failed to marshal reservation event")
		return
	}
	if err := mq.ProduceMessage(ctx, n.writer, []byte(reservation.CustomerID), payload); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("kind", kind).
			Str("reservation_id", reservation.ID).
			Msg("failed to publish reservation event")
	}
}

// internal/pkg/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 预订与履约核心的业务指标，挂在每个服务 mux 的 /metrics 下。
var (
	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bistro_orders_created_total",
		Help: "Number of orders created, by order type.",
	}, []string{"type"})

	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bistro_order_transitions_total",
		Help: "Number of successful order status transitions.",
	}, []string{"from", "to"})

	DeliveriesAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bistro_deliveries_accepted_total",
		Help: "Number of delivery assignments accepted by couriers.",
	})

	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bistro_reservations_created_total",
		Help: "Number of table reservations created.",
	})

	RewardRedemptions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bistro_reward_redemptions_total",
		Help: "Number of reward redemptions issued.",
	})

	CouponsConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bistro_coupons_consumed_total",
		Help: "Number of coupons consumed at order creation.",
	})
)

// internal/service/order/domain/order.go
package domain

import (
	"math"
	"time"
)

// Type 是订单的履约方式。
type Type string

const (
	TypeDineIn   Type = "DINE_IN"
	TypeTakeout  Type = "TAKEOUT"
	TypeDelivery Type = "DELIVERY"
)

// Status 是订单的生命周期状态。
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusConfirmed      Status = "CONFIRMED"
	StatusPreparing      Status = "PREPARING"
	StatusReady          Status = "READY"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCompleted      Status = "COMPLETED"
	StatusCancelled      Status = "CANCELLED"
)

// transitions 是状态图的允许边。READY 之后按履约方式分叉：
// 外送走 OUT_FOR_DELIVERY → DELIVERED → COMPLETED，堂食/自取直达 COMPLETED。
// CANCELLED 只从 PENDING / CONFIRMED 可达，对所有角色统一。
var transitions = map[Status][]Status{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReady},
	StatusReady:          {StatusOutForDelivery, StatusCompleted},
	StatusOutForDelivery: {StatusDelivered},
	StatusDelivered:      {StatusCompleted},
}

// CanTransition 判断 from → to 是否是状态图的一条边。
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal 判断该状态是否终态。
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// OrderItem 是下单时对菜单项的价格快照，此后菜单改价不影响已有订单。
type OrderItem struct {
	ID         int64
	OrderID    string
	MenuItemID int64
	Name       string
	Quantity   int
	UnitPrice  float64
}

// Subtotal 返回该行的小计。
func (i *OrderItem) Subtotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// Order 是一笔订单聚合根。
type Order struct {
	ID               string
	CustomerID       string
	RestaurantID     string
	TableID          *int64
	DeliveryPersonID *string
	Type             Type
	Status           Status
	Items            []OrderItem
	TotalAmount      float64
	OrderDate        time.Time
	CompletedAt      *time.Time
	DeliveryAddress  string
	CouponCode       string
}

// ItemTotal 汇总各行小计。调用方传了总额时以调用方为准
// （可能已含配送费与券后折扣），未传时用这里的结果。
func (o *Order) ItemTotal() float64 {
	var total float64
	for i := range o.Items {
		total += o.Items[i].Subtotal()
	}
	return total
}

// AccrualPoints 返回订单完成时入账的积分数。
func (o *Order) AccrualPoints() int {
	return int(math.Floor(o.TotalAmount/100)) * 10
}

// AccrualExpiry 积分有效期一年。
const AccrualExpiry = 365 * 24 * time.Hour

// Validate 校验订单的结构性约束。
func (o *Order) Validate() error {
	if o.CustomerID == "" || o.RestaurantID == "" {
		return ErrValidation
	}
	if len(o.Items) == 0 {
		return ErrValidation
	}
	for i := range o.Items {
		if o.Items[i].Quantity < 1 {
			return ErrValidation
		}
	}
	if o.TotalAmount < 0 {
		return ErrValidation
	}
	if o.Type == TypeDelivery && o.DeliveryAddress == "" {
		return ErrValidation
	}
	return nil
}

// internal/service/order/domain/capability.go
package domain

// Capability 是已经完成身份归属校验的操作资格。
// 用类型而不是布尔值表达角色，让非法的角色/流转组合无从构造。
type Capability interface {
	// Allows 判断持有该资格的操作者能否把订单从当前状态推进到 to。
	// 前置条件：from → to 已经是状态图的一条边。
	Allows(order *Order, to Status) bool
}

// CustomerOf 是订单归属客户的资格，只能取消。
type CustomerOf struct {
	CustomerID string
}

func (c CustomerOf) Allows(order *Order, to Status) bool {
	if order.CustomerID != c.CustomerID {
		return false
	}
	return to == StatusCancelled
}

// StaffOf 是餐厅店员/店主的资格，可以做任何前向推进与取消。
// 把外送单推到 OUT_FOR_DELIVERY 必须已有指派骑手，
// 否则会出现没有承运人的在途订单。
type StaffOf struct {
	RestaurantID string
}

func (s StaffOf) Allows(order *Order, to Status) bool {
	if order.RestaurantID != s.RestaurantID {
		return false
	}
	if to == StatusOutForDelivery && order.DeliveryPersonID == nil {
		return false
	}
	return true
}

// AssignedCourier 是已指派骑手的资格，只能推进 DELIVERED / COMPLETED。
type AssignedCourier struct {
	CourierID string
}

func (a AssignedCourier) Allows(order *Order, to Status) bool {
	if order.DeliveryPersonID == nil || *order.DeliveryPersonID != a.CourierID {
		return false
	}
	return to == StatusDelivered || to == StatusCompleted
}

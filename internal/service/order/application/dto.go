// internal/service/order/application/dto.go
package application

// Role 是调用方声明的操作角色，归属校验在应用层完成。
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleCourier  Role = "courier"
)

// CreateOrderItemRequest 是下单请求里的一行。
type CreateOrderItemRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

// CreateOrderRequest 是创建订单的应用层请求。
// TotalAmount 为 0 时按行小计（减去券折扣）计算；
// 非 0 时以调用方为准，调用方已自行合成配送费与折扣。
type CreateOrderRequest struct {
	CustomerID      string                   `json:"customer_id"`
	RestaurantID    string                   `json:"restaurant_id"`
	Type            string                   `json:"type"`
	Items           []CreateOrderItemRequest `json:"items"`
	TotalAmount     float64                  `json:"total_amount,omitempty"`
	TableID         *int64                   `json:"table_id,omitempty"`
	DeliveryAddress string                   `json:"delivery_address,omitempty"`
	CouponCode      string                   `json:"coupon_code,omitempty"`
}

// TransitionRequest 是推进订单状态的应用层请求。
type TransitionRequest struct {
	OrderID   string `json:"order_id"`
	ActorID   string `json:"actor_id"`
	ActorRole Role   `json:"actor_role"`
	NewStatus string `json:"new_status"`
}

// internal/service/order/infrastructure/mapper.go
package infrastructure

import (
	"database/sql"

	"bistro/internal/service/order/domain"
)

func ToDomainOrder(model *OrderModel, items []OrderItemModel) *domain.Order {
	order := &domain.Order{
		ID:              model.ID,
		CustomerID:      model.CustomerID,
		RestaurantID:    model.RestaurantID,
		Type:            model.Type,
		Status:          model.Status,
		TotalAmount:     model.TotalAmount,
		OrderDate:       model.OrderDate,
		DeliveryAddress: model.DeliveryAddress,
		CouponCode:      model.CouponCode,
	}
	if model.TableID.Valid {
		order.TableID = &model.TableID.Int64
	}
	if model.DeliveryPersonID.Valid {
		order.DeliveryPersonID = &model.DeliveryPersonID.String
	}
	if model.CompletedAt.Valid {
		order.CompletedAt = &model.CompletedAt.Time
	}
	for i := range items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:         items[i].ID,
			OrderID:    items[i].OrderID,
			MenuItemID: items[i].MenuItemID,
			Name:       items[i].Name,
			Quantity:   items[i].Quantity,
			UnitPrice:  items[i].UnitPrice,
		})
	}
	return order
}

func FromDomainOrder(order *domain.Order) (*OrderModel, []OrderItemModel) {
	model := &OrderModel{
		ID:              order.ID,
		CustomerID:      order.CustomerID,
		RestaurantID:    order.RestaurantID,
		Type:            order.Type,
		Status:          order.Status,
		TotalAmount:     order.TotalAmount,
		OrderDate:       order.OrderDate,
		DeliveryAddress: order.DeliveryAddress,
		CouponCode:      order.CouponCode,
	}
	if order.TableID != nil {
		model.TableID = sql.NullInt64{Int64: *order.TableID, Valid: true}
	}
	if order.DeliveryPersonID != nil {
		model.DeliveryPersonID = sql.NullString{String: *order.DeliveryPersonID, Valid: true}
	}
	if order.CompletedAt != nil {
		model.CompletedAt = sql.NullTime{Time: *order.CompletedAt, Valid: true}
	}
	items := make([]OrderItemModel, 0, len(order.Items))
	for i := range order.Items {
		items = append(items, OrderItemModel{
			OrderID:    order.ID,
			MenuItemID: order.Items[i].MenuItemID,
			Name:       order.Items[i].Name,
			Quantity:   order.Items[i].Quantity,
			UnitPrice:  order.Items[i].UnitPrice,
		})
	}
	return model, items
}

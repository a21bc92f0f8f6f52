// internal/service/reservation/infrastructure/mapper.go
package infrastructure

import "bistro/internal/service/reservation/domain"

// ToDomainTable 将数据库模型转换为领域模型。
func ToDomainTable(model *TableModel) *domain.Table {
	if model == nil {
		return nil
	}
	return &domain.Table{
		ID:           model.ID,
		RestaurantID: model.RestaurantID,
		TableNumber:  model.TableNumber,
		Capacity:     model.Capacity,
		Status:       model.Status,
		Location:     model.Location,
	}
}

// ToDomainReservation 将数据库模型转换为领域模型。
func ToDomainReservation(model *ReservationModel) *domain.Reservation {
	if model == nil {
		return nil
	}
	return &domain.Reservation{
		ID:              model.ID,
		CustomerID:      model.CustomerID,
		RestaurantID:    model.RestaurantID,
		TableID:         model.TableID,
		ReservationDate: model.ReservationDate,
		NumberOfGuests:  model.NumberOfGuests,
		Status:          model.Status,
		SpecialRequests: model.SpecialRequests,
		CreatedAt:       model.CreatedAt,
	}
}

// FromDomainReservation 将领域模型转换为数据库模型。
func FromDomainReservation(r *domain.Reservation) *ReservationModel {
	return &ReservationModel{
		ID:              r.ID,
		CustomerID:      r.CustomerID,
		RestaurantID:    r.RestaurantID,
		TableID:         r.TableID,
		ReservationDate: r.ReservationDate,
		NumberOfGuests:  r.NumberOfGuests,
		Status:          r.Status,
		SpecialRequests: r.SpecialRequests,
		CreatedAt:       r.CreatedAt,
	}
}

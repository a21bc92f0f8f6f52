// internal/service/reservation/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"bistro/internal/service/reservation/application"
	"bistro/internal/service/reservation/domain"
)

// ReservationHandler 封装了桌位查询与预订的 HTTP 处理器。
type ReservationHandler struct {
	service *application.ReservationService
}

func NewReservationHandler(service *application.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *ReservationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/reservations/tables/available", h.availableTablesHandler)
	mux.HandleFunc("/reservations/create", h.createHandler)
	mux.HandleFunc("/reservations/update", h.updateHandler)
	mux.HandleFunc("/reservations/cancel", h.cancelHandler)
	mux.HandleFunc("/reservations/status", h.setStatusHandler)
	mux.HandleFunc("/reservations/list", h.listHandler)
}

func (h *ReservationHandler) availableTablesHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	date, err := time.Parse(time.RFC3339, r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	partySize, _ := strconv.Atoi(r.URL.Query().Get("partySize"))
	tables, err := h.service.FindAvailableTables(ctx, r.URL.Query().Get("restaurantId"), date, partySize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, tables)
}

func (h *ReservationHandler) createHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extract(r)
	var req application.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	reservation, err := h.service.CreateReservation(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, reservation)
}

func (h *ReservationHandler) updateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extract(r)
	var req application.UpdateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	reservation, err := h.service.UpdateReservation(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, reservation)
}

func (h *ReservationHandler) cancelHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extract(r)
	err := h.service.CancelReservation(ctx, r.URL.Query().Get("reservationId"), r.URL.Query().Get("customerId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": string(domain.StatusCancelled)})
}

func (h *ReservationHandler) setStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extract(r)
	newStatus := domain.Status(r.URL.Query().Get("status"))
	err := h.service.SetStatus(ctx, r.URL.Query().Get("reservationId"), r.URL.Query().Get("staffId"), newStatus)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": string(newStatus)})
}

func (h *ReservationHandler) listHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	reservations, err := h.service.ListByCustomer(ctx, r.URL.Query().Get("customerId"), page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, reservations)
}

func extract(r *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNoAvailability),
		errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}

// internal/service/delivery/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"bistro/internal/service/delivery/application"
	"bistro/internal/service/delivery/domain"
	orderdomain "bistro/internal/service/order/domain"
)

// DeliveryHandler 封装了骑手侧派单的 HTTP 处理器。
type DeliveryHandler struct {
	service *application.DeliveryService
}

func NewDeliveryHandler(service *application.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *DeliveryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/delivery/available", h.availableHandler)
	mux.HandleFunc("/delivery/accept", h.acceptHandler)
	mux.HandleFunc("/delivery/status", h.updateStatusHandler)
	mux.HandleFunc("/delivery/active", h.activeHandler)
}

func (h *DeliveryHandler) availableHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	orders, err := h.service.ListAvailable(ctx, page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, orders)
}

func (h *DeliveryHandler) acceptHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extract(r)
	order, err := h.service.Accept(ctx, r.URL.Query().Get("orderId"), r.URL.Query().Get("courierId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, order)
}

func (h *DeliveryHandler) updateStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extract(r)
	newStatus := orderdomain.Status(r.URL.Query().Get("status"))
	order, err := h.service.UpdateStatus(ctx, r.URL.Query().Get("orderId"), r.URL.Query().Get("courierId"), newStatus)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, order)
}

func (h *DeliveryHandler) activeHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	order, err := h.service.ActiveDelivery(ctx, r.URL.Query().Get("courierId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, order)
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
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, orderdomain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrAlreadyAssigned),
		errors.Is(err, domain.ErrCourierBusy),
		errors.Is(err, orderdomain.ErrInvalidTransition):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}

// internal/service/order/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	loyaltydomain "bistro/internal/service/loyalty/domain"
	"bistro/internal/service/order/application"
	"bistro/internal/service/order/domain"
)

// OrderHandler 封装了订单生命周期的 HTTP 处理器。
type OrderHandler struct {
	service *application.OrderService
}

func NewOrderHandler(service *application.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/orders/create", h.createHandler)
	mux.HandleFunc("/orders/transition", h.transitionHandler)
	mux.HandleFunc("/orders/cancel", h.cancelHandler)
	mux.HandleFunc("/orders/get", h.getHandler)
	mux.HandleFunc("/orders/list", h.listHandler)
}

func (h *OrderHandler) createHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extract(r)
	var req application.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	order, err := h.service.CreateOrder(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, order)
}

func (h *OrderHandler) transitionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extract(r)
	var req application.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	order, err := h.service.Transition(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, order)
}

func (h *OrderHandler) cancelHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extract(r)
	order, err := h.service.Cancel(ctx, r.URL.Query().Get("orderId"), r.URL.Query().Get("customerId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, order)
}

func (h *OrderHandler) getHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	order, err := h.service.GetOrder(ctx, r.URL.Query().Get("orderId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, order)
}

func (h *OrderHandler) listHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	orders, err := h.service.ListCustomerOrders(ctx, r.URL.Query().Get("customerId"), page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, orders)
}

func extract(r *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError 把领域错误翻译成 HTTP 状态码。
// 下单路径会透出券核销的积分侧错误，一并映射。
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, loyaltydomain.ErrAlreadyUsed):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrItemUnavailable),
		errors.Is(err, loyaltydomain.ErrExpired):
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, err.Error(), status)
}

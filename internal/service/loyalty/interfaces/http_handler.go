// internal/service/loyalty/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"bistro/internal/service/loyalty/application"
	"bistro/internal/service/loyalty/domain"
)

// LoyaltyHandler 封装了积分与奖励兑换的 HTTP 处理器。
type LoyaltyHandler struct {
	ledger  *application.LedgerService
	rewards *application.RewardService
}

// NewLoyaltyHandler 创建一个新的 HTTP 处理器实例。
func NewLoyaltyHandler(ledger *application.LedgerService, rewards *application.RewardService) *LoyaltyHandler {
	return &LoyaltyHandler{ledger: ledger, rewards: rewards}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *LoyaltyHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/loyalty/balance", h.balanceHandler)
	mux.HandleFunc("/loyalty/history", h.historyHandler)
	mux.HandleFunc("/loyalty/redeem_code", h.redeemCodeHandler)
	mux.HandleFunc("/loyalty/rewards", h.listRewardsHandler)
	mux.HandleFunc("/loyalty/rewards/redeem", h.redeemRewardHandler)
	mux.HandleFunc("/loyalty/coupons/consume", h.consumeCouponHandler)
}

func (h *LoyaltyHandler) balanceHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	balance, err := h.ledger.Balance(ctx, r.URL.Query().Get("customerId"), r.URL.Query().Get("restaurantId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]int{"balance": balance})
}

func (h *LoyaltyHandler) historyHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	entries, err := h.ledger.History(ctx, r.URL.Query().Get("customerId"), r.URL.Query().Get("restaurantId"), page, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, entries)
}

func (h *LoyaltyHandler) redeemCodeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extract(r)
	entry, err := h.ledger.RedeemCode(ctx, r.URL.Query().Get("code"), r.URL.Query().Get("customerId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, entry)
}

func (h *LoyaltyHandler) listRewardsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	rewards, err := h.rewards.ListRewards(ctx, r.URL.Query().Get("restaurantId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, rewards)
}

func (h *LoyaltyHandler) redeemRewardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extract(r)
	rewardID, err := strconv.ParseInt(r.URL.Query().Get("rewardId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid rewardId", http.StatusBadRequest)
		return
	}
	redemption, err := h.rewards.Redeem(ctx, rewardID, r.URL.Query().Get("customerId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, application.RedeemResponse{
		RedemptionID: redemption.ID,
		CouponCode:   redemption.CouponCode,
		PointsSpent:  redemption.PointsSpent,
		ExpiresAt:    redemption.ExpiresAt,
	})
}

func (h *LoyaltyHandler) consumeCouponHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := extract(r)
	discount, err := h.rewards.ConsumeCoupon(ctx, r.URL.Query().Get("code"), r.URL.Query().Get("customerId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, application.DiscountResponse{Amount: discount.Amount, Percentage: discount.Percentage})
}

func extract(r *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeError 把领域错误翻译成 HTTP 状态码。
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAlreadyUsed),
		errors.Is(err, domain.ErrInsufficientPoints),
		errors.Is(err, domain.ErrRedemptionLimitReached):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInactive),
		errors.Is(err, domain.ErrExpired),
		errors.Is(err, domain.ErrNotEligible):
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, err.Error(), status)
}

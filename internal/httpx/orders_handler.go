package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/alterd/checkout/internal/payments"
	"github.com/alterd/checkout/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

// OrdersHandler exposes payment attempt status. Reads go through the Redis
// status cache the projector maintains.
type OrdersHandler struct {
	Service PaymentService
	Redis   *redis.Client
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Get("/api/orders/{id}", h.getOrder)
	r.Post("/api/orders/{id}/abandon", h.abandon)
	r.Options("/api/orders/{id}/abandon", preflight)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) cache
	key := redisx.OrderStatusKey(orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	// 2) fall back to the attempt store
	a, err := h.Service.GetAttempt(ctx, orderID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	view := a.View()
	h.cache(ctx, view)
	writeJSON(w, http.StatusOK, view)
}

func (h *OrdersHandler) abandon(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	a, err := h.Service.Abandon(r.Context(), orderID, traceID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	view := a.View()
	h.cache(r.Context(), view)
	writeJSON(w, http.StatusOK, view)
}

func (h *OrdersHandler) cache(ctx context.Context, view payments.StatusView) {
	if h.Redis == nil {
		return
	}
	b, err := json.Marshal(view)
	if err != nil {
		return
	}
	_ = h.Redis.Set(ctx, redisx.OrderStatusKey(view.OrderID), b, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) writeError(w http.ResponseWriter, err error) {
	if payments.KindOf(err) == payments.KindNotFound {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Order not found"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

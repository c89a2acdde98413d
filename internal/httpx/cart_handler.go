package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/alterd/checkout/internal/cart"
	"github.com/alterd/checkout/internal/catalog"
	"github.com/go-chi/chi/v5"
)

const sessionHeader = "X-Session-Id"

type CartService interface {
	Get(ctx context.Context, sessionID string) (*cart.Cart, error)
	Add(ctx context.Context, sessionID string, p catalog.Product, size, color string, quantity int) (*cart.Cart, error)
	UpdateQuantity(ctx context.Context, sessionID string, k cart.Key, quantity int) (*cart.Cart, error)
	Remove(ctx context.Context, sessionID string, k cart.Key) (*cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type ProductLookup interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}

type CartHandler struct {
	Carts    CartService
	Products ProductLookup
}

type AddItemReq struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  *int   `json:"quantity"`
}

type UpdateItemReq struct {
	Quantity *int `json:"quantity"`
}

type CartResp struct {
	SessionID string          `json:"session_id"`
	Items     []cart.LineItem `json:"items"`
	Totals    cart.Totals     `json:"totals"`
}

func (h *CartHandler) Register(r chi.Router) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Get("/", h.get)
		r.Delete("/", h.clear)
		r.Post("/items", h.addItem)
		r.Put("/items/{key}", h.updateItem)
		r.Delete("/items/{key}", h.removeItem)
	})
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid := strings.TrimSpace(r.Header.Get(sessionHeader))
	if sid == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing " + sessionHeader + " header"})
		return "", false
	}
	return sid, true
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	c, err := h.Carts.Get(r.Context(), sid)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeCart(w, c)
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req AddItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id is required"})
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	p, err := h.Products.Get(r.Context(), req.ProductID)
	if err != nil {
		writeCartError(w, err)
		return
	}
	c, err := h.Carts.Add(r.Context(), sid, p, req.Size, req.Color, qty)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeCart(w, c)
}

func (h *CartHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req UpdateItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity is required"})
		return
	}
	h.withItem(w, r, sid, func(ctx context.Context, k cart.Key) (*cart.Cart, error) {
		return h.Carts.UpdateQuantity(ctx, sid, k, *req.Quantity)
	})
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.withItem(w, r, sid, func(ctx context.Context, k cart.Key) (*cart.Cart, error) {
		return h.Carts.Remove(ctx, sid, k)
	})
}

// withItem resolves the {key} path segment against the session cart. An id
// that is no longer in the cart is a no-op and the current cart is returned.
func (h *CartHandler) withItem(w http.ResponseWriter, r *http.Request, sid string, fn func(context.Context, cart.Key) (*cart.Cart, error)) {
	c, err := h.Carts.Get(r.Context(), sid)
	if err != nil {
		writeCartError(w, err)
		return
	}
	k, found := c.Lookup(chi.URLParam(r, "key"))
	if !found {
		writeCart(w, c)
		return
	}
	c, err = fn(r.Context(), k)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeCart(w, c)
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.Carts.Clear(r.Context(), sid); err != nil {
		writeCartError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeCart(w http.ResponseWriter, c *cart.Cart) {
	if c.Items == nil {
		c.Items = []cart.LineItem{}
	}
	writeJSON(w, http.StatusOK, CartResp{SessionID: c.SessionID, Items: c.Items, Totals: c.Totals()})
}

func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, cart.ErrInvalidQuantity):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, cart.ErrInsufficientStock), errors.Is(err, cart.ErrContention):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("cart error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}
}

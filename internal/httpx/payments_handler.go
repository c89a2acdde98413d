package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/alterd/checkout/internal/gateway"
	"github.com/alterd/checkout/internal/payments"
	"github.com/alterd/checkout/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type PaymentService interface {
	CreateOrder(ctx context.Context, in payments.CreateOrderInput) (*payments.CreateOrderResult, error)
	VerifyPayment(ctx context.Context, in payments.VerifyInput) (*payments.VerifyResult, error)
	Abandon(ctx context.Context, orderID, traceID string) (*payments.Attempt, error)
	GetAttempt(ctx context.Context, orderID string) (*payments.Attempt, error)
}

type PaymentsHandler struct {
	Service PaymentService
	Redis   *redis.Client // optional status cache
}

type CreateOrderReq struct {
	Amount   *decimal.Decimal `json:"amount"`
	Currency string           `json:"currency"`
	Receipt  string           `json:"receipt"`
}

type CreateOrderResp struct {
	Success bool           `json:"success"`
	Order   *gateway.Order `json:"order"`
	KeyID   string         `json:"key_id"`
}

type VerifyPaymentReq struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

type VerifyPaymentResp struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	PaymentID string `json:"payment_id,omitempty"`
	OrderID   string `json:"order_id,omitempty"`
	Replayed  bool   `json:"replayed,omitempty"`
}

func (h *PaymentsHandler) Register(r chi.Router) {
	r.Post("/api/create-order", h.createOrder)
	r.Options("/api/create-order", preflight)
	r.Post("/api/verify-payment", h.verifyPayment)
	r.Options("/api/verify-payment", preflight)
}

func (h *PaymentsHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	res, err := h.Service.CreateOrder(r.Context(), payments.CreateOrderInput{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		TraceID:  traceID(r),
	})
	if err != nil {
		var pe *payments.Error
		if errors.As(err, &pe) && pe.Kind == payments.KindValidation {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": pe.Message})
			return
		}
		log.Printf("create order error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":   "Failed to create order",
			"message": publicMessage(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, CreateOrderResp{Success: true, Order: res.Order, KeyID: res.KeyID})
}

func (h *PaymentsHandler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var req VerifyPaymentReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
		return
	}

	res, err := h.Service.VerifyPayment(r.Context(), payments.VerifyInput{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
		TraceID:   traceID(r),
	})
	if err != nil {
		switch payments.KindOf(err) {
		case payments.KindValidation:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": publicMessage(err)})
		case payments.KindAuthenticity:
			writeJSON(w, http.StatusBadRequest, VerifyPaymentResp{Success: false, Message: "Payment verification failed"})
		case payments.KindConflict:
			writeJSON(w, http.StatusConflict, VerifyPaymentResp{Success: false, Message: publicMessage(err)})
		default:
			log.Printf("verify payment error: order=%s: %v", req.OrderID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":   "Failed to verify payment",
				"message": publicMessage(err),
			})
		}
		return
	}

	if h.Redis != nil && !res.Replayed {
		// the projector rewrites it; drop the stale AWAITING_CALLBACK meanwhile
		_ = h.Redis.Del(r.Context(), redisx.OrderStatusKey(res.OrderID)).Err()
	}
	writeJSON(w, http.StatusOK, VerifyPaymentResp{
		Success:   true,
		Message:   "Payment verified successfully",
		PaymentID: res.PaymentID,
		OrderID:   res.OrderID,
		Replayed:  res.Replayed,
	})
}

// publicMessage never exposes wrapped causes, only the message a payments
// error was built with.
func publicMessage(err error) string {
	var pe *payments.Error
	if errors.As(err, &pe) {
		return pe.Message
	}
	return "Internal server error"
}

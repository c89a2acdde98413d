package payments

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/alterd/checkout/internal/gateway"
	kafkax "github.com/alterd/checkout/internal/kafka"
	"github.com/alterd/checkout/internal/money"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const maxReceiptLen = 40

type Gateway interface {
	CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error)
}

type Publisher interface {
	Publish(topic string, key, value []byte, headers ...kafka.Header)
}

type Config struct {
	KeyID           string
	KeySecret       string
	DefaultCurrency string
	GatewayTimeout  time.Duration
	ServiceName     string
}

// Service is stateless per request; everything it holds is read-only after
// construction.
type Service struct {
	cfg    Config
	secret []byte
	gw     Gateway
	store  Store
	pub    Publisher
	now    func() time.Time
}

func NewService(cfg Config, gw Gateway, store Store, pub Publisher) *Service {
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "INR"
	}
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = 10 * time.Second
	}
	return &Service{
		cfg:    cfg,
		secret: []byte(cfg.KeySecret),
		gw:     gw,
		store:  store,
		pub:    pub,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type CreateOrderInput struct {
	Amount   *decimal.Decimal // major units
	Currency string
	Receipt  string
	TraceID  string
}

type CreateOrderResult struct {
	Order *gateway.Order
	KeyID string
}

func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	if in.Amount == nil {
		return nil, newError(KindValidation, "Amount is required", nil)
	}
	if !in.Amount.IsPositive() {
		return nil, newError(KindValidation, "Amount must be greater than zero", nil)
	}
	currency := money.Normalize(in.Currency)
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	minor, err := money.ToMinor(*in.Amount, currency)
	if err != nil {
		return nil, newError(KindValidation, err.Error(), err)
	}
	if len(in.Receipt) > maxReceiptLen {
		return nil, newError(KindValidation, fmt.Sprintf("Receipt must be at most %d characters", maxReceiptLen), nil)
	}
	if s.cfg.KeyID == "" || len(s.secret) == 0 {
		return nil, newError(KindConfiguration, "Payment gateway keys not configured", ErrMissingSecret)
	}

	receipt := in.Receipt
	if receipt == "" {
		receipt = fmt.Sprintf("receipt_%d", s.now().UnixMilli())
	}

	gctx, cancel := context.WithTimeout(ctx, s.cfg.GatewayTimeout)
	defer cancel()

	order, err := s.gw.CreateOrder(gctx, gateway.CreateOrderRequest{
		Amount:         minor,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		log.Printf("gateway create order failed: receipt=%s: %v", receipt, err)
		msg := "Payment gateway unavailable"
		var gwErr *gateway.Error
		if errors.As(err, &gwErr) && gwErr.StatusCode < 500 && gwErr.Description != "" {
			msg = gwErr.Description
		}
		return nil, newError(KindUpstream, msg, err)
	}

	status := StatusNew
	for _, next := range []Status{StatusOrderCreated, StatusAwaitingCallback} {
		if !CanTransition(status, next) {
			return nil, fmt.Errorf("illegal transition %s -> %s", status, next)
		}
		status = next
	}
	a := &Attempt{
		OrderID:     order.ID,
		Receipt:     receipt,
		AmountMinor: order.Amount,
		Currency:    currency,
		Status:      status,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("persist attempt %s: %w", order.ID, err)
	}

	s.publish(TopicOrderCreated, EventOrderCreated, order.ID, in.TraceID, OrderCreatedPayload{
		OrderID:     order.ID,
		Receipt:     receipt,
		AmountMinor: order.Amount,
		Currency:    currency,
	})

	return &CreateOrderResult{Order: order, KeyID: s.cfg.KeyID}, nil
}

type VerifyInput struct {
	OrderID   string
	PaymentID string
	Signature string
	TraceID   string
}

type VerifyResult struct {
	OrderID   string
	PaymentID string
	Replayed  bool
}

var errUnchanged = errors.New("attempt unchanged")

// VerifyPayment decides whether a payment assertion really came from the
// gateway. A mismatch never touches the stored attempt, so a forged callback
// cannot terminate a genuine checkout.
func (s *Service) VerifyPayment(ctx context.Context, in VerifyInput) (*VerifyResult, error) {
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return nil, newError(KindValidation, "Missing required payment details", nil)
	}
	if len(s.secret) == 0 {
		return nil, newError(KindConfiguration, "Payment verification unavailable", ErrMissingSecret)
	}

	ok, err := VerifySignature(s.secret, in.OrderID, in.PaymentID, in.Signature)
	if err != nil {
		return nil, newError(KindConfiguration, "Payment verification unavailable", err)
	}
	if !ok {
		log.Printf("signature mismatch: order=%s payment=%s", in.OrderID, in.PaymentID)
		s.publish(TopicPaymentRejected, EventPaymentRejected, in.OrderID, in.TraceID, PaymentRejectedPayload{
			OrderID: in.OrderID, PaymentID: in.PaymentID, Reason: "SIGNATURE_MISMATCH",
		})
		return nil, newError(KindAuthenticity, "Payment verification failed", ErrSignatureFailed)
	}

	replayed := false
	a, err := s.store.Transition(ctx, in.OrderID, func(a *Attempt) error {
		if a.Status == StatusVerified {
			if a.PaymentID == in.PaymentID {
				return errUnchanged
			}
			return newError(KindConflict, "Order already paid with a different payment", nil)
		}
		if !CanTransition(a.Status, StatusVerified) {
			return newError(KindConflict, fmt.Sprintf("Order is %s", a.Status), nil)
		}
		at := s.now()
		a.Status = StatusVerified
		a.PaymentID = in.PaymentID
		a.VerifiedAt = &at
		return nil
	})
	switch {
	case errors.Is(err, errUnchanged):
		replayed = true
	case errors.Is(err, ErrNotFound):
		log.Printf("valid signature for unknown order: order=%s", in.OrderID)
		return nil, newError(KindAuthenticity, "Payment verification failed", err)
	case errors.Is(err, ErrPaymentIDTaken):
		log.Printf("payment reused across orders: order=%s payment=%s", in.OrderID, in.PaymentID)
		return nil, newError(KindConflict, "Payment already used for another order", err)
	case err != nil:
		return nil, err
	}

	if !replayed {
		s.publish(TopicPaymentVerified, EventPaymentVerified, in.OrderID, in.TraceID, PaymentVerifiedPayload{
			OrderID:     a.OrderID,
			PaymentID:   a.PaymentID,
			AmountMinor: a.AmountMinor,
			Currency:    a.Currency,
			VerifiedAt:  *a.VerifiedAt,
		})
	}
	return &VerifyResult{OrderID: in.OrderID, PaymentID: in.PaymentID, Replayed: replayed}, nil
}

// Abandon records that the shopper dismissed the gateway's payment UI.
// Attempts that already finished are returned as they are.
func (s *Service) Abandon(ctx context.Context, orderID, traceID string) (*Attempt, error) {
	a, err := s.store.Transition(ctx, orderID, func(a *Attempt) error {
		if a.Status.IsTerminal() || !CanTransition(a.Status, StatusAbandoned) {
			return errUnchanged
		}
		a.Status = StatusAbandoned
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return s.GetAttempt(ctx, orderID)
	}
	if errors.Is(err, ErrNotFound) {
		return nil, newError(KindNotFound, "Order not found", err)
	}
	if err != nil {
		return nil, err
	}
	s.publish(TopicPaymentAbandoned, EventPaymentAbandoned, orderID, traceID, PaymentAbandonedPayload{OrderID: orderID})
	return a, nil
}

func (s *Service) GetAttempt(ctx context.Context, orderID string) (*Attempt, error) {
	a, err := s.store.Get(ctx, orderID)
	if errors.Is(err, ErrNotFound) {
		return nil, newError(KindNotFound, "Order not found", err)
	}
	return a, err
}

func (s *Service) publish(topic, eventType, orderID, traceID string, payload any) {
	if s.pub == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now(),
		Producer:      s.cfg.ServiceName,
		TraceID:       traceID,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	s.pub.Publish(topic, PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafka.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafka.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

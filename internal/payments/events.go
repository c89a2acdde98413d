package payments

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated     = "OrderCreated"
	EventPaymentVerified  = "PaymentVerified"
	EventPaymentRejected  = "PaymentRejected"
	EventPaymentAbandoned = "PaymentAbandoned"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID     string `json:"order_id"`
	Receipt     string `json:"receipt"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
}

type PaymentVerifiedPayload struct {
	OrderID     string    `json:"order_id"`
	PaymentID   string    `json:"payment_id"`
	AmountMinor int64     `json:"amount_minor"`
	Currency    string    `json:"currency"`
	VerifiedAt  time.Time `json:"verified_at"`
}

type PaymentRejectedPayload struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Reason    string `json:"reason"`
}

type PaymentAbandonedPayload struct {
	OrderID string `json:"order_id"`
}

// StatusFor maps an event type to the attempt status it announces.
// PaymentRejected is audit only and announces nothing: the stored attempt is
// left untouched on a signature mismatch.
func StatusFor(eventType string) (Status, bool) {
	switch eventType {
	case EventOrderCreated:
		return StatusAwaitingCallback, true
	case EventPaymentVerified:
		return StatusVerified, true
	case EventPaymentAbandoned:
		return StatusAbandoned, true
	}
	return "", false
}

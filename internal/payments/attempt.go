package payments

import (
	"context"
	"time"

	"github.com/alterd/checkout/internal/money"
	"github.com/shopspring/decimal"
)

// Attempt is the minimal record kept per gateway order so verification can be
// tied to an order this service created and replays can be detected.
type Attempt struct {
	OrderID     string     `json:"order_id"`
	Receipt     string     `json:"receipt"`
	AmountMinor int64      `json:"amount_minor"`
	Currency    string     `json:"currency"`
	Status      Status     `json:"status"`
	PaymentID   string     `json:"payment_id,omitempty"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Store interface {
	Create(ctx context.Context, a *Attempt) error
	Get(ctx context.Context, orderID string) (*Attempt, error)
	// Transition loads the attempt under a row lock, lets fn edit it and
	// persists the result. An error from fn aborts the write.
	Transition(ctx context.Context, orderID string, fn func(a *Attempt) error) (*Attempt, error)
}

// StatusView is the client-facing projection of an attempt, and the shape
// kept in the order status cache.
type StatusView struct {
	OrderID   string           `json:"order_id"`
	Status    Status           `json:"status"`
	PaymentID string           `json:"payment_id,omitempty"`
	Amount    *decimal.Decimal `json:"amount,omitempty"` // major units
	Currency  string           `json:"currency,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (a *Attempt) View() StatusView {
	v := StatusView{OrderID: a.OrderID, Status: a.Status, PaymentID: a.PaymentID, UpdatedAt: a.UpdatedAt}
	v.SetAmount(a.AmountMinor, a.Currency)
	return v
}

// SetAmount fills Amount from minor units. Unknown currencies leave it empty.
func (v *StatusView) SetAmount(minor int64, currency string) {
	amt, err := money.FromMinor(minor, currency)
	if err != nil {
		return
	}
	v.Amount = &amt
	v.Currency = money.Normalize(currency)
}

package payments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]Status{
		{StatusNew, StatusOrderCreated},
		{StatusNew, StatusFailed},
		{StatusOrderCreated, StatusAwaitingCallback},
		{StatusAwaitingCallback, StatusVerified},
		{StatusAwaitingCallback, StatusRejected},
		{StatusAwaitingCallback, StatusAbandoned},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]Status{
		{StatusNew, StatusVerified},
		{StatusOrderCreated, StatusVerified},
		{StatusVerified, StatusRejected},
		{StatusRejected, StatusVerified},
		{StatusAbandoned, StatusVerified},
		{StatusFailed, StatusOrderCreated},
	}
	for _, tr := range denied {
		assert.False(t, CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestIsTerminal(t *testing.T) {
	for _, s := range []Status{StatusVerified, StatusRejected, StatusAbandoned, StatusFailed} {
		assert.True(t, s.IsTerminal(), s.String())
	}
	for _, s := range []Status{StatusNew, StatusOrderCreated, StatusAwaitingCallback} {
		assert.False(t, s.IsTerminal(), s.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		event string
		want  Status
		ok    bool
	}{
		{EventOrderCreated, StatusAwaitingCallback, true},
		{EventPaymentVerified, StatusVerified, true},
		{EventPaymentAbandoned, StatusAbandoned, true},
		{EventPaymentRejected, "", false},
		{"StockReserved", "", false},
	}
	for _, tt := range tests {
		got, ok := StatusFor(tt.event)
		assert.Equal(t, tt.ok, ok, tt.event)
		assert.Equal(t, tt.want, got, tt.event)
	}
}

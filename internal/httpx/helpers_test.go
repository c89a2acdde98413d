package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alterd/checkout/internal/gateway"
	"github.com/alterd/checkout/internal/payments"
	"github.com/stretchr/testify/require"
)

var testSecret = "test_key_secret"

type memAttempts struct {
	m        sync.Mutex
	attempts map[string]payments.Attempt
}

func (s *memAttempts) Create(_ context.Context, a *payments.Attempt) error {
	s.m.Lock()
	defer s.m.Unlock()
	if _, ok := s.attempts[a.OrderID]; ok {
		return payments.ErrAlreadyExists
	}
	s.attempts[a.OrderID] = *a
	return nil
}

func (s *memAttempts) Get(_ context.Context, orderID string) (*payments.Attempt, error) {
	s.m.Lock()
	defer s.m.Unlock()
	a, ok := s.attempts[orderID]
	if !ok {
		return nil, payments.ErrNotFound
	}
	return &a, nil
}

func (s *memAttempts) Transition(_ context.Context, orderID string, fn func(*payments.Attempt) error) (*payments.Attempt, error) {
	s.m.Lock()
	defer s.m.Unlock()
	a, ok := s.attempts[orderID]
	if !ok {
		return nil, payments.ErrNotFound
	}
	if err := fn(&a); err != nil {
		return nil, err
	}
	s.attempts[orderID] = a
	return &a, nil
}

type stubGateway struct{ err error }

func (g stubGateway) CreateOrder(_ context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &gateway.Order{ID: "order_test", Entity: "order", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created"}, nil
}

func newPaymentsService(gw payments.Gateway, secret string) (*payments.Service, *memAttempts) {
	store := &memAttempts{attempts: map[string]payments.Attempt{}}
	svc := payments.NewService(payments.Config{KeyID: "rzp_test_key", KeySecret: secret}, gw, store, nil)
	return svc, store
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStub(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, KeyID: "rzp_test_key", KeySecret: "shh", Timeout: time.Second})
}

func TestCreateOrder_Success(t *testing.T) {
	var got CreateOrderRequest
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "shh", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Order{
			ID: "order_abc", Entity: "order", Amount: got.Amount, AmountDue: got.Amount,
			Currency: got.Currency, Receipt: got.Receipt, Status: "created",
		})
	})

	order, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		Amount: 10000, Currency: "INR", Receipt: "r1", PaymentCapture: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(10000), order.Amount)
	assert.Equal(t, 1, got.PaymentCapture)
	assert.Equal(t, "r1", got.Receipt)
}

func TestCreateOrder_GatewayRejection(t *testing.T) {
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"Order amount less than minimum amount allowed"}}`))
	})

	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{Amount: 1, Currency: "INR"})
	var gwErr *Error
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
	assert.Equal(t, "BAD_REQUEST_ERROR", gwErr.Code)
	assert.Equal(t, "Order amount less than minimum amount allowed", err.Error())
}

func TestCreateOrder_Unreachable(t *testing.T) {
	client := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond})
	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{Amount: 100, Currency: "INR"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateOrder_Timeout(t *testing.T) {
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.CreateOrder(ctx, CreateOrderRequest{Amount: 100, Currency: "INR"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateOrder_BreakerOpensOnServerErrors(t *testing.T) {
	calls := 0
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 5; i++ {
		_, err := client.CreateOrder(context.Background(), CreateOrderRequest{Amount: 100, Currency: "INR"})
		require.Error(t, err)
	}
	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{Amount: 100, Currency: "INR"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 5, calls)
}

func TestCreateOrder_MissingID(t *testing.T) {
	client := newStub(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"amount":100}`))
	})
	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{Amount: 100, Currency: "INR"})
	assert.ErrorIs(t, err, ErrNoOrderID)
}

package httpx

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthz(t *testing.T) {
	rec := do(t, NewRouter(), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestNotFoundIsJSON(t *testing.T) {
	rec := do(t, NewRouter(), http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decodeBody(t, rec)["error"])
}

func TestReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	r := NewRouter()
	r.Get("/readyz", Ready(map[string]Check{"postgres": ok, "redis": ok}))
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/readyz", nil).Code)

	r = NewRouter()
	r.Get("/readyz", Ready(map[string]Check{"postgres": ok, "redis": down}))
	rec := do(t, r, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	failed := decodeBody(t, rec)["failed"].(map[string]any)
	assert.Equal(t, "connection refused", failed["redis"])
	assert.NotContains(t, failed, "postgres")
}

package supplier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func silentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRequestDeliveryDisabled(t *testing.T) {
	c := New("", silentLogger())
	if _, err := c.RequestDelivery(context.Background(), 0, "patty", 5); err != ErrDisabled {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestRequestDeliverySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"delivered": 5})
	}))
	defer server.Close()

	c := New(server.URL, silentLogger())
	delivered, err := c.RequestDelivery(context.Background(), 0, "patty", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if delivered != 5 {
		t.Errorf("expected 5 delivered, got %d", delivered)
	}
}

func TestRequestDeliveryServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL, silentLogger())
	if _, err := c.RequestDelivery(context.Background(), 0, "patty", 5); err == nil {
		t.Fatalf("expected an error for a 500 response")
	}
}

package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestClient_PostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/payment/create-intent", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(5800), req["amount"])

		json.NewEncoder(w).Encode(map[string]string{"id": "pi_123", "client_secret": "sec"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, testLogger())

	var out struct {
		ID           string `json:"id"`
		ClientSecret string `json:"client_secret"`
	}
	err := client.PostJSON(context.Background(), "/api/payment/create-intent",
		map[string]any{"amount": 5800, "currency": "rsd"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", out.ID)
}

func TestClient_RequestOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok_abc", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, testLogger())
	err := client.GetJSON(context.Background(), "/api/orders", nil,
		WithHeader("Authorization", "Bearer tok_abc"))
	assert.NoError(t, err)
}

func TestClient_EmptyBaseURLIsUnavailable(t *testing.T) {
	client := NewClient("", time.Second, testLogger())

	err := client.GetJSON(context.Background(), "/api/orders", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_NonSuccessStatusIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, testLogger())
	err := client.GetJSON(context.Background(), "/api/orders", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_ConnectionRefusedIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens anymore

	client := NewClient(srv.URL, time.Second, testLogger())
	err := client.GetJSON(context.Background(), "/api/orders", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, testLogger())

	for i := 0; i < 5; i++ {
		err := client.GetJSON(context.Background(), "/api/orders", nil)
		assert.ErrorIs(t, err, ErrUnavailable)
	}

	// after three consecutive failures the breaker stops sending requests
	assert.Equal(t, int32(3), hits.Load())
}

func TestClient_DecodeErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, testLogger())

	var out map[string]string
	err := client.GetJSON(context.Background(), "/api/orders", &out)
	assert.ErrorIs(t, err, ErrUnavailable)
}

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

var (
	// ErrUnavailable is returned for any transport failure, timeout,
	// non-success HTTP status or open circuit. Callers treat all of
	// these identically: switch to the local mock path.
	ErrUnavailable = errors.New("remote: backend unavailable")
)

// DefaultTimeout is applied per call when the caller supplies none.
const DefaultTimeout = 10 * time.Second

// Client is a JSON HTTP client for the optional storefront backend.
// Every collaborator adapter (payment, fiscal, orders, email) shares this
// shape: try the backend, and on ErrUnavailable substitute a local mock.
// A circuit breaker stops hammering a backend that is known to be down,
// which keeps checkout latency flat when running without one.
type Client struct {
	baseURL string
	httpc   *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  *slog.Logger
}

// RequestOption mutates an outgoing request before it is sent.
type RequestOption func(*http.Request)

// WithHeader sets a request header, e.g. an Authorization bearer token.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// NewClient creates a backend client rooted at baseURL.
// A zero timeout selects DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "backend",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("backend circuit state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		breaker: cb,
		logger:  logger,
	}
}

// PostJSON sends body as JSON to path and decodes the response into out.
// out may be nil when the response body is irrelevant.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("remote: encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, payload, out, opts...)
}

// GetJSON performs a GET against path and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts...)
}

// PatchJSON sends body as JSON via PATCH and decodes the response into out.
func (c *Client) PatchJSON(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("remote: encode request: %w", err)
	}
	return c.do(ctx, http.MethodPatch, path, payload, out, opts...)
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, out any, opts ...RequestOption) error {
	if c.baseURL == "" {
		return ErrUnavailable
	}

	respBody, err := c.breaker.Execute(func() ([]byte, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for _, opt := range opts {
			opt(req)
		}

		resp, err := c.httpc.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// Drain so the connection can be reused.
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		c.logger.Warn("backend call failed, caller will fall back",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decode %s %s response: %v", ErrUnavailable, method, path, err)
	}
	return nil
}

package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MockProvider is a deterministic payment provider for test mode.
// Simulates successful payment flows without calling any payment API.
// It doubles as the fallback generator behind FallbackProvider and as a
// configurable mock in tests.
type MockProvider struct {
	// CreatePaymentIntentFunc allows customizing intent creation behavior.
	CreatePaymentIntentFunc func(ctx context.Context, params CreateIntentParams) (*Result, error)

	// ConfirmPaymentFunc allows customizing confirmation behavior.
	ConfirmPaymentFunc func(ctx context.Context, paymentIntentID, paymentMethodID string) (*Result, error)

	// PaymentIntents stores created intents for retrieval and assertions.
	PaymentIntents map[string]*PaymentIntent

	// CallLog tracks method calls for test assertions.
	CallLog []string
}

// NewMockProvider creates a new mock payment provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		PaymentIntents: make(map[string]*PaymentIntent),
		CallLog:        []string{},
	}
}

// CreatePaymentIntent creates a mock payment intent with a freshly
// generated opaque id (timestamp plus random suffix).
func (m *MockProvider) CreatePaymentIntent(ctx context.Context, params CreateIntentParams) (*Result, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("CreatePaymentIntent(%d, %s)", params.Amount, params.Currency))

	if m.CreatePaymentIntentFunc != nil {
		return m.CreatePaymentIntentFunc(ctx, params)
	}

	if params.Amount <= 0 {
		return &Result{Success: false, Error: ErrInvalidAmount.Error()}, nil
	}

	id := fmt.Sprintf("pi_test_%d_%s", time.Now().UnixMilli(), randomToken(9))
	secret := fmt.Sprintf("%s_secret_%s", id, randomToken(16))

	m.PaymentIntents[id] = &PaymentIntent{
		ID:           id,
		ClientSecret: secret,
		Amount:       params.Amount,
		Currency:     strings.ToLower(params.Currency),
		Status:       StatusRequiresConfirmation,
	}

	return &Result{
		Success:         true,
		PaymentIntentID: id,
		ClientSecret:    secret,
		Message:         "Payment intent created (test mode)",
	}, nil
}

// ConfirmPayment confirms a mock payment intent. Unknown ids are accepted
// so the mock can confirm intents created by a failed real backend.
func (m *MockProvider) ConfirmPayment(ctx context.Context, paymentIntentID, paymentMethodID string) (*Result, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("ConfirmPayment(%s, %s)", paymentIntentID, paymentMethodID))

	if m.ConfirmPaymentFunc != nil {
		return m.ConfirmPaymentFunc(ctx, paymentIntentID, paymentMethodID)
	}

	if paymentIntentID == "" {
		return &Result{Success: false, Error: ErrMissingIntentID.Error()}, nil
	}

	if pi, ok := m.PaymentIntents[paymentIntentID]; ok {
		pi.Status = StatusSucceeded
	}

	return &Result{
		Success:         true,
		PaymentIntentID: paymentIntentID,
		Message:         "Payment confirmed (test mode)",
	}, nil
}

// SimulateFailedPayment configures the mock to decline confirmations.
// Used in tests to drive the orchestrator into its failure path.
func (m *MockProvider) SimulateFailedPayment(errorMessage string) {
	m.ConfirmPaymentFunc = func(ctx context.Context, paymentIntentID, paymentMethodID string) (*Result, error) {
		return &Result{Success: false, PaymentIntentID: paymentIntentID, Error: errorMessage}, nil
	}
}

// randomToken returns n characters of a fresh UUID without dashes.
func randomToken(n int) string {
	s := strings.ReplaceAll(uuid.New().String(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

package payment

import (
	"context"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeConfig contains configuration for the direct Stripe provider.
type StripeConfig struct {
	// SecretKey is the Stripe secret key (sk_test_... or sk_live_...).
	// Stripe supports Serbia; test cards: https://stripe.com/docs/testing
	SecretKey string

	// PublishableKey is surfaced to clients that collect card details.
	PublishableKey string

	// MaxRetries is the maximum number of retries for transient failures.
	MaxRetries int
}

// Validate checks that required configuration is present.
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return ErrInvalidAPIKey
	}
	return nil
}

// IsTestMode returns true if using test mode API keys.
func (c *StripeConfig) IsTestMode() bool {
	return strings.HasPrefix(c.SecretKey, "sk_test_")
}

// StripeProvider implements Provider against the Stripe API directly,
// for deployments without an intermediary backend.
type StripeProvider struct {
	cfg StripeConfig
}

// NewStripeProvider creates a Stripe-backed payment provider.
func NewStripeProvider(cfg StripeConfig) (*StripeProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stripe.Key = cfg.SecretKey
	return &StripeProvider{cfg: cfg}, nil
}

// CreatePaymentIntent creates a Stripe payment intent.
func (p *StripeProvider) CreatePaymentIntent(ctx context.Context, params CreateIntentParams) (*Result, error) {
	if params.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if params.Currency == "" {
		return nil, ErrMissingCurrency
	}

	piParams := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(params.Amount),
		Currency: stripe.String(strings.ToLower(params.Currency)),
	}
	for k, v := range params.Metadata {
		piParams.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(piParams)
	if err != nil {
		return nil, err
	}

	return &Result{
		Success:         true,
		PaymentIntentID: pi.ID,
		ClientSecret:    pi.ClientSecret,
	}, nil
}

// ConfirmPayment confirms a Stripe payment intent with a payment method.
func (p *StripeProvider) ConfirmPayment(ctx context.Context, paymentIntentID, paymentMethodID string) (*Result, error) {
	if paymentIntentID == "" {
		return nil, ErrMissingIntentID
	}

	pi, err := paymentintent.Confirm(paymentIntentID, &stripe.PaymentIntentConfirmParams{
		Params:        stripe.Params{Context: ctx},
		PaymentMethod: stripe.String(paymentMethodID),
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Success:         pi.Status == stripe.PaymentIntentStatusSucceeded,
		PaymentIntentID: pi.ID,
	}
	if !result.Success {
		result.Message = string(pi.Status)
	}
	return result, nil
}

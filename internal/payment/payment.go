package payment

import "context"

// Payment intent status lifecycle. Terminal states are StatusSucceeded
// and StatusCanceled.
const (
	StatusRequiresPaymentMethod = "requires_payment_method"
	StatusRequiresConfirmation  = "requires_confirmation"
	StatusRequiresAction        = "requires_action"
	StatusProcessing            = "processing"
	StatusSucceeded             = "succeeded"
	StatusCanceled              = "canceled"
)

// PaymentIntent is an opaque handle representing one attempted charge.
// Amount is in the smallest currency unit (integer after rounding);
// Currency is a lower-cased ISO code.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// CreateIntentParams contains parameters for creating a payment intent.
type CreateIntentParams struct {
	// Amount in the smallest currency unit.
	Amount int64

	// Currency code (ISO 4217, lower case) - e.g. "rsd".
	Currency string

	// Metadata for filtering and reconciliation (order number, session id).
	Metadata map[string]string
}

// Result is the structured response every provider operation returns.
// Non-exceptional failures (declined card, backend error body) are
// reported via Success=false; transport exceptions are converted to the
// same shape by the fallback wrapper.
type Result struct {
	Success         bool   `json:"success"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	ClientSecret    string `json:"client_secret,omitempty"`
	Error           string `json:"error,omitempty"`
	Message         string `json:"message,omitempty"`
}

// Provider defines the interface for payment processing.
// Implementations: RemoteProvider (storefront backend), StripeProvider
// (direct Stripe API), MockProvider (deterministic test mode).
type Provider interface {
	// CreatePaymentIntent creates a payment intent for a one-time charge.
	// Exactly one intent is created per checkout attempt.
	CreatePaymentIntent(ctx context.Context, params CreateIntentParams) (*Result, error)

	// ConfirmPayment confirms a previously created intent with a
	// tokenized payment method.
	ConfirmPayment(ctx context.Context, paymentIntentID, paymentMethodID string) (*Result, error)
}

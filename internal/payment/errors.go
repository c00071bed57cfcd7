package payment

import "errors"

var (
	// ErrInvalidAmount is returned when the intent amount is not positive.
	ErrInvalidAmount = errors.New("payment: amount must be a positive integer")

	// ErrMissingCurrency is returned when no currency code is supplied.
	ErrMissingCurrency = errors.New("payment: currency is required")

	// ErrMissingIntentID is returned when confirmation is attempted
	// without a payment intent id.
	ErrMissingIntentID = errors.New("payment: payment intent id is required")

	// ErrPaymentIntentNotFound is returned when an intent does not exist.
	ErrPaymentIntentNotFound = errors.New("payment: payment intent not found")

	// ErrInvalidAPIKey is returned when the Stripe API key is missing.
	ErrInvalidAPIKey = errors.New("payment: invalid or missing API key")
)

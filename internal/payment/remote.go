package payment

import (
	"context"
	"strings"

	"github.com/nooktextiles/nook/internal/remote"
)

// RemoteProvider calls the storefront backend's payment endpoints, which
// proxy the real gateway. Transport failures surface as errors so the
// fallback wrapper can substitute the mock path.
type RemoteProvider struct {
	client *remote.Client
}

// NewRemoteProvider creates a backend-proxied payment provider.
func NewRemoteProvider(client *remote.Client) *RemoteProvider {
	return &RemoteProvider{client: client}
}

type createIntentRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// CreatePaymentIntent POSTs /api/payment/create-intent.
func (p *RemoteProvider) CreatePaymentIntent(ctx context.Context, params CreateIntentParams) (*Result, error) {
	if params.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if params.Currency == "" {
		return nil, ErrMissingCurrency
	}

	meta := params.Metadata
	if meta == nil {
		meta = map[string]string{}
	}

	var resp intentResponse
	err := p.client.PostJSON(ctx, "/api/payment/create-intent", createIntentRequest{
		Amount:   params.Amount,
		Currency: strings.ToLower(params.Currency),
		Metadata: meta,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &Result{
		Success:         true,
		PaymentIntentID: resp.ID,
		ClientSecret:    resp.ClientSecret,
	}, nil
}

type confirmRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
	PaymentMethodID string `json:"payment_method_id"`
}

// ConfirmPayment POSTs /api/payment/confirm. Success means the backend
// reports the intent as succeeded.
func (p *RemoteProvider) ConfirmPayment(ctx context.Context, paymentIntentID, paymentMethodID string) (*Result, error) {
	if paymentIntentID == "" {
		return nil, ErrMissingIntentID
	}

	var resp intentResponse
	err := p.client.PostJSON(ctx, "/api/payment/confirm", confirmRequest{
		PaymentIntentID: paymentIntentID,
		PaymentMethodID: paymentMethodID,
	}, &resp)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Success:         resp.Status == StatusSucceeded,
		PaymentIntentID: resp.ID,
	}
	if result.Success {
		result.Message = "Payment successful"
	} else {
		result.Message = "Payment processing"
	}
	return result, nil
}

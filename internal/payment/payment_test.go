package payment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestMockProvider_CreatePaymentIntent(t *testing.T) {
	mock := NewMockProvider()

	result, err := mock.CreatePaymentIntent(context.Background(), CreateIntentParams{
		Amount:   5800,
		Currency: "RSD",
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.True(t, strings.HasPrefix(result.PaymentIntentID, "pi_test_"))
	assert.Contains(t, result.ClientSecret, "_secret_")

	pi := mock.PaymentIntents[result.PaymentIntentID]
	require.NotNil(t, pi)
	assert.Equal(t, int64(5800), pi.Amount)
	assert.Equal(t, "rsd", pi.Currency)
	assert.Equal(t, StatusRequiresConfirmation, pi.Status)
}

func TestMockProvider_CreatePaymentIntent_InvalidAmount(t *testing.T) {
	mock := NewMockProvider()

	result, err := mock.CreatePaymentIntent(context.Background(), CreateIntentParams{
		Amount:   0,
		Currency: "rsd",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestMockProvider_ConfirmPayment(t *testing.T) {
	ctx := context.Background()
	mock := NewMockProvider()

	created, err := mock.CreatePaymentIntent(ctx, CreateIntentParams{Amount: 5800, Currency: "rsd"})
	require.NoError(t, err)

	confirmed, err := mock.ConfirmPayment(ctx, created.PaymentIntentID, "pm_card_test")
	require.NoError(t, err)
	assert.True(t, confirmed.Success)
	assert.Equal(t, created.PaymentIntentID, confirmed.PaymentIntentID)
	assert.Equal(t, StatusSucceeded, mock.PaymentIntents[created.PaymentIntentID].Status)
}

func TestMockProvider_ConfirmPayment_UnknownIntentAccepted(t *testing.T) {
	mock := NewMockProvider()

	// intents created by a real backend before it went away must still confirm
	result, err := mock.ConfirmPayment(context.Background(), "pi_from_real_backend", "pm_card_test")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestMockProvider_ConfirmPayment_MissingIntentID(t *testing.T) {
	mock := NewMockProvider()

	result, err := mock.ConfirmPayment(context.Background(), "", "pm_card_test")
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestMockProvider_UniqueIntentIDs(t *testing.T) {
	ctx := context.Background()
	mock := NewMockProvider()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		result, err := mock.CreatePaymentIntent(ctx, CreateIntentParams{Amount: 100, Currency: "rsd"})
		require.NoError(t, err)
		require.False(t, seen[result.PaymentIntentID])
		seen[result.PaymentIntentID] = true
	}
}

func TestFallbackProvider_UsesPrimaryWhenHealthy(t *testing.T) {
	primary := NewMockProvider()
	primary.CreatePaymentIntentFunc = func(ctx context.Context, params CreateIntentParams) (*Result, error) {
		return &Result{Success: true, PaymentIntentID: "pi_primary"}, nil
	}

	fb := NewFallbackProvider(primary, testLogger())
	result, err := fb.CreatePaymentIntent(context.Background(), CreateIntentParams{Amount: 100, Currency: "rsd"})
	require.NoError(t, err)
	assert.Equal(t, "pi_primary", result.PaymentIntentID)
}

func TestFallbackProvider_FallsBackOnError(t *testing.T) {
	primary := NewMockProvider()
	primary.CreatePaymentIntentFunc = func(ctx context.Context, params CreateIntentParams) (*Result, error) {
		return nil, errors.New("gateway unreachable")
	}

	fb := NewFallbackProvider(primary, testLogger())
	result, err := fb.CreatePaymentIntent(context.Background(), CreateIntentParams{Amount: 100, Currency: "rsd"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.PaymentIntentID, "pi_test_"))
}

func TestFallbackProvider_FallsBackOnUnsuccessfulResult(t *testing.T) {
	primary := NewMockProvider()
	primary.ConfirmPaymentFunc = func(ctx context.Context, paymentIntentID, paymentMethodID string) (*Result, error) {
		return &Result{Success: false, Error: "processing"}, nil
	}

	fb := NewFallbackProvider(primary, testLogger())
	result, err := fb.ConfirmPayment(context.Background(), "pi_x", "pm_y")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestFallbackProvider_NilPrimaryIsPureTestMode(t *testing.T) {
	fb := NewFallbackProvider(nil, testLogger())

	result, err := fb.CreatePaymentIntent(context.Background(), CreateIntentParams{Amount: 100, Currency: "rsd"})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestStripeConfig_Validate(t *testing.T) {
	cfg := StripeConfig{SecretKey: "sk_test_abc", PublishableKey: "pk_test_abc"}
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsTestMode())

	live := StripeConfig{SecretKey: "sk_live_abc"}
	assert.NoError(t, live.Validate())
	assert.False(t, live.IsTestMode())

	empty := StripeConfig{}
	assert.Error(t, empty.Validate())
}

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nooktextiles/nook/internal/domain"
	"github.com/nooktextiles/nook/internal/email"
	"github.com/nooktextiles/nook/internal/fiscal"
	"github.com/nooktextiles/nook/internal/payment"
	"github.com/nooktextiles/nook/internal/storage"
)

type checkoutFixture struct {
	checkout CheckoutService
	cart     domain.CartService
	orders   domain.OrderService
	payments *payment.MockProvider
	fiscal   *fiscal.MockService
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	store := storage.NewMemoryStore()
	cart := NewCartService(store, testLogger())
	orders := NewOrderService(nil, store, testLogger())
	payments := payment.NewMockProvider()
	fiscalSvc := fiscal.NewMockService()
	emails := email.NewService(nil, "orders@nook.com", "NOOK", testLogger())

	checkout := NewCheckoutService(CheckoutConfig{
		Cart:     cart,
		Payments: payments,
		Fiscal:   fiscalSvc,
		Orders:   orders,
		Emails:   emails,
		Logger:   testLogger(),
	})

	return &checkoutFixture{
		checkout: checkout,
		cart:     cart,
		orders:   orders,
		payments: payments,
		fiscal:   fiscalSvc,
	}
}

func checkoutRequest() domain.CheckoutRequest {
	return domain.CheckoutRequest{
		SessionID:       "sess-1",
		UserID:          "user-1",
		ShippingAddress: testAddress(),
		PaymentMethodID: "pm_card_test",
	}
}

func fillCart(t *testing.T, cart domain.CartService) {
	t.Helper()
	ctx := context.Background()
	_, err := cart.AddItem(ctx, "sess-1", curtain())
	require.NoError(t, err)
	_, err = cart.AddItem(ctx, "sess-1", cushion())
	require.NoError(t, err)
}

func TestCheckout_EndToEnd(t *testing.T) {
	ctx := context.Background()
	fx := newCheckoutFixture(t)
	fillCart(t, fx.cart)

	confirmation, err := fx.checkout.Checkout(ctx, checkoutRequest())
	require.NoError(t, err)
	fx.checkout.Wait()

	assert.NotEmpty(t, confirmation.PaymentIntentID)
	assert.NotEmpty(t, confirmation.OrderNumber)
	require.NotNil(t, confirmation.FiscalReceipt)
	assert.Empty(t, confirmation.Warnings)

	// cart 3500 + 2*900 plus shipping 500, VAT embedded at 20%
	assert.InDelta(t, 5800.0, confirmation.FiscalReceipt.TotalAmount, 0.001)
	assert.InDelta(t, 966.67, confirmation.FiscalReceipt.TaxAmount, 0.001)

	// cart is cleared on completion
	summary, err := fx.cart.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, summary.Items)

	// exactly one pending order for the user
	orders, err := fx.orders.GetUserOrders(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusPending, orders[0].Status)
	assert.Equal(t, confirmation.OrderNumber, orders[0].OrderNumber)
	assert.Equal(t, confirmation.PaymentIntentID, orders[0].PaymentIntentID)
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	fx := newCheckoutFixture(t)

	_, err := fx.checkout.Checkout(context.Background(), checkoutRequest())
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestCheckout_InvalidRequestRejected(t *testing.T) {
	fx := newCheckoutFixture(t)
	fillCart(t, fx.cart)

	req := checkoutRequest()
	req.PaymentMethodID = ""

	_, err := fx.checkout.Checkout(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
}

func TestCheckout_IntentCreationFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	fx := newCheckoutFixture(t)
	fillCart(t, fx.cart)

	fx.payments.CreatePaymentIntentFunc = func(ctx context.Context, params payment.CreateIntentParams) (*payment.Result, error) {
		return nil, errors.New("gateway unreachable")
	}

	_, err := fx.checkout.Checkout(ctx, checkoutRequest())
	require.Error(t, err)
	assert.Equal(t, domain.EPAYMENT, domain.ErrorCode(err))

	// no order may exist without a confirmed payment
	orders, err := fx.orders.GetUserOrders(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, orders)

	// cart is untouched so the user can retry
	summary, err := fx.cart.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Len(t, summary.Items, 2)
}

func TestCheckout_DeclinedPaymentIsFatal(t *testing.T) {
	ctx := context.Background()
	fx := newCheckoutFixture(t)
	fillCart(t, fx.cart)

	fx.payments.SimulateFailedPayment("Your card was declined")

	_, err := fx.checkout.Checkout(ctx, checkoutRequest())
	require.Error(t, err)
	assert.Equal(t, domain.EPAYMENT, domain.ErrorCode(err))
	assert.Contains(t, domain.ErrorMessage(err), "declined")

	orders, err := fx.orders.GetUserOrders(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_ReceiptFailureDegrades(t *testing.T) {
	ctx := context.Background()
	fx := newCheckoutFixture(t)
	fillCart(t, fx.cart)

	fx.fiscal.IssueReceiptFunc = func(ctx context.Context, req fiscal.ReceiptRequest) (*fiscal.ReceiptResult, error) {
		return &fiscal.ReceiptResult{Success: false, Error: "fiscal device offline"}, nil
	}

	confirmation, err := fx.checkout.Checkout(ctx, checkoutRequest())
	require.NoError(t, err)
	fx.checkout.Wait()

	assert.Nil(t, confirmation.FiscalReceipt)
	assert.NotEmpty(t, confirmation.PaymentIntentID)
	assert.NotEmpty(t, confirmation.Warnings)

	// the flow still completed: cart cleared, order saved without receipt
	summary, err := fx.cart.GetCart(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, summary.Items)

	orders, err := fx.orders.GetUserOrders(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Nil(t, orders[0].FiscalReceipt)
}

func TestCheckout_PersistenceFailureDegrades(t *testing.T) {
	ctx := context.Background()
	fx := newCheckoutFixture(t)
	fillCart(t, fx.cart)

	failing := &failingOrderService{}
	checkout := NewCheckoutService(CheckoutConfig{
		Cart:     fx.cart,
		Payments: fx.payments,
		Fiscal:   fx.fiscal,
		Orders:   failing,
		Logger:   testLogger(),
	})

	confirmation, err := checkout.Checkout(ctx, checkoutRequest())
	require.NoError(t, err)
	checkout.Wait()

	assert.NotEmpty(t, confirmation.PaymentIntentID)
	assert.Empty(t, confirmation.OrderNumber)
	assert.NotEmpty(t, confirmation.Warnings)
}

type failingOrderService struct{}

func (f *failingOrderService) SaveOrder(ctx context.Context, data domain.CreateOrderData) (*domain.OrderResult, error) {
	return nil, errors.New("store unavailable")
}

func (f *failingOrderService) GetUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return nil, errors.New("store unavailable")
}

func (f *failingOrderService) GetOrderByID(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	return nil, errors.New("store unavailable")
}

func (f *failingOrderService) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.OrderResult, error) {
	return nil, errors.New("store unavailable")
}

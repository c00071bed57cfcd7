package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nooktextiles/nook/internal/domain"
	"github.com/nooktextiles/nook/internal/email"
	"github.com/nooktextiles/nook/internal/fiscal"
	"github.com/nooktextiles/nook/internal/payment"
	"github.com/nooktextiles/nook/internal/router"
	"github.com/nooktextiles/nook/internal/service"
	"github.com/nooktextiles/nook/internal/storage"
)

type apiFixture struct {
	server   *httptest.Server
	checkout service.CheckoutService
	cart     domain.CartService
	orders   domain.OrderService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	store := storage.NewMemoryStore()
	cart := service.NewCartService(store, logger)
	orders := service.NewOrderService(nil, store, logger)
	users := service.NewUserService(nil, store, logger)
	emails := email.NewService(nil, "orders@nook.com", "NOOK", logger)

	checkout := service.NewCheckoutService(service.CheckoutConfig{
		Cart:     cart,
		Payments: payment.NewMockProvider(),
		Fiscal:   fiscal.NewMockService(),
		Orders:   orders,
		Emails:   emails,
		Logger:   logger,
	})

	r := router.New()
	NewAPI(cart, checkout, orders, users, logger).Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &apiFixture{server: srv, checkout: checkout, cart: cart, orders: orders}
}

func (fx *apiFixture) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, fx.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := fx.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func shippingAddressBody() map[string]string {
	return map[string]string{
		"name":    "Ana Petrovic",
		"email":   "ana@example.com",
		"phone":   "+381601234567",
		"address": "Knez Mihailova 12",
		"city":    "Belgrade",
		"zipCode": "11000",
		"country": "Serbia",
	}
}

func TestAPI_Health(t *testing.T) {
	fx := newAPIFixture(t)

	resp := fx.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "ok", body["status"])
}

func TestAPI_CartLifecycle(t *testing.T) {
	fx := newAPIFixture(t)

	resp := fx.do(t, http.MethodPost, "/api/cart/sess-1/items", domain.CartItem{
		ProductID: "prod-1",
		Name:      "Linen Curtain",
		Price:     3500,
		Quantity:  1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = fx.do(t, http.MethodPost, "/api/cart/sess-1/items", domain.CartItem{
		ProductID: "prod-2",
		Name:      "Cushion Cover",
		Price:     900,
		Quantity:  2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[domain.CartSummary](t, resp)
	assert.Equal(t, 3, summary.ItemCount)
	assert.InDelta(t, 5300.0, summary.Subtotal, 0.001)

	resp = fx.do(t, http.MethodPatch, "/api/cart/sess-1/items/prod-2", map[string]int{"quantity": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary = decode[domain.CartSummary](t, resp)
	assert.Equal(t, 2, summary.ItemCount)

	resp = fx.do(t, http.MethodDelete, "/api/cart/sess-1/items/prod-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary = decode[domain.CartSummary](t, resp)
	assert.Len(t, summary.Items, 1)

	resp = fx.do(t, http.MethodDelete, "/api/cart/sess-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = fx.do(t, http.MethodGet, "/api/cart/sess-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary = decode[domain.CartSummary](t, resp)
	assert.Empty(t, summary.Items)
}

func TestAPI_CartRejectsInvalidQuantity(t *testing.T) {
	fx := newAPIFixture(t)

	resp := fx.do(t, http.MethodPost, "/api/cart/sess-1/items", domain.CartItem{
		ProductID: "prod-1",
		Name:      "Linen Curtain",
		Price:     3500,
		Quantity:  0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CheckoutAndOrders(t *testing.T) {
	fx := newAPIFixture(t)

	resp := fx.do(t, http.MethodPost, "/api/cart/sess-1/items", domain.CartItem{
		ProductID: "prod-1",
		Name:      "Linen Curtain",
		Price:     3500,
		Quantity:  1,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = fx.do(t, http.MethodPost, "/api/checkout", map[string]any{
		"sessionId":       "sess-1",
		"userId":          "user-1",
		"shippingAddress": shippingAddressBody(),
		"paymentMethodId": "pm_card_test",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	confirmation := decode[domain.CheckoutConfirmation](t, resp)
	fx.checkout.Wait()

	assert.True(t, strings.HasPrefix(confirmation.PaymentIntentID, "pi_test_"))
	require.NotEmpty(t, confirmation.OrderNumber)
	require.NotNil(t, confirmation.FiscalReceipt)

	resp = fx.do(t, http.MethodGet, "/api/orders?userId=user-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[struct {
		Orders []domain.Order `json:"orders"`
	}](t, resp)
	require.Len(t, list.Orders, 1)
	order := list.Orders[0]
	assert.Equal(t, confirmation.OrderNumber, order.OrderNumber)

	resp = fx.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%s?userId=user-1", order.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decode[domain.Order](t, resp)
	assert.Equal(t, order.ID, fetched.ID)

	// another user must not see the order
	resp = fx.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%s?userId=user-2", order.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_CheckoutEmptyCart(t *testing.T) {
	fx := newAPIFixture(t)

	resp := fx.do(t, http.MethodPost, "/api/checkout", map[string]any{
		"sessionId":       "sess-empty",
		"userId":          "user-1",
		"shippingAddress": shippingAddressBody(),
		"paymentMethodId": "pm_card_test",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[map[string]map[string]string](t, resp)
	assert.Equal(t, domain.EINVALID, body["error"]["code"])
}

func TestAPI_ListOrdersRequiresUserID(t *testing.T) {
	fx := newAPIFixture(t)

	resp := fx.do(t, http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_UpdateOrderStatus(t *testing.T) {
	fx := newAPIFixture(t)

	result, err := fx.orders.SaveOrder(t.Context(), domain.CreateOrderData{
		UserID: "user-1",
		Items: []domain.CartItem{{
			ProductID: "prod-1",
			Name:      "Linen Curtain",
			Price:     3500,
			Quantity:  1,
		}},
		Subtotal:        3500,
		Shipping:        500,
		Tax:             666.67,
		Total:           4000,
		PaymentIntentID: "pi_test_1",
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	resp := fx.do(t, http.MethodPatch,
		fmt.Sprintf("/api/orders/%s/status", result.Order.ID),
		map[string]string{"status": "processing"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = fx.do(t, http.MethodPatch, "/api/orders/missing/status",
		map[string]string{"status": "processing"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_DownloadReceipt(t *testing.T) {
	fx := newAPIFixture(t)

	gen := fiscal.NewGenerator()
	receipt, err := gen.Generate(fiscal.ReceiptRequest{
		Items: []fiscal.ReceiptItem{{
			Name:       "Linen Curtain",
			Quantity:   1,
			UnitPrice:  3500,
			TotalPrice: 3500,
			TaxRate:    fiscal.StandardVATRate,
		}},
		TotalAmount:   3500,
		TransactionID: "pi_test_1",
	})
	require.NoError(t, err)

	result, err := fx.orders.SaveOrder(t.Context(), domain.CreateOrderData{
		UserID: "user-1",
		Items: []domain.CartItem{{
			ProductID: "prod-1",
			Name:      "Linen Curtain",
			Price:     3500,
			Quantity:  1,
		}},
		Subtotal:      3500,
		Total:         3500,
		FiscalReceipt: receipt,
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	resp := fx.do(t, http.MethodGet,
		fmt.Sprintf("/api/orders/%s/receipt?userId=user-1", result.Order.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"),
		fmt.Sprintf("fiscal-receipt-%s.txt", receipt.ReceiptNumber))

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "FISCAL RECEIPT")
	assert.Contains(t, buf.String(), "PIB: RS112233445")
}

func TestAPI_AuthFlow(t *testing.T) {
	fx := newAPIFixture(t)

	resp := fx.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "Mila@Example.com",
		"password": "correct-horse",
		"name":     "Mila",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reg := decode[domain.AuthResult](t, resp)
	require.True(t, reg.Success)
	assert.Equal(t, "mila@example.com", reg.User.Email)

	resp = fx.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "mila@example.com",
		"password": "another-pass",
		"name":     "Mila",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = fx.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "mila@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = fx.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "mila@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[domain.AuthResult](t, resp)
	assert.True(t, login.Success)
	assert.NotEmpty(t, login.Token)

	resp = fx.do(t, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[domain.User](t, resp)
	assert.Equal(t, "mila@example.com", me.Email)

	resp = fx.do(t, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = fx.do(t, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

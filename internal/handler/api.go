package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nooktextiles/nook/internal/domain"
	"github.com/nooktextiles/nook/internal/fiscal"
	"github.com/nooktextiles/nook/internal/router"
	"github.com/nooktextiles/nook/internal/service"
)

// API exposes the storefront's JSON endpoints.
type API struct {
	cart     domain.CartService
	checkout service.CheckoutService
	orders   domain.OrderService
	users    domain.UserService
	logger   *slog.Logger
}

// NewAPI creates the API handler set.
func NewAPI(cart domain.CartService, checkout service.CheckoutService, orders domain.OrderService, users domain.UserService, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		cart:     cart,
		checkout: checkout,
		orders:   orders,
		users:    users,
		logger:   logger,
	}
}

// Routes registers all API routes on the router.
func (a *API) Routes(r *router.Router) {
	r.Get("/healthz", a.health)

	r.Post("/api/auth/register", a.register)
	r.Post("/api/auth/login", a.login)
	r.Post("/api/auth/logout", a.logout)
	r.Get("/api/auth/me", a.currentUser)

	r.Get("/api/cart/{sessionID}", a.getCart)
	r.Post("/api/cart/{sessionID}/items", a.addCartItem)
	r.Patch("/api/cart/{sessionID}/items/{productID}", a.updateCartItem)
	r.Delete("/api/cart/{sessionID}/items/{productID}", a.removeCartItem)
	r.Delete("/api/cart/{sessionID}", a.clearCart)

	r.Post("/api/checkout", a.submitCheckout)

	r.Get("/api/orders", a.listOrders)
	r.Get("/api/orders/{orderID}", a.getOrder)
	r.Patch("/api/orders/{orderID}/status", a.updateOrderStatus)
	r.Get("/api/orders/{orderID}/receipt", a.downloadReceipt)
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, a.logger, domain.Invalid("api.register", "Invalid request body"))
		return
	}

	result, err := a.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	if !result.Success {
		respondJSON(w, http.StatusConflict, result)
		return
	}
	respondJSON(w, http.StatusCreated, result)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, a.logger, domain.Invalid("api.login", "Invalid request body"))
		return
	}

	result, err := a.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	if !result.Success {
		respondJSON(w, http.StatusUnauthorized, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	if err := a.users.Logout(r.Context()); err != nil {
		respondError(w, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (a *API) currentUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.users.CurrentUser(r.Context())
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (a *API) getCart(w http.ResponseWriter, r *http.Request) {
	summary, err := a.cart.GetCart(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (a *API) addCartItem(w http.ResponseWriter, r *http.Request) {
	var item domain.CartItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		respondError(w, a.logger, domain.Invalid("api.addCartItem", "Invalid request body"))
		return
	}

	summary, err := a.cart.AddItem(r.Context(), r.PathValue("sessionID"), item)
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (a *API) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, a.logger, domain.Invalid("api.updateCartItem", "Invalid request body"))
		return
	}

	summary, err := a.cart.UpdateItemQuantity(r.Context(),
		r.PathValue("sessionID"), r.PathValue("productID"), req.Quantity)
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (a *API) removeCartItem(w http.ResponseWriter, r *http.Request) {
	summary, err := a.cart.RemoveItem(r.Context(),
		r.PathValue("sessionID"), r.PathValue("productID"))
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (a *API) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := a.cart.ClearCart(r.Context(), r.PathValue("sessionID")); err != nil {
		respondError(w, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (a *API) submitCheckout(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, a.logger, domain.Invalid("api.submitCheckout", "Invalid request body"))
		return
	}

	confirmation, err := a.checkout.Checkout(r.Context(), req)
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, confirmation)
}

func (a *API) listOrders(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		respondError(w, a.logger, domain.Invalid("api.listOrders", "userId is required"))
		return
	}

	orders, err := a.orders.GetUserOrders(r.Context(), userID)
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	order, err := a.orders.GetOrderByID(r.Context(), r.PathValue("orderID"), userID)
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

func (a *API) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, a.logger, domain.Invalid("api.updateOrderStatus", "Invalid request body"))
		return
	}

	result, err := a.orders.UpdateOrderStatus(r.Context(), r.PathValue("orderID"), req.Status)
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	if !result.Success {
		respondJSON(w, http.StatusNotFound, result)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// downloadReceipt serves the order's fiscal receipt as a plain-text
// attachment.
func (a *API) downloadReceipt(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	order, err := a.orders.GetOrderByID(r.Context(), r.PathValue("orderID"), userID)
	if err != nil {
		respondError(w, a.logger, err)
		return
	}
	if order.FiscalReceipt == nil {
		respondError(w, a.logger, domain.NotFound("api.downloadReceipt", "fiscal receipt", order.ID))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fiscal.ReceiptFilename(order.FiscalReceipt)))
	_, _ = w.Write([]byte(fiscal.FormatReceipt(order.FiscalReceipt)))
}

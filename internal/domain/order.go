package domain

import (
	"context"
	"time"

	"github.com/nooktextiles/nook/internal/fiscal"
)

// Order-related domain errors.
var (
	ErrOrderNotFound      = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrInvalidOrderStatus = &Error{Code: EINVALID, Message: "Invalid order status"}
)

// OrderStatus is the lifecycle status of an order. New orders start as pending.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// ShippingAddress is captured once per checkout attempt and is immutable
// once submitted to the orchestrator.
type ShippingAddress struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
	Country string `json:"country" validate:"required"`
}

// Order is a saved order record owned by the user identified by UserID.
// Items is a snapshot of the cart at submit time; later cart mutations
// do not affect a saved order.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId"`
	OrderNumber     string          `json:"orderNumber"`
	OrderDate       string          `json:"orderDate"`
	Status          OrderStatus     `json:"status"`
	Items           []CartItem      `json:"items"`
	Subtotal        float64         `json:"subtotal"`
	Shipping        float64         `json:"shipping"`
	Tax             float64         `json:"tax"`
	Total           float64         `json:"total"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentIntentID string          `json:"paymentIntentId,omitempty"`
	FiscalReceipt   *fiscal.Receipt `json:"fiscalReceipt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// CreateOrderData bundles everything needed to persist a new order.
type CreateOrderData struct {
	UserID          string
	Items           []CartItem
	Subtotal        float64
	Shipping        float64
	Tax             float64
	Total           float64
	ShippingAddress ShippingAddress
	PaymentIntentID string
	FiscalReceipt   *fiscal.Receipt
}

// OrderResult is the structured save/update result shape shared by the
// order persistence collaborator. Non-exceptional failures are reported
// via Success=false rather than an error return.
type OrderResult struct {
	Success bool
	Order   *Order
	Error   string
}

// OrderService provides order persistence.
// Implementations attempt the real backend first and fall back to the
// local store; GetUserOrders must filter strictly by user id.
type OrderService interface {
	// SaveOrder persists a new order with status pending.
	SaveOrder(ctx context.Context, data CreateOrderData) (*OrderResult, error)

	// GetUserOrders returns all orders belonging to userID, newest first.
	GetUserOrders(ctx context.Context, userID string) ([]Order, error)

	// GetOrderByID returns the order only if it belongs to userID.
	GetOrderByID(ctx context.Context, orderID, userID string) (*Order, error)

	// UpdateOrderStatus transitions an order to the given status.
	UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus) (*OrderResult, error)
}

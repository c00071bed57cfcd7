package domain

import "context"

// =============================================================================
// CART DOMAIN ERRORS
// =============================================================================

var (
	ErrCartNotFound     = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrCartItemNotFound = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
	ErrEmptyCart        = &Error{Code: EINVALID, Message: "Cart is empty"}
)

// CartService provides business logic for shopping cart operations.
// Carts are session-scoped; each session owns exactly one cart.
type CartService interface {
	// GetCart retrieves the cart for a session, creating an empty one if absent.
	GetCart(ctx context.Context, sessionID string) (*CartSummary, error)

	// AddItem adds a product to the cart or increments quantity if already present.
	AddItem(ctx context.Context, sessionID string, item CartItem) (*CartSummary, error)

	// UpdateItemQuantity updates the quantity of a cart item.
	// If quantity is 0, the item is removed.
	UpdateItemQuantity(ctx context.Context, sessionID string, productID string, quantity int) (*CartSummary, error)

	// RemoveItem removes a product from the cart.
	RemoveItem(ctx context.Context, sessionID string, productID string) (*CartSummary, error)

	// ClearCart removes all items from a cart.
	ClearCart(ctx context.Context, sessionID string) error
}

// CartItem represents a cart line item with product details.
// Price is the unit price in decimal RSD; the textile metadata fields
// (Size, Shape, Fabric) are optional and carried through to the order.
type CartItem struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
	Size      string  `json:"size,omitempty"`
	Shape     string  `json:"shape,omitempty"`
	Fabric    string  `json:"fabric,omitempty"`
}

// LineTotal returns the item's extended price (unit price * quantity).
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// CartSummary aggregates cart contents with calculated totals.
type CartSummary struct {
	SessionID string     `json:"sessionId"`
	Items     []CartItem `json:"items"`
	Subtotal  float64    `json:"subtotal"`
	ItemCount int        `json:"itemCount"`
}

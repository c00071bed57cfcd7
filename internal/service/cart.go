package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nooktextiles/nook/internal/domain"
	"github.com/nooktextiles/nook/internal/storage"
)

type cartService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewCartService creates a CartService backed by the given store.
// Carts are keyed by session id under the cart key prefix.
func NewCartService(store storage.Store, logger *slog.Logger) domain.CartService {
	if logger == nil {
		logger = slog.Default()
	}
	return &cartService{store: store, logger: logger}
}

func cartKey(sessionID string) string {
	return storage.CartKeyPrefix + sessionID
}

func (s *cartService) GetCart(ctx context.Context, sessionID string) (*domain.CartSummary, error) {
	if sessionID == "" {
		return nil, domain.Invalid("CartService.GetCart", "Session ID is required")
	}

	items, err := s.loadItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return summarize(sessionID, items), nil
}

func (s *cartService) AddItem(ctx context.Context, sessionID string, item domain.CartItem) (*domain.CartSummary, error) {
	if sessionID == "" {
		return nil, domain.Invalid("CartService.AddItem", "Session ID is required")
	}
	if item.ProductID == "" {
		return nil, domain.Invalid("CartService.AddItem", "Product ID is required")
	}
	if item.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	items, err := s.loadItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, item)
	}

	if err := s.store.Set(ctx, cartKey(sessionID), items); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "CartService", "Failed to save cart")
	}
	return summarize(sessionID, items), nil
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, sessionID string, productID string, quantity int) (*domain.CartSummary, error) {
	if quantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, sessionID, productID)
	}

	items, err := s.loadItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, domain.ErrCartItemNotFound
	}

	if err := s.store.Set(ctx, cartKey(sessionID), items); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "CartService", "Failed to save cart")
	}
	return summarize(sessionID, items), nil
}

func (s *cartService) RemoveItem(ctx context.Context, sessionID string, productID string) (*domain.CartSummary, error) {
	items, err := s.loadItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	kept := items[:0]
	removed := false
	for _, it := range items {
		if it.ProductID == productID {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	if !removed {
		return nil, domain.ErrCartItemNotFound
	}

	if err := s.store.Set(ctx, cartKey(sessionID), kept); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "CartService", "Failed to save cart")
	}
	return summarize(sessionID, kept), nil
}

func (s *cartService) ClearCart(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, cartKey(sessionID)); err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "CartService.ClearCart", "Failed to clear cart")
	}
	return nil
}

func (s *cartService) loadItems(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := s.store.Get(ctx, cartKey(sessionID), &items)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []domain.CartItem{}, nil
	}
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "CartService", "Failed to load cart")
	}
	return items, nil
}

func summarize(sessionID string, items []domain.CartItem) *domain.CartSummary {
	summary := &domain.CartSummary{
		SessionID: sessionID,
		Items:     items,
	}
	for _, it := range items {
		summary.Subtotal += it.LineTotal()
		summary.ItemCount += it.Quantity
	}
	return summary
}

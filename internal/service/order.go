package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nooktextiles/nook/internal/domain"
	"github.com/nooktextiles/nook/internal/remote"
	"github.com/nooktextiles/nook/internal/storage"
)

type orderService struct {
	client *remote.Client
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewOrderService creates an OrderService that writes through the order
// backend when it is reachable and falls back to the local store
// otherwise. client may be nil for store-only operation.
func NewOrderService(client *remote.Client, store storage.Store, logger *slog.Logger) domain.OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &orderService{
		client: client,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *orderService) SaveOrder(ctx context.Context, data domain.CreateOrderData) (*domain.OrderResult, error) {
	if s.client != nil {
		var saved domain.Order
		err := s.client.PostJSON(ctx, "/api/orders", data, &saved)
		if err == nil {
			return &domain.OrderResult{Success: true, Order: &saved}, nil
		}
		s.logger.Warn("order backend unavailable, saving to local store", "error", err)
	}
	return s.saveToStore(ctx, data)
}

func (s *orderService) saveToStore(ctx context.Context, data domain.CreateOrderData) (*domain.OrderResult, error) {
	now := s.now()

	order := domain.Order{
		ID:              fmt.Sprintf("order_%d_%s", now.UnixMilli(), randomSuffix(9)),
		UserID:          data.UserID,
		OrderNumber:     fmt.Sprintf("ORDER-%d-%s", now.UnixMilli(), strings.ToUpper(randomSuffix(6))),
		OrderDate:       now.Format("2006-01-02"),
		Status:          domain.OrderStatusPending,
		Items:           data.Items,
		Subtotal:        data.Subtotal,
		Shipping:        data.Shipping,
		Tax:             data.Tax,
		Total:           data.Total,
		ShippingAddress: data.ShippingAddress,
		PaymentIntentID: data.PaymentIntentID,
		FiscalReceipt:   data.FiscalReceipt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	orders, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	orders = append(orders, order)

	if err := s.store.Set(ctx, storage.KeyOrders, orders); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "OrderService.SaveOrder", "Failed to save order")
	}
	return &domain.OrderResult{Success: true, Order: &order}, nil
}

func (s *orderService) GetUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if s.client != nil {
		var resp struct {
			Orders []domain.Order `json:"orders"`
		}
		err := s.client.GetJSON(ctx, "/api/orders?userId="+userID, &resp)
		if err == nil {
			return resp.Orders, nil
		}
		s.logger.Warn("order backend unavailable, reading local store", "error", err)
	}

	orders, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	mine := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.UserID == userID {
			mine = append(mine, o)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CreatedAt.After(mine[j].CreatedAt)
	})
	return mine, nil
}

func (s *orderService) GetOrderByID(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	if s.client != nil {
		var order domain.Order
		err := s.client.GetJSON(ctx, "/api/orders/"+orderID, &order)
		if err == nil {
			if order.UserID != userID {
				return nil, domain.ErrOrderNotFound
			}
			return &order, nil
		}
		s.logger.Warn("order backend unavailable, reading local store", "error", err)
	}

	orders, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID && orders[i].UserID == userID {
			return &orders[i], nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (*domain.OrderResult, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidOrderStatus
	}

	if s.client != nil {
		var updated domain.Order
		err := s.client.PatchJSON(ctx, "/api/orders/"+orderID+"/status",
			map[string]string{"status": string(status)}, &updated)
		if err == nil {
			return &domain.OrderResult{Success: true, Order: &updated}, nil
		}
		s.logger.Warn("order backend unavailable, updating local store", "error", err)
	}

	orders, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID {
			orders[i].Status = status
			orders[i].UpdatedAt = s.now()
			if err := s.store.Set(ctx, storage.KeyOrders, orders); err != nil {
				return nil, domain.WrapError(err, domain.EINTERNAL, "OrderService.UpdateOrderStatus", "Failed to update order status")
			}
			return &domain.OrderResult{Success: true, Order: &orders[i]}, nil
		}
	}
	return &domain.OrderResult{Success: false, Error: "Failed to update order status"}, nil
}

func (s *orderService) loadAll(ctx context.Context) ([]domain.Order, error) {
	var orders []domain.Order
	err := s.store.Get(ctx, storage.KeyOrders, &orders)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return []domain.Order{}, nil
	}
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, "OrderService", "Failed to load orders")
	}
	return orders, nil
}

func randomSuffix(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}

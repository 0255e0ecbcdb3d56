package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// OrderService backs the shopper's order dashboard
type OrderService struct {
	client OrdersClient
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(client OrdersClient, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{client: client, logger: logger}
}

// MyOrders returns one page of the signed-in user's orders
func (s *OrderService) MyOrders(ctx context.Context, page, limit int) (domain.OrderPage, error) {
	page, limit = pageDefaults(page, limit)
	return s.client.MyOrders(ctx, page, limit)
}

// Find looks an order up by id across every page
func (s *OrderService) Find(ctx context.Context, orderID string) (domain.Order, error) {
	page := 1
	for {
		res, err := s.client.MyOrders(ctx, page, 50)
		if err != nil {
			return domain.Order{}, err
		}
		for _, o := range res.Orders {
			if o.ID == orderID {
				return o, nil
			}
		}
		if !res.Pagination.HasNext() || len(res.Orders) == 0 {
			return domain.Order{}, &errors.ErrNotFound{Resource: "order", ID: orderID}
		}
		page++
	}
}

// Cancel cancels an order the shopper placed.
// Only pending and confirmed orders may be cancelled; others are refused locally.
func (s *OrderService) Cancel(ctx context.Context, order domain.Order) error {
	// Already cancelled - idempotent success
	if order.Status == domain.OrderStatusCancelled {
		return nil
	}

	// Validate state transition
	if !order.Status.CanCancel() {
		return &errors.ErrInvalidStateTransition{
			From: order.Status,
			To:   domain.OrderStatusCancelled,
		}
	}

	if err := s.client.CancelOrder(ctx, order.ID); err != nil {
		s.logger.Warn("Failed to cancel order", zap.String("order_id", order.ID), zap.Error(err))
		return err
	}
	s.logger.Info("Order cancelled", zap.String("order_id", order.ID))
	return nil
}

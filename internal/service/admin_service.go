package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// AdminService backs the back-office: orders, users, messaging and mock stock
type AdminService struct {
	client AdminClient
	logger *zap.Logger
}

// NewAdminService creates an admin service
func NewAdminService(client AdminClient, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{client: client, logger: logger}
}

// Orders lists all orders, optionally filtered by status
func (s *AdminService) Orders(ctx context.Context, page, limit int, status domain.OrderStatus) (domain.OrderPage, error) {
	if status != "" && !status.IsValid() {
		return domain.OrderPage{}, &errors.ErrValidation{
			Message: fmt.Sprintf("unknown order status %q", status),
			Fields:  map[string]string{"status": "unknown status"},
		}
	}
	page, limit = pageDefaults(page, limit)
	return s.client.AdminListOrders(ctx, page, limit, status)
}

// UpdateStatus moves an order along its lifecycle.
// Moving to the current status is a no-op; illegal moves are refused before calling the backend.
func (s *AdminService) UpdateStatus(ctx context.Context, order domain.Order, to domain.OrderStatus) (domain.Order, error) {
	if !to.IsValid() {
		return domain.Order{}, &errors.ErrValidation{
			Message: fmt.Sprintf("unknown order status %q", to),
			Fields:  map[string]string{"status": "unknown status"},
		}
	}
	if order.Status == to {
		return order, nil
	}
	if !order.Status.CanTransitionTo(to) {
		return domain.Order{}, &errors.ErrInvalidStateTransition{From: order.Status, To: to}
	}

	updated, err := s.client.AdminUpdateOrderStatus(ctx, order.ID, to)
	if err != nil {
		s.logger.Warn("Failed to update order status",
			zap.String("order_id", order.ID),
			zap.String("from", string(order.Status)),
			zap.String("to", string(to)),
			zap.Error(err))
		return domain.Order{}, err
	}
	s.logger.Info("Order status updated",
		zap.String("order_id", order.ID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(updated.Status)))
	return updated, nil
}

// FindOrder looks an order up by id across every page
func (s *AdminService) FindOrder(ctx context.Context, orderID string) (domain.Order, error) {
	page := 1
	for {
		res, err := s.client.AdminListOrders(ctx, page, 50, "")
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

// Users lists every account
func (s *AdminService) Users(ctx context.Context) ([]domain.User, error) {
	return s.client.AdminListUsers(ctx)
}

// SendMessage delivers a message to one user
func (s *AdminService) SendMessage(ctx context.Context, userID, message string, typ domain.MessageType) (domain.Message, error) {
	message = strings.TrimSpace(message)
	if err := validateMessage(message, typ); err != nil {
		return domain.Message{}, err
	}
	if userID == "" {
		return domain.Message{}, &errors.ErrValidation{
			Message: "Pick a recipient",
			Fields:  map[string]string{"userId": "required"},
		}
	}
	return s.client.AdminSendMessage(ctx, userID, message, typ)
}

// Broadcast delivers a message to every user and returns the recipient count
func (s *AdminService) Broadcast(ctx context.Context, message string, typ domain.MessageType) (int, error) {
	message = strings.TrimSpace(message)
	if err := validateMessage(message, typ); err != nil {
		return 0, err
	}
	res, err := s.client.AdminBroadcast(ctx, message, typ)
	if err != nil {
		return 0, err
	}
	s.logger.Info("Broadcast sent", zap.Int("recipients", res.Sent), zap.String("type", string(typ)))
	return res.Sent, nil
}

// BroadcastHistory groups past broadcasts, newest first
func (s *AdminService) BroadcastHistory(ctx context.Context) ([]BroadcastGroup, error) {
	msgs, err := s.client.AdminListMessages(ctx)
	if err != nil {
		return nil, err
	}
	return GroupBroadcasts(msgs), nil
}

// SetStock replaces a product's per-size stock on the backend
func (s *AdminService) SetStock(ctx context.Context, productID string, stock map[string]int) (domain.StockEntry, error) {
	if productID == "" {
		return domain.StockEntry{}, &errors.ErrValidation{
			Message: "Product id is required",
			Fields:  map[string]string{"productId": "required"},
		}
	}
	fields := make(map[string]string)
	for size, n := range stock {
		if n < 0 {
			fields[size] = "stock cannot be negative"
		}
	}
	if len(fields) > 0 {
		return domain.StockEntry{}, &errors.ErrValidation{Message: "Stock cannot be negative", Fields: fields}
	}
	return s.client.AdminSetStock(ctx, productID, stock)
}

func validateMessage(message string, typ domain.MessageType) error {
	fields := make(map[string]string)
	if message == "" {
		fields["message"] = "required"
	}
	if !typ.IsValid() {
		fields["type"] = "must be one of info, promotion, order, alert"
	}
	if len(fields) > 0 {
		return &errors.ErrValidation{Message: "Please fix the errors in the form", Fields: fields}
	}
	return nil
}

// Package service holds the storefront's account and back-office flows:
// sign-in, the order dashboard, the inbox and the admin tools.
package service

import (
	"context"

	"github.com/jerseyshop/storefront/internal/backend"
	"github.com/jerseyshop/storefront/internal/domain"
)

// AuthClient is the part of the backend used for sign-in
type AuthClient interface {
	SignIn(ctx context.Context, email, password string) (domain.AuthResult, error)
	SignUp(ctx context.Context, name, email, password string) (domain.AuthResult, error)
}

// OrdersClient is the part of the backend used by the order dashboard
type OrdersClient interface {
	MyOrders(ctx context.Context, page, limit int) (domain.OrderPage, error)
	CancelOrder(ctx context.Context, orderID string) error
}

// InboxClient is the part of the backend used by the inbox
type InboxClient interface {
	MyMessages(ctx context.Context) ([]domain.Message, error)
	MarkMessageRead(ctx context.Context, messageID string) error
}

// AdminClient is the part of the backend used by the back-office
type AdminClient interface {
	AdminListOrders(ctx context.Context, page, limit int, status domain.OrderStatus) (domain.OrderPage, error)
	AdminUpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error)
	AdminListUsers(ctx context.Context) ([]domain.User, error)
	AdminSendMessage(ctx context.Context, userID, message string, typ domain.MessageType) (domain.Message, error)
	AdminBroadcast(ctx context.Context, message string, typ domain.MessageType) (backend.BroadcastResult, error)
	AdminListMessages(ctx context.Context) ([]domain.Message, error)
	AdminSetStock(ctx context.Context, productID string, stock map[string]int) (domain.StockEntry, error)
}

// SessionStore keeps the signed-in user (normally *session.Session)
type SessionStore interface {
	Save(ctx context.Context, auth domain.AuthResult) error
	Clear(ctx context.Context) error
}

const (
	defaultPage  = 1
	defaultLimit = 10
)

func pageDefaults(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}

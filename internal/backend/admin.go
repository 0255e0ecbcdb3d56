package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jerseyshop/storefront/internal/domain"
)

// BroadcastResult reports how many inboxes a broadcast reached
type BroadcastResult struct {
	Sent int `json:"sent"`
}

// AdminListOrders lists every order; status filters when non-empty
func (c *Client) AdminListOrders(ctx context.Context, page, limit int, status domain.OrderStatus) (domain.OrderPage, error) {
	q := pageQuery(page, limit)
	if status != "" {
		q.Set("status", string(status))
	}
	return c.listOrders(ctx, "/api/orders", q)
}

// AdminUpdateOrderStatus moves an order to status
func (c *Client) AdminUpdateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) (domain.Order, error) {
	path := "/api/orders/" + url.PathEscape(orderID) + "/status"
	env, err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   path,
		body:   map[string]string{"status": string(status)},
		auth:   true,
	})
	if err != nil {
		return domain.Order{}, err
	}
	var order domain.Order
	if err := decodeData(path, env, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// AdminListUsers lists every account
func (c *Client) AdminListUsers(ctx context.Context) ([]domain.User, error) {
	const path = "/api/users"
	env, err := c.do(ctx, request{method: http.MethodGet, path: path, auth: true})
	if err != nil {
		return nil, err
	}
	var users []domain.User
	if err := decodeData(path, env, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminSendMessage delivers a message to one user's inbox
func (c *Client) AdminSendMessage(ctx context.Context, userID, message string, typ domain.MessageType) (domain.Message, error) {
	const path = "/api/messages"
	env, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   path,
		body: map[string]string{
			"userId":  userID,
			"message": message,
			"type":    string(typ),
		},
		auth: true,
	})
	if err != nil {
		return domain.Message{}, err
	}
	var msg domain.Message
	if err := decodeData(path, env, &msg); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// AdminBroadcast delivers a message to every user
func (c *Client) AdminBroadcast(ctx context.Context, message string, typ domain.MessageType) (BroadcastResult, error) {
	const path = "/api/messages/broadcast"
	env, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   path,
		body: map[string]string{
			"message": message,
			"type":    string(typ),
		},
		auth: true,
	})
	if err != nil {
		return BroadcastResult{}, err
	}
	var res BroadcastResult
	if err := decodeData(path, env, &res); err != nil {
		return BroadcastResult{}, err
	}
	return res, nil
}

// AdminListMessages lists every message sent, across all inboxes
func (c *Client) AdminListMessages(ctx context.Context) ([]domain.Message, error) {
	return c.listMessages(ctx, "/api/messages")
}

// AdminSetStock replaces one product's per-size stock
func (c *Client) AdminSetStock(ctx context.Context, productID string, stock map[string]int) (domain.StockEntry, error) {
	path := "/api/stock/" + url.PathEscape(productID)
	env, err := c.do(ctx, request{
		method: http.MethodPut,
		path:   path,
		body:   map[string]interface{}{"stock": stock},
		auth:   true,
	})
	if err != nil {
		return domain.StockEntry{}, err
	}
	var entry domain.StockEntry
	if err := decodeData(path, env, &entry); err != nil {
		return domain.StockEntry{}, err
	}
	return entry, nil
}

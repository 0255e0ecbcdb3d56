package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// GetStock fetches the stock snapshot. The backend may send a bare array or an envelope.
func (c *Client) GetStock(ctx context.Context) ([]domain.StockEntry, error) {
	const path = "/api/stock"
	data, err := c.raw(ctx, request{method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}

	var entries []domain.StockEntry
	if isJSONArray(data) {
		env := &envelope{Data: data}
		if err := decodeData(path, env, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	env, err := parseEnvelope(path, data)
	if err != nil {
		return nil, err
	}
	if err := decodeData(path, env, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateOrder submits an order. idempotencyKey should be fresh per submission attempt.
func (c *Client) CreateOrder(ctx context.Context, order domain.OrderRequest, idempotencyKey string) (domain.Order, error) {
	const path = "/api/orders/create"
	req := request{method: http.MethodPost, path: path, body: order, auth: true}
	if idempotencyKey != "" {
		req.headers = map[string]string{IdempotencyKeyHeader: idempotencyKey}
	}
	env, err := c.do(ctx, req)
	if err != nil {
		return domain.Order{}, err
	}
	var created domain.Order
	if err := decodeData(path, env, &created); err != nil {
		return domain.Order{}, err
	}
	if created.ID == "" {
		return domain.Order{}, &errors.ErrMalformedResponse{Endpoint: path, Reason: "order has no id"}
	}
	return created, nil
}

// MyOrders lists the signed-in user's orders, newest first
func (c *Client) MyOrders(ctx context.Context, page, limit int) (domain.OrderPage, error) {
	return c.listOrders(ctx, "/api/orders/my-orders", pageQuery(page, limit))
}

// CancelOrder cancels one of the signed-in user's orders
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	_, err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/api/orders/" + url.PathEscape(orderID),
		auth:   true,
	})
	return err
}

// SignIn exchanges credentials for a bearer token
func (c *Client) SignIn(ctx context.Context, email, password string) (domain.AuthResult, error) {
	return c.auth(ctx, "/api/auth/signin", map[string]string{
		"email":    email,
		"password": password,
	})
}

// SignUp creates an account and signs it in
func (c *Client) SignUp(ctx context.Context, name, email, password string) (domain.AuthResult, error) {
	return c.auth(ctx, "/api/auth/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

func (c *Client) auth(ctx context.Context, path string, body map[string]string) (domain.AuthResult, error) {
	env, err := c.do(ctx, request{method: http.MethodPost, path: path, body: body})
	if err != nil {
		return domain.AuthResult{}, err
	}
	var res domain.AuthResult
	if err := decodeData(path, env, &res); err != nil {
		return domain.AuthResult{}, err
	}
	if res.Token == "" {
		return domain.AuthResult{}, &errors.ErrMalformedResponse{Endpoint: path, Reason: "no token"}
	}
	if res.User.ID == "" {
		return domain.AuthResult{}, &errors.ErrMalformedResponse{Endpoint: path, Reason: "no user"}
	}
	return res, nil
}

// MyMessages returns the signed-in user's inbox, newest first
func (c *Client) MyMessages(ctx context.Context) ([]domain.Message, error) {
	return c.listMessages(ctx, "/api/messages/my-messages")
}

// MarkMessageRead marks one inbox message read
func (c *Client) MarkMessageRead(ctx context.Context, messageID string) error {
	_, err := c.do(ctx, request{
		method: http.MethodPatch,
		path:   "/api/messages/" + url.PathEscape(messageID) + "/read",
		auth:   true,
	})
	return err
}

func (c *Client) listOrders(ctx context.Context, path string, q url.Values) (domain.OrderPage, error) {
	env, err := c.do(ctx, request{method: http.MethodGet, path: path, query: q, auth: true})
	if err != nil {
		return domain.OrderPage{}, err
	}

	var page domain.OrderPage
	if isJSONArray(env.Data) {
		if err := decodeData(path, env, &page.Orders); err != nil {
			return domain.OrderPage{}, err
		}
	} else if err := decodeData(path, env, &page); err != nil {
		return domain.OrderPage{}, err
	}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	}
	if page.Orders == nil {
		page.Orders = []domain.Order{}
	}
	return page, nil
}

func (c *Client) listMessages(ctx context.Context, path string) ([]domain.Message, error) {
	env, err := c.do(ctx, request{method: http.MethodGet, path: path, auth: true})
	if err != nil {
		return nil, err
	}
	var msgs []domain.Message
	if err := decodeData(path, env, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func pageQuery(page, limit int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

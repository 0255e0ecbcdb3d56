package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/config"
	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/pkg/errors"
)

type staticToken string

func (s staticToken) Token(context.Context) string { return string(s) }

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.APIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, staticToken(token), zap.NewNop())
}

func TestGetStock_AcceptsBareArrayAndEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"productId":"rm-home","stock":{"M":3}}]`},
		{"envelope", `{"success":true,"data":[{"productId":"rm-home","stock":{"M":3}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/stock", r.URL.Path)
				assert.Empty(t, r.Header.Get("Authorization"), "stock is public")
				_, _ = w.Write([]byte(tt.body))
			}, "")

			entries, err := c.GetStock(context.Background())
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, "rm-home", entries[0].ProductID)
			assert.Equal(t, 3, entries[0].Stock["M"])
		})
	}
}

func TestGetStock_Malformed(t *testing.T) {
	for _, body := range []string{`<html>oops</html>`, `{"success":true}`, `{"success":true,"data":{"x":1}}`} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}, "")
		_, err := c.GetStock(context.Background())
		var malformed *errors.ErrMalformedResponse
		assert.ErrorAs(t, err, &malformed, body)
	}
}

func TestAuthenticatedCallWithoutToken(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, "")

	_, err := c.MyOrders(context.Background(), 1, 10)
	var authErr *errors.ErrAuthRequired
	assert.ErrorAs(t, err, &authErr)
	assert.False(t, called, "no request is sent without a token")
}

func TestRejection_CarriesBackendMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"message":"Insufficient stock for Real Madrid Home (M): 1 available"}`))
	}, "tok")

	_, err := c.CreateOrder(context.Background(), domain.OrderRequest{}, "k")
	var backendErr *errors.ErrBackend
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusBadRequest, backendErr.StatusCode)
	assert.Equal(t, "Insufficient stock for Real Madrid Home (M): 1 available", errors.UserMessage(err))
}

func TestRejection_ErrorField(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"token expired"}`))
	}, "tok")

	err := c.CancelOrder(context.Background(), "o1")
	var backendErr *errors.ErrBackend
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "token expired", backendErr.Message)
}

func TestSuccessFalseInOKResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"Order not found"}`))
	}, "tok")

	err := c.CancelOrder(context.Background(), "o1")
	var backendErr *errors.ErrBackend
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusOK, backendErr.StatusCode)
	assert.Equal(t, "Order not found", backendErr.Message)
}

func TestUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()
	c := NewClient(config.APIConfig{BaseURL: srv.URL, Timeout: time.Second}, nil, nil)

	_, err := c.GetStock(context.Background())
	var unavailable *errors.ErrUnavailable
	assert.ErrorAs(t, err, &unavailable)
}

func TestCreateOrder_SendsKeyAndToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders/create", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "key-1", r.Header.Get(IdempotencyKeyHeader))

		var req domain.OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 70, req.DeliveryCharge)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"o1","status":"Pending","totalAmount":220}}`))
	}, "tok")

	order, err := c.CreateOrder(context.Background(), domain.OrderRequest{DeliveryCharge: 70}, "key-1")
	require.NoError(t, err)
	assert.Equal(t, "o1", order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
}

func TestCreateOrder_NoID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"status":"pending"}}`))
	}, "tok")

	_, err := c.CreateOrder(context.Background(), domain.OrderRequest{}, "")
	var malformed *errors.ErrMalformedResponse
	assert.ErrorAs(t, err, &malformed)
}

func TestMyOrders_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want domain.Pagination
	}{
		{
			name: "array with envelope pagination",
			body: `{"success":true,"data":[{"id":"o1","status":"shipped"}],"pagination":{"page":2,"limit":1,"total":3,"totalPages":3}}`,
			want: domain.Pagination{Page: 2, Limit: 1, Total: 3, TotalPages: 3},
		},
		{
			name: "nested orders object",
			body: `{"success":true,"data":{"orders":[{"id":"o1","status":"shipped"}],"pagination":{"page":1,"limit":10,"total":1,"totalPages":1}}}`,
			want: domain.Pagination{Page: 1, Limit: 10, Total: 1, TotalPages: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/orders/my-orders", r.URL.Path)
				assert.Equal(t, "2", r.URL.Query().Get("page"))
				_, _ = w.Write([]byte(tt.body))
			}, "tok")

			page, err := c.MyOrders(context.Background(), 2, 1)
			require.NoError(t, err)
			require.Len(t, page.Orders, 1)
			assert.Equal(t, domain.OrderStatusShipped, page.Orders[0].Status)
			assert.Equal(t, tt.want, page.Pagination)
		})
	}
}

func TestSignIn_RequiresTokenAndUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"","user":{"id":"u1"}}}`))
	}, "")

	_, err := c.SignIn(context.Background(), "a@b.co", "secret1")
	var malformed *errors.ErrMalformedResponse
	assert.ErrorAs(t, err, &malformed)
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/orders/o1/status", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "confirmed", body["status"])
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":"o1","status":"confirmed"}}`))
	}, "tok")

	order, err := c.AdminUpdateOrderStatus(context.Background(), "o1", domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
}

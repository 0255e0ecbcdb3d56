// Package backend is the REST client for the storefront backend.
//
// Every endpoint has an explicit result type. Responses are parsed at this
// boundary: a rejection becomes *errors.ErrBackend, a transport failure
// *errors.ErrUnavailable and a 2xx body of the wrong shape
// *errors.ErrMalformedResponse.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/config"
	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// IdempotencyKeyHeader deduplicates order submissions on the backend
const IdempotencyKeyHeader = "Idempotency-Key"

// maxErrorBody bounds how much of a failed response is read for its message
const maxErrorBody = 64 << 10

// TokenSource supplies the bearer token for authenticated calls (normally *session.Session)
type TokenSource interface {
	Token(ctx context.Context) string
}

// Client calls the storefront backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *zap.Logger
}

// NewClient creates a backend client. tokens may be nil when only public endpoints are used.
func NewClient(cfg config.APIConfig, tokens TokenSource, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		tokens:     tokens,
		logger:     logger,
	}
}

// envelope is the backend's standard response wrapper
type envelope struct {
	Success    *bool              `json:"success"`
	Data       json.RawMessage    `json:"data"`
	Message    string             `json:"message"`
	Error      string             `json:"error"`
	Pagination *domain.Pagination `json:"pagination"`
}

func (e *envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    interface{}
	auth    bool
	headers map[string]string
}

// raw sends req and returns the body of a 2xx response
func (c *Client) raw(ctx context.Context, req request) ([]byte, error) {
	op := req.method + " " + req.path
	if c.baseURL == "" {
		return nil, fmt.Errorf("backend client not configured: base URL required")
	}

	u, err := url.Parse(c.baseURL + req.path)
	if err != nil {
		return nil, err
	}
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.auth {
		token := ""
		if c.tokens != nil {
			token = c.tokens.Token(ctx)
		}
		if token == "" {
			return nil, &errors.ErrAuthRequired{}
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("Backend request failed", zap.String("op", op), zap.Error(err))
		return nil, &errors.ErrUnavailable{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := rejectionMessage(data)
		c.logger.Warn("Backend rejected request",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg))
		return nil, &errors.ErrBackend{StatusCode: resp.StatusCode, Message: msg}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errors.ErrUnavailable{Op: op, Err: err}
	}
	return data, nil
}

// do sends req and unwraps the envelope
func (c *Client) do(ctx context.Context, req request) (*envelope, error) {
	data, err := c.raw(ctx, req)
	if err != nil {
		return nil, err
	}
	return parseEnvelope(req.path, data)
}

func parseEnvelope(endpoint string, data []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &errors.ErrMalformedResponse{Endpoint: endpoint, Reason: "body is not a JSON object"}
	}
	if env.Success != nil && !*env.Success {
		return nil, &errors.ErrBackend{StatusCode: http.StatusOK, Message: env.text()}
	}
	return &env, nil
}

// decodeData unmarshals the envelope's data into v; absent data is malformed
func decodeData(endpoint string, env *envelope, v interface{}) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return &errors.ErrMalformedResponse{Endpoint: endpoint, Reason: "missing data"}
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return &errors.ErrMalformedResponse{Endpoint: endpoint, Reason: err.Error()}
	}
	return nil
}

// rejectionMessage pulls message or error out of a failed response body
func rejectionMessage(data []byte) string {
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil {
		return env.text()
	}
	return ""
}

// isJSONArray reports whether data holds a JSON array at the top level
func isJSONArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}

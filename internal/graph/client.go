package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/custodia-labs/graphadmin/internal/core/ports/driven"
	"github.com/custodia-labs/graphadmin/internal/logger"
)

// BaseURL is the Microsoft Graph API base URL.
const BaseURL = "https://graph.microsoft.com/v1.0"

const requestTimeout = 30 * time.Second

// Client is the authenticated request gateway for Microsoft Graph.
// Every request carries a bearer token from the TokenProvider and goes
// through the rate limiter. Safe for concurrent use.
type Client struct {
	baseURL string
	tokens  driven.TokenProvider
	client  *http.Client
	limiter *RateLimiter
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the Graph base URL. Used in tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.client = hc }
}

// WithRateLimiter overrides the rate limiter.
func WithRateLimiter(rl *RateLimiter) ClientOption {
	return func(c *Client) { c.limiter = rl }
}

// NewClient creates a Graph client using tokens from the given provider.
func NewClient(tokens driven.TokenProvider, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: BaseURL,
		tokens:  tokens,
		client:  &http.Client{Timeout: requestTimeout},
		limiter: NewRateLimiter(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do issues an authenticated request against the Graph API and returns
// the raw JSON response body.
//
// path is relative to the Graph root (e.g. "/users"). A nil body sends
// no payload; otherwise body is JSON-encoded. 204 responses yield an
// empty JSON object.
//
// Error responses come back as *APIError with the upstream body
// verbatim; network failures wrap ErrTransport; a cancelled context
// surfaces the context's own error. Requests are never retried.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire token: %w", err)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reqBody io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("graph request", "method", method, "path", path)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return json.RawMessage(`{}`), nil

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if len(respBody) == 0 {
			return json.RawMessage(`{}`), nil
		}
		return respBody, nil

	default:
		if IsUnauthorised(resp.StatusCode) {
			// The token was rejected upstream; drop it so the next
			// request re-authenticates. The failed request is not
			// retried.
			c.tokens.Invalidate()
		}
		if IsRateLimited(resp.StatusCode) {
			retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
			c.limiter.RecordRateLimitError(retryAfter)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Body: respBody}
	}
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, nil, body)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPatch, path, nil, body)
}

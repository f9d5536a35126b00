// Package auth implements OAuth2 client-credentials authentication for
// the Microsoft identity platform.
//
// The Provider caches the access token and renews it transparently before
// expiry. A single mutex guards the check-and-renew sequence so that
// concurrent callers near expiry collapse into one token request against
// the identity provider.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/graphadmin/internal/core/domain"
	"github.com/custodia-labs/graphadmin/internal/logger"
)

const (
	// tokenURLFormat is the Microsoft identity platform token endpoint.
	// Client-credentials tokens are tenant-scoped, so the tenant ID is
	// part of the URL rather than the "common" endpoint.
	//nolint:gosec // G101: Not credentials, OAuth endpoint URL
	tokenURLFormat = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"

	// defaultScope requests all application permissions granted to the
	// app registration.
	defaultScope = "https://graph.microsoft.com/.default"

	// renewalMargin is how long before expiry a token is renewed.
	// Graph tokens live 60-90 minutes; renewing 5 minutes early keeps a
	// request from straddling expiry mid-flight.
	renewalMargin = 5 * time.Minute

	requestTimeout = 30 * time.Second
)

// AuthError reports a rejected credential exchange at the token endpoint.
type AuthError struct {
	// StatusCode is the HTTP status returned by the identity provider.
	StatusCode int
	// Code is the OAuth2 error code (e.g. "invalid_client").
	Code string
	// Description is the provider's human-readable error description.
	Description string
}

func (e *AuthError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("auth: token request failed (%d %s): %s", e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("auth: token request failed with status %d", e.StatusCode)
}

// tokenResponse is the token endpoint's success body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// tokenError is the token endpoint's error body.
type tokenError struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

// Provider acquires and caches client-credentials tokens.
// Safe for concurrent use; construct one per credential set.
type Provider struct {
	creds    domain.Credentials
	tokenURL string
	scope    string
	margin   time.Duration
	client   *http.Client

	mu    sync.Mutex
	token *oauth2.Token
}

// Option configures a Provider.
type Option func(*Provider)

// WithTokenURL overrides the token endpoint. Used in tests.
func WithTokenURL(u string) Option {
	return func(p *Provider) { p.tokenURL = u }
}

// WithRenewalMargin overrides the renewal safety margin. Used in tests.
func WithRenewalMargin(d time.Duration) Option {
	return func(p *Provider) { p.margin = d }
}

// WithHTTPClient overrides the HTTP client used for token requests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.client = c }
}

// NewProvider creates a token provider for the given credentials.
// Credentials must already be validated.
func NewProvider(creds domain.Credentials, opts ...Option) *Provider {
	p := &Provider{
		creds:    creds,
		tokenURL: fmt.Sprintf(tokenURLFormat, creds.TenantID),
		scope:    defaultScope,
		margin:   renewalMargin,
		client:   &http.Client{Timeout: requestTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Token returns a cached access token, renewing it first when it is
// absent or within the renewal margin of expiry.
//
// The mutex is held across the renewal round-trip: concurrent callers on
// a stale token block until the single in-flight acquisition completes
// and then all observe the freshly cached value.
//
// A renewal failure while the cached token is still inside its real
// expiry returns the cached token and logs the failure; the renewal is
// retried on the next call.
func (p *Provider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.usable(p.margin) {
		return p.token.AccessToken, nil
	}

	token, err := p.acquire(ctx)
	if err != nil {
		// Grace policy: a still-valid token outlives a failed renewal.
		if p.usable(0) {
			logger.Warn("token renewal failed, using cached token", "error", err)
			return p.token.AccessToken, nil
		}
		return "", err
	}

	p.token = token
	return token.AccessToken, nil
}

// Invalidate drops the cached token. The next Token call re-authenticates.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = nil
}

// usable reports whether the cached token is valid for at least margin
// beyond now. Caller must hold p.mu.
func (p *Provider) usable(margin time.Duration) bool {
	return p.token != nil && time.Until(p.token.Expiry) > margin
}

// acquire performs the client-credentials exchange at the token endpoint.
// The cached token is never mutated here; the caller swaps it in only on
// success.
func (p *Provider) acquire(ctx context.Context) (*oauth2.Token, error) {
	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", p.creds.ClientID)
	data.Set("client_secret", p.creds.ClientSecret)
	data.Set("scope", p.scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var terr tokenError
		// Best effort: the provider normally returns a JSON error body,
		// but the status alone is enough to report the failure.
		_ = json.NewDecoder(resp.Body).Decode(&terr)
		return nil, &AuthError{
			StatusCode:  resp.StatusCode,
			Code:        terr.Code,
			Description: terr.Description,
		}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token")
	}

	// Expiry anchors to acquisition time, not to whenever the token is
	// next used, so repeated renewals don't accumulate clock drift.
	return &oauth2.Token{
		AccessToken: tr.AccessToken,
		TokenType:   tr.TokenType,
		Expiry:      time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}, nil
}

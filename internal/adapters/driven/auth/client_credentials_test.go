package auth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/graphadmin/internal/core/domain"
)

var testCreds = domain.Credentials{
	TenantID:     "test-tenant",
	ClientID:     "test-client",
	ClientSecret: "test-secret",
}

// tokenEndpoint is a fake identity provider that counts acquisitions.
type tokenEndpoint struct {
	server   *httptest.Server
	requests atomic.Int64
	respond  func(w http.ResponseWriter, r *http.Request)
}

func newTokenEndpoint(t *testing.T) *tokenEndpoint {
	t.Helper()
	ep := &tokenEndpoint{}
	ep.respond = func(w http.ResponseWriter, _ *http.Request) {
		ep.writeToken(w, "token-1", 3600)
	}
	ep.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ep.requests.Add(1)
		ep.respond(w, r)
	}))
	t.Cleanup(ep.server.Close)
	return ep
}

func (ep *tokenEndpoint) writeToken(w http.ResponseWriter, token string, expiresIn int64) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   expiresIn,
	})
}

func (ep *tokenEndpoint) writeError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             code,
		"error_description": description,
	})
}

func newTestProvider(ep *tokenEndpoint, opts ...Option) *Provider {
	opts = append([]Option{WithTokenURL(ep.server.URL)}, opts...)
	return NewProvider(testCreds, opts...)
}

func TestProvider_Token_SendsClientCredentialsGrant(t *testing.T) {
	ep := newTokenEndpoint(t)
	var form map[string][]string
	ep.respond = func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		ep.writeToken(w, "token-1", 3600)
	}

	p := newTestProvider(ep)
	token, err := p.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.Equal(t, []string{"client_credentials"}, form["grant_type"])
	assert.Equal(t, []string{"test-client"}, form["client_id"])
	assert.Equal(t, []string{"test-secret"}, form["client_secret"])
	assert.Equal(t, []string{"https://graph.microsoft.com/.default"}, form["scope"])
}

func TestProvider_Token_ReusesCachedToken(t *testing.T) {
	ep := newTokenEndpoint(t)
	p := newTestProvider(ep)

	first, err := p.Token(context.Background())
	require.NoError(t, err)

	second, err := p.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), ep.requests.Load(), "second call within margin must not hit the provider")
}

func TestProvider_Token_RenewsWithinMargin(t *testing.T) {
	ep := newTokenEndpoint(t)
	ep.respond = func(w http.ResponseWriter, _ *http.Request) {
		ep.writeToken(w, "fresh-token", 3600)
	}

	p := newTestProvider(ep)
	// Seed a cached token with 4 minutes left against a 5-minute margin.
	p.token = &oauth2.Token{
		AccessToken: "stale-token",
		Expiry:      time.Now().Add(4 * time.Minute),
	}

	token, err := p.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token, "token inside the margin must be replaced")
	assert.Equal(t, int64(1), ep.requests.Load())
}

func TestProvider_Token_SingleFlightUnderConcurrency(t *testing.T) {
	ep := newTokenEndpoint(t)
	ep.respond = func(w http.ResponseWriter, _ *http.Request) {
		// Slow the acquisition down so all goroutines pile up on it.
		time.Sleep(50 * time.Millisecond)
		ep.writeToken(w, "shared-token", 3600)
	}

	p := newTestProvider(ep)

	const n = 10
	tokens := make([]string, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = p.Token(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), ep.requests.Load(), "concurrent callers must share one acquisition")
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "shared-token", tokens[i])
	}
}

func TestProvider_Token_ExpiryAnchoredToAcquisition(t *testing.T) {
	ep := newTokenEndpoint(t)
	ep.respond = func(w http.ResponseWriter, _ *http.Request) {
		ep.writeToken(w, "token-1", 3600)
	}

	p := newTestProvider(ep)

	before := time.Now()
	_, err := p.Token(context.Background())
	after := time.Now()

	require.NoError(t, err)
	require.NotNil(t, p.token)
	assert.False(t, p.token.Expiry.Before(before.Add(3600*time.Second)))
	assert.False(t, p.token.Expiry.After(after.Add(3600*time.Second)))
}

func TestProvider_Token_GracePolicyOnRenewalFailure(t *testing.T) {
	ep := newTokenEndpoint(t)
	ep.respond = func(w http.ResponseWriter, _ *http.Request) {
		ep.writeError(w, http.StatusBadRequest, "invalid_client", "secret expired")
	}

	p := newTestProvider(ep)
	// Cached token inside the renewal margin but with real lifetime left.
	cached := &oauth2.Token{
		AccessToken: "still-valid",
		Expiry:      time.Now().Add(2 * time.Minute),
	}
	p.token = cached

	token, err := p.Token(context.Background())

	require.NoError(t, err, "a still-valid token outlives a failed renewal")
	assert.Equal(t, "still-valid", token)
	assert.Same(t, cached, p.token, "failed renewal must not mutate the cache")
	assert.Equal(t, int64(1), ep.requests.Load())
}

func TestProvider_Token_FailureWithoutUsableToken(t *testing.T) {
	ep := newTokenEndpoint(t)
	ep.respond = func(w http.ResponseWriter, _ *http.Request) {
		ep.writeError(w, http.StatusUnauthorized, "invalid_client", "bad secret")
	}

	p := newTestProvider(ep)
	_, err := p.Token(context.Background())

	require.Error(t, err)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.Equal(t, "invalid_client", authErr.Code)
	assert.Equal(t, "bad secret", authErr.Description)
	assert.Nil(t, p.token, "failed acquisition must leave the cache empty")
}

func TestProvider_Token_ExpiredTokenFailedRenewalSurfacesError(t *testing.T) {
	ep := newTokenEndpoint(t)
	ep.respond = func(w http.ResponseWriter, _ *http.Request) {
		ep.writeError(w, http.StatusBadRequest, "invalid_grant", "")
	}

	p := newTestProvider(ep)
	// Token past its real expiry: grace does not apply.
	p.token = &oauth2.Token{
		AccessToken: "expired",
		Expiry:      time.Now().Add(-time.Minute),
	}

	_, err := p.Token(context.Background())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusBadRequest, authErr.StatusCode)
}

func TestProvider_Invalidate(t *testing.T) {
	ep := newTokenEndpoint(t)
	p := newTestProvider(ep)

	_, err := p.Token(context.Background())
	require.NoError(t, err)

	p.Invalidate()

	_, err = p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), ep.requests.Load(), "invalidate must force re-authentication")
}

func TestProvider_Token_ContextCancelled(t *testing.T) {
	ep := newTokenEndpoint(t)
	ep.respond = func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server detects the client disconnect
		// and cancels the request context; otherwise Close deadlocks.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}

	p := newTestProvider(ep)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := p.Token(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProvider_CustomMargin(t *testing.T) {
	ep := newTokenEndpoint(t)
	p := newTestProvider(ep, WithRenewalMargin(time.Second))
	p.token = &oauth2.Token{
		AccessToken: "long-lived",
		Expiry:      time.Now().Add(2 * time.Minute),
	}

	token, err := p.Token(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "long-lived", token)
	assert.Equal(t, int64(0), ep.requests.Load(), "token outside a 1s margin must be reused")
}

func TestAuthError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AuthError
		contains []string
	}{
		{
			name:     "with description",
			err:      &AuthError{StatusCode: 400, Code: "invalid_client", Description: "secret expired"},
			contains: []string{"400", "invalid_client", "secret expired"},
		},
		{
			name:     "status only",
			err:      &AuthError{StatusCode: 503},
			contains: []string{"503"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, want := range tt.contains {
				assert.Contains(t, msg, want)
			}
		})
	}
}

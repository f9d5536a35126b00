package driven

import "context"

// TokenProvider supplies a valid access token for outbound API requests.
// Implementations own token caching and renewal; callers treat the
// returned value as opaque and never cache it themselves.
type TokenProvider interface {
	// Token returns an access token guaranteed to be valid for at least
	// the provider's safety margin. May perform a network round-trip to
	// the identity provider when no usable cached token exists.
	Token(ctx context.Context) (string, error)

	// Invalidate discards any cached token so the next Token call
	// re-authenticates. Called after an upstream 401.
	Invalidate()
}

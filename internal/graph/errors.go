package graph

import (
	"errors"
	"fmt"
	"net/http"
)

// Error types for Microsoft Graph API responses.
var (
	// ErrUnauthorised indicates the access token is invalid or expired.
	ErrUnauthorised = errors.New("graph: unauthorised")

	// ErrForbidden indicates the app lacks permission for the requested resource.
	ErrForbidden = errors.New("graph: forbidden")

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("graph: not found")

	// ErrRateLimited indicates the request was throttled by Microsoft Graph.
	ErrRateLimited = errors.New("graph: rate limited")

	// ErrBadRequest indicates the request was malformed.
	ErrBadRequest = errors.New("graph: bad request")

	// ErrConflict indicates the resource already exists or is in a
	// conflicting state (e.g. duplicate userPrincipalName).
	ErrConflict = errors.New("graph: conflict")

	// ErrServerError indicates a server-side error from Microsoft Graph.
	ErrServerError = errors.New("graph: server error")

	// ErrTransport indicates a network-level failure before any HTTP
	// response was received. Distinct from context cancellation, which
	// surfaces as the context's own error.
	ErrTransport = errors.New("graph: transport failure")
)

// APIError is an error response from Microsoft Graph. The upstream body
// is kept verbatim so callers see exactly what Graph returned.
type APIError struct {
	// StatusCode is the HTTP status returned by Graph.
	StatusCode int
	// Body is the raw error response body.
	Body []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph: request failed with status %d: %s", e.StatusCode, e.Body)
}

// Unwrap maps the status code onto the sentinel taxonomy so callers can
// use errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	return wrapStatus(e.StatusCode)
}

// wrapStatus converts an HTTP status code to an appropriate sentinel.
func wrapStatus(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorised
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusBadRequest:
		return ErrBadRequest
	default:
		if statusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

// IsUnauthorised checks if the status code indicates an authentication failure.
func IsUnauthorised(statusCode int) bool {
	return statusCode == http.StatusUnauthorized
}

// IsRateLimited checks if the status code indicates rate limiting.
func IsRateLimited(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests
}

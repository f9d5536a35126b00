// Package graph provides an authenticated request gateway for the
// Microsoft Graph API.
//
// This package provides:
//   - A Client that attaches bearer tokens to outbound requests and
//     translates Graph responses into a structured error taxonomy
//   - Rate limiting for Microsoft Graph API requests
//   - Typed directory operations (users, groups, licenses)
//
// # Authentication
//
// The Client takes a driven.TokenProvider and never touches credentials
// itself. A 401 from Graph invalidates the provider's cached token so
// the next request re-authenticates; the failed request is not retried.
//
// # Errors
//
// Error responses from Graph are surfaced verbatim: APIError carries the
// upstream status code and raw error body so callers can diagnose
// failures without this package reshaping them. Requests are never
// retried automatically.
//
// # Rate Limits
//
// Microsoft Graph allows approximately 10,000 requests per 10 minutes
// per app. This package implements conservative rate limiting and backs
// off on 429 responses using the Retry-After header.
package graph

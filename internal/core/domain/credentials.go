package domain

import (
	"errors"
	"fmt"
)

// ErrMissingCredential indicates a required credential field is empty.
// Credential validation failures are fatal at startup, never per-request.
var ErrMissingCredential = errors.New("missing credential")

// Credentials holds the client-credentials identity for a single tenant.
// Values are fixed for the lifetime of the process and must never be
// logged or persisted.
type Credentials struct {
	// TenantID is the Microsoft Entra tenant (directory) ID.
	TenantID string
	// ClientID is the app registration's application (client) ID.
	ClientID string
	// ClientSecret is the app registration's client secret.
	ClientSecret string
}

// Validate checks that all credential fields are present.
// Returns ErrMissingCredential naming the first missing field.
func (c Credentials) Validate() error {
	switch {
	case c.TenantID == "":
		return fmt.Errorf("%w: tenant ID", ErrMissingCredential)
	case c.ClientID == "":
		return fmt.Errorf("%w: client ID", ErrMissingCredential)
	case c.ClientSecret == "":
		return fmt.Errorf("%w: client secret", ErrMissingCredential)
	}
	return nil
}

// Package config loads credentials and options from the environment and
// an optional TOML config file.
//
// Environment variables always win over file values. Credentials are
// validated once at load time; a missing credential is a fatal startup
// error, never a per-request one.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/graphadmin/internal/core/domain"
)

// Environment variable names for the credential set.
const (
	EnvTenantID     = "MICROSOFT_TENANT_ID"
	EnvClientID     = "MICROSOFT_CLIENT_ID"
	EnvClientSecret = "MICROSOFT_CLIENT_SECRET"
)

// Config holds validated startup configuration.
type Config struct {
	Credentials domain.Credentials
}

// fileConfig is the TOML config file schema.
type fileConfig struct {
	Microsoft struct {
		TenantID     string `toml:"tenant_id"`
		ClientID     string `toml:"client_id"`
		ClientSecret string `toml:"client_secret"`
	} `toml:"microsoft"`
}

// DefaultPath returns the default config file location
// (~/.graphadmin/config.toml).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".graphadmin", "config.toml"), nil
}

// Load reads configuration from the given TOML file (if it exists) and
// the process environment, with environment values taking precedence.
// An empty path uses DefaultPath. The returned credentials are validated.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	var fc fileConfig
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// No config file; environment only.
	default:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	creds := domain.Credentials{
		TenantID:     firstNonEmpty(os.Getenv(EnvTenantID), fc.Microsoft.TenantID),
		ClientID:     firstNonEmpty(os.Getenv(EnvClientID), fc.Microsoft.ClientID),
		ClientSecret: firstNonEmpty(os.Getenv(EnvClientSecret), fc.Microsoft.ClientSecret),
	}
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf(
			"%w (set %s, %s and %s or provide %s)",
			err, EnvTenantID, EnvClientID, EnvClientSecret, path,
		)
	}

	return &Config{Credentials: creds}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

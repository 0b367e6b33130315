// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets go to the OS keychain.
//
// Values resolve in three layers: compiled defaults, the JSON config file,
// and finally CARDLINE_* environment variables, which win.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"

	"cardline/cli/internal/xdg"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	// BackendURL is the root of the Cardline REST API.
	BackendURL string `json:"backend_url"`
	// GoogleClientID identifies this app at the identity provider.
	GoogleClientID string `json:"google_client_id"`
	// GoogleClientSecret authenticates the token-endpoint exchange. Installed
	// apps carry a non-confidential secret, so it lives in config, not keychain.
	GoogleClientSecret string `json:"google_client_secret"`
	// RedirectURL is the fixed loopback target the provider sends the
	// authorization code to during login.
	RedirectURL string `json:"redirect_url"`
	// GmailInsights requests the Gmail read scope during sign-in so the
	// backend can personalize recommendations. Off by default.
	GmailInsights bool `json:"gmail_insights"`
	// AllowLocalSession keeps sign-in usable when the backend /auth exchange
	// is down by issuing a locally generated session token.
	AllowLocalSession bool   `json:"allow_local_session"`
	LogLevel          string `json:"log_level"`
}

// envOverlay holds raw CARDLINE_* values layered over the file config.
// Pointer fields distinguish "unset" from an explicit false/empty.
type envOverlay struct {
	BackendURL         string `env:"CARDLINE_BACKEND_URL"`
	GoogleClientID     string `env:"CARDLINE_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"CARDLINE_GOOGLE_CLIENT_SECRET"`
	RedirectURL        string `env:"CARDLINE_REDIRECT_URL"`
	GmailInsights      *bool  `env:"CARDLINE_GMAIL_INSIGHTS"`
	AllowLocalSession  *bool  `env:"CARDLINE_ALLOW_LOCAL_SESSION"`
	LogLevel           string `env:"CARDLINE_LOG_LEVEL"`
}

// Defaults returns the compiled-in configuration.
func Defaults() Config {
	return Config{
		BackendURL:        "https://api.cardline.app",
		RedirectURL:       "http://127.0.0.1:8423/oauth/callback",
		AllowLocalSession: true,
		LogLevel:          "info",
	}
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration; a missing file yields defaults. Environment
// variables override whatever the file provided.
func Load() (Config, error) {
	c := Defaults()
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, err
	}
	if err == nil {
		if uerr := json.Unmarshal(data, &c); uerr != nil {
			return c, uerr
		}
	}
	return applyEnv(c)
}

// applyEnv layers CARDLINE_* environment variables over c.
func applyEnv(c Config) (Config, error) {
	var raw envOverlay
	if err := env.Parse(&raw); err != nil {
		return c, err
	}
	if raw.BackendURL != "" {
		c.BackendURL = raw.BackendURL
	}
	if raw.GoogleClientID != "" {
		c.GoogleClientID = raw.GoogleClientID
	}
	if raw.GoogleClientSecret != "" {
		c.GoogleClientSecret = raw.GoogleClientSecret
	}
	if raw.RedirectURL != "" {
		c.RedirectURL = raw.RedirectURL
	}
	if raw.GmailInsights != nil {
		c.GmailInsights = *raw.GmailInsights
	}
	if raw.AllowLocalSession != nil {
		c.AllowLocalSession = *raw.AllowLocalSession
	}
	if raw.LogLevel != "" {
		c.LogLevel = raw.LogLevel
	}
	return c, nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

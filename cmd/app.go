// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"

	"cardline/cli/internal/api"
	"cardline/cli/internal/config"
	cerr "cardline/cli/internal/errors"
	"cardline/cli/internal/keychain"
	"cardline/cli/internal/logging"
	"cardline/cli/internal/session"
)

// app bundles the wired components every command depends on: configuration,
// the credential store, the restored session context and the backend client.
type app struct {
	cfg      config.Config
	store    *keychain.Manager
	sessions *session.Context
	backend  api.API
}

// newApp loads configuration, opens the OS keychain and restores the session
// context, so commands start from a resolved authentication state.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(cfg.LogLevel)

	store, err := keychain.Open()
	if err != nil {
		return nil, err
	}

	sessions := session.NewContext(store)
	if err := sessions.Restore(ctx); err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	logging.Debugf("session restored: state=%s", sessions.State())

	return &app{
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		backend:  api.New(cfg.BackendURL, store),
	}, nil
}

// requireSession fails fast with a sign-in hint when no session is present,
// so data commands do not fire doomed requests.
func (a *app) requireSession() error {
	if a.sessions.IsAuthenticated() {
		return nil
	}
	return cerr.New(cerr.Unauthorized, "you are not signed in; run 'cardline login' first")
}

// refreshAfter401 re-reads the session context when a request came back
// unauthorized, so the in-memory state matches the already-purged store.
func (a *app) refreshAfter401(ctx context.Context, err error) error {
	if cerr.Is(err, cerr.Unauthorized) {
		a.sessions.Invalidate(ctx)
		return cerr.New(cerr.Unauthorized, "your session has expired; run 'cardline login' to sign in again")
	}
	return err
}

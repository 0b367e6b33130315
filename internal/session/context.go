// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session is the single source of truth for "is the user signed in".
// A Context starts Initializing, resolves to Authenticated or Unauthenticated
// on the first credential store read, and is updated by sign-in and sign-out.
// Consumers receive a *Context handle; there is no package-level singleton.
//
// The authenticated invariant is strict: a session exists iff both the
// session token and the profile are present. Partial store contents are
// treated as absent and cleared.
package session

import (
	"context"
	"sync"

	cerr "cardline/cli/internal/errors"
	"cardline/cli/internal/keychain"
)

// State is the lifecycle position of the session context.
type State int

const (
	// Initializing is the transient state before the first store read.
	Initializing State = iota
	// Unauthenticated means no valid session; sign-in may be attempted.
	Unauthenticated
	// Authenticated means both token and profile are present.
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "initializing"
	}
}

// Context tracks the current session against the credential store.
type Context struct {
	mu      sync.RWMutex
	store   keychain.Store
	state   State
	token   string
	profile *Profile

	restoreOnce sync.Once
}

// NewContext returns a Context in the Initializing state. Call Restore before
// anything depends on the authentication state.
func NewContext(store keychain.Store) *Context {
	return &Context{store: store, state: Initializing}
}

// Restore performs the startup read of the credential store, exactly once per
// process. A token without a profile (or the reverse) is partial state: both
// keys are cleared and the context resolves Unauthenticated.
func (c *Context) Restore(ctx context.Context) error {
	var err error
	c.restoreOnce.Do(func() {
		err = c.restore(ctx)
	})
	return err
}

func (c *Context) restore(_ context.Context) error {
	token, err := c.store.Get(keychain.KeySessionToken)
	if err != nil {
		c.publish("", nil)
		return err
	}
	raw, err := c.store.Get(keychain.KeyUserProfile)
	if err != nil {
		c.publish("", nil)
		return err
	}

	profile := DecodeProfile(raw)
	if token == "" || profile == nil {
		// Partial or empty state resolves to signed-out; drop leftovers.
		_ = c.store.RemoveAll(keychain.SessionKeys...)
		c.publish("", nil)
		return nil
	}

	c.publish(token, profile)
	return nil
}

// SignInDirect persists and publishes a session without the OAuth flow, for
// backend-issued tokens or externally trusted token+profile pairs. On a store
// write failure it rolls back and leaves the prior state unchanged.
func (c *Context) SignInDirect(_ context.Context, token string, profile *Profile) error {
	if token == "" || profile == nil {
		return cerr.New(cerr.Persistence, "refusing to store a partial session")
	}
	encoded, err := profile.Encode()
	if err != nil {
		return cerr.Wrap(cerr.Persistence, "serialize profile", err)
	}

	prevProfile, _ := c.store.Get(keychain.KeyUserProfile)
	if err := c.store.Set(keychain.KeyUserProfile, encoded); err != nil {
		return cerr.Wrap(cerr.Persistence, "store profile", err)
	}
	if err := c.store.Set(keychain.KeySessionToken, token); err != nil {
		// Do not leave a half-written session behind; put back whatever
		// profile was stored before.
		if prevProfile != "" {
			_ = c.store.Set(keychain.KeyUserProfile, prevProfile)
		} else {
			_ = c.store.Remove(keychain.KeyUserProfile)
		}
		return cerr.Wrap(cerr.Persistence, "store session token", err)
	}

	c.publish(token, profile)
	return nil
}

// SignOut clears the stored session and publishes Unauthenticated. Safe to
// call repeatedly; the store clear is attempted every time.
func (c *Context) SignOut(_ context.Context) error {
	err := c.store.RemoveAll(keychain.SessionKeys...)
	c.publish("", nil)
	if err != nil {
		return cerr.Wrap(cerr.Persistence, "clear credential store", err)
	}
	return nil
}

// Invalidate refreshes the context from the store after an out-of-band
// change, such as the API client purging credentials on a 401.
func (c *Context) Invalidate(ctx context.Context) {
	_ = c.restore(ctx)
}

// State returns the current lifecycle state.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// IsAuthenticated reports whether a full session is present.
func (c *Context) IsAuthenticated() bool {
	return c.State() == Authenticated
}

// Token returns the current session token, or "" when signed out.
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Profile returns the cached identity attributes, or nil when signed out.
func (c *Context) Profile() *Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

// AuthHeader returns the bearer-header value for the current token, or ""
// when unauthenticated. It never fails.
func (c *Context) AuthHeader() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" {
		return ""
	}
	return "Bearer " + c.token
}

// publish swaps the visible session state. The invariant lives here: both
// values present means Authenticated, anything else means Unauthenticated.
func (c *Context) publish(token string, profile *Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != "" && profile != nil {
		c.state = Authenticated
		c.token = token
		c.profile = profile
		return
	}
	c.state = Unauthenticated
	c.token = ""
	c.profile = nil
}

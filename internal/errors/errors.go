// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every failure the auth core can surface carries a machine-readable Kind so
// the command layer can decide what to show without string matching. None of
// these errors is fatal to the process; the worst outcome is a forced return
// to the signed-out state.
package errors

import (
	"errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// NotReady indicates the OAuth authorization request could not be
	// constructed, usually from missing client configuration.
	NotReady Kind = "not_ready"
	// AuthorizationDeclined indicates the identity provider declined or
	// failed the consent step.
	AuthorizationDeclined Kind = "authorization_declined"
	// TokenExchange indicates the provider token endpoint rejected the
	// authorization code or returned malformed data.
	TokenExchange Kind = "token_exchange_failed"
	// ProfileFetch indicates the provider profile endpoint failed after a
	// valid token was obtained.
	ProfileFetch Kind = "profile_fetch_failed"
	// BackendAuth indicates the Cardline backend rejected or was unreachable
	// during sign-in. Non-fatal when the local-session fallback is enabled.
	BackendAuth Kind = "backend_auth_failed"
	// Persistence indicates the credential store failed to write.
	Persistence Kind = "persistence_failed"
	// Unauthorized indicates a backend call was rejected with 401 and the
	// stored session has been invalidated.
	Unauthorized Kind = "unauthorized"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the category of err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err belongs to the given category.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }

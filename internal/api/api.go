// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package api is the authenticated client for the Cardline backend. Every
// request is built against a fixed backend root, picks up the session token
// from the credential store at send time, and reacts uniformly to 401s by
// purging the stored session before the error reaches the caller.
//
// The client performs no retries and no request serialization; concurrent
// requests are independent and each rereads the token.
package api

import (
	"context"

	"cardline/cli/internal/keychain"
)

// API defines the backend operations the CLI depends on. Implementations may
// call the real REST endpoints or provide fakes for tests.
type API interface {
	// Authenticate exchanges a provider-verified identity for a backend
	// session token via POST /auth.
	Authenticate(ctx context.Context, name, email, providerAccessToken string) (*AuthResult, error)
	// GetMe retrieves the current user's profile from the backend.
	GetMe(ctx context.Context) (map[string]any, error)
	// GetCards lists the user's cards.
	GetCards(ctx context.Context) ([]Card, error)
	// GetTransactions lists recent transactions, optionally filtered.
	GetTransactions(ctx context.Context, q TransactionQuery) ([]Transaction, error)
	// GetRecommendations lists card recommendations for the user.
	GetRecommendations(ctx context.Context) ([]Recommendation, error)
}

// New creates a backend API implementation bound to the given root URL and
// credential store.
func New(baseURL string, store keychain.Store) API {
	return newHTTP(baseURL, store)
}

// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	cerr "cardline/cli/internal/errors"
)

// AuthResult is the backend's answer to a sign-in exchange.
type AuthResult struct {
	// SessionToken is the bearer credential for subsequent API calls.
	SessionToken string
	// Data carries whatever account payload the backend attached.
	Data map[string]any
	// Message is the backend's human-readable note, usually on rejection.
	Message string
}

// Authenticate calls POST /auth with the provider-verified identity. This is
// the one pre-session call: it is sent without a bearer header and does not
// run the 401 invalidation path, since there is no stored session to purge
// while one is being established.
//
// A transport failure, non-2xx status, success=false, or a missing
// accessToken all surface as a BackendAuth error; the sign-in flow decides
// whether the local-session fallback applies.
func (h *HTTP) Authenticate(ctx context.Context, name, email, providerAccessToken string) (*AuthResult, error) {
	payload, err := json.Marshal(map[string]string{
		"name":        name,
		"email":       email,
		"accessToken": providerAccessToken,
	})
	if err != nil {
		return nil, cerr.Wrap(cerr.BackendAuth, "encode auth request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/auth", bytes.NewReader(payload))
	if err != nil {
		return nil, cerr.Wrap(cerr.BackendAuth, "build auth request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, cerr.Wrap(cerr.BackendAuth, "auth exchange unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return nil, cerr.New(cerr.BackendAuth,
			"auth exchange returned "+resp.Status+": "+strings.TrimSpace(string(b)))
	}

	var out struct {
		Success     bool           `json:"success"`
		AccessToken string         `json:"accessToken"`
		Data        map[string]any `json:"data"`
		Message     string         `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, cerr.Wrap(cerr.BackendAuth, "decode auth response", err)
	}
	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = "backend declined the sign-in"
		}
		return nil, cerr.New(cerr.BackendAuth, msg)
	}
	if out.AccessToken == "" {
		return nil, cerr.New(cerr.BackendAuth, "auth response missing accessToken")
	}

	return &AuthResult{
		SessionToken: out.AccessToken,
		Data:         out.Data,
		Message:      out.Message,
	}, nil
}

// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	cerr "cardline/cli/internal/errors"
	"cardline/cli/internal/keychain"
)

// HTTP implements API over the backend REST endpoints.
type HTTP struct {
	// baseURL is the backend root (e.g. "https://api.cardline.app")
	baseURL string
	// store is consulted for the session token before every request
	store keychain.Store
	// client is the underlying HTTP client with configured timeout
	client *http.Client
}

// newHTTP creates a client with a 10-second timeout for all requests.
func newHTTP(baseURL string, store keychain.Store) *HTTP {
	return &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// envelope is the backend's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// newRequest builds a request against the backend root. The session token is
// read from the credential store here, per request, so a sign-in or sign-out
// elsewhere in the process is picked up immediately. A missing token does not
// block the request; it simply goes out without a credential.
func (h *HTTP) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if token, err := h.store.Get(keychain.KeySessionToken); err == nil && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// send executes the request. A 401 response invalidates the stored session
// before the error is returned, so the next session read anywhere in the
// process sees the signed-out state regardless of what the caller does with
// the rejection. Other failures propagate unchanged; retries are the caller's
// business.
func (h *HTTP) send(req *http.Request) (*http.Response, error) {
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		_ = h.store.RemoveAll(keychain.KeySessionToken, keychain.KeyUserProfile)
		return nil, cerr.New(cerr.Unauthorized, "session rejected by backend")
	}
	return resp, nil
}

// getJSON performs an authenticated GET and unwraps the response envelope
// into out.
func (h *HTTP) getJSON(ctx context.Context, path string, out any) error {
	req, err := h.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	resp, err := h.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s failed: %d %s", path, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return err
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request rejected"
		}
		return fmt.Errorf("%s failed: %s", path, msg)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

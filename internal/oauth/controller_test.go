// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/99designs/keyring"

	"cardline/cli/internal/api"
	cerr "cardline/cli/internal/errors"
	"cardline/cli/internal/keychain"
	"cardline/cli/internal/session"
)

// fakeBackend implements api.API with a pluggable Authenticate.
type fakeBackend struct {
	api.API
	authFn func(ctx context.Context, name, email, token string) (*api.AuthResult, error)
}

func (f *fakeBackend) Authenticate(ctx context.Context, name, email, token string) (*api.AuthResult, error) {
	return f.authFn(ctx, name, email, token)
}

type fixture struct {
	store    *keychain.Manager
	sessions *session.Context
	ctrl     *Controller

	tokenSrv    *httptest.Server
	userinfoSrv *httptest.Server
}

// newFixture stands up a token endpoint, a userinfo endpoint and a fake
// backend, and wires a controller with fully resolvable client credentials.
func newFixture(t *testing.T, tokenHandler, userinfoHandler http.HandlerFunc, backend api.API, allowLocal bool) *fixture {
	t.Helper()

	tokenSrv := httptest.NewServer(tokenHandler)
	t.Cleanup(tokenSrv.Close)
	userinfoSrv := httptest.NewServer(userinfoHandler)
	t.Cleanup(userinfoSrv.Close)

	store := keychain.NewManager(keyring.NewArrayKeyring(nil))
	sessions := session.NewContext(store)
	if err := sessions.Restore(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctrl := NewController(Config{
		ClientID:          "cid",
		ClientSecret:      "csecret",
		RedirectURL:       "http://127.0.0.1:8423/oauth/callback",
		AllowLocalSession: allowLocal,
		TokenURL:          tokenSrv.URL,
		UserinfoURL:       userinfoSrv.URL,
	}, store, sessions, backend)

	return &fixture{store: store, sessions: sessions, ctrl: ctrl, tokenSrv: tokenSrv, userinfoSrv: userinfoSrv}
}

func okTokenHandler(t *testing.T, wantCode string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Error(err)
		}
		if got := r.PostForm.Get("code"); got != wantCode {
			t.Errorf("code = %q, want %q", got, wantCode)
		}
		if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
			t.Errorf("grant_type = %q", got)
		}
		w.Write([]byte(`{"access_token":"tok123","refresh_token":"ref456"}`))
	}
}

func okUserinfoHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
			t.Errorf("Authorization = %q, want Bearer tok123", got)
		}
		w.Write([]byte(`{"sub":"g-1","name":"Jane","email":"jane@x.com","picture":"https://p/x.png"}`))
	}
}

func TestSignInHappyPath(t *testing.T) {
	backend := &fakeBackend{authFn: func(_ context.Context, name, email, token string) (*api.AuthResult, error) {
		if name != "Jane" || email != "jane@x.com" || token != "tok123" {
			t.Errorf("Authenticate(%q, %q, %q)", name, email, token)
		}
		return &api.AuthResult{SessionToken: "beToken"}, nil
	}}
	fx := newFixture(t, okTokenHandler(t, "abc"), okUserinfoHandler(t), backend, true)

	authURL, state, err := fx.ctrl.BeginSignIn()
	if err != nil {
		t.Fatalf("BeginSignIn() error: %v", err)
	}
	if state == "" {
		t.Error("empty state")
	}
	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatal(err)
	}
	if u.Query().Get("state") != state {
		t.Errorf("auth URL state = %q, want %q", u.Query().Get("state"), state)
	}
	if u.Query().Get("client_id") != "cid" {
		t.Errorf("auth URL client_id = %q", u.Query().Get("client_id"))
	}

	if err := fx.ctrl.CompleteSignIn(context.Background(), Success("abc")); err != nil {
		t.Fatalf("CompleteSignIn() error: %v", err)
	}

	if !fx.sessions.IsAuthenticated() {
		t.Fatal("session not authenticated after sign-in")
	}
	if fx.sessions.Token() != "beToken" {
		t.Errorf("session token = %q, want beToken", fx.sessions.Token())
	}
	if p := fx.sessions.Profile(); p == nil || p.Email != "jane@x.com" {
		t.Errorf("profile = %+v", p)
	}

	if v, _ := fx.store.Get(keychain.KeyProviderAccessToken); v != "tok123" {
		t.Errorf("provider access token = %q", v)
	}
	if v, _ := fx.store.Get(keychain.KeyProviderRefreshToken); v != "ref456" {
		t.Errorf("provider refresh token = %q", v)
	}
}

func TestExchangeFailureWritesNothing(t *testing.T) {
	tokenHandler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"code expired"}`))
	}
	backend := &fakeBackend{authFn: func(context.Context, string, string, string) (*api.AuthResult, error) {
		t.Error("backend reached despite failed exchange")
		return nil, nil
	}}
	fx := newFixture(t, tokenHandler, okUserinfoHandler(t), backend, true)

	if _, _, err := fx.ctrl.BeginSignIn(); err != nil {
		t.Fatal(err)
	}
	err := fx.ctrl.CompleteSignIn(context.Background(), Success("expired"))
	if !cerr.Is(err, cerr.TokenExchange) {
		t.Fatalf("error kind = %q, want token_exchange_failed", cerr.KindOf(err))
	}
	if !strings.Contains(err.Error(), "invalid_grant") {
		t.Errorf("error %q does not carry provider reason", err)
	}

	if fx.sessions.IsAuthenticated() {
		t.Error("authenticated after failed exchange")
	}
	for _, key := range keychain.SessionKeys {
		if v, _ := fx.store.Get(key); v != "" {
			t.Errorf("store key %q written on failure: %q", key, v)
		}
	}
}

func TestProfileFetchFailureWritesNothing(t *testing.T) {
	userinfoHandler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}
	backend := &fakeBackend{authFn: func(context.Context, string, string, string) (*api.AuthResult, error) {
		t.Error("backend reached despite failed profile fetch")
		return nil, nil
	}}
	fx := newFixture(t, okTokenHandler(t, "abc"), userinfoHandler, backend, true)

	if _, _, err := fx.ctrl.BeginSignIn(); err != nil {
		t.Fatal(err)
	}
	err := fx.ctrl.CompleteSignIn(context.Background(), Success("abc"))
	if !cerr.Is(err, cerr.ProfileFetch) {
		t.Fatalf("error kind = %q, want profile_fetch_failed", cerr.KindOf(err))
	}
	for _, key := range keychain.SessionKeys {
		if v, _ := fx.store.Get(key); v != "" {
			t.Errorf("store key %q written on failure: %q", key, v)
		}
	}
}

func TestBackendFailureFallsBackToLocalSession(t *testing.T) {
	backend := &fakeBackend{authFn: func(context.Context, string, string, string) (*api.AuthResult, error) {
		return nil, cerr.New(cerr.BackendAuth, "backend unreachable")
	}}
	fx := newFixture(t, okTokenHandler(t, "abc"), okUserinfoHandler(t), backend, true)

	if _, _, err := fx.ctrl.BeginSignIn(); err != nil {
		t.Fatal(err)
	}
	if err := fx.ctrl.CompleteSignIn(context.Background(), Success("abc")); err != nil {
		t.Fatalf("CompleteSignIn() error: %v", err)
	}

	if !fx.sessions.IsAuthenticated() {
		t.Fatal("fallback did not produce an authenticated session")
	}
	tok := fx.sessions.Token()
	if !strings.HasPrefix(tok, "local-") {
		t.Errorf("fallback token = %q, want local- prefix", tok)
	}
	// The local token is an app-level stand-in, never the provider token.
	if tok == "tok123" {
		t.Error("provider access token reused as session token")
	}
}

func TestBackendFailureWithoutFallbackFails(t *testing.T) {
	backend := &fakeBackend{authFn: func(context.Context, string, string, string) (*api.AuthResult, error) {
		return nil, cerr.New(cerr.BackendAuth, "backend unreachable")
	}}
	fx := newFixture(t, okTokenHandler(t, "abc"), okUserinfoHandler(t), backend, false)

	if _, _, err := fx.ctrl.BeginSignIn(); err != nil {
		t.Fatal(err)
	}
	err := fx.ctrl.CompleteSignIn(context.Background(), Success("abc"))
	if !cerr.Is(err, cerr.BackendAuth) {
		t.Fatalf("error kind = %q, want backend_auth_failed", cerr.KindOf(err))
	}
	if fx.sessions.IsAuthenticated() {
		t.Error("authenticated despite disabled fallback")
	}
	if v, _ := fx.store.Get(keychain.KeySessionToken); v != "" {
		t.Errorf("session token written despite disabled fallback: %q", v)
	}
}

func TestCancelledIsNoOp(t *testing.T) {
	backend := &fakeBackend{authFn: func(context.Context, string, string, string) (*api.AuthResult, error) {
		t.Error("backend reached on cancellation")
		return nil, nil
	}}
	fx := newFixture(t, okTokenHandler(t, ""), okUserinfoHandler(t), backend, true)

	if _, _, err := fx.ctrl.BeginSignIn(); err != nil {
		t.Fatal(err)
	}
	if err := fx.ctrl.CompleteSignIn(context.Background(), Cancelled()); err != nil {
		t.Fatalf("cancellation returned error: %v", err)
	}
	if fx.sessions.IsAuthenticated() {
		t.Error("authenticated after cancellation")
	}

	// Cancellation releases the attempt; a new one may begin immediately.
	if _, _, err := fx.ctrl.BeginSignIn(); err != nil {
		t.Errorf("BeginSignIn() after cancellation: %v", err)
	}
}

func TestDeclinedSurfacesProviderReason(t *testing.T) {
	backend := &fakeBackend{authFn: func(context.Context, string, string, string) (*api.AuthResult, error) {
		t.Error("backend reached on declined authorization")
		return nil, nil
	}}
	fx := newFixture(t, okTokenHandler(t, ""), okUserinfoHandler(t), backend, true)

	if _, _, err := fx.ctrl.BeginSignIn(); err != nil {
		t.Fatal(err)
	}
	err := fx.ctrl.CompleteSignIn(context.Background(), Declined("access_denied"))
	if !cerr.Is(err, cerr.AuthorizationDeclined) {
		t.Fatalf("error kind = %q, want authorization_declined", cerr.KindOf(err))
	}
	if !strings.Contains(err.Error(), "access_denied") {
		t.Errorf("error %q does not carry reason", err)
	}
}

func TestSecondAttemptWhilePendingIsRejected(t *testing.T) {
	backend := &fakeBackend{authFn: func(context.Context, string, string, string) (*api.AuthResult, error) {
		return &api.AuthResult{SessionToken: "beToken"}, nil
	}}
	fx := newFixture(t, okTokenHandler(t, "abc"), okUserinfoHandler(t), backend, true)

	if _, _, err := fx.ctrl.BeginSignIn(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := fx.ctrl.BeginSignIn(); !cerr.Is(err, cerr.NotReady) {
		t.Fatalf("second BeginSignIn error kind = %q, want not_ready", cerr.KindOf(err))
	}

	// Finishing the first attempt frees the slot.
	if err := fx.ctrl.CompleteSignIn(context.Background(), Success("abc")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := fx.ctrl.BeginSignIn(); err != nil {
		t.Errorf("BeginSignIn() after completion: %v", err)
	}
}

func TestBeginSignInRequiresCredentials(t *testing.T) {
	store := keychain.NewManager(keyring.NewArrayKeyring(nil))
	sessions := session.NewContext(store)
	ctrl := NewController(Config{RedirectURL: "http://127.0.0.1:8423/oauth/callback"}, store, sessions, nil)

	if _, _, err := ctrl.BeginSignIn(); !cerr.Is(err, cerr.NotReady) {
		t.Fatalf("error kind = %q, want not_ready", cerr.KindOf(err))
	}
}

func TestGmailScopeOnlyWhenEnabled(t *testing.T) {
	tests := []struct {
		name      string
		insights  bool
		wantGmail bool
	}{
		{name: "insights off", insights: false, wantGmail: false},
		{name: "insights on", insights: true, wantGmail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := keychain.NewManager(keyring.NewArrayKeyring(nil))
			ctrl := NewController(Config{
				ClientID:      "cid",
				ClientSecret:  "csecret",
				RedirectURL:   "http://127.0.0.1:8423/oauth/callback",
				GmailInsights: tt.insights,
			}, store, session.NewContext(store), nil)

			authURL, _, err := ctrl.BeginSignIn()
			if err != nil {
				t.Fatal(err)
			}
			u, err := url.Parse(authURL)
			if err != nil {
				t.Fatal(err)
			}
			gotGmail := strings.Contains(u.Query().Get("scope"), "gmail.readonly")
			if gotGmail != tt.wantGmail {
				t.Errorf("gmail scope present = %v, want %v", gotGmail, tt.wantGmail)
			}
		})
	}
}

// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package oauth drives the Google sign-in flow: it builds the authorization
// request, exchanges the returned code for provider tokens, fetches the
// provider profile, trades the verified identity for a Cardline session via
// the backend, and hands the finished session to the session context.
//
// One attempt may be in flight at a time. The three steps of a successful
// attempt run strictly in order: code exchange, then profile fetch, then
// session issuance; nothing is persisted until all reads succeeded.
package oauth

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"cardline/cli/internal/api"
	cerr "cardline/cli/internal/errors"
	"cardline/cli/internal/keychain"
	"cardline/cli/internal/session"
)

// Google endpoints. Tests point these at local fakes through Config.
const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserinfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

	scopeGmailRead = "https://www.googleapis.com/auth/gmail.readonly"
)

// Config carries what the controller needs to talk to the provider.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// GmailInsights adds the Gmail read scope for backend personalization.
	GmailInsights bool
	// AllowLocalSession keeps sign-in usable when the backend /auth exchange
	// fails, by issuing a locally generated opaque session token.
	AllowLocalSession bool

	// Endpoint overrides, empty means Google.
	AuthURL     string
	TokenURL    string
	UserinfoURL string
}

// Controller converts end-user consent into an application session.
type Controller struct {
	oauthCfg    oauth2.Config
	userinfoURL string
	allowLocal  bool

	client   *http.Client
	store    keychain.Store
	sessions *session.Context
	backend  api.API

	pending atomic.Bool
}

// NewController wires a controller to the credential store, the session
// context and the backend client.
func NewController(cfg Config, store keychain.Store, sessions *session.Context, backend api.API) *Controller {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = googleAuthURL
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = googleTokenURL
	}
	userinfoURL := cfg.UserinfoURL
	if userinfoURL == "" {
		userinfoURL = googleUserinfoURL
	}

	scopes := []string{"openid", "email", "profile"}
	if cfg.GmailInsights {
		scopes = append(scopes, scopeGmailRead)
	}

	return &Controller{
		oauthCfg: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  authURL,
				TokenURL: tokenURL,
			},
		},
		userinfoURL: userinfoURL,
		allowLocal:  cfg.AllowLocalSession,
		client:      &http.Client{Timeout: 10 * time.Second},
		store:       store,
		sessions:    sessions,
		backend:     backend,
	}
}

// BeginSignIn constructs the authorization request for a fresh attempt and
// returns the consent URL plus the state value the redirect must echo. It
// never touches the network. Only one attempt may be pending; callers finish
// (or cancel) the current one before starting another.
func (c *Controller) BeginSignIn() (authURL, state string, err error) {
	if c.oauthCfg.ClientID == "" || c.oauthCfg.ClientSecret == "" || c.oauthCfg.RedirectURL == "" {
		return "", "", cerr.New(cerr.NotReady,
			"Google client credentials are not configured; set CARDLINE_GOOGLE_CLIENT_ID and CARDLINE_GOOGLE_CLIENT_SECRET")
	}
	if !c.pending.CompareAndSwap(false, true) {
		return "", "", cerr.New(cerr.NotReady, "a sign-in attempt is already in progress")
	}

	state = uuid.NewString()
	return c.oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline), state, nil
}

// CompleteSignIn reacts to the resolved authorization result. Cancellation is
// a no-op; a provider error surfaces as AuthorizationDeclined with the
// session untouched. On success the controller runs the exchange chain and
// publishes the session. Either way the pending slot is released so a fresh
// BeginSignIn may follow.
func (c *Controller) CompleteSignIn(ctx context.Context, res Result) error {
	defer c.pending.Store(false)

	switch res.kind {
	case resultCancelled:
		return nil
	case resultDeclined:
		return cerr.New(cerr.AuthorizationDeclined, res.reason)
	}

	tok, err := c.exchangeCode(ctx, res.code)
	if err != nil {
		return err
	}

	profile, err := c.fetchProfile(ctx, tok.AccessToken)
	if err != nil {
		// Provider tokens are discarded, not partially committed.
		return err
	}

	sessionToken, err := c.issueSessionToken(ctx, profile, tok.AccessToken)
	if err != nil {
		return err
	}

	if err := c.sessions.SignInDirect(ctx, sessionToken, profile); err != nil {
		return err
	}

	// Provider tokens only authorize direct provider API calls (profile
	// refresh, Gmail insights); the session survives without them.
	_ = c.store.Set(keychain.KeyProviderAccessToken, tok.AccessToken)
	if tok.RefreshToken != "" {
		_ = c.store.Set(keychain.KeyProviderRefreshToken, tok.RefreshToken)
	}
	return nil
}

// exchangeCode trades the authorization code for provider tokens at the
// token endpoint. The provider reports failures both as non-2xx statuses and
// as 200s carrying an error body, so the body is inspected either way.
func (c *Controller) exchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	form := url.Values{}
	form.Set("client_id", c.oauthCfg.ClientID)
	form.Set("client_secret", c.oauthCfg.ClientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", c.oauthCfg.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.oauthCfg.Endpoint.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, cerr.Wrap(cerr.TokenExchange, "build token request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, cerr.Wrap(cerr.TokenExchange, "token endpoint unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, cerr.Wrap(cerr.TokenExchange, "read token response", err)
	}

	var payload struct {
		AccessToken      string `json:"access_token"`
		RefreshToken     string `json:"refresh_token"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, cerr.Wrap(cerr.TokenExchange, "decode token response", err)
	}
	if payload.Error != "" {
		msg := payload.Error
		if payload.ErrorDescription != "" {
			msg += ": " + payload.ErrorDescription
		}
		return nil, cerr.New(cerr.TokenExchange, msg)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, cerr.New(cerr.TokenExchange,
			"token endpoint returned "+resp.Status+": "+strings.TrimSpace(string(body)))
	}
	if payload.AccessToken == "" {
		return nil, cerr.New(cerr.TokenExchange, "token response missing access_token")
	}

	return &oauth2.Token{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
	}, nil
}

// fetchProfile retrieves the provider's userinfo document with the freshly
// issued access token.
func (c *Controller) fetchProfile(ctx context.Context, accessToken string) (*session.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userinfoURL, nil)
	if err != nil {
		return nil, cerr.Wrap(cerr.ProfileFetch, "build profile request", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, cerr.Wrap(cerr.ProfileFetch, "profile endpoint unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, cerr.New(cerr.ProfileFetch,
			"profile endpoint returned "+resp.Status+": "+strings.TrimSpace(string(b)))
	}

	var payload struct {
		Sub     string `json:"sub"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, cerr.Wrap(cerr.ProfileFetch, "decode profile response", err)
	}
	if payload.Email == "" {
		return nil, cerr.New(cerr.ProfileFetch, "profile response missing email")
	}

	return &session.Profile{
		Name:    payload.Name,
		Email:   payload.Email,
		Subject: payload.Sub,
		Picture: payload.Picture,
	}, nil
}

// issueSessionToken asks the backend to mint a session for the verified
// identity. When the backend is down or declines and the local fallback is
// enabled, sign-in degrades to a locally generated opaque token instead of
// locking the user out; the provider profile was already verified at this
// point.
func (c *Controller) issueSessionToken(ctx context.Context, profile *session.Profile, providerAccessToken string) (string, error) {
	res, err := c.backend.Authenticate(ctx, profile.Name, profile.Email, providerAccessToken)
	if err == nil {
		return res.SessionToken, nil
	}
	if !c.allowLocal {
		return "", err
	}
	return "local-" + uuid.NewString(), nil
}

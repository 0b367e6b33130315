// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/99designs/keyring"

	cerr "cardline/cli/internal/errors"
	"cardline/cli/internal/keychain"
)

func newTestStore() *keychain.Manager {
	return keychain.NewManager(keyring.NewArrayKeyring(nil))
}

func TestBearerAttachedFromStore(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer srv.Close()

	store := newTestStore()
	if err := store.Set(keychain.KeySessionToken, "tok-99"); err != nil {
		t.Fatal(err)
	}

	client := New(srv.URL, store)
	if _, err := client.GetCards(context.Background()); err != nil {
		t.Fatalf("GetCards() error: %v", err)
	}
	if gotAuth != "Bearer tok-99" {
		t.Errorf("Authorization = %q, want Bearer tok-99", gotAuth)
	}
}

func TestRequestWithoutTokenIsSent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer srv.Close()

	client := New(srv.URL, newTestStore())
	if _, err := client.GetCards(context.Background()); err != nil {
		t.Fatalf("GetCards() error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty when signed out", gotAuth)
	}
}

func TestTokenRereadPerRequest(t *testing.T) {
	seen := []string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer srv.Close()

	store := newTestStore()
	client := New(srv.URL, store)

	_ = store.Set(keychain.KeySessionToken, "first")
	if _, err := client.GetCards(context.Background()); err != nil {
		t.Fatal(err)
	}
	// Token changed out-of-band between requests.
	_ = store.Set(keychain.KeySessionToken, "second")
	if _, err := client.GetCards(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(seen) != 2 || seen[0] != "Bearer first" || seen[1] != "Bearer second" {
		t.Errorf("headers = %v, want fresh token per request", seen)
	}
}

func Test401PurgesStoreBeforeReturning(t *testing.T) {
	store := newTestStore()
	_ = store.Set(keychain.KeySessionToken, "stale")
	_ = store.Set(keychain.KeyUserProfile, `{"name":"Jane","email":"jane@x.com"}`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := New(srv.URL, store)
	_, err := client.GetCards(context.Background())
	if !cerr.Is(err, cerr.Unauthorized) {
		t.Fatalf("error kind = %q, want unauthorized", cerr.KindOf(err))
	}

	// The clearing write happens before the rejection is delivered, so by the
	// time the caller sees the error the store is already empty.
	if v, _ := store.Get(keychain.KeySessionToken); v != "" {
		t.Errorf("session token survived 401: %q", v)
	}
	if v, _ := store.Get(keychain.KeyUserProfile); v != "" {
		t.Errorf("profile survived 401: %q", v)
	}
}

func TestNon401ErrorsPropagateWithoutPurge(t *testing.T) {
	store := newTestStore()
	_ = store.Set(keychain.KeySessionToken, "tok")
	_ = store.Set(keychain.KeyUserProfile, `{"name":"J"}`)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := New(srv.URL, store)
	if _, err := client.GetCards(context.Background()); err == nil {
		t.Fatal("expected error for 503")
	} else if cerr.Is(err, cerr.Unauthorized) {
		t.Error("503 misclassified as unauthorized")
	}

	if v, _ := store.Get(keychain.KeySessionToken); v != "tok" {
		t.Errorf("token purged on non-401 status: %q", v)
	}
}

func TestGetTransactionsQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"success":true,"data":[{"id":"t1","merchant":"Grocer","amount":12.5}]}`))
	}))
	defer srv.Close()

	client := New(srv.URL, newTestStore())
	txs, err := client.GetTransactions(context.Background(), TransactionQuery{CardID: "c1", Limit: 5})
	if err != nil {
		t.Fatalf("GetTransactions() error: %v", err)
	}
	if gotQuery != "cardId=c1&limit=5" {
		t.Errorf("query = %q, want cardId=c1&limit=5", gotQuery)
	}
	if len(txs) != 1 || txs[0].Merchant != "Grocer" {
		t.Errorf("transactions = %+v", txs)
	}
}

func TestEnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"message":"account locked"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, newTestStore())
	if _, err := client.GetCards(context.Background()); err == nil {
		t.Fatal("expected error for success=false envelope")
	}
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantToken string
		wantErr   bool
	}{
		{
			name:      "backend issues session token",
			status:    http.StatusOK,
			body:      `{"success":true,"accessToken":"beToken","data":{"name":"Jane","email":"jane@x.com"}}`,
			wantToken: "beToken",
		},
		{
			name:    "backend declines",
			status:  http.StatusOK,
			body:    `{"success":false,"message":"unknown account"}`,
			wantErr: true,
		},
		{
			name:    "backend error status",
			status:  http.StatusBadGateway,
			body:    `upstream exploded`,
			wantErr: true,
		},
		{
			name:    "missing access token",
			status:  http.StatusOK,
			body:    `{"success":true,"data":{}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/auth" || r.Method != http.MethodPost {
					t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
				}
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := New(srv.URL, newTestStore())
			res, err := client.Authenticate(context.Background(), "Jane", "jane@x.com", "ptok")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !cerr.Is(err, cerr.BackendAuth) {
					t.Errorf("error kind = %q, want backend_auth_failed", cerr.KindOf(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() error: %v", err)
			}
			if res.SessionToken != tt.wantToken {
				t.Errorf("SessionToken = %q, want %q", res.SessionToken, tt.wantToken)
			}
		})
	}
}

// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"testing"

	"github.com/99designs/keyring"
)

func newTestStore() *Manager {
	return NewManager(keyring.NewArrayKeyring(nil))
}

func TestGetAbsentKey(t *testing.T) {
	m := newTestStore()
	v, err := m.Get(KeySessionToken)
	if err != nil {
		t.Fatalf("Get() error for absent key: %v", err)
	}
	if v != "" {
		t.Errorf("Get() = %q, want empty for absent key", v)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	m := newTestStore()
	if err := m.Set(KeySessionToken, "tok-1"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	v, err := m.Get(KeySessionToken)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if v != "tok-1" {
		t.Errorf("Get() = %q, want tok-1", v)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	m := newTestStore()
	if err := m.Set(KeyUserProfile, `{"name":"Jane"}`); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := m.Remove(KeyUserProfile); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	// Removing again must not fail.
	if err := m.Remove(KeyUserProfile); err != nil {
		t.Errorf("Remove() of absent key: %v", err)
	}
}

func TestRemoveAll(t *testing.T) {
	m := newTestStore()
	if err := m.Set(KeySessionToken, "tok"); err != nil {
		t.Fatal(err)
	}
	if err := m.Set(KeyProviderAccessToken, "ptok"); err != nil {
		t.Fatal(err)
	}

	// KeyUserProfile was never written; RemoveAll must still succeed.
	if err := m.RemoveAll(SessionKeys...); err != nil {
		t.Fatalf("RemoveAll() error: %v", err)
	}
	for _, k := range SessionKeys {
		v, err := m.Get(k)
		if err != nil {
			t.Fatalf("Get(%s) error: %v", k, err)
		}
		if v != "" {
			t.Errorf("key %s survived RemoveAll: %q", k, v)
		}
	}
}

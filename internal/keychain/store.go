// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain is the credential store for cardline. It persists the
// session token, the cached user profile, and the provider OAuth tokens in
// the OS keychain via the keyring library, surviving process restarts.
//
// The store is the single source of truth shared by the session context, the
// OAuth flow and the API client. None of those components caches a value for
// longer than one operation; every read goes back here.
package keychain

import (
	"errors"
	"sync"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "cardline"

// Keys used for storing secrets in the OS keychain.
const (
	KeySessionToken         = "session_token"
	KeyUserProfile          = "user_profile"
	KeyProviderAccessToken  = "provider_access_token"
	KeyProviderRefreshToken = "provider_refresh_token"
)

// SessionKeys lists every key cleared on sign-out or invalidation.
var SessionKeys = []string{
	KeySessionToken,
	KeyUserProfile,
	KeyProviderAccessToken,
	KeyProviderRefreshToken,
}

// Store is the durable key-value contract the auth core depends on. A missing
// key is not an error: Get reports it as an empty value.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Remove(key string) error
	RemoveAll(keys ...string) error
}

// Manager provides thread-safe credential store operations over an OS keyring.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// Open opens the OS keyring and returns a Manager bound to it.
func Open() (*Manager, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: ServiceName,
		// Native backends only; a plain-file fallback would leave the
		// session token readable at rest.
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.WinCredBackend,
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.PassBackend,
		},
		PassPrefix:    ServiceName,
		WinCredPrefix: ServiceName,
	})
	if err != nil {
		return nil, errors.New("no secure credential storage available on this system")
	}
	return &Manager{ring: ring}, nil
}

// NewManager wraps an existing keyring, primarily for tests using the
// library's in-memory array backend.
func NewManager(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// Get retrieves the value for key. A key that was never stored yields
// ("", nil) so callers can treat absence as signed-out rather than failure.
func (m *Manager) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", nil
		}
		return "", err
	}
	return string(it.Data), nil
}

// Set stores value under key.
func (m *Manager) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ring.Set(keyring.Item{Key: key, Data: []byte(value)})
}

// Remove deletes key. Removing an absent key is a no-op.
func (m *Manager) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.remove(key)
}

// RemoveAll deletes every listed key, continuing past absent ones. The first
// real failure is returned after all keys have been attempted.
func (m *Manager) RemoveAll(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for _, k := range keys {
		if err := m.remove(k); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *Manager) remove(key string) error {
	err := m.ring.Remove(key)
	if err != nil && errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}

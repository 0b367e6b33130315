// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import "encoding/json"

// Profile holds the identity attributes cached for the signed-in user.
// It is provider-agnostic: whatever the identity provider returned at
// sign-in, serialized as-is into the credential store.
type Profile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Encode serializes the profile for the credential store.
func (p *Profile) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeProfile parses a stored profile. An empty or corrupt record yields
// nil so the caller treats it as absent.
func DecodeProfile(data string) *Profile {
	if data == "" {
		return nil
	}
	var p Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil
	}
	return &p
}

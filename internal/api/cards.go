// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package api

import (
	"context"
)

// Card is one card on the user's account.
type Card struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Network     string  `json:"network"`
	LastFour    string  `json:"last4"`
	Balance     float64 `json:"balance"`
	CreditLimit float64 `json:"creditLimit"`
	Currency    string  `json:"currency"`
	Color       string  `json:"color,omitempty"`
}

// GetCards calls GET /cards and returns the user's cards.
func (h *HTTP) GetCards(ctx context.Context) ([]Card, error) {
	var cards []Card
	if err := h.getJSON(ctx, "/cards", &cards); err != nil {
		return nil, err
	}
	return cards, nil
}

// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package api

import (
	"context"
)

// Recommendation is one suggested card for the user.
type Recommendation struct {
	CardName   string  `json:"cardName"`
	Issuer     string  `json:"issuer"`
	Reason     string  `json:"reason"`
	RewardRate string  `json:"rewardRate"`
	AnnualFee  float64 `json:"annualFee"`
	ApplyURL   string  `json:"applyUrl,omitempty"`
}

// GetRecommendations calls GET /recommendations. When Gmail insights are
// enabled the backend folds those signals in server-side; the client call is
// identical either way.
func (h *HTTP) GetRecommendations(ctx context.Context) ([]Recommendation, error) {
	var recs []Recommendation
	if err := h.getJSON(ctx, "/recommendations", &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

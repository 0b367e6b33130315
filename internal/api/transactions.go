// Copyright (c) 2025 Cardline
// Licensed under the MIT License. See LICENSE file in the project root for details.

package api

import (
	"context"
	"net/url"
	"strconv"
)

// Transaction is one entry in a card's history.
type Transaction struct {
	ID       string  `json:"id"`
	CardID   string  `json:"cardId"`
	Merchant string  `json:"merchant"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Date     string  `json:"date"`
}

// TransactionQuery narrows a transaction listing. Zero values mean no filter.
type TransactionQuery struct {
	CardID string
	Limit  int
}

// GetTransactions calls GET /transactions with optional cardId/limit filters.
func (h *HTTP) GetTransactions(ctx context.Context, q TransactionQuery) ([]Transaction, error) {
	path := "/transactions"
	params := url.Values{}
	if q.CardID != "" {
		params.Set("cardId", q.CardID)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var txs []Transaction
	if err := h.getJSON(ctx, path, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

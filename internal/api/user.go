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
)

// GetMe calls GET /me with the stored session credential and returns the
// account fields as a map, since the backend varies the shape across plans.
func (h *HTTP) GetMe(ctx context.Context) (map[string]any, error) {
	req, err := h.newRequest(ctx, http.MethodGet, "/me", nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("/me failed: %d %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var userData map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&userData); err != nil {
		return nil, err
	}
	return userData, nil
}

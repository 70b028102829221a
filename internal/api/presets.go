package api

import (
	"context"
	"net/http"

	"github.com/layoutcraft/layoutcraft/internal/catalog"
)

// Presets fetches the remote dimension catalog. Callers race this
// against a short timeout and fall back to the embedded defaults; see
// catalog.Load.
func (c *Client) Presets(ctx context.Context) ([]catalog.DimensionPreset, error) {
	var resp struct {
		Presets []catalog.DimensionPreset `json:"presets"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/presets", nil, nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.Presets, nil
}

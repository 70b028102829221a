package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/layoutcraft/layoutcraft/pkg/models"
)

type generateRequest struct {
	Prompt      string   `json:"prompt"`
	Theme       string   `json:"theme,omitempty"`
	SizePresets []string `json:"size_presets"`
	Quality     string   `json:"quality,omitempty"`
	UseBrandKit bool     `json:"use_brand_kit,omitempty"`
}

type refineRequest struct {
	GenerationID string   `json:"generation_id"`
	Prompt       string   `json:"prompt"`
	SizePresets  []string `json:"size_presets"`
}

type generationResponse struct {
	ID         string                  `json:"id"`
	ImagesJSON []models.GeneratedImage `json:"images_json"`
	Theme      string                  `json:"theme"`
}

// Generate posts a new generation request and returns the resulting
// group. The server resolves "auto" theme choices; the response theme
// is whatever it settled on.
func (c *Client) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationGroup, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	apiReq := &generateRequest{
		Prompt:      req.Prompt,
		Theme:       req.Theme,
		SizePresets: req.SizePresets,
		Quality:     string(req.Quality),
		UseBrandKit: req.UseBrandKit,
	}

	resp, err := c.postGeneration(ctx, "/api/v1/generate", apiReq, ErrGenerateFailed)
	if err != nil {
		return nil, err
	}
	return groupFromResponse(resp), nil
}

// Refine posts an edit pass for the selected presets of an existing
// group. The response carries only the refined entries, under a new
// generation id.
func (c *Client) Refine(ctx context.Context, req *models.RefineRequest) (*models.GenerationGroup, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	apiReq := &refineRequest{
		GenerationID: req.GenerationID,
		Prompt:       req.Prompt,
		SizePresets:  req.SizePresets,
	}

	resp, err := c.postGeneration(ctx, "/api/refine", apiReq, ErrRefineFailed)
	if err != nil {
		return nil, err
	}
	return groupFromResponse(resp), nil
}

func (c *Client) postGeneration(ctx context.Context, path string, payload any, failure error) (*generationResponse, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	// Generation is open to anonymous callers (no token source at
	// all); a configured source with no token means the session died.
	if c.tokens != nil {
		token, ok := c.token()
		if !ok {
			return nil, ErrSessionExpired
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrSessionExpired
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s", failure, serverMessage(body))
	}

	var apiResp generationResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if apiResp.ID == "" {
		return nil, fmt.Errorf("%w: response missing generation id", failure)
	}

	return &apiResp, nil
}

func groupFromResponse(resp *generationResponse) *models.GenerationGroup {
	return &models.GenerationGroup{
		ID:     resp.ID,
		Theme:  resp.Theme,
		Images: resp.ImagesJSON,
	}
}

package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/layoutcraft/layoutcraft/pkg/models"
)

// Parent is one history thread: an original generation plus however
// many edit groups hang off it.
type Parent struct {
	ThreadID   string    `json:"thread_id"`
	Prompt     string    `json:"prompt"`
	Theme      string    `json:"theme"`
	ImageCount int       `json:"image_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// EditGroup summarizes one refine pass within a thread.
type EditGroup struct {
	GenerationID string    `json:"generation_id"`
	Prompt       string    `json:"prompt"`
	CreatedAt    time.Time `json:"created_at"`
}

// ParentPage is one page of history threads.
type ParentPage struct {
	Parents []Parent `json:"parents"`
	HasNext bool     `json:"has_next"`
}

// HistoryParents lists past generation threads, newest first.
func (c *Client) HistoryParents(ctx context.Context, offset, limit int) (*ParentPage, error) {
	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	var page ParentPage
	if err := c.do(ctx, http.MethodGet, "/users/history/parents", query, nil, &page, true); err != nil {
		return nil, err
	}
	return &page, nil
}

// HistoryEditGroups lists the edit groups of one thread.
func (c *Client) HistoryEditGroups(ctx context.Context, threadID string) ([]EditGroup, error) {
	query := url.Values{}
	query.Set("thread_id", threadID)

	var resp struct {
		EditGroups []EditGroup `json:"edit_groups"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/history/edit-groups", query, nil, &resp, true); err != nil {
		return nil, err
	}
	return resp.EditGroups, nil
}

// HistoryDesign fetches one past generation group by id, in the same
// shape a fresh generate call returns.
func (c *Client) HistoryDesign(ctx context.Context, generationID string) (*models.GenerationGroup, error) {
	query := url.Values{}
	query.Set("generation_id", generationID)

	var resp generationResponse
	if err := c.do(ctx, http.MethodGet, "/users/history/design", query, nil, &resp, true); err != nil {
		return nil, err
	}
	return groupFromResponse(&resp), nil
}

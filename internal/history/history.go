// Package history browses past generation threads: paginated parents,
// per-thread edit groups cached locally after the first expansion, and
// hydration of a past design back into the workspace.
package history

import (
	"context"
	"fmt"

	"github.com/layoutcraft/layoutcraft/internal/api"
	"github.com/layoutcraft/layoutcraft/pkg/models"
)

const defaultPageSize = 10

// Remote is the slice of the API client the browser needs.
type Remote interface {
	HistoryParents(ctx context.Context, offset, limit int) (*api.ParentPage, error)
	HistoryEditGroups(ctx context.Context, threadID string) ([]api.EditGroup, error)
	HistoryDesign(ctx context.Context, generationID string) (*models.GenerationGroup, error)
}

// Cache stores thread expansions between lookups. The sqlite store
// implements it; nil disables caching.
type Cache interface {
	CacheEditGroups(ctx context.Context, userID, threadID string, payload any) error
	CachedEditGroups(ctx context.Context, userID, threadID string, out any) (bool, error)
}

type Browser struct {
	remote   Remote
	cache    Cache
	userID   string
	pageSize int

	offset  int
	hasNext bool
	loaded  bool
	page    *api.ParentPage
}

func NewBrowser(remote Remote, cache Cache, userID string, pageSize int) *Browser {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Browser{
		remote:   remote,
		cache:    cache,
		userID:   userID,
		pageSize: pageSize,
	}
}

// Page returns the most recently fetched page, or nil before the first
// fetch.
func (b *Browser) Page() *api.ParentPage {
	return b.page
}

// Offset returns the offset of the current page's first entry.
func (b *Browser) Offset() int {
	if !b.loaded {
		return 0
	}
	return b.offset - b.pageSize
}

// HasNext reports whether another page exists past the current one.
func (b *Browser) HasNext() bool {
	return b.hasNext
}

// First fetches the first page, resetting any pagination state.
func (b *Browser) First(ctx context.Context) (*api.ParentPage, error) {
	b.offset = 0
	b.loaded = false
	return b.Next(ctx)
}

// Next fetches the following page.
func (b *Browser) Next(ctx context.Context) (*api.ParentPage, error) {
	if b.loaded && !b.hasNext {
		return b.page, nil
	}

	page, err := b.remote.HistoryParents(ctx, b.offset, b.pageSize)
	if err != nil {
		return nil, err
	}

	b.page = page
	b.offset += b.pageSize
	b.hasNext = page.HasNext
	b.loaded = true
	return page, nil
}

// Parent returns the n-th entry (1-based) of the current page.
func (b *Browser) Parent(n int) (api.Parent, error) {
	if b.page == nil || n < 1 || n > len(b.page.Parents) {
		return api.Parent{}, fmt.Errorf("no history entry %d on this page", n)
	}
	return b.page.Parents[n-1], nil
}

// EditGroups lists a thread's refine passes, serving repeat expansions
// from the local cache.
func (b *Browser) EditGroups(ctx context.Context, threadID string) ([]api.EditGroup, error) {
	if b.cache != nil {
		var cached []api.EditGroup
		if hit, err := b.cache.CachedEditGroups(ctx, b.userID, threadID, &cached); err == nil && hit {
			return cached, nil
		}
	}

	groups, err := b.remote.HistoryEditGroups(ctx, threadID)
	if err != nil {
		return nil, err
	}

	if b.cache != nil {
		// Best effort; a cold cache just means another fetch next time.
		_ = b.cache.CacheEditGroups(ctx, b.userID, threadID, groups)
	}
	return groups, nil
}

// Design fetches one past generation group for hydration into the
// workspace.
func (b *Browser) Design(ctx context.Context, generationID string) (*models.GenerationGroup, error) {
	return b.remote.HistoryDesign(ctx, generationID)
}

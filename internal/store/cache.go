package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	draftTTL        = 7 * 24 * time.Hour
	historyCacheTTL = 10 * time.Minute
	presetsTTL      = time.Hour

	keyDraft     = "draft"
	keyTrialUsed = "used_free_trial"
	keyPresets   = "presets"
)

// Draft is an unsent workspace prompt kept across invocations.
type Draft struct {
	ID      string    `json:"id"`
	Prompt  string    `json:"prompt"`
	Style   string    `json:"style,omitempty"`
	SavedAt time.Time `json:"saved_at"`
}

// SaveDraft persists the user's current prompt draft.
func (s *Store) SaveDraft(ctx context.Context, userID, prompt, style string) (*Draft, error) {
	draft := &Draft{
		ID:      uuid.New().String(),
		Prompt:  prompt,
		Style:   style,
		SavedAt: time.Now(),
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := s.Put(ctx, userID, keyDraft, string(data), draftTTL); err != nil {
		return nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return draft, nil
}

// LoadDraft returns the user's draft, or nil when none is stored or it
// has aged out.
func (s *Store) LoadDraft(ctx context.Context, userID string) (*Draft, error) {
	data, ok, err := s.Get(ctx, userID, keyDraft)
	if err != nil || !ok {
		return nil, err
	}
	var draft Draft
	if err := json.Unmarshal([]byte(data), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse draft: %w", err)
	}
	return &draft, nil
}

func (s *Store) ClearDraft(ctx context.Context, userID string) error {
	return s.Delete(ctx, userID, keyDraft)
}

// CacheEditGroups stores a thread's edit-group listing so expanding the
// same thread twice hits the network once.
func (s *Store) CacheEditGroups(ctx context.Context, userID, threadID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal edit groups: %w", err)
	}
	return s.Put(ctx, userID, "edit-groups:"+threadID, string(data), historyCacheTTL)
}

// CachedEditGroups loads a cached edit-group listing into out. The
// bool reports a cache hit.
func (s *Store) CachedEditGroups(ctx context.Context, userID, threadID string, out any) (bool, error) {
	data, ok, err := s.Get(ctx, userID, "edit-groups:"+threadID)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, fmt.Errorf("failed to parse cached edit groups: %w", err)
	}
	return true, nil
}

// CachePresets stores the remote dimension catalog so a later run with
// a slow or unreachable API still sees current sizes.
func (s *Store) CachePresets(ctx context.Context, presets any) error {
	data, err := json.Marshal(presets)
	if err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}
	return s.Put(ctx, anonNamespace, keyPresets, string(data), presetsTTL)
}

// CachedPresets loads the cached dimension catalog into out. The bool
// reports a cache hit.
func (s *Store) CachedPresets(ctx context.Context, out any) (bool, error) {
	data, ok, err := s.Get(ctx, anonNamespace, keyPresets)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, fmt.Errorf("failed to parse cached presets: %w", err)
	}
	return true, nil
}

// UsedFreeTrial reports whether this machine's anonymous visitor has
// consumed the one-time premium trial.
func (s *Store) UsedFreeTrial(ctx context.Context) (bool, error) {
	_, ok, err := s.Get(ctx, anonNamespace, keyTrialUsed)
	return ok, err
}

// MarkFreeTrialUsed burns the one-time premium trial. The flag never
// expires.
func (s *Store) MarkFreeTrialUsed(ctx context.Context) error {
	return s.Put(ctx, anonNamespace, keyTrialUsed, "1", 0)
}

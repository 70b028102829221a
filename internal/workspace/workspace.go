// Package workspace holds the designer session state: the prompt, the
// pickers, the current generation group, and the two-mode lifecycle
// between a fresh generation and refine passes over it. All mutation
// goes through named transition methods; nothing else writes the
// state.
package workspace

import (
	"context"
	"errors"
	"slices"

	"github.com/layoutcraft/layoutcraft/internal/catalog"
	"github.com/layoutcraft/layoutcraft/internal/selection"
	"github.com/layoutcraft/layoutcraft/pkg/models"
)

var (
	// ErrBusy rejects a submit while a request is already in flight.
	ErrBusy = errors.New("a generation is already in progress")

	ErrNotEditing = errors.New("no result set to refine - generate first")
)

// Mode is the workspace's lifecycle state.
type Mode string

const (
	// ModeGenerating: no result set yet, or the user started over.
	ModeGenerating Mode = "generating"
	// ModeEditing: a generation group exists and can be refined.
	ModeEditing Mode = "editing"
)

// Remote is the subset of the API client the workspace drives.
type Remote interface {
	Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationGroup, error)
	Refine(ctx context.Context, req *models.RefineRequest) (*models.GenerationGroup, error)
}

// TrialLedger tracks the anonymous one-shot premium trial.
type TrialLedger interface {
	UsedFreeTrial(ctx context.Context) (bool, error)
	MarkFreeTrialUsed(ctx context.Context) error
}

type Config struct {
	Remote  Remote
	Catalog *catalog.Catalog
	// Tier of the signed-in user; ignored when Anonymous.
	Tier      models.Tier
	Anonymous bool
	// Trials may be nil; then anonymous premium is simply refused.
	Trials TrialLedger
}

// Machine is the workspace state machine. It is single-flight: one
// generate or refine call at a time, guarded by the busy flag.
type Machine struct {
	remote    Remote
	catalog   *catalog.Catalog
	tier      models.Tier
	anonymous bool
	trials    TrialLedger

	dims    *selection.DimensionPicker
	style   *selection.StylePicker
	quality models.Quality
	brand   bool

	mode     Mode
	prompt   string
	group    *models.GenerationGroup
	selected map[string]bool
	busy     bool
}

func New(cfg *Config) *Machine {
	tier := cfg.Tier
	if cfg.Anonymous {
		tier = models.TierFree
	}
	return &Machine{
		remote:    cfg.Remote,
		catalog:   cfg.Catalog,
		tier:      tier,
		anonymous: cfg.Anonymous,
		trials:    cfg.Trials,
		dims:      selection.NewDimensionPicker(cfg.Catalog, tier),
		style:     selection.NewStylePicker(cfg.Catalog, tier),
		quality:   models.QualityStandard,
		mode:      ModeGenerating,
	}
}

func (m *Machine) Mode() Mode                             { return m.mode }
func (m *Machine) Busy() bool                             { return m.busy }
func (m *Machine) Prompt() string                         { return m.prompt }
func (m *Machine) Group() *models.GenerationGroup         { return m.group }
func (m *Machine) Tier() models.Tier                      { return m.tier }
func (m *Machine) Quality() models.Quality                { return m.quality }
func (m *Machine) UseBrandKit() bool                      { return m.brand }
func (m *Machine) Dimensions() *selection.DimensionPicker { return m.dims }
func (m *Machine) Style() *selection.StylePicker          { return m.style }

// SetTier applies a tier change mid-session, for example after an
// upgrade completes. Anonymous machines stay free regardless.
func (m *Machine) SetTier(tier models.Tier) {
	if m.anonymous || tier == m.tier {
		return
	}
	m.tier = tier
	m.dims.SetTier(tier)
	m.style.SetTier(tier)
}

func (m *Machine) SetPrompt(prompt string)     { m.prompt = prompt }
func (m *Machine) SetUseBrandKit(use bool)     { m.brand = use }
func (m *Machine) SetQuality(q models.Quality) { m.quality = q }

// Selection returns the currently selected image presets, in the
// group's order.
func (m *Machine) Selection() []string {
	if m.group == nil {
		return nil
	}
	var sel []string
	for _, key := range m.group.Keys() {
		if m.selected[key] {
			sel = append(sel, key)
		}
	}
	return sel
}

// IsSelected reports whether an image preset is marked for the next
// refine pass.
func (m *Machine) IsSelected(sizePreset string) bool {
	return m.selected[sizePreset]
}

// ToggleImage flips an image's membership in the refine selection.
// Only meaningful while a result set exists.
func (m *Machine) ToggleImage(sizePreset string) error {
	if m.mode != ModeEditing || m.group == nil {
		return ErrNotEditing
	}
	if !m.group.Has(sizePreset) {
		return selection.ErrUnknownValue
	}
	m.selected[sizePreset] = !m.selected[sizePreset]
	return nil
}

// SelectAllImages marks every image in the group.
func (m *Machine) SelectAllImages() {
	if m.group == nil {
		return
	}
	m.selectAll()
}

// Submit runs the transition for the current mode: a generate in
// generating mode, a refine in editing mode. Validation and tier
// gates fire before any network call. A submit while one is in flight
// is rejected with ErrBusy and otherwise does nothing.
func (m *Machine) Submit(ctx context.Context) (*models.GenerationGroup, error) {
	if m.busy {
		return nil, ErrBusy
	}
	m.busy = true
	defer func() { m.busy = false }()

	switch m.mode {
	case ModeEditing:
		return m.refine(ctx)
	default:
		return m.generate(ctx)
	}
}

func (m *Machine) generate(ctx context.Context) (*models.GenerationGroup, error) {
	req := &models.GenerationRequest{
		Prompt:      m.prompt,
		Theme:       m.style.Value(),
		SizePresets: m.dims.Selected(),
		Quality:     m.quality,
		UseBrandKit: m.brand,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	burnTrial := false
	if m.quality == models.QualityPremium {
		switch {
		case m.anonymous:
			if m.trials == nil {
				return nil, models.ErrUpgradeRequired
			}
			used, err := m.trials.UsedFreeTrial(ctx)
			if err != nil {
				return nil, err
			}
			if used {
				return nil, models.ErrUpgradeRequired
			}
			burnTrial = true
		case !m.tier.Paid():
			return nil, models.ErrUpgradeRequired
		}
	}

	group, err := m.remote.Generate(ctx, req)
	if err != nil {
		// State is untouched; the caller renders the failure (or, for
		// the expired-session sentinel, stops quietly).
		return nil, err
	}

	if burnTrial {
		// Best effort; a failed write just means another free pass.
		_ = m.trials.MarkFreeTrialUsed(ctx)
	}

	m.group = group
	m.selectAll()
	m.mode = ModeEditing
	return group, nil
}

func (m *Machine) refine(ctx context.Context) (*models.GenerationGroup, error) {
	if !m.tier.Paid() {
		return nil, models.ErrUpgradeRequired
	}

	req := &models.RefineRequest{
		GenerationID: m.group.ID,
		Prompt:       m.prompt,
		SizePresets:  m.Selection(),
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := m.remote.Refine(ctx, req)
	if err != nil {
		// Group and selection stay exactly as they were.
		return nil, err
	}

	if err := m.group.AbsorbRefined(resp.ID, resp.Images); err != nil {
		return nil, err
	}
	// Selection deliberately unchanged; the user keeps iterating on
	// the same subset.
	return m.group, nil
}

// StartOver drops the result set and returns to a blank generating
// state.
func (m *Machine) StartOver() {
	m.mode = ModeGenerating
	m.group = nil
	m.selected = nil
	m.prompt = ""
}

// Hydrate loads a past generation group as if it had just been
// returned by a generate call. Like refining, it is a paid feature.
func (m *Machine) Hydrate(group *models.GenerationGroup) error {
	if !m.tier.Paid() {
		return models.ErrUpgradeRequired
	}
	m.group = group
	m.selectAll()
	m.mode = ModeEditing
	return nil
}

func (m *Machine) selectAll() {
	m.selected = make(map[string]bool, len(m.group.Images))
	for _, key := range m.group.Keys() {
		m.selected[key] = true
	}
}

// SelectionComplete reports whether every image in the group is
// selected.
func (m *Machine) SelectionComplete() bool {
	if m.group == nil {
		return false
	}
	return slices.Equal(m.Selection(), m.group.Keys())
}

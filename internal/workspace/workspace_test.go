package workspace

import (
	"context"
	"errors"
	"testing"

	"github.com/layoutcraft/layoutcraft/internal/api"
	"github.com/layoutcraft/layoutcraft/internal/catalog"
	"github.com/layoutcraft/layoutcraft/pkg/models"
)

type fakeRemote struct {
	generateFunc  func(ctx context.Context, req *models.GenerationRequest) (*models.GenerationGroup, error)
	refineFunc    func(ctx context.Context, req *models.RefineRequest) (*models.GenerationGroup, error)
	generateCalls int
	refineCalls   int
}

func (f *fakeRemote) Generate(ctx context.Context, req *models.GenerationRequest) (*models.GenerationGroup, error) {
	f.generateCalls++
	if f.generateFunc == nil {
		return &models.GenerationGroup{ID: "g1"}, nil
	}
	return f.generateFunc(ctx, req)
}

func (f *fakeRemote) Refine(ctx context.Context, req *models.RefineRequest) (*models.GenerationGroup, error) {
	f.refineCalls++
	if f.refineFunc == nil {
		return &models.GenerationGroup{ID: "g2"}, nil
	}
	return f.refineFunc(ctx, req)
}

type fakeTrials struct {
	used   bool
	marked int
}

func (f *fakeTrials) UsedFreeTrial(ctx context.Context) (bool, error) { return f.used, nil }
func (f *fakeTrials) MarkFreeTrialUsed(ctx context.Context) error {
	f.used = true
	f.marked++
	return nil
}

func testMachine(t *testing.T, tier models.Tier, remote *fakeRemote) *Machine {
	t.Helper()
	return New(&Config{
		Remote:  remote,
		Catalog: catalog.Default(),
		Tier:    tier,
	})
}

func groupResponse(id string, presets ...string) *models.GenerationGroup {
	g := &models.GenerationGroup{ID: id, Theme: "bold_geometric_solid"}
	for _, p := range presets {
		g.Images = append(g.Images, models.GeneratedImage{
			SizePreset: p,
			ImageURL:   "http://x/" + id + "-" + p + ".png",
		})
	}
	return g
}

func TestMachine_InitialState(t *testing.T) {
	m := testMachine(t, models.TierPro, &fakeRemote{})

	if m.Mode() != ModeGenerating {
		t.Errorf("Mode() = %v, want generating", m.Mode())
	}
	if m.Group() != nil {
		t.Error("Group() != nil initially")
	}
	if m.Busy() {
		t.Error("Busy() = true initially")
	}
	if len(m.Dimensions().Selected()) != 1 {
		t.Errorf("initial dimensions = %v, want single default", m.Dimensions().Selected())
	}
}

func TestMachine_GenerateTransition(t *testing.T) {
	remote := &fakeRemote{
		generateFunc: func(ctx context.Context, req *models.GenerationRequest) (*models.GenerationGroup, error) {
			if req.Prompt != "blue gradient banner" {
				t.Errorf("prompt = %v", req.Prompt)
			}
			if len(req.SizePresets) != 1 || req.SizePresets[0] != "blog_header" {
				t.Errorf("size_presets = %v, want [blog_header]", req.SizePresets)
			}
			if req.Theme != "auto" {
				t.Errorf("theme = %v, want auto", req.Theme)
			}
			return groupResponse("g1", "blog_header"), nil
		},
	}
	m := testMachine(t, models.TierPro, remote)
	m.SetPrompt("blue gradient banner")

	group, err := m.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if m.Mode() != ModeEditing {
		t.Errorf("Mode() = %v after generate, want editing", m.Mode())
	}
	if group.ID != "g1" {
		t.Errorf("group ID = %v, want g1", group.ID)
	}
	// The client keeps its own style choice; the server resolves auto.
	if m.Style().Value() != "auto" {
		t.Errorf("style = %v after generate, want auto (unchanged)", m.Style().Value())
	}
	sel := m.Selection()
	if len(sel) != 1 || sel[0] != "blog_header" {
		t.Errorf("Selection() = %v, want all returned images", sel)
	}
	if !m.SelectionComplete() {
		t.Error("SelectionComplete() = false after fresh group")
	}
}

func TestMachine_Generate_ValidationBeforeNetwork(t *testing.T) {
	remote := &fakeRemote{}
	m := testMachine(t, models.TierPro, remote)

	_, err := m.Submit(context.Background())
	if !errors.Is(err, models.ErrEmptyPrompt) {
		t.Errorf("Submit() error = %v, want ErrEmptyPrompt", err)
	}
	if remote.generateCalls != 0 {
		t.Errorf("remote called %d times on invalid submit, want 0", remote.generateCalls)
	}
	if m.Mode() != ModeGenerating {
		t.Errorf("Mode() = %v, want generating", m.Mode())
	}
}

func TestMachine_Generate_FailureKeepsState(t *testing.T) {
	remote := &fakeRemote{
		generateFunc: func(ctx context.Context, req *models.GenerationRequest) (*models.GenerationGroup, error) {
			return nil, errors.New("capacity exhausted")
		},
	}
	m := testMachine(t, models.TierPro, remote)
	m.SetPrompt("banner")

	if _, err := m.Submit(context.Background()); err == nil {
		t.Fatal("Submit() error = nil, want failure")
	}
	if m.Mode() != ModeGenerating {
		t.Errorf("Mode() = %v after failed generate, want generating", m.Mode())
	}
	if m.Group() != nil {
		t.Error("Group() set after failed generate")
	}
	if m.Busy() {
		t.Error("Busy() stuck after failed generate")
	}
}

func TestMachine_BusyGuard(t *testing.T) {
	m := testMachine(t, models.TierPro, nil)
	remote := &fakeRemote{}
	remote.generateFunc = func(ctx context.Context, req *models.GenerationRequest) (*models.GenerationGroup, error) {
		// Re-entrant submit while the first is in flight must be a
		// no-op that triggers no second call.
		if _, err := m.Submit(ctx); !errors.Is(err, ErrBusy) {
			t.Errorf("re-entrant Submit() error = %v, want ErrBusy", err)
		}
		return groupResponse("g1", "blog_header"), nil
	}
	m.remote = remote
	m.SetPrompt("banner")

	if _, err := m.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if remote.generateCalls != 1 {
		t.Errorf("generate calls = %d, want 1", remote.generateCalls)
	}
	if m.Busy() {
		t.Error("Busy() = true after Submit returned")
	}
}

func TestMachine_RefineReplacesOnlySelected(t *testing.T) {
	remote := &fakeRemote{
		generateFunc: func(ctx context.Context, req *models.GenerationRequest) (*models.GenerationGroup, error) {
			return groupResponse("g1", "blog_header", "instagram_post"), nil
		},
		refineFunc: func(ctx context.Context, req *models.RefineRequest) (*models.GenerationGroup, error) {
			if req.GenerationID != "g1" {
				t.Errorf("generation_id = %v, want g1", req.GenerationID)
			}
			if len(req.SizePresets) != 1 || req.SizePresets[0] != "blog_header" {
				t.Errorf("size_presets = %v, want [blog_header]", req.SizePresets)
			}
			return groupResponse("g2", "blog_header"), nil
		},
	}
	m := testMachine(t, models.TierPro, remote)
	m.SetPrompt("banner")
	if _, err := m.Submit(context.Background()); err != nil {
		t.Fatalf("generate Submit() error = %v", err)
	}

	before, _ := m.Group().Image("instagram_post")

	// Deselect one image, refine the other.
	if err := m.ToggleImage("instagram_post"); err != nil {
		t.Fatalf("ToggleImage() error = %v", err)
	}
	m.SetPrompt("make it darker")
	if _, err := m.Submit(context.Background()); err != nil {
		t.Fatalf("refine Submit() error = %v", err)
	}

	if m.Mode() != ModeEditing {
		t.Errorf("Mode() = %v after refine, want editing", m.Mode())
	}
	if m.Group().ID != "g2" {
		t.Errorf("group ID = %v after refine, want g2", m.Group().ID)
	}
	refined, _ := m.Group().Image("blog_header")
	if refined.ImageURL != "http://x/g2-blog_header.png" {
		t.Errorf("refined URL = %v", refined.ImageURL)
	}
	untouched, _ := m.Group().Image("instagram_post")
	if untouched.ImageURL != before.ImageURL {
		t.Errorf("untouched URL changed: %v -> %v", before.ImageURL, untouched.ImageURL)
	}

	// Selection survives the refine.
	sel := m.Selection()
	if len(sel) != 1 || sel[0] != "blog_header" {
		t.Errorf("Selection() = %v after refine, want [blog_header]", sel)
	}
}

func TestMachine_Refine_FreeTierBlockedBeforeNetwork(t *testing.T) {
	remote := &fakeRemote{
		generateFunc: func(ctx context.Context, req *models.GenerationRequest) (*models.GenerationGroup, error) {
			return groupResponse("g1", "blog_header"), nil
		},
	}
	m := testMachine(t, models.TierFree, remote)
	m.SetPrompt("banner")
	if _, err := m.Submit(context.Background()); err != nil {
		t.Fatalf("generate Submit() error = %v", err)
	}

	m.SetPrompt("darker")
	_, err := m.Submit(context.Background())
	if !errors.Is(err, models.ErrUpgradeRequired) {
		t.Fatalf("refine Submit() error = %v, want ErrUpgradeRequired", err)
	}
	if remote.refineCalls != 0 {
		t.Errorf("refine calls = %d for free tier, want 0", remote.refineCalls)
	}
	if m.Mode() != ModeEditing {
		t.Errorf("Mode() = %v, want editing (state unchanged)", m.Mode())
	}
}

func TestMachine_Refine_EmptySelectionRejected(t *testing.T) {
	remote := &fakeRemote{
		generateFunc: func(ctx context.Context, req *models.GenerationRequest) (*models.GenerationGroup, error) {
			return groupResponse("g1", "blog_header"), nil
		},
	}
	m := testMachine(t, models.TierPro, remote)
	m.SetPrompt("banner")
	if _, err := m.Submit(context.Background()); err != nil {
		t.Fatalf("generate Submit() error = %v", err)
	}

	if err := m.ToggleImage("blog_header"); err != nil {
		t.Fatalf("ToggleImage() error = %v", err)
	}
	m.SetPrompt("darker")
	_, err := m.Submit(context.Background())
	if !errors.Is(err, models.ErrNoSelection) {
		t.Errorf("Submit() error = %v, want ErrNoSelection", err)
	}
	if remote.refineCalls != 0 {
		t.Errorf("refine calls = %d with empty selection, want 0", remote.refineCalls)
	}
}

func TestMachine_Refine_FailureKeepsGroup(t *testing.T) {
	remote := &fakeRemote{
		generateFunc: func(ctx context.Context, req *models.GenerationRequest) (*models.GenerationGroup, error) {
			return groupResponse("g1", "blog_header", "instagram_post"), nil
		},
		refineFunc: func(ctx context.Context, req *models.RefineRequest) (*models.GenerationGroup, error) {
			return nil, errors.New("refine backend down")
		},
	}
	m := testMachine(t, models.TierPro, remote)
	m.SetPrompt("banner")
	if _, err := m.Submit(context.Background()); err != nil {
		t.Fatalf("generate Submit() error = %v", err)
	}

	m.SetPrompt("darker")
	if _, err := m.Submit(context.Background()); err == nil {
		t.Fatal("Submit() error = nil, want refine failure")
	}

	if m.Group().ID != "g1" {
		t.Errorf("group ID = %v after failed refine, want g1", m.Group().ID)
	}
	if len(m.Selection()) != 2 {
		t.Errorf("Selection() = %v after failed refine, want both", m.Selection())
	}
}

func TestMachine_SessionExpiredSentinelPassesThrough(t *testing.T) {
	remote := &fakeRemote{
		generateFunc: func(ctx context.Context, req *models.GenerationRequest) (*models.GenerationGroup, error) {
			return nil, api.ErrSessionExpired
		},
	}
	m := testMachine(t, models.TierPro, remote)
	m.SetPrompt("banner")

	_, err := m.Submit(context.Background())
	if !errors.Is(err, api.ErrSessionExpired) {
		t.Errorf("Submit() error = %v, want the sentinel unchanged", err)
	}
	if m.Mode() != ModeGenerating {
		t.Errorf("Mode() = %v, want generating", m.Mode())
	}
}

func TestMachine_StartOver(t *testing.T) {
	remote := &fakeRemote{
		generateFunc: func(ctx context.Context, req *models.GenerationRequest) (*models.GenerationGroup, error) {
			return groupResponse("g1", "blog_header"), nil
		},
	}
	m := testMachine(t, models.TierPro, remote)
	m.SetPrompt("banner")
	if _, err := m.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	m.StartOver()

	if m.Mode() != ModeGenerating {
		t.Errorf("Mode() = %v, want generating", m.Mode())
	}
	if m.Group() != nil {
		t.Error("Group() survived StartOver")
	}
	if m.Prompt() != "" {
		t.Errorf("Prompt() = %q, want empty", m.Prompt())
	}
	if len(m.Selection()) != 0 {
		t.Errorf("Selection() = %v, want empty", m.Selection())
	}
}

func TestMachine_ToggleImage_NotEditing(t *testing.T) {
	m := testMachine(t, models.TierPro, &fakeRemote{})
	if err := m.ToggleImage("blog_header"); !errors.Is(err, ErrNotEditing) {
		t.Errorf("ToggleImage() error = %v, want ErrNotEditing", err)
	}
}

func TestMachine_AnonymousPremiumTrial(t *testing.T) {
	remote := &fakeRemote{
		generateFunc: func(ctx context.Context, req *models.GenerationRequest) (*models.GenerationGroup, error) {
			return groupResponse("g1", "blog_header"), nil
		},
	}
	trials := &fakeTrials{}
	m := New(&Config{
		Remote:    remote,
		Catalog:   catalog.Default(),
		Anonymous: true,
		Trials:    trials,
	})
	m.SetPrompt("banner")
	m.SetQuality(models.QualityPremium)

	// First premium generate rides the free trial.
	if _, err := m.Submit(context.Background()); err != nil {
		t.Fatalf("trial Submit() error = %v", err)
	}
	if trials.marked != 1 {
		t.Errorf("trial marked %d times, want 1", trials.marked)
	}

	// Second attempt: trial consumed, no network call, upgrade prompt.
	m.StartOver()
	m.SetPrompt("another banner")
	m.SetQuality(models.QualityPremium)
	_, err := m.Submit(context.Background())
	if !errors.Is(err, models.ErrUpgradeRequired) {
		t.Fatalf("Submit() error = %v, want ErrUpgradeRequired", err)
	}
	if remote.generateCalls != 1 {
		t.Errorf("generate calls = %d, want 1 (no call after trial burned)", remote.generateCalls)
	}
}

func TestMachine_FreeTierPremiumBlocked(t *testing.T) {
	remote := &fakeRemote{}
	m := testMachine(t, models.TierFree, remote)
	m.SetPrompt("banner")
	m.SetQuality(models.QualityPremium)

	_, err := m.Submit(context.Background())
	if !errors.Is(err, models.ErrUpgradeRequired) {
		t.Errorf("Submit() error = %v, want ErrUpgradeRequired", err)
	}
	if remote.generateCalls != 0 {
		t.Errorf("generate calls = %d, want 0", remote.generateCalls)
	}
}

func TestMachine_Hydrate(t *testing.T) {
	m := testMachine(t, models.TierPro, &fakeRemote{})
	group := groupResponse("g9", "blog_header", "poster")

	if err := m.Hydrate(group); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}
	if m.Mode() != ModeEditing {
		t.Errorf("Mode() = %v after hydrate, want editing", m.Mode())
	}
	if len(m.Selection()) != 2 {
		t.Errorf("Selection() = %v, want all images", m.Selection())
	}

	free := testMachine(t, models.TierFree, &fakeRemote{})
	if err := free.Hydrate(group); !errors.Is(err, models.ErrUpgradeRequired) {
		t.Errorf("free Hydrate() error = %v, want ErrUpgradeRequired", err)
	}
	if free.Mode() != ModeGenerating {
		t.Errorf("free Mode() = %v after rejected hydrate, want generating", free.Mode())
	}
}

func TestMachine_SetTier(t *testing.T) {
	m := testMachine(t, models.TierFree, &fakeRemote{})

	// Free stays capped at one dimension; toggles swap the entry.
	if err := m.Dimensions().Toggle("instagram_post"); err != nil {
		t.Fatalf("free swap error = %v", err)
	}
	if sel := m.Dimensions().Selected(); len(sel) != 1 || sel[0] != "instagram_post" {
		t.Fatalf("free Selected() = %v, want [instagram_post]", sel)
	}

	m.SetTier(models.TierPro)
	if m.Tier() != models.TierPro {
		t.Errorf("Tier() = %v, want pro", m.Tier())
	}
	if err := m.Dimensions().Toggle("blog_header"); err != nil {
		t.Errorf("pro second pick error = %v", err)
	}
	if sel := m.Dimensions().Selected(); len(sel) != 2 {
		t.Errorf("pro Selected() = %v, want two entries", sel)
	}
	if err := m.Style().Select("editorial_photo"); err != nil {
		t.Errorf("pro style pick error = %v", err)
	}
}

func TestMachine_SetTierAnonymousStaysFree(t *testing.T) {
	m := New(&Config{
		Remote:    &fakeRemote{},
		Catalog:   catalog.Default(),
		Anonymous: true,
	})

	m.SetTier(models.TierEnterprise)
	if m.Tier() != models.TierFree {
		t.Errorf("Tier() = %v, want free for anonymous", m.Tier())
	}
}

func TestMachine_SetTierDowngradeCollapses(t *testing.T) {
	m := testMachine(t, models.TierPro, &fakeRemote{})

	if err := m.Dimensions().Toggle("instagram_post"); err != nil {
		t.Fatal(err)
	}
	if err := m.Style().Select("editorial_photo"); err != nil {
		t.Fatal(err)
	}

	m.SetTier(models.TierFree)
	if got := len(m.Dimensions().Selected()); got != 1 {
		t.Errorf("dimensions after downgrade = %d, want 1", got)
	}
	if m.Style().Value() == "editorial_photo" {
		t.Error("tier-locked style survived the downgrade")
	}
}

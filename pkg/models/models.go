package models

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrEmptyPrompt         = errors.New("prompt cannot be empty")
	ErrNoDimensions        = errors.New("at least one dimension must be selected")
	ErrNoSelection         = errors.New("at least one image must be selected")
	ErrMissingGenerationID = errors.New("generation id is required")
	ErrUpgradeRequired     = errors.New("upgrade required")
)

// Tier is the subscription level attached to a user account. Feature
// access (multi-dimension output, refine passes, history hydration) is
// gated on it.
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

var tierOrder = map[Tier]int{
	TierFree:       0,
	TierPro:        1,
	TierEnterprise: 2,
}

func (t Tier) IsValid() bool {
	_, ok := tierOrder[t]
	return ok
}

// Meets reports whether t grants at least the access level of required.
// Unknown tiers never meet anything.
func (t Tier) Meets(required Tier) bool {
	mine, ok := tierOrder[t]
	if !ok {
		return false
	}
	req, ok := tierOrder[required]
	if !ok {
		return false
	}
	return mine >= req
}

// Paid reports whether the tier is a paying one.
func (t Tier) Paid() bool {
	return t.Meets(TierPro)
}

type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Tier       Tier   `json:"tier"`
	UsageCount int    `json:"usage_count"`
}

// Session is the authenticated state held between commands: the bearer
// token plus the profile it was issued for.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Quality selects the generation model class. Premium is tier-gated for
// signed-in users and one-shot trialable for anonymous ones.
type Quality string

const (
	QualityStandard Quality = "standard"
	QualityPremium  Quality = "premium"
)

// GenerationRequest describes one "generate" submission. It is built
// fresh per submit and not retained afterwards.
type GenerationRequest struct {
	Prompt      string
	Theme       string
	SizePresets []string
	Quality     Quality
	UseBrandKit bool
}

func (r *GenerationRequest) Validate() error {
	if r.Prompt == "" {
		return ErrEmptyPrompt
	}
	if len(r.SizePresets) == 0 {
		return ErrNoDimensions
	}
	return nil
}

// RefineRequest regenerates a subset of an existing group's images with
// a new instruction, keyed by the group's id and the selected presets.
type RefineRequest struct {
	GenerationID string
	Prompt       string
	SizePresets  []string
}

func (r *RefineRequest) Validate() error {
	if r.GenerationID == "" {
		return ErrMissingGenerationID
	}
	if r.Prompt == "" {
		return ErrEmptyPrompt
	}
	if len(r.SizePresets) == 0 {
		return ErrNoSelection
	}
	return nil
}

// GeneratedImage is one output of a generation call. SizePreset is the
// natural key, unique within its group.
type GeneratedImage struct {
	SizePreset string `json:"size_preset"`
	ImageURL   string `json:"image_url"`
}

// GenerationGroup bundles the images returned by a single generate or
// refine call. A new group supersedes the previous one wholesale; only
// a refine merges per-image URLs in place.
type GenerationGroup struct {
	ID     string
	Theme  string
	Images []GeneratedImage
}

// Image returns the image for the given size preset.
func (g *GenerationGroup) Image(sizePreset string) (GeneratedImage, bool) {
	for _, img := range g.Images {
		if img.SizePreset == sizePreset {
			return img, true
		}
	}
	return GeneratedImage{}, false
}

// Keys returns the size presets present in the group, in order.
func (g *GenerationGroup) Keys() []string {
	keys := make([]string, 0, len(g.Images))
	for _, img := range g.Images {
		keys = append(keys, img.SizePreset)
	}
	return keys
}

// Has reports whether the group contains an image for the preset.
func (g *GenerationGroup) Has(sizePreset string) bool {
	return slices.Contains(g.Keys(), sizePreset)
}

// AbsorbRefined applies a refine response: the group takes the new id
// and replaces URLs only for presets present in refined. Images the
// refine did not touch keep their prior URL. Refined entries for
// presets the group never had are rejected.
func (g *GenerationGroup) AbsorbRefined(newID string, refined []GeneratedImage) error {
	for _, r := range refined {
		if !g.Has(r.SizePreset) {
			return fmt.Errorf("refined preset %q not in group %s", r.SizePreset, g.ID)
		}
	}
	for _, r := range refined {
		for i := range g.Images {
			if g.Images[i].SizePreset == r.SizePreset {
				g.Images[i].ImageURL = r.ImageURL
			}
		}
	}
	g.ID = newID
	return nil
}

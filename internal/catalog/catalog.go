package catalog

import (
	"fmt"

	"github.com/layoutcraft/layoutcraft/pkg/models"
)

// DimensionPreset is one selectable output format. Entries are static
// configuration; they are filtered by tier at render time, never
// mutated.
type DimensionPreset struct {
	Value  string      `json:"value"`
	Label  string      `json:"label"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Tier   models.Tier `json:"tier_required"`
}

// PixelSize returns the preset's dimensions as "WxH".
func (d DimensionPreset) PixelSize() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// StylePreset is one selectable visual style.
type StylePreset struct {
	Value string      `json:"value"`
	Label string      `json:"label"`
	Tier  models.Tier `json:"tier_required"`
}

// Catalog is the read-only registry of selectable dimensions and
// styles.
type Catalog struct {
	dimensions []DimensionPreset
	styles     []StylePreset
}

func New(dimensions []DimensionPreset, styles []StylePreset) *Catalog {
	return &Catalog{dimensions: dimensions, styles: styles}
}

func (c *Catalog) Dimensions() []DimensionPreset {
	return c.dimensions
}

func (c *Catalog) Styles() []StylePreset {
	return c.styles
}

// Dimension looks up a dimension preset by value.
func (c *Catalog) Dimension(value string) (DimensionPreset, bool) {
	for _, d := range c.dimensions {
		if d.Value == value {
			return d, true
		}
	}
	return DimensionPreset{}, false
}

// Style looks up a style preset by value.
func (c *Catalog) Style(value string) (StylePreset, bool) {
	for _, s := range c.styles {
		if s.Value == value {
			return s, true
		}
	}
	return StylePreset{}, false
}

// Has reports whether a dimension value exists in the catalog.
func (c *Catalog) Has(value string) bool {
	_, ok := c.Dimension(value)
	return ok
}

// AllDimensionValues returns every dimension value, in catalog order.
func (c *Catalog) AllDimensionValues() []string {
	values := make([]string, 0, len(c.dimensions))
	for _, d := range c.dimensions {
		values = append(values, d.Value)
	}
	return values
}

// DefaultDimension is the single entry selections collapse to when
// "All Formats" is switched off.
func (c *Catalog) DefaultDimension() string {
	if len(c.dimensions) == 0 {
		return ""
	}
	return c.dimensions[0].Value
}

// Allowed reports whether the tier may select the entry. Locked
// entries are still listed, just not selectable.
func Allowed(required models.Tier, current models.Tier) bool {
	if required == "" {
		return true
	}
	return current.Meets(required)
}

// Default returns the embedded catalog used when the remote preset
// endpoint is slow or unavailable.
func Default() *Catalog {
	return New(defaultDimensions(), defaultStyles())
}

func defaultDimensions() []DimensionPreset {
	return []DimensionPreset{
		{Value: "blog_header", Label: "Blog Header", Width: 1536, Height: 1024},
		{Value: "instagram_post", Label: "Instagram Post", Width: 1080, Height: 1080},
		{Value: "instagram_story", Label: "Instagram Story", Width: 1080, Height: 1920},
		{Value: "facebook_cover", Label: "Facebook Cover", Width: 1640, Height: 856},
		{Value: "twitter_header", Label: "Twitter Header", Width: 1500, Height: 500},
		{Value: "linkedin_banner", Label: "LinkedIn Banner", Width: 1584, Height: 396, Tier: models.TierPro},
		{Value: "youtube_thumbnail", Label: "YouTube Thumbnail", Width: 1280, Height: 720, Tier: models.TierPro},
		{Value: "poster", Label: "Poster", Width: 1024, Height: 1536, Tier: models.TierPro},
	}
}

func defaultStyles() []StylePreset {
	return []StylePreset{
		{Value: "auto", Label: "Auto"},
		{Value: "bold_geometric_solid", Label: "Bold Geometric"},
		{Value: "minimalist_clean", Label: "Minimalist"},
		{Value: "vibrant_gradient", Label: "Vibrant Gradient"},
		{Value: "editorial_photo", Label: "Editorial Photo", Tier: models.TierPro},
		{Value: "hand_drawn", Label: "Hand Drawn", Tier: models.TierPro},
	}
}

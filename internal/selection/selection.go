// Package selection implements the dimension and style pickers bound
// to the option catalog. It enforces the selection rules the submit
// path depends on: a picker is never empty, "All Formats" and manual
// picks are mutually exclusive, and the free tier is held to a single
// dimension.
package selection

import (
	"errors"
	"slices"

	"github.com/layoutcraft/layoutcraft/internal/catalog"
	"github.com/layoutcraft/layoutcraft/pkg/models"
)

var (
	// ErrLastDimension rejects deselecting the only remaining entry;
	// callers revert the toggle visually instead of mutating state.
	ErrLastDimension = errors.New("at least one dimension must stay selected")
	ErrUnknownValue  = errors.New("unknown preset value")
)

// DimensionPicker is a multi-select over the catalog's dimension
// presets.
type DimensionPicker struct {
	catalog *catalog.Catalog
	tier    models.Tier
	picked  []string // manual picks, catalog order; empty iff all
	all     bool
}

// NewDimensionPicker starts with the catalog's default entry selected.
func NewDimensionPicker(cat *catalog.Catalog, tier models.Tier) *DimensionPicker {
	return &DimensionPicker{
		catalog: cat,
		tier:    tier,
		picked:  []string{cat.DefaultDimension()},
	}
}

// Tier returns the tier the picker enforces limits for.
func (p *DimensionPicker) Tier() models.Tier {
	return p.tier
}

// SetTier re-applies limits for a new tier. Dropping to free collapses
// the selection to its first entry.
func (p *DimensionPicker) SetTier(tier models.Tier) {
	p.tier = tier
	if !tier.Paid() {
		if p.all || len(p.picked) > 1 {
			first := p.catalog.DefaultDimension()
			if !p.all && len(p.picked) > 0 {
				first = p.picked[0]
			}
			p.all = false
			p.picked = []string{first}
		}
	}
}

// All reports whether the "All Formats" flag is active.
func (p *DimensionPicker) All() bool {
	return p.all
}

// Selected returns the effective selection in catalog order.
func (p *DimensionPicker) Selected() []string {
	if p.all {
		return p.catalog.AllDimensionValues()
	}
	return slices.Clone(p.picked)
}

// IsSelected reports whether the value is currently effective.
func (p *DimensionPicker) IsSelected(value string) bool {
	if p.all {
		return p.catalog.Has(value)
	}
	return slices.Contains(p.picked, value)
}

// Toggle flips one dimension's membership.
//
// Rules: deselecting the last effective entry is rejected; a free-tier
// user toggling a new entry swaps it for the current one rather than
// growing the selection; selecting a tier-locked entry gets
// ErrUpgradeRequired with state unchanged; picking every individual
// entry collapses into the All flag; toggling an entry off while All
// is active drops back to manual picks of the rest.
func (p *DimensionPicker) Toggle(value string) error {
	dim, ok := p.catalog.Dimension(value)
	if !ok {
		return ErrUnknownValue
	}

	if p.all {
		// Deselect one out of "all": back to manual bookkeeping.
		rest := make([]string, 0, len(p.catalog.Dimensions())-1)
		for _, v := range p.catalog.AllDimensionValues() {
			if v != value {
				rest = append(rest, v)
			}
		}
		if len(rest) == 0 {
			return ErrLastDimension
		}
		p.all = false
		p.picked = rest
		return nil
	}

	if slices.Contains(p.picked, value) {
		if len(p.picked) == 1 {
			return ErrLastDimension
		}
		p.picked = slices.DeleteFunc(slices.Clone(p.picked), func(v string) bool {
			return v == value
		})
		return nil
	}

	if !catalog.Allowed(dim.Tier, p.tier) {
		return models.ErrUpgradeRequired
	}
	if !p.tier.Paid() {
		// One dimension at a time on the free tier; toggling a new
		// entry swaps it in instead of pinning the first pick forever.
		p.picked = []string{value}
		return nil
	}

	p.picked = p.inCatalogOrder(append(p.picked, value))
	if len(p.picked) == len(p.catalog.Dimensions()) {
		// Every entry picked by hand is the same as All Formats.
		p.all = true
		p.picked = nil
	}
	return nil
}

// SelectOnly replaces the selection with exactly the given values,
// under the same tier rules as Toggle. The free tier may name at most
// one value.
func (p *DimensionPicker) SelectOnly(values ...string) error {
	if len(values) == 0 {
		return ErrLastDimension
	}

	picked := make([]string, 0, len(values))
	for _, value := range values {
		dim, ok := p.catalog.Dimension(value)
		if !ok {
			return ErrUnknownValue
		}
		if !catalog.Allowed(dim.Tier, p.tier) {
			return models.ErrUpgradeRequired
		}
		if !slices.Contains(picked, value) {
			picked = append(picked, value)
		}
	}
	if !p.tier.Paid() && len(picked) > 1 {
		return models.ErrUpgradeRequired
	}

	p.all = false
	p.picked = p.inCatalogOrder(picked)
	if p.tier.Paid() && len(p.picked) == len(p.catalog.Dimensions()) {
		p.all = true
		p.picked = nil
	}
	return nil
}

// SetAll switches the All Formats flag. Turning it on clears manual
// picks; turning it off collapses to the single default entry. Free
// tier never gets All.
func (p *DimensionPicker) SetAll(on bool) error {
	if on {
		if !p.tier.Paid() {
			return models.ErrUpgradeRequired
		}
		p.all = true
		p.picked = nil
		return nil
	}
	if p.all {
		p.all = false
		p.picked = []string{p.catalog.DefaultDimension()}
	}
	return nil
}

// Reset returns the picker to its initial single-default state.
func (p *DimensionPicker) Reset() {
	p.all = false
	p.picked = []string{p.catalog.DefaultDimension()}
}

func (p *DimensionPicker) inCatalogOrder(values []string) []string {
	ordered := make([]string, 0, len(values))
	for _, v := range p.catalog.AllDimensionValues() {
		if slices.Contains(values, v) {
			ordered = append(ordered, v)
		}
	}
	return ordered
}

// StylePicker is a single-select over style presets.
type StylePicker struct {
	catalog *catalog.Catalog
	tier    models.Tier
	value   string
}

func NewStylePicker(cat *catalog.Catalog, tier models.Tier) *StylePicker {
	value := ""
	if styles := cat.Styles(); len(styles) > 0 {
		value = styles[0].Value
	}
	return &StylePicker{catalog: cat, tier: tier, value: value}
}

func (p *StylePicker) Value() string {
	return p.value
}

// SetTier applies a tier change. A downgrade that strands the current
// choice behind a tier gate falls back to the first open style.
func (p *StylePicker) SetTier(tier models.Tier) {
	p.tier = tier
	if style, ok := p.catalog.Style(p.value); ok && catalog.Allowed(style.Tier, tier) {
		return
	}
	p.value = ""
	for _, style := range p.catalog.Styles() {
		if catalog.Allowed(style.Tier, tier) {
			p.value = style.Value
			return
		}
	}
}

// Select picks a style; tier-locked styles are rejected without
// mutating the current choice.
func (p *StylePicker) Select(value string) error {
	style, ok := p.catalog.Style(value)
	if !ok {
		return ErrUnknownValue
	}
	if !catalog.Allowed(style.Tier, p.tier) {
		return models.ErrUpgradeRequired
	}
	p.value = value
	return nil
}

// Package render draws workspace state for the terminal: result cards,
// history tables, plan listings. It is presentation only; nothing here
// mutates state.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/layoutcraft/layoutcraft/internal/api"
	"github.com/layoutcraft/layoutcraft/internal/catalog"
	"github.com/layoutcraft/layoutcraft/internal/workspace"
	"github.com/layoutcraft/layoutcraft/pkg/models"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			MarginRight(1)

	selectedCardStyle = cardStyle.
				BorderForeground(lipgloss.Color("212"))

	titleStyle = lipgloss.NewStyle().Bold(true)
	faintStyle = lipgloss.NewStyle().Faint(true)
	markStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	lockStyle  = lipgloss.NewStyle().Faint(true)
)

// Group renders one card per image in the current result set, marking
// the ones selected for the next refine pass.
func Group(group *models.GenerationGroup, isSelected func(string) bool, cat *catalog.Catalog) string {
	if group == nil || len(group.Images) == 0 {
		return faintStyle.Render("no results yet - run generate")
	}

	var b strings.Builder
	header := fmt.Sprintf("%s  %s", titleStyle.Render("design "+group.ID), faintStyle.Render("theme: "+group.Theme))
	b.WriteString(header)
	b.WriteString("\n")

	cards := make([]string, 0, len(group.Images))
	for _, img := range group.Images {
		cards = append(cards, card(img, isSelected(img.SizePreset), cat))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	return b.String()
}

func card(img models.GeneratedImage, selected bool, cat *catalog.Catalog) string {
	label := img.SizePreset
	size := ""
	if cat != nil {
		if dim, ok := cat.Dimension(img.SizePreset); ok {
			label = dim.Label
			size = dim.PixelSize()
		}
	}

	mark := "[ ]"
	if selected {
		mark = markStyle.Render("[x]")
	}

	lines := []string{
		fmt.Sprintf("%s %s", mark, titleStyle.Render(label)),
	}
	if size != "" {
		lines = append(lines, faintStyle.Render(size))
	}
	lines = append(lines, faintStyle.Render(truncate(img.ImageURL, 36)))

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

// StatusLine summarizes the workspace for the interactive prompt area.
func StatusLine(m *workspace.Machine) string {
	parts := []string{string(m.Mode())}
	if m.Group() != nil {
		if m.SelectionComplete() {
			parts = append(parts, "all selected")
		} else {
			parts = append(parts, fmt.Sprintf("%d/%d selected", len(m.Selection()), len(m.Group().Images)))
		}
	}
	parts = append(parts, "tier: "+string(m.Tier()))
	if m.Quality() == models.QualityPremium {
		parts = append(parts, "premium")
	}
	return faintStyle.Render(strings.Join(parts, " | "))
}

// Dimensions lists the catalog with selection and lock markers.
func Dimensions(cat *catalog.Catalog, isSelected func(string) bool, tier models.Tier) string {
	var b strings.Builder
	for _, dim := range cat.Dimensions() {
		mark := "[ ]"
		if isSelected(dim.Value) {
			mark = markStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %-18s %-22s %s", mark, dim.Value, dim.Label, faintStyle.Render(dim.PixelSize()))
		if !catalog.Allowed(dim.Tier, tier) {
			line += lockStyle.Render(fmt.Sprintf("  (requires %s)", dim.Tier))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// Styles lists the style presets, marking the active one.
func Styles(cat *catalog.Catalog, active string, tier models.Tier) string {
	var b strings.Builder
	for _, style := range cat.Styles() {
		mark := "   "
		if style.Value == active {
			mark = markStyle.Render(" > ")
		}
		line := fmt.Sprintf("%s%-24s %s", mark, style.Value, style.Label)
		if !catalog.Allowed(style.Tier, tier) {
			line += lockStyle.Render(fmt.Sprintf("  (requires %s)", style.Tier))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// History renders one page of past threads with relative timestamps.
func History(page *api.ParentPage, offset int, now time.Time) string {
	if page == nil || len(page.Parents) == 0 {
		return faintStyle.Render("no past generations")
	}

	var b strings.Builder
	for i, parent := range page.Parents {
		age := humanize.RelTime(parent.CreatedAt, now, "ago", "from now")
		b.WriteString(fmt.Sprintf("%3d. %s %s\n", offset+i+1,
			titleStyle.Render(truncate(parent.Prompt, 48)),
			faintStyle.Render(fmt.Sprintf("(%s, %d images, %s)", parent.Theme, parent.ImageCount, age))))
		b.WriteString(faintStyle.Render("     thread " + parent.ThreadID))
		b.WriteString("\n")
	}
	if page.HasNext {
		b.WriteString(faintStyle.Render("more available - 'history next'"))
		b.WriteString("\n")
	}
	return b.String()
}

// EditGroups renders a thread's refine passes.
func EditGroups(groups []api.EditGroup, now time.Time) string {
	if len(groups) == 0 {
		return faintStyle.Render("no edits in this thread")
	}
	var b strings.Builder
	for _, g := range groups {
		age := humanize.RelTime(g.CreatedAt, now, "ago", "from now")
		b.WriteString(fmt.Sprintf("  %s  %s %s\n", g.GenerationID,
			truncate(g.Prompt, 40), faintStyle.Render(age)))
	}
	return b.String()
}

// Plans renders the subscription offerings.
func Plans(plans []api.Plan) string {
	if len(plans) == 0 {
		return faintStyle.Render("no plans available")
	}
	var b strings.Builder
	for _, plan := range plans {
		name := titleStyle.Render(plan.Name)
		price := fmt.Sprintf("$%d.%02d/%s", plan.PriceCents/100, plan.PriceCents%100, plan.Interval)
		line := fmt.Sprintf("%-20s %-12s %s", name, price, faintStyle.Render(plan.Tier))
		if plan.IsCurrent {
			line += markStyle.Render("  (current)")
		}
		b.WriteString(line)
		b.WriteString("\n")
		for _, feature := range plan.Features {
			b.WriteString(faintStyle.Render("    - " + feature))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// SavedFile reports a completed download with a humanized size.
func SavedFile(path string, size int64) string {
	return fmt.Sprintf("Saved: %s %s", path, faintStyle.Render("("+humanize.Bytes(uint64(size))+")"))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return s[:max-1] + "…"
}

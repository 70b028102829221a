package repl

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/layoutcraft/layoutcraft/internal/api"
	"github.com/layoutcraft/layoutcraft/internal/render"
	"github.com/layoutcraft/layoutcraft/internal/workspace"
	"github.com/layoutcraft/layoutcraft/pkg/models"
)

type Command interface {
	Name() string
	Aliases() []string
	Description() string
	Usage() string
	Execute(ctx context.Context, r *REPL, args []string) error
}

func allCommands() []Command {
	return []Command{
		&PromptCommand{},
		&GenerateCommand{},
		&RefineCommand{},
		&NewCommand{},
		&ShowCommand{},
		&SelectCommand{},
		&AllCommand{},
		&PreviewCommand{},
		&DownloadCommand{},
		&DimensionsCommand{},
		&StyleCommand{},
		&QualityCommand{},
		&BrandKitCommand{},
		&DraftCommand{},
		&HistoryCommand{},
		&LoadCommand{},
		&PlansCommand{},
		&UpgradeCommand{},
		&WhoamiCommand{},
		&HelpCommand{},
		&QuitCommand{},
	}
}

func (r *REPL) registerCommands() {
	for _, cmd := range allCommands() {
		r.commands[cmd.Name()] = cmd
		for _, alias := range cmd.Aliases() {
			r.commands[alias] = cmd
		}
	}
}

// resolvePreset maps an argument to a size preset in the current
// group: either a 1-based index or the preset value itself.
func (r *REPL) resolvePreset(arg string) (string, error) {
	group := r.machine.Group()
	if group == nil {
		return "", workspace.ErrNotEditing
	}

	if n, err := strconv.Atoi(arg); err == nil {
		keys := group.Keys()
		if n < 1 || n > len(keys) {
			return "", fmt.Errorf("no image %d (group has %d)", n, len(keys))
		}
		return keys[n-1], nil
	}

	if !group.Has(arg) {
		return "", fmt.Errorf("no image for preset %q in this group", arg)
	}
	return arg, nil
}

func (r *REPL) showGroup() {
	group := r.machine.Group()
	if group == nil {
		return
	}
	fmt.Fprintln(r.out, render.Group(group, r.machine.IsSelected, r.catalog))
	fmt.Fprintln(r.out, render.StatusLine(r.machine))
}

func (r *REPL) previewFirst(ctx context.Context) {
	if r.preview == nil {
		return
	}
	group := r.machine.Group()
	if group == nil || len(group.Images) == 0 {
		return
	}
	if err := r.preview.Show(ctx, group.Images[0]); err != nil {
		fmt.Fprintf(r.err, "Warning: failed to preview: %v\n", err)
	}
}

// PromptCommand stages the prompt without submitting
type PromptCommand struct{}

func (c *PromptCommand) Name() string        { return "prompt" }
func (c *PromptCommand) Aliases() []string   { return []string{"p"} }
func (c *PromptCommand) Description() string { return "Show or stage the prompt" }
func (c *PromptCommand) Usage() string       { return "prompt [text]" }

func (c *PromptCommand) Execute(_ context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		if r.machine.Prompt() == "" {
			fmt.Fprintln(r.out, "No prompt staged.")
		} else {
			fmt.Fprintf(r.out, "Prompt: %s\n", r.machine.Prompt())
		}
		return nil
	}

	r.machine.SetPrompt(strings.Join(args, " "))
	fmt.Fprintf(r.out, "Prompt staged: %s\n", r.machine.Prompt())
	return nil
}

// GenerateCommand submits a fresh generation
type GenerateCommand struct{}

func (c *GenerateCommand) Name() string        { return "generate" }
func (c *GenerateCommand) Aliases() []string   { return []string{"gen", "g"} }
func (c *GenerateCommand) Description() string { return "Generate designs from a prompt" }
func (c *GenerateCommand) Usage() string       { return "generate [prompt]" }

func (c *GenerateCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.machine.Mode() == workspace.ModeEditing {
		return fmt.Errorf("a result set is open - 'refine <prompt>' to iterate or 'new' to start over")
	}

	if len(args) > 0 {
		r.machine.SetPrompt(strings.Join(args, " "))
	}

	fmt.Fprintln(r.out, "Generating...")
	if _, err := r.machine.Submit(ctx); err != nil {
		return err
	}
	r.refreshUsage(ctx)

	r.showGroup()
	r.previewFirst(ctx)
	return nil
}

// RefineCommand submits a refine pass over the selected images
type RefineCommand struct{}

func (c *RefineCommand) Name() string        { return "refine" }
func (c *RefineCommand) Aliases() []string   { return []string{"edit", "r"} }
func (c *RefineCommand) Description() string { return "Refine the selected images with a prompt" }
func (c *RefineCommand) Usage() string       { return "refine [prompt]" }

func (c *RefineCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.machine.Mode() != workspace.ModeEditing {
		return workspace.ErrNotEditing
	}

	if len(args) > 0 {
		r.machine.SetPrompt(strings.Join(args, " "))
	}

	fmt.Fprintf(r.out, "Refining %d image(s)...\n", len(r.machine.Selection()))
	if _, err := r.machine.Submit(ctx); err != nil {
		return err
	}
	r.refreshUsage(ctx)

	r.showGroup()
	r.previewFirst(ctx)
	return nil
}

// NewCommand drops the result set and starts over
type NewCommand struct{}

func (c *NewCommand) Name() string        { return "new" }
func (c *NewCommand) Aliases() []string   { return []string{"startover", "reset"} }
func (c *NewCommand) Description() string { return "Discard the result set and start over" }
func (c *NewCommand) Usage() string       { return "new" }

func (c *NewCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	r.machine.StartOver()
	fmt.Fprintln(r.out, "Workspace cleared.")
	return nil
}

// ShowCommand renders the current result set
type ShowCommand struct{}

func (c *ShowCommand) Name() string        { return "show" }
func (c *ShowCommand) Aliases() []string   { return []string{"view", "status"} }
func (c *ShowCommand) Description() string { return "Show the current result set and settings" }
func (c *ShowCommand) Usage() string       { return "show" }

func (c *ShowCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	if r.machine.Group() == nil {
		fmt.Fprintln(r.out, render.StatusLine(r.machine))
		return nil
	}
	r.showGroup()
	return nil
}

// SelectCommand toggles images in the refine selection
type SelectCommand struct{}

func (c *SelectCommand) Name() string        { return "select" }
func (c *SelectCommand) Aliases() []string   { return []string{"sel", "toggle"} }
func (c *SelectCommand) Description() string { return "Toggle images in the refine selection" }
func (c *SelectCommand) Usage() string       { return "select <n|preset> [...]" }

func (c *SelectCommand) Execute(_ context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	for _, arg := range args {
		preset, err := r.resolvePreset(arg)
		if err != nil {
			return err
		}
		if err := r.machine.ToggleImage(preset); err != nil {
			return err
		}
	}

	r.showGroup()
	return nil
}

// AllCommand selects every image in the group
type AllCommand struct{}

func (c *AllCommand) Name() string        { return "all" }
func (c *AllCommand) Aliases() []string   { return nil }
func (c *AllCommand) Description() string { return "Select every image in the group" }
func (c *AllCommand) Usage() string       { return "all" }

func (c *AllCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	if r.machine.Group() == nil {
		return workspace.ErrNotEditing
	}
	r.machine.SelectAllImages()
	r.showGroup()
	return nil
}

// PreviewCommand renders an image inline in the terminal
type PreviewCommand struct{}

func (c *PreviewCommand) Name() string        { return "preview" }
func (c *PreviewCommand) Aliases() []string   { return []string{"pv"} }
func (c *PreviewCommand) Description() string { return "Preview an image inline (kitty graphics)" }
func (c *PreviewCommand) Usage() string       { return "preview [n|preset]" }

func (c *PreviewCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.preview == nil {
		return fmt.Errorf("inline preview is not available in this terminal")
	}

	group := r.machine.Group()
	if group == nil {
		return workspace.ErrNotEditing
	}

	arg := "1"
	if len(args) > 0 {
		arg = args[0]
	}
	preset, err := r.resolvePreset(arg)
	if err != nil {
		return err
	}

	img, ok := group.Image(preset)
	if !ok {
		return fmt.Errorf("no image for preset %q", preset)
	}
	return r.preview.Show(ctx, img)
}

// DownloadCommand saves images to disk
type DownloadCommand struct{}

func (c *DownloadCommand) Name() string        { return "download" }
func (c *DownloadCommand) Aliases() []string   { return []string{"dl", "save"} }
func (c *DownloadCommand) Description() string { return "Download selected images (or one, or all)" }
func (c *DownloadCommand) Usage() string       { return "download [n|preset|all]" }

func (c *DownloadCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	group := r.machine.Group()
	if group == nil {
		return workspace.ErrNotEditing
	}

	var presets []string
	switch {
	case len(args) == 0:
		presets = r.machine.Selection()
		if len(presets) == 0 {
			return fmt.Errorf("nothing selected - 'select' images or 'download all'")
		}
	case args[0] == "all":
		presets = group.Keys()
	default:
		preset, err := r.resolvePreset(args[0])
		if err != nil {
			return err
		}
		presets = []string{preset}
	}

	if len(presets) == 1 {
		img, _ := group.Image(presets[0])
		path, size, err := r.saver.Save(ctx, img, r.outDir)
		if err != nil {
			return fmt.Errorf("download failed: %w", err)
		}
		fmt.Fprintln(r.out, render.SavedFile(path, size))
		return nil
	}

	fmt.Fprintf(r.out, "Downloading %d image(s)...\n", len(presets))
	paths, err := r.saver.SaveAll(ctx, group, presets, r.outDir)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	for _, path := range paths {
		fmt.Fprintf(r.out, "Saved: %s\n", path)
	}
	return nil
}

// DimensionsCommand lists or toggles size presets
type DimensionsCommand struct{}

func (c *DimensionsCommand) Name() string        { return "dimensions" }
func (c *DimensionsCommand) Aliases() []string   { return []string{"dims", "d"} }
func (c *DimensionsCommand) Description() string { return "List or toggle size presets" }
func (c *DimensionsCommand) Usage() string       { return "dimensions [preset ...|all]" }

func (c *DimensionsCommand) Execute(_ context.Context, r *REPL, args []string) error {
	picker := r.machine.Dimensions()

	if len(args) == 0 {
		fmt.Fprintln(r.out, render.Dimensions(r.catalog, picker.IsSelected, r.machine.Tier()))
		return nil
	}

	if args[0] == "all" {
		if err := picker.SetAll(!picker.All()); err != nil {
			return err
		}
	} else {
		for _, arg := range args {
			if err := picker.Toggle(arg); err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(r.out, "Dimensions: %s\n", strings.Join(picker.Selected(), ", "))
	return nil
}

// StyleCommand lists or sets the design style
type StyleCommand struct{}

func (c *StyleCommand) Name() string        { return "style" }
func (c *StyleCommand) Aliases() []string   { return []string{"theme"} }
func (c *StyleCommand) Description() string { return "List styles or set the active one" }
func (c *StyleCommand) Usage() string       { return "style [name]" }

func (c *StyleCommand) Execute(_ context.Context, r *REPL, args []string) error {
	picker := r.machine.Style()

	if len(args) == 0 {
		fmt.Fprintln(r.out, render.Styles(r.catalog, picker.Value(), r.machine.Tier()))
		return nil
	}

	if err := picker.Select(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Style set to: %s\n", picker.Value())
	return nil
}

// QualityCommand gets or sets the render quality
type QualityCommand struct{}

func (c *QualityCommand) Name() string        { return "quality" }
func (c *QualityCommand) Aliases() []string   { return nil }
func (c *QualityCommand) Description() string { return "Get or set render quality (standard, premium)" }
func (c *QualityCommand) Usage() string       { return "quality [standard|premium]" }

func (c *QualityCommand) Execute(_ context.Context, r *REPL, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Quality: %s\n", r.machine.Quality())
		return nil
	}

	switch models.Quality(strings.ToLower(args[0])) {
	case models.QualityStandard:
		r.machine.SetQuality(models.QualityStandard)
	case models.QualityPremium:
		r.machine.SetQuality(models.QualityPremium)
	default:
		return fmt.Errorf("unknown quality: %s (standard or premium)", args[0])
	}

	fmt.Fprintf(r.out, "Quality set to: %s\n", r.machine.Quality())
	return nil
}

// BrandKitCommand shows, applies, or edits the brand kit
type BrandKitCommand struct{}

func (c *BrandKitCommand) Name() string      { return "brandkit" }
func (c *BrandKitCommand) Aliases() []string { return []string{"brand", "bk"} }
func (c *BrandKitCommand) Description() string {
	return "Show the brand kit, toggle its use, or edit it"
}
func (c *BrandKitCommand) Usage() string { return "brandkit [on|off|set <field> <value>]" }

func (c *BrandKitCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.session == nil {
		return fmt.Errorf("brand kits need an account - run 'layoutcraft login' first")
	}

	if len(args) == 0 {
		kit, err := r.service.BrandKitGet(ctx)
		if err != nil {
			return err
		}
		c.print(r, kit)
		return nil
	}

	switch strings.ToLower(args[0]) {
	case "on":
		r.machine.SetUseBrandKit(true)
		fmt.Fprintln(r.out, "Brand kit will be applied to generations.")
		return nil
	case "off":
		r.machine.SetUseBrandKit(false)
		fmt.Fprintln(r.out, "Brand kit disabled for generations.")
		return nil
	case "set":
		if len(args) < 3 {
			return fmt.Errorf("usage: brandkit set <field> <value>")
		}
		return c.set(ctx, r, strings.ToLower(args[1]), strings.Join(args[2:], " "))
	default:
		return fmt.Errorf("unknown brandkit command: %s", args[0])
	}
}

func (c *BrandKitCommand) print(r *REPL, kit *api.BrandKit) {
	applied := "off"
	if r.machine.UseBrandKit() {
		applied = "on"
	}
	fmt.Fprintf(r.out, "Brand kit (applied: %s)\n", applied)
	fmt.Fprintf(r.out, "  company:   %s\n", orUnset(kit.CompanyName))
	fmt.Fprintf(r.out, "  primary:   %s\n", orUnset(kit.PrimaryColor))
	fmt.Fprintf(r.out, "  secondary: %s\n", orUnset(kit.SecondaryColor))
	fmt.Fprintf(r.out, "  accent:    %s\n", orUnset(kit.AccentColor))
	fmt.Fprintf(r.out, "  font:      %s\n", orUnset(kit.FontFamily))
	fmt.Fprintf(r.out, "  logo:      %s\n", orUnset(kit.LogoURL))
}

func (c *BrandKitCommand) set(ctx context.Context, r *REPL, field, value string) error {
	kit, err := r.service.BrandKitGet(ctx)
	if err != nil {
		return err
	}

	switch field {
	case "company":
		kit.CompanyName = value
	case "primary":
		kit.PrimaryColor = value
	case "secondary":
		kit.SecondaryColor = value
	case "accent":
		kit.AccentColor = value
	case "font":
		kit.FontFamily = value
	case "logo":
		kit.LogoURL = value
	default:
		return fmt.Errorf("unknown brand kit field: %s (company, primary, secondary, accent, font, logo)", field)
	}

	if err := r.service.BrandKitUpdate(ctx, kit); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Brand kit updated: %s = %s\n", field, value)
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

// DraftCommand saves and restores prompt drafts
type DraftCommand struct{}

func (c *DraftCommand) Name() string        { return "draft" }
func (c *DraftCommand) Aliases() []string   { return nil }
func (c *DraftCommand) Description() string { return "Save, load, or clear the prompt draft" }
func (c *DraftCommand) Usage() string       { return "draft <save|load|clear>" }

func (c *DraftCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.drafts == nil {
		return fmt.Errorf("the draft store is not available")
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	switch strings.ToLower(args[0]) {
	case "save":
		if r.machine.Prompt() == "" {
			return fmt.Errorf("no prompt staged - 'prompt <text>' first")
		}
		draft, err := r.drafts.SaveDraft(ctx, r.userID(), r.machine.Prompt(), r.machine.Style().Value())
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Draft saved: %q\n", truncate(draft.Prompt, 50))
		return nil
	case "load":
		draft, err := r.drafts.LoadDraft(ctx, r.userID())
		if err != nil {
			return err
		}
		if draft == nil {
			fmt.Fprintln(r.out, "No saved draft.")
			return nil
		}
		r.machine.SetPrompt(draft.Prompt)
		if draft.Style != "" {
			if err := r.machine.Style().Select(draft.Style); err != nil {
				fmt.Fprintf(r.err, "Warning: draft style no longer available: %v\n", err)
			}
		}
		fmt.Fprintf(r.out, "Draft loaded: %q\n", truncate(draft.Prompt, 50))
		return nil
	case "clear":
		if err := r.drafts.ClearDraft(ctx, r.userID()); err != nil {
			return err
		}
		fmt.Fprintln(r.out, "Draft cleared.")
		return nil
	default:
		return fmt.Errorf("unknown draft command: %s", args[0])
	}
}

// HistoryCommand browses past generation threads
type HistoryCommand struct{}

func (c *HistoryCommand) Name() string      { return "history" }
func (c *HistoryCommand) Aliases() []string { return []string{"h", "hist"} }
func (c *HistoryCommand) Description() string {
	return "Browse past generations (list, next, open <n>)"
}
func (c *HistoryCommand) Usage() string { return "history [next|open <n>]" }

func (c *HistoryCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.browser == nil {
		return fmt.Errorf("history needs an account - run 'layoutcraft login' first")
	}

	if len(args) == 0 {
		page, err := r.browser.First(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, render.History(page, r.browser.Offset(), time.Now()))
		return nil
	}

	switch strings.ToLower(args[0]) {
	case "next":
		page, err := r.browser.Next(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(r.out, render.History(page, r.browser.Offset(), time.Now()))
		return nil
	case "open":
		if len(args) < 2 {
			return fmt.Errorf("usage: history open <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("not a history entry: %s", args[1])
		}
		parent, err := r.browser.Parent(n)
		if err != nil {
			return err
		}
		groups, err := r.browser.EditGroups(ctx, parent.ThreadID)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Thread: %q\n", truncate(parent.Prompt, 60))
		fmt.Fprintln(r.out, render.EditGroups(groups, time.Now()))
		return nil
	default:
		return fmt.Errorf("unknown history command: %s", args[0])
	}
}

// LoadCommand hydrates a past design into the workspace
type LoadCommand struct{}

func (c *LoadCommand) Name() string        { return "load" }
func (c *LoadCommand) Aliases() []string   { return nil }
func (c *LoadCommand) Description() string { return "Load a past design for refining" }
func (c *LoadCommand) Usage() string       { return "load <n|generation-id>" }

func (c *LoadCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.browser == nil {
		return fmt.Errorf("history needs an account - run 'layoutcraft login' first")
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	generationID := args[0]
	if n, err := strconv.Atoi(args[0]); err == nil {
		parent, err := r.browser.Parent(n)
		if err != nil {
			return err
		}
		groups, err := r.browser.EditGroups(ctx, parent.ThreadID)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			return fmt.Errorf("thread %d has no designs", n)
		}
		// Server returns edit groups newest first.
		generationID = groups[0].GenerationID
	}

	group, err := r.browser.Design(ctx, generationID)
	if err != nil {
		return err
	}
	if err := r.machine.Hydrate(group); err != nil {
		return err
	}

	fmt.Fprintf(r.out, "Loaded design %s (%d image(s))\n", group.ID, len(group.Images))
	r.showGroup()
	return nil
}

// PlansCommand lists subscription plans
type PlansCommand struct{}

func (c *PlansCommand) Name() string        { return "plans" }
func (c *PlansCommand) Aliases() []string   { return []string{"billing"} }
func (c *PlansCommand) Description() string { return "List subscription plans" }
func (c *PlansCommand) Usage() string       { return "plans" }

func (c *PlansCommand) Execute(ctx context.Context, r *REPL, _ []string) error {
	plans, err := r.service.Plans(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, render.Plans(plans))
	fmt.Fprintln(r.out, "Upgrade with 'upgrade <plan-id>'.")
	return nil
}

// UpgradeCommand starts a checkout or opens the billing portal
type UpgradeCommand struct{}

func (c *UpgradeCommand) Name() string      { return "upgrade" }
func (c *UpgradeCommand) Aliases() []string { return nil }
func (c *UpgradeCommand) Description() string {
	return "Get a checkout link, or 'upgrade portal' to manage billing"
}
func (c *UpgradeCommand) Usage() string { return "upgrade <plan-id|portal>" }

func (c *UpgradeCommand) Execute(ctx context.Context, r *REPL, args []string) error {
	if r.session == nil {
		return fmt.Errorf("upgrading needs an account - run 'layoutcraft login' first")
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	if strings.ToLower(args[0]) == "portal" {
		url, err := r.service.CreatePortal(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Manage your subscription at:\n  %s\n", url)
		return nil
	}

	url, err := r.service.CreateCheckout(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Complete your upgrade at:\n  %s\n", url)
	return nil
}

// WhoamiCommand shows the signed-in profile
type WhoamiCommand struct{}

func (c *WhoamiCommand) Name() string        { return "whoami" }
func (c *WhoamiCommand) Aliases() []string   { return []string{"me"} }
func (c *WhoamiCommand) Description() string { return "Show the signed-in account" }
func (c *WhoamiCommand) Usage() string       { return "whoami" }

func (c *WhoamiCommand) Execute(ctx context.Context, r *REPL, _ []string) error {
	if r.session == nil {
		fmt.Fprintln(r.out, "Not signed in (anonymous).")
		return nil
	}

	user, err := r.service.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "%s (%s tier, %d generation(s) used)\n", user.Email, user.Tier, user.UsageCount)
	return nil
}

// HelpCommand shows available commands
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Aliases() []string   { return []string{"?"} }
func (c *HelpCommand) Description() string { return "Show available commands" }
func (c *HelpCommand) Usage() string       { return "help" }

func (c *HelpCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	fmt.Fprintln(r.out, "Available commands:")
	fmt.Fprintln(r.out)

	for _, cmd := range allCommands() {
		aliases := ""
		if len(cmd.Aliases()) > 0 {
			aliases = fmt.Sprintf(" (%s)", strings.Join(cmd.Aliases(), ", "))
		}
		fmt.Fprintf(r.out, "  %-12s%s\n", cmd.Name()+aliases, cmd.Description())
		fmt.Fprintf(r.out, "               Usage: %s\n", cmd.Usage())
	}

	return nil
}

// QuitCommand exits the REPL
type QuitCommand struct{}

func (c *QuitCommand) Name() string        { return "quit" }
func (c *QuitCommand) Aliases() []string   { return []string{"exit", "q"} }
func (c *QuitCommand) Description() string { return "Exit interactive mode" }
func (c *QuitCommand) Usage() string       { return "quit" }

func (c *QuitCommand) Execute(_ context.Context, r *REPL, _ []string) error {
	fmt.Fprintln(r.out, "Goodbye!")
	r.Stop()
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

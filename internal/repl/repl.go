package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/layoutcraft/layoutcraft/internal/api"
	"github.com/layoutcraft/layoutcraft/internal/catalog"
	"github.com/layoutcraft/layoutcraft/internal/download"
	"github.com/layoutcraft/layoutcraft/internal/history"
	"github.com/layoutcraft/layoutcraft/internal/preview"
	"github.com/layoutcraft/layoutcraft/internal/store"
	"github.com/layoutcraft/layoutcraft/internal/workspace"
	"github.com/layoutcraft/layoutcraft/pkg/models"
)

// Service is the slice of the API client the REPL commands call
// directly, outside the workspace machine.
type Service interface {
	Profile(ctx context.Context) (*models.User, error)
	Plans(ctx context.Context) ([]api.Plan, error)
	CreateCheckout(ctx context.Context, planID string) (string, error)
	CreatePortal(ctx context.Context) (string, error)
	BrandKitGet(ctx context.Context) (*api.BrandKit, error)
	BrandKitUpdate(ctx context.Context, kit *api.BrandKit) error
}

// UsageRefresher nudges the profile poller for an immediate refresh,
// so usage counters and tier changes show up right after a generation
// instead of at the next polling tick.
type UsageRefresher interface {
	RefreshNow(ctx context.Context) (*models.User, error)
}

// DraftStore persists prompt drafts between sessions.
type DraftStore interface {
	SaveDraft(ctx context.Context, userID, prompt, style string) (*store.Draft, error)
	LoadDraft(ctx context.Context, userID string) (*store.Draft, error)
	ClearDraft(ctx context.Context, userID string) error
}

type REPL struct {
	in       io.Reader
	out      io.Writer
	err      io.Writer
	machine  *workspace.Machine
	catalog  *catalog.Catalog
	service  Service
	browser  *history.Browser
	saver    *download.Downloader
	preview  *preview.Previewer
	drafts   DraftStore
	usage    UsageRefresher
	session  *models.Session
	outDir   string
	commands map[string]Command
	running  bool
}

type Config struct {
	In      io.Reader
	Out     io.Writer
	Err     io.Writer
	Machine *workspace.Machine
	Catalog *catalog.Catalog
	Service Service
	Browser *history.Browser
	Saver   *download.Downloader
	Preview *preview.Previewer
	// Drafts may be nil; the draft command then reports it is
	// unavailable.
	Drafts DraftStore
	// Usage may be nil; generations then skip the immediate refresh.
	Usage UsageRefresher
	// Session is nil for anonymous use.
	Session *models.Session
	// OutDir is where downloads land. Empty means current directory.
	OutDir string
}

func New(cfg *Config) *REPL {
	r := &REPL{
		in:       cfg.In,
		out:      cfg.Out,
		err:      cfg.Err,
		machine:  cfg.Machine,
		catalog:  cfg.Catalog,
		service:  cfg.Service,
		browser:  cfg.Browser,
		saver:    cfg.Saver,
		preview:  cfg.Preview,
		drafts:   cfg.Drafts,
		usage:    cfg.Usage,
		session:  cfg.Session,
		outDir:   cfg.OutDir,
		commands: make(map[string]Command),
	}
	r.registerCommands()
	return r
}

func (r *REPL) Run(ctx context.Context) error {
	r.running = true
	r.printWelcome()

	scanner := bufio.NewScanner(r.in)
	for r.running {
		r.printPrompt()
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if err := r.execute(ctx, line); err != nil {
			if errors.Is(err, api.ErrSessionExpired) {
				fmt.Fprintln(r.err, "Session expired. Run 'layoutcraft login' to sign in again.")
				r.Stop()
				continue
			}
			if errors.Is(err, models.ErrUpgradeRequired) {
				fmt.Fprintln(r.err, "This needs a paid plan. Type 'plans' to see upgrade options.")
				continue
			}
			fmt.Fprintf(r.err, "Error: %v\n", err)
		}
	}

	return scanner.Err()
}

func (r *REPL) execute(ctx context.Context, line string) error {
	parts := parseCommand(line)
	if len(parts) == 0 {
		return nil
	}

	cmdName := strings.ToLower(parts[0])
	args := parts[1:]

	cmd, ok := r.commands[cmdName]
	if !ok {
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmdName)
	}

	return cmd.Execute(ctx, r, args)
}

func (r *REPL) Stop() {
	r.running = false
}

// refreshUsage asks for a fresh profile after a successful generation.
// Best effort; the background poller catches up on failure.
func (r *REPL) refreshUsage(ctx context.Context) {
	if r.usage == nil {
		return
	}
	_, _ = r.usage.RefreshNow(ctx)
}

func (r *REPL) userID() string {
	if r.session != nil {
		return r.session.User.ID
	}
	return "anonymous"
}

func (r *REPL) printWelcome() {
	fmt.Fprintln(r.out, "layoutcraft interactive mode")
	fmt.Fprintln(r.out, "Type 'help' for available commands, 'quit' to exit.")
	fmt.Fprintln(r.out)
}

func (r *REPL) printPrompt() {
	tier := string(r.machine.Tier())
	if r.session == nil {
		tier = "anon"
	}
	if r.machine.Mode() == workspace.ModeEditing {
		group := r.machine.Group()
		fmt.Fprintf(r.out, "layoutcraft [%s] (editing %d/%d)> ",
			tier, len(r.machine.Selection()), len(group.Images))
	} else {
		fmt.Fprintf(r.out, "layoutcraft [%s]> ", tier)
	}
}

func parseCommand(line string) []string {
	var parts []string
	var current strings.Builder
	inQuotes := false
	quoteChar := rune(0)

	for _, ch := range line {
		switch {
		case ch == '"' || ch == '\'':
			if inQuotes && ch == quoteChar {
				inQuotes = false
				quoteChar = 0
			} else if !inQuotes {
				inQuotes = true
				quoteChar = ch
			} else {
				current.WriteRune(ch)
			}
		case ch == ' ' && !inQuotes:
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

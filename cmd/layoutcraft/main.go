package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/layoutcraft/layoutcraft/internal/api"
	"github.com/layoutcraft/layoutcraft/internal/auth"
	"github.com/layoutcraft/layoutcraft/internal/catalog"
	"github.com/layoutcraft/layoutcraft/internal/download"
	"github.com/layoutcraft/layoutcraft/internal/history"
	"github.com/layoutcraft/layoutcraft/internal/preview"
	"github.com/layoutcraft/layoutcraft/internal/render"
	"github.com/layoutcraft/layoutcraft/internal/repl"
	"github.com/layoutcraft/layoutcraft/internal/store"
	"github.com/layoutcraft/layoutcraft/internal/usage"
	"github.com/layoutcraft/layoutcraft/internal/workspace"
	"github.com/layoutcraft/layoutcraft/pkg/models"
)

var (
	version = "dev"
	commit  = "none"
)

var (
	flagAPIURL  string
	flagTimeout int
	flagOutDir  string
	flagStyle   string
	flagDims    []string
	flagAllDims bool
	flagQuality string
	flagBrand   bool
)

type App struct {
	In          io.Reader
	Out         io.Writer
	Err         io.Writer
	GetEnv      func(string) string
	NewSessions func() (*auth.Store, error)
	NewCache    func() (*store.Store, error)
	NewSaver    func() *download.Downloader
}

func DefaultApp() *App {
	return &App{
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		GetEnv:      os.Getenv,
		NewSessions: auth.NewStore,
		NewCache:    store.New,
		NewSaver: func() *download.Downloader {
			return download.New(download.Options{})
		},
	}
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	app := DefaultApp()
	rootCmd := newRootCmd(app)
	return rootCmd.Execute()
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layoutcraft",
		Short: "Generate marketing designs from a prompt",
		Long: `layoutcraft generates marketing designs in multiple sizes from a
single prompt, then lets you refine them iteratively.

Examples:
  layoutcraft generate "coffee shop grand opening" --dim instagram_post
  layoutcraft generate "spring sale banner" --all --style vibrant_gradient
  layoutcraft workspace
  layoutcraft history`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "API base URL (defaults to LAYOUTCRAFT_API_URL)")
	cmd.PersistentFlags().IntVar(&flagTimeout, "timeout", 0, "request timeout in seconds")

	cmd.AddCommand(
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newWhoamiCmd(app),
		newGenerateCmd(app),
		newWorkspaceCmd(app),
		newHistoryCmd(app),
		newBrandKitCmd(app),
		newPlansCmd(app),
		newPresetsCmd(app),
	)

	return cmd
}

// newClient builds the API client, attaching the auth gate as token
// source only when a live session exists so anonymous generation stays
// possible.
func newClient(app *App, sessions *auth.Store) *api.Client {
	baseURL := flagAPIURL
	if baseURL == "" {
		baseURL = app.GetEnv("LAYOUTCRAFT_API_URL")
	}

	var tokens api.TokenSource
	if sessions != nil {
		if gate := auth.NewGate(sessions); gate.Has() {
			tokens = gate
		}
	}

	return api.New(&api.Config{
		BaseURL:    baseURL,
		Tokens:     tokens,
		TimeoutSec: flagTimeout,
	})
}

func loadSession(app *App) (*auth.Store, *models.Session, error) {
	sessions, err := app.NewSessions()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session store: %w", err)
	}
	sess, err := sessions.Load()
	if err != nil {
		return sessions, nil, err
	}
	if sess != nil && auth.IsExpired(sess.Token) {
		_ = sessions.Clear()
		sess = nil
	}
	return sessions, sess, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func readLine(app *App, prompt string) (string, error) {
	fmt.Fprint(app.Out, prompt)
	reader := bufio.NewReader(app.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword hides input when stdin is a real terminal and falls
// back to a plain read otherwise (pipes, tests).
func readPassword(app *App, prompt string) (string, error) {
	if f, ok := app.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(app.Out, prompt)
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(app.Out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(data)), nil
	}
	return readLine(app, prompt)
}

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAuth(app, "login")
		},
	}
}

func newRegisterCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAuth(app, "register")
		},
	}
}

func runAuth(app *App, op string) error {
	ctx, cancel := signalContext()
	defer cancel()

	email, err := readLine(app, "Email: ")
	if err != nil {
		return err
	}
	password, err := readPassword(app, "Password: ")
	if err != nil {
		return err
	}
	if email == "" || password == "" {
		return fmt.Errorf("email and password are required")
	}

	sessions, err := app.NewSessions()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	client := newClient(app, nil)

	var result *api.LoginResult
	if op == "register" {
		result, err = client.Register(ctx, email, password)
	} else {
		result, err = client.Login(ctx, email, password)
	}
	if err != nil {
		return err
	}

	if result.ConfirmationPending {
		msg := result.Message
		if msg == "" {
			msg = "Check your email to confirm your account, then run 'layoutcraft login'."
		}
		fmt.Fprintln(app.Out, msg)
		return nil
	}

	if err := sessions.Save(result.Session); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	fmt.Fprintf(app.Out, "Signed in as %s (%s tier)\n", result.Session.User.Email, result.Session.User.Tier)
	return nil
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := app.NewSessions()
			if err != nil {
				return fmt.Errorf("failed to open session store: %w", err)
			}
			if err := sessions.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			sessions, sess, err := loadSession(app)
			if err != nil {
				return err
			}
			if sess == nil {
				fmt.Fprintln(app.Out, "Not signed in. Run 'layoutcraft login'.")
				return nil
			}

			client := newClient(app, sessions)
			user, err := client.Profile(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "%s (%s tier, %d generation(s) used)\n", user.Email, user.Tier, user.UsageCount)
			return nil
		},
	}
}

func newGenerateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate designs and download them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(app, args)
		},
	}

	cmd.Flags().StringSliceVar(&flagDims, "dim", nil, "size preset to generate (repeatable)")
	cmd.Flags().BoolVar(&flagAllDims, "all", false, "generate every available size")
	cmd.Flags().StringVar(&flagStyle, "style", "", "design style")
	cmd.Flags().StringVar(&flagQuality, "quality", "", "render quality (standard, premium)")
	cmd.Flags().BoolVar(&flagBrand, "brand", false, "apply the saved brand kit")
	cmd.Flags().StringVarP(&flagOutDir, "output", "o", "", "output directory")

	return cmd
}

func runGenerate(app *App, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	sessions, sess, err := loadSession(app)
	if err != nil {
		return err
	}
	client := newClient(app, sessions)

	cache := openCache(app)
	if cache != nil {
		defer cache.Close()
	}

	cat, fromRemote := loadCatalog(ctx, client, cache)
	if !fromRemote {
		fmt.Fprintln(app.Err, "Using the locally known size catalog.")
	}

	machine := buildMachine(client, cat, sess, cache)

	if err := applyGenerateFlags(machine); err != nil {
		return err
	}
	machine.SetPrompt(strings.Join(args, " "))

	fmt.Fprintf(app.Out, "Generating %d size(s)...\n", len(machine.Dimensions().Selected()))
	group, err := machine.Submit(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(app.Out, render.Group(group, machine.IsSelected, cat))

	saver := app.NewSaver()
	paths, err := saver.SaveAll(ctx, group, group.Keys(), flagOutDir)
	if err != nil {
		return err
	}
	for _, path := range paths {
		fmt.Fprintf(app.Out, "Saved: %s\n", path)
	}
	return nil
}

// loadCatalog resolves the size catalog: the remote list when the API
// answers in time (caching it for later), then the cached copy, then
// the embedded defaults.
func loadCatalog(ctx context.Context, client *api.Client, cache *store.Store) (*catalog.Catalog, bool) {
	fetch := func(ctx context.Context) ([]catalog.DimensionPreset, error) {
		dims, err := client.Presets(ctx)
		if err == nil && len(dims) > 0 && cache != nil {
			_ = cache.CachePresets(ctx, dims)
		}
		return dims, err
	}

	cat, fromRemote := catalog.Load(ctx, fetch, 0)
	if fromRemote || cache == nil {
		return cat, fromRemote
	}

	var dims []catalog.DimensionPreset
	if ok, err := cache.CachedPresets(ctx, &dims); err == nil && ok && len(dims) > 0 {
		return catalog.FromDimensions(dims), false
	}
	return cat, false
}

func openCache(app *App) *store.Store {
	cache, err := app.NewCache()
	if err != nil {
		fmt.Fprintf(app.Err, "Warning: local cache unavailable: %v\n", err)
		return nil
	}
	return cache
}

func buildMachine(client *api.Client, cat *catalog.Catalog, sess *models.Session, cache *store.Store) *workspace.Machine {
	cfg := &workspace.Config{
		Remote:    client,
		Catalog:   cat,
		Anonymous: sess == nil,
	}
	if sess != nil {
		cfg.Tier = sess.User.Tier
	}
	if cache != nil {
		cfg.Trials = cache
	}
	return workspace.New(cfg)
}

func applyGenerateFlags(machine *workspace.Machine) error {
	picker := machine.Dimensions()

	switch {
	case flagAllDims:
		if err := picker.SetAll(true); err != nil {
			return err
		}
	case len(flagDims) > 0:
		if err := picker.SelectOnly(flagDims...); err != nil {
			return err
		}
	}

	if flagStyle != "" {
		if err := machine.Style().Select(flagStyle); err != nil {
			return err
		}
	}

	switch models.Quality(strings.ToLower(flagQuality)) {
	case "":
	case models.QualityStandard:
		machine.SetQuality(models.QualityStandard)
	case models.QualityPremium:
		machine.SetQuality(models.QualityPremium)
	default:
		return fmt.Errorf("invalid quality %q: must be standard or premium", flagQuality)
	}

	machine.SetUseBrandKit(flagBrand)
	return nil
}

func newWorkspaceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"repl"},
		Short:   "Open the interactive workspace",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorkspace(app)
		},
	}

	cmd.Flags().StringVarP(&flagOutDir, "output", "o", "", "download directory")

	return cmd
}

func runWorkspace(app *App) error {
	ctx, cancel := signalContext()
	defer cancel()

	sessions, sess, err := loadSession(app)
	if err != nil {
		return err
	}
	client := newClient(app, sessions)

	cache := openCache(app)
	if cache != nil {
		defer cache.Close()
	}

	cat, _ := loadCatalog(ctx, client, cache)
	machine := buildMachine(client, cat, sess, cache)

	var browser *history.Browser
	var drafts repl.DraftStore
	if cache != nil {
		drafts = cache
	}
	if sess != nil {
		var histCache history.Cache
		if cache != nil {
			histCache = cache
		}
		browser = history.NewBrowser(client, histCache, sess.User.ID, 0)
	}

	var previewer *preview.Previewer
	if preview.Supported() {
		previewer = preview.New(app.Out)
	}

	// Pick up tier changes (an upgrade finishing in the browser)
	// without restarting the workspace.
	var refresher repl.UsageRefresher
	if sess != nil {
		poller := usage.NewRefresher(client.Profile, 0)
		poller.OnUpdate = func(u *models.User) { machine.SetTier(u.Tier) }
		poller.Start(ctx)
		defer poller.Stop()
		refresher = poller
	}

	r := repl.New(&repl.Config{
		In:      app.In,
		Out:     app.Out,
		Err:     app.Err,
		Machine: machine,
		Catalog: cat,
		Service: client,
		Browser: browser,
		Saver:   app.NewSaver(),
		Preview: previewer,
		Drafts:  drafts,
		Usage:   refresher,
		Session: sess,
		OutDir:  flagOutDir,
	})
	return r.Run(ctx)
}

func newHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List past generations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			sessions, sess, err := loadSession(app)
			if err != nil {
				return err
			}
			if sess == nil {
				return fmt.Errorf("history needs an account - run 'layoutcraft login' first")
			}

			client := newClient(app, sessions)
			browser := history.NewBrowser(client, nil, sess.User.ID, 0)

			page, err := browser.First(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.Out, render.History(page, browser.Offset(), time.Now()))
			return nil
		},
	}
}

func newBrandKitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "brandkit [set <field> <value>]",
		Short: "Show or edit the brand kit",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			sessions, sess, err := loadSession(app)
			if err != nil {
				return err
			}
			if sess == nil {
				return fmt.Errorf("brand kits need an account - run 'layoutcraft login' first")
			}
			client := newClient(app, sessions)

			kit, err := client.BrandKitGet(ctx)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				printBrandKit(app.Out, kit)
				return nil
			}
			if len(args) < 3 || args[0] != "set" {
				return fmt.Errorf("usage: layoutcraft brandkit set <field> <value>")
			}

			if err := setBrandKitField(kit, strings.ToLower(args[1]), strings.Join(args[2:], " ")); err != nil {
				return err
			}
			if err := client.BrandKitUpdate(ctx, kit); err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Brand kit updated: %s\n", strings.ToLower(args[1]))
			return nil
		},
	}
}

func printBrandKit(out io.Writer, kit *api.BrandKit) {
	fmt.Fprintln(out, "Brand kit:")
	fmt.Fprintf(out, "  company:   %s\n", orUnset(kit.CompanyName))
	fmt.Fprintf(out, "  primary:   %s\n", orUnset(kit.PrimaryColor))
	fmt.Fprintf(out, "  secondary: %s\n", orUnset(kit.SecondaryColor))
	fmt.Fprintf(out, "  accent:    %s\n", orUnset(kit.AccentColor))
	fmt.Fprintf(out, "  font:      %s\n", orUnset(kit.FontFamily))
	fmt.Fprintf(out, "  logo:      %s\n", orUnset(kit.LogoURL))
}

func setBrandKitField(kit *api.BrandKit, field, value string) error {
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
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func newPlansCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List subscription plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			sessions, _, err := loadSession(app)
			if err != nil {
				return err
			}
			client := newClient(app, sessions)

			plans, err := client.Plans(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.Out, render.Plans(plans))
			return nil
		},
	}
}

func newPresetsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List available sizes and styles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			sessions, sess, err := loadSession(app)
			if err != nil {
				return err
			}
			client := newClient(app, sessions)

			cache := openCache(app)
			if cache != nil {
				defer cache.Close()
			}
			cat, _ := loadCatalog(ctx, client, cache)

			tier := models.TierFree
			if sess != nil {
				tier = sess.User.Tier
			}

			none := func(string) bool { return false }
			fmt.Fprintln(app.Out, render.Dimensions(cat, none, tier))
			fmt.Fprintln(app.Out)
			fmt.Fprintln(app.Out, render.Styles(cat, "", tier))
			return nil
		},
	}
}

package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/layoutcraft/layoutcraft/internal/auth"
	"github.com/layoutcraft/layoutcraft/internal/download"
	"github.com/layoutcraft/layoutcraft/internal/store"
	"github.com/layoutcraft/layoutcraft/pkg/models"
)

// resetFlags resets all global flags to their default values.
func resetFlags() {
	flagAPIURL = ""
	flagTimeout = 0
	flagOutDir = ""
	flagStyle = ""
	flagDims = nil
	flagAllDims = false
	flagQuality = ""
	flagBrand = false
}

func testToken(t *testing.T, exp time.Time) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none"}`))
	claims, err := json.Marshal(map[string]int64{"exp": exp.Unix()})
	if err != nil {
		t.Fatal(err)
	}
	return header + "." + base64.RawURLEncoding.EncodeToString(claims) + ".sig"
}

// newTestApp points config and cache at a temp dir and the API at the
// given server URL.
func newTestApp(t *testing.T, in string, apiURL string) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	resetFlags()

	dir := t.TempDir()
	t.Setenv("LAYOUTCRAFT_CONFIG_DIR", dir)

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	app := &App{
		In:  strings.NewReader(in),
		Out: out,
		Err: errOut,
		GetEnv: func(key string) string {
			if key == "LAYOUTCRAFT_API_URL" {
				return apiURL
			}
			return ""
		},
		NewSessions: auth.NewStore,
		NewCache: func() (*store.Store, error) {
			return store.NewWithPath(filepath.Join(dir, "cache.db"))
		},
		NewSaver: func() *download.Downloader {
			return download.New(download.Options{SkipValidation: true, Delay: time.Millisecond})
		},
	}
	return app, out, errOut
}

func saveTestSession(t *testing.T, tier models.Tier) {
	t.Helper()
	sessions, err := auth.NewStore()
	if err != nil {
		t.Fatal(err)
	}
	err = sessions.Save(&models.Session{
		Token: testToken(t, time.Now().Add(time.Hour)),
		User:  models.User{ID: "u1", Email: "ada@example.com", Tier: tier},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, app *App, args ...string) error {
	t.Helper()
	cmd := newRootCmd(app)
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestDefaultApp(t *testing.T) {
	app := DefaultApp()

	if app.In == nil || app.Out == nil || app.Err == nil {
		t.Error("DefaultApp() has nil streams")
	}
	if app.GetEnv == nil || app.NewSessions == nil || app.NewCache == nil || app.NewSaver == nil {
		t.Error("DefaultApp() has nil constructors")
	}

	os.Setenv("TEST_VAR_123", "test_value")
	defer os.Unsetenv("TEST_VAR_123")
	if app.GetEnv("TEST_VAR_123") != "test_value" {
		t.Error("DefaultApp() GetEnv doesn't work")
	}
}

func TestNewRootCmdSubcommands(t *testing.T) {
	app, _, _ := newTestApp(t, "", "")
	cmd := newRootCmd(app)

	want := []string{"login", "register", "logout", "whoami", "generate", "workspace", "history", "brandkit", "plans", "presets"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestLoginSavesSession(t *testing.T) {
	token := ""
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		if creds["email"] != "ada@example.com" || creds["password"] != "hunter2" {
			t.Errorf("unexpected credentials: %v", creds)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": token,
			"user":         map[string]any{"id": "u1", "email": "ada@example.com", "tier": "pro"},
		})
	}))
	defer srv.Close()

	app, out, _ := newTestApp(t, "ada@example.com\nhunter2\n", srv.URL)
	token = testToken(t, time.Now().Add(time.Hour))

	if err := execute(t, app, "login"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if !strings.Contains(out.String(), "Signed in as ada@example.com") {
		t.Errorf("missing confirmation: %s", out.String())
	}

	sessions, _ := auth.NewStore()
	sess, err := sessions.Load()
	if err != nil || sess == nil {
		t.Fatalf("session not saved: %v", err)
	}
	if sess.User.Tier != models.TierPro {
		t.Errorf("tier = %s, want pro", sess.User.Tier)
	}
}

func TestLoginConfirmationPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"email_confirmation_required": true,
			"message":                     "Check your inbox to confirm.",
		})
	}))
	defer srv.Close()

	app, out, _ := newTestApp(t, "ada@example.com\nhunter2\n", srv.URL)
	if err := execute(t, app, "login"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if !strings.Contains(out.String(), "Check your inbox to confirm.") {
		t.Errorf("missing confirmation message: %s", out.String())
	}

	sessions, _ := auth.NewStore()
	if sess, _ := sessions.Load(); sess != nil {
		t.Error("session saved despite pending confirmation")
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	app, _, _ := newTestApp(t, "\n\n", "http://127.0.0.1:1")
	if err := execute(t, app, "login"); err == nil {
		t.Error("expected error for empty credentials")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	app, out, _ := newTestApp(t, "", "")
	saveTestSession(t, models.TierPro)

	if err := execute(t, app, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if !strings.Contains(out.String(), "Signed out.") {
		t.Errorf("missing signed-out notice: %s", out.String())
	}

	sessions, _ := auth.NewStore()
	if sess, _ := sessions.Load(); sess != nil {
		t.Error("session still present after logout")
	}
}

func TestWhoamiNotSignedIn(t *testing.T) {
	app, out, _ := newTestApp(t, "", "")
	if err := execute(t, app, "whoami"); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out.String(), "Not signed in") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestWhoamiShowsProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/profile" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Error("missing bearer token")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id": "u1", "email": "ada@example.com", "tier": "pro", "usage_count": 12,
		})
	}))
	defer srv.Close()

	app, out, _ := newTestApp(t, "", srv.URL)
	saveTestSession(t, models.TierPro)

	if err := execute(t, app, "whoami"); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out.String(), "ada@example.com") || !strings.Contains(out.String(), "12 generation(s)") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestGenerateOneShot(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/presets":
			http.NotFound(w, r)
		case "/api/v1/generate":
			var req map[string]any
			json.NewDecoder(r.Body).Decode(&req)
			if req["prompt"] != "coffee shop grand opening" {
				t.Errorf("prompt = %v", req["prompt"])
			}
			json.NewEncoder(w).Encode(map[string]any{
				"id": "gen-1",
				"images_json": []map[string]string{
					{"size_preset": "blog_header", "image_url": srv.URL + "/img/blog_header.png"},
				},
			})
		default:
			w.Write([]byte("fake image bytes"))
		}
	}))
	defer srv.Close()

	outDir := t.TempDir()
	app, out, _ := newTestApp(t, "", srv.URL)

	err := execute(t, app, "generate", "coffee shop grand opening", "-o", outDir)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !strings.Contains(out.String(), "Saved: ") {
		t.Errorf("missing saved path: %s", out.String())
	}
	entries, err := os.ReadDir(outDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("saved files = %v, err = %v", entries, err)
	}
	if !strings.HasPrefix(entries[0].Name(), "blog_header-") {
		t.Errorf("unexpected filename %s", entries[0].Name())
	}
}

func TestGenerateFreeTierSingleDimensionFlag(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/presets":
			http.NotFound(w, r)
		case "/api/v1/generate":
			var req struct {
				SizePresets []string `json:"size_presets"`
			}
			json.NewDecoder(r.Body).Decode(&req)
			if len(req.SizePresets) != 1 || req.SizePresets[0] != "instagram_post" {
				t.Errorf("size_presets = %v, want [instagram_post]", req.SizePresets)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"id": "gen-1",
				"images_json": []map[string]string{
					{"size_preset": "instagram_post", "image_url": srv.URL + "/img/instagram_post.png"},
				},
			})
		default:
			w.Write([]byte("fake image bytes"))
		}
	}))
	defer srv.Close()

	outDir := t.TempDir()
	app, _, _ := newTestApp(t, "", srv.URL)
	saveTestSession(t, models.TierFree)

	// One requested dimension is within the free cap; it must swap in
	// for the default rather than fail with an upgrade error.
	err := execute(t, app, "generate", "a poster", "--dim", "instagram_post", "-o", outDir)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("saved files = %v, err = %v", entries, err)
	}
	if !strings.HasPrefix(entries[0].Name(), "instagram_post-") {
		t.Errorf("unexpected filename %s", entries[0].Name())
	}
}

func TestGenerateFreeTierTwoDimensionsRejected(t *testing.T) {
	app, _, _ := newTestApp(t, "", "http://127.0.0.1:1")
	saveTestSession(t, models.TierFree)

	err := execute(t, app, "generate", "a poster", "--dim", "blog_header", "--dim", "instagram_post")
	if !errors.Is(err, models.ErrUpgradeRequired) {
		t.Errorf("error = %v, want ErrUpgradeRequired", err)
	}
}

func TestGenerateInvalidQuality(t *testing.T) {
	app, _, _ := newTestApp(t, "", "http://127.0.0.1:1")
	err := execute(t, app, "generate", "a poster", "--quality", "ultra")
	if err == nil || !strings.Contains(err.Error(), "invalid quality") {
		t.Errorf("error = %v, want invalid quality", err)
	}
}

func TestGenerateUnknownDimension(t *testing.T) {
	app, _, _ := newTestApp(t, "", "http://127.0.0.1:1")
	err := execute(t, app, "generate", "a poster", "--dim", "billboard_xxl")
	if err == nil {
		t.Error("expected error for unknown dimension")
	}
}

func TestWorkspaceQuit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	app, out, _ := newTestApp(t, "quit\n", srv.URL)
	if err := execute(t, app, "workspace"); err != nil {
		t.Fatalf("workspace: %v", err)
	}
	if !strings.Contains(out.String(), "layoutcraft interactive mode") {
		t.Errorf("missing welcome: %s", out.String())
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Errorf("missing goodbye: %s", out.String())
	}
}

func TestHistoryRequiresLogin(t *testing.T) {
	app, _, _ := newTestApp(t, "", "http://127.0.0.1:1")
	err := execute(t, app, "history")
	if err == nil || !strings.Contains(err.Error(), "needs an account") {
		t.Errorf("error = %v, want login hint", err)
	}
}

func TestHistoryListsThreads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/history/parents" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"parents": []map[string]any{
				{"thread_id": "t1", "prompt": "spring sale banner", "image_count": 3, "created_at": time.Now().Add(-time.Hour)},
			},
			"has_next": false,
		})
	}))
	defer srv.Close()

	app, out, _ := newTestApp(t, "", srv.URL)
	saveTestSession(t, models.TierPro)

	if err := execute(t, app, "history"); err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out.String(), "spring sale banner") {
		t.Errorf("missing thread: %s", out.String())
	}
}

func TestBrandKitShowAndSet(t *testing.T) {
	var updated map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/brand-kit" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method == http.MethodPost {
			json.NewDecoder(r.Body).Decode(&updated)
			w.WriteHeader(http.StatusOK)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"company_name": "Acme Co", "primary_color": "#112233",
		})
	}))
	defer srv.Close()

	app, out, _ := newTestApp(t, "", srv.URL)
	saveTestSession(t, models.TierPro)

	if err := execute(t, app, "brandkit"); err != nil {
		t.Fatalf("brandkit: %v", err)
	}
	if !strings.Contains(out.String(), "Acme Co") {
		t.Errorf("missing company: %s", out.String())
	}

	if err := execute(t, app, "brandkit", "set", "accent", "#FF5733"); err != nil {
		t.Fatalf("brandkit set: %v", err)
	}
	if updated["accent_color"] != "#FF5733" || updated["company_name"] != "Acme Co" {
		t.Errorf("update payload = %v", updated)
	}
}

func TestBrandKitRequiresLogin(t *testing.T) {
	app, _, _ := newTestApp(t, "", "http://127.0.0.1:1")
	err := execute(t, app, "brandkit")
	if err == nil || !strings.Contains(err.Error(), "needs an account") {
		t.Errorf("error = %v, want login hint", err)
	}
}

func TestPlansLists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/billing/plans" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"plans": []map[string]any{
				{"id": "pro-monthly", "name": "Pro", "tier": "pro", "price_cents": 1900, "interval": "month"},
			},
		})
	}))
	defer srv.Close()

	app, out, _ := newTestApp(t, "", srv.URL)
	if err := execute(t, app, "plans"); err != nil {
		t.Fatalf("plans: %v", err)
	}
	if !strings.Contains(out.String(), "Pro") {
		t.Errorf("missing plan: %s", out.String())
	}
}

func TestPresetsFallsBackToEmbedded(t *testing.T) {
	app, out, _ := newTestApp(t, "", "http://127.0.0.1:1")
	if err := execute(t, app, "presets"); err != nil {
		t.Fatalf("presets: %v", err)
	}
	for _, want := range []string{"blog_header", "instagram_post"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("missing preset %s in output", want)
		}
	}
}

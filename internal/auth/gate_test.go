package auth

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/layoutcraft/layoutcraft/pkg/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("LAYOUTCRAFT_CONFIG_DIR", t.TempDir())
	store, err := NewStore()
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store
}

func testSession(t *testing.T, exp time.Time) *models.Session {
	t.Helper()
	return &models.Session{
		Token: forgeToken(t, fmt.Sprintf(`{"exp":%d}`, exp.Unix())),
		User: models.User{
			ID:    "user-1",
			Email: "dana@example.com",
			Tier:  models.TierPro,
		},
	}
}

func TestStore_SaveLoadClear(t *testing.T) {
	store := testStore(t)

	sess, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if sess != nil {
		t.Fatal("Load() on empty store returned a session")
	}

	want := testSession(t, time.Now().Add(time.Hour))
	if err := store.Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("session file mode = %o, want 0600", perm)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.User.Email != want.User.Email || got.Token != want.Token {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if sess, _ := store.Load(); sess != nil {
		t.Error("Load() after Clear() returned a session")
	}

	// Clearing again is fine.
	if err := store.Clear(); err != nil {
		t.Errorf("Clear() on empty store error = %v", err)
	}
}

func TestGate_Require(t *testing.T) {
	store := testStore(t)
	gate := NewGate(store)

	if _, err := gate.Require(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Require() error = %v, want ErrNoSession", err)
	}

	if err := store.Save(testSession(t, time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	sess, err := gate.Require()
	if err != nil {
		t.Fatalf("Require() error = %v", err)
	}
	if sess.User.Tier != models.TierPro {
		t.Errorf("Require() tier = %v, want pro", sess.User.Tier)
	}
	if !gate.Has() {
		t.Error("Has() = false with live session")
	}
}

func TestGate_Require_ExpiredClearsStore(t *testing.T) {
	store := testStore(t)
	gate := NewGate(store)

	if err := store.Save(testSession(t, time.Now().Add(-time.Hour))); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := gate.Require(); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Require() error = %v, want ErrSessionExpired", err)
	}

	// Expiry detection wipes the stored session.
	if sess, _ := store.Load(); sess != nil {
		t.Error("stored session survived expiry detection")
	}
	if _, err := gate.Require(); !errors.Is(err, ErrNoSession) {
		t.Errorf("second Require() error = %v, want ErrNoSession", err)
	}
}

func TestGate_Token(t *testing.T) {
	store := testStore(t)
	gate := NewGate(store)

	if _, ok := gate.Token(); ok {
		t.Error("Token() ok = true with no session")
	}

	sess := testSession(t, time.Now().Add(time.Hour))
	if err := store.Save(sess); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	token, ok := gate.Token()
	if !ok {
		t.Fatal("Token() ok = false with live session")
	}
	if token != sess.Token {
		t.Errorf("Token() = %v, want stored token", token)
	}
}

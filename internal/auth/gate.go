package auth

import (
	"errors"
	"fmt"

	"github.com/layoutcraft/layoutcraft/pkg/models"
)

var (
	ErrNoSession      = errors.New("not logged in")
	ErrSessionExpired = errors.New("session expired")
)

// Gate checks for a stored, unexpired session before guarded work runs.
// On detected expiry it clears the stored state so the next check fails
// fast, then reports expiry; callers surface a login hint instead of
// attempting the call.
type Gate struct {
	store *Store
}

func NewGate(store *Store) *Gate {
	return &Gate{store: store}
}

// Require returns the current session or an error describing why there
// is none.
func (g *Gate) Require() (*models.Session, error) {
	sess, err := g.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil || sess.Token == "" {
		return nil, ErrNoSession
	}

	if IsExpired(sess.Token) {
		if err := g.store.Clear(); err != nil {
			return nil, fmt.Errorf("failed to clear expired session: %w", err)
		}
		return nil, ErrSessionExpired
	}

	return sess, nil
}

// Has reports whether an unexpired session exists, without side
// effects beyond expiry cleanup.
func (g *Gate) Has() bool {
	_, err := g.Require()
	return err == nil
}

// Token implements the API client's token source. It returns the
// stored token when a live session exists.
func (g *Gate) Token() (string, bool) {
	sess, err := g.Require()
	if err != nil {
		return "", false
	}
	return sess.Token, true
}

// Package usage keeps the cached profile counters fresh with a
// periodic, cancellable background refresh.
package usage

import (
	"context"
	"sync"
	"time"

	"github.com/layoutcraft/layoutcraft/pkg/models"
)

const defaultInterval = 5 * time.Minute

// ProfileFunc fetches the current profile from the server.
type ProfileFunc func(ctx context.Context) (*models.User, error)

// Refresher polls the profile on an interval and hands each result to
// an OnUpdate callback. It is explicitly started and stopped; a second
// Start while running is a no-op.
type Refresher struct {
	fetch    ProfileFunc
	interval time.Duration

	// OnUpdate receives each successfully fetched profile. Set it
	// before Start; it runs on the refresher's goroutine.
	OnUpdate func(*models.User)

	// OnError receives fetch failures. Optional.
	OnError func(error)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRefresher(fetch ProfileFunc, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Refresher{fetch: fetch, interval: interval}
}

// Start launches the polling goroutine. The first fetch happens after
// one full interval, not immediately.
func (r *Refresher) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	done := make(chan struct{})
	r.done = done

	go r.run(ctx, done)
}

// Stop cancels the polling goroutine and waits for it to exit. Safe to
// call when not running.
func (r *Refresher) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the polling goroutine is active.
func (r *Refresher) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Refresher) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			user, err := r.fetch(ctx)
			if err != nil {
				if r.OnError != nil {
					r.OnError(err)
				}
				continue
			}
			if r.OnUpdate != nil {
				r.OnUpdate(user)
			}
		}
	}
}

// RefreshNow performs one synchronous fetch outside the polling loop,
// for use right after a generation completes.
func (r *Refresher) RefreshNow(ctx context.Context) (*models.User, error) {
	user, err := r.fetch(ctx)
	if err != nil {
		if r.OnError != nil {
			r.OnError(err)
		}
		return nil, err
	}
	if r.OnUpdate != nil {
		r.OnUpdate(user)
	}
	return user, nil
}

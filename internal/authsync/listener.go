package authsync

import (
	"context"
	"sync"

	"geniefy-platform/internal/auth"
)

// Listener reconciles the local instance's belief about auth state with
// broadcast notifications.
//
// Consumer contract: if a broadcast says "signed out" while this instance
// still believes the session is live, local auth data must be dropped
// (OnSignedOut); if it says "signed in" while this instance believes
// otherwise, the new user data is adopted (OnSignedIn). Both hooks must be
// idempotent: delivery is at-most-once, unordered, and may duplicate.
type Listener struct {
	mu    sync.Mutex
	state State

	// OnSignedOut runs when a newer broadcast contradicts a locally-live
	// session. Typical action: flush validity caches.
	OnSignedOut func(ctx context.Context)

	// OnSignedIn runs when a newer broadcast establishes or replaces the
	// authenticated user.
	OnSignedIn func(ctx context.Context, user auth.UserInfo)
}

func NewListener(initial State) *Listener {
	return &Listener{state: initial}
}

// Apply reconciles one notification. Stale versions (at or below the last
// applied one) are dropped; it reports whether the state was applied.
func (l *Listener) Apply(ctx context.Context, s State) bool {
	l.mu.Lock()
	if !s.NewerThan(l.state) {
		l.mu.Unlock()
		return false
	}
	prev := l.state
	l.state = s
	l.mu.Unlock()

	if !s.Authenticated && prev.Authenticated {
		if l.OnSignedOut != nil {
			l.OnSignedOut(ctx)
		}
		return true
	}
	if s.Authenticated && s.User != nil {
		changedUser := !prev.Authenticated || prev.User == nil || prev.User.UserID != s.User.UserID ||
			prev.User.TenantID != s.User.TenantID || prev.User.TeamID != s.User.TeamID
		if changedUser && l.OnSignedIn != nil {
			l.OnSignedIn(ctx, *s.User)
		}
	}
	return true
}

// State returns the last applied state.
func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Run consumes notifications until the channel closes or ctx is done.
func (l *Listener) Run(ctx context.Context, ch <-chan State) {
	for {
		select {
		case <-ctx.Done():
			return
		case s, ok := <-ch:
			if !ok {
				return
			}
			l.Apply(ctx, s)
		}
	}
}

// Package authsync propagates auth-state changes (login, logout, switch,
// impersonation) to every other running API instance, the server-side
// equivalent of keeping browser tabs in agreement.
//
// Delivery is at-most-once and unordered. Consumers reconcile via the
// monotonic Version stamp instead of arrival order, so duplicates and
// out-of-order notifications are harmless. Two near-simultaneous publishes
// racing each other is an accepted outcome; the higher version wins.
package authsync

import (
	"context"
	"time"

	"geniefy-platform/internal/auth"
)

// State is the broadcast payload describing the auth state after an event.
type State struct {
	Authenticated bool           `json:"authenticated"`
	User          *auth.UserInfo `json:"user,omitempty"`

	// Version is a unix-milli stamp taken when the event happened.
	// Consumers drop states older than what they have already applied.
	Version int64 `json:"version"`
}

// NewState stamps a state with the event time.
func NewState(authenticated bool, user *auth.UserInfo, at time.Time) State {
	return State{
		Authenticated: authenticated,
		User:          user,
		Version:       at.UnixMilli(),
	}
}

// NewerThan reports whether s supersedes other.
func (s State) NewerThan(other State) bool {
	return s.Version > other.Version
}

// Broadcaster is a publish/subscribe channel for auth-state changes.
type Broadcaster interface {
	// Publish sends a state change to all subscribers, including those on
	// other instances. Best effort; an error means peers may be stale until
	// the next event.
	Publish(ctx context.Context, s State) error

	// Subscribe returns a channel of incoming states and a cancel func that
	// releases the subscription. The channel closes after cancel.
	Subscribe(ctx context.Context) (<-chan State, func(), error)

	// Last returns the most recent state observed by this process, if any.
	Last() (State, bool)
}

// Package integration tracks the connection state of a tenant's third-party
// integrations while they reconnect.
package integration

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"geniefy-platform/internal/backend"
)

// Status values mirror what the upstream reports.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusReconnecting Status = "reconnecting"
	StatusError        Status = "error"
)

// Terminal reports whether polling should stop. Only reconnecting keeps the
// poller alive; everything else, including unknown statuses, is final.
func (s Status) Terminal() bool {
	return s != StatusReconnecting
}

// State is the last observed status of one integration.
type State struct {
	IntegrationID string    `json:"integration_id"`
	Status        Status    `json:"status"`
	Detail        string    `json:"detail,omitempty"`
	CheckedAt     time.Time `json:"checked_at"`

	// LastError records the most recent fetch failure. Fetch errors do not
	// stop the poller; the previous status stands until the next tick.
	LastError string `json:"last_error,omitempty"`
}

// StatusFetcher pulls the authoritative status. *backend.Client satisfies it.
type StatusFetcher interface {
	FetchIntegrationStatus(ctx context.Context, token, integrationID string) (backend.IntegrationStatus, error)
}

const defaultPollInterval = 5 * time.Second

// Poller watches one integration until its status settles.
type Poller struct {
	fetch    StatusFetcher
	interval time.Duration
	log      *slog.Logger
	clock    func() time.Time

	mu    sync.Mutex
	state State
}

// NewPoller builds a poller. interval <= 0 falls back to 5 seconds.
func NewPoller(fetch StatusFetcher, interval time.Duration, log *slog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Poller{fetch: fetch, interval: interval, log: log, clock: time.Now}
}

// State returns the last observed state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Run polls until the status is terminal or ctx is cancelled. The first check
// happens immediately; later checks tick at the configured interval. Run
// returns the final observed state.
func (p *Poller) Run(ctx context.Context, token, integrationID string) State {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		st := p.check(ctx, token, integrationID)
		if st.Status.Terminal() && st.LastError == "" {
			return st
		}

		select {
		case <-ctx.Done():
			return p.State()
		case <-ticker.C:
		}
	}
}

func (p *Poller) check(ctx context.Context, token, integrationID string) State {
	p.mu.Lock()
	st := p.state
	p.mu.Unlock()

	fetched, err := p.fetch.FetchIntegrationStatus(ctx, token, integrationID)
	now := p.clock()
	if err != nil {
		st.IntegrationID = integrationID
		st.CheckedAt = now
		st.LastError = err.Error()
		p.log.Warn("integration status check failed", "error", err, "integration_id", integrationID)
	} else {
		st = State{
			IntegrationID: fetched.IntegrationID,
			Status:        Status(fetched.Status),
			Detail:        fetched.Detail,
			CheckedAt:     now,
		}
	}

	p.mu.Lock()
	p.state = st
	p.mu.Unlock()
	return st
}

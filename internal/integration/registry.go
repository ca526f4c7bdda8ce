package integration

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Registry deduplicates pollers per integration. A status request that finds
// the integration reconnecting starts one background poller; later requests
// read its snapshot instead of spawning more.
type Registry struct {
	fetch    StatusFetcher
	interval time.Duration
	log      *slog.Logger

	// baseCtx bounds every background poller's lifetime.
	baseCtx context.Context

	mu     sync.Mutex
	active map[string]*Poller
}

func NewRegistry(ctx context.Context, fetch StatusFetcher, interval time.Duration, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		fetch:    fetch,
		interval: interval,
		log:      log,
		baseCtx:  ctx,
		active:   make(map[string]*Poller),
	}
}

// Status checks the integration now. While a poller is already watching it,
// the poller's snapshot is returned instead of issuing another upstream call.
func (r *Registry) Status(ctx context.Context, token, integrationID string) (State, error) {
	r.mu.Lock()
	p, watching := r.active[integrationID]
	r.mu.Unlock()
	if watching {
		return p.State(), nil
	}

	fetched, err := r.fetch.FetchIntegrationStatus(ctx, token, integrationID)
	if err != nil {
		return State{}, err
	}

	st := State{
		IntegrationID: fetched.IntegrationID,
		Status:        Status(fetched.Status),
		Detail:        fetched.Detail,
		CheckedAt:     time.Now(),
	}
	if st.Status == StatusReconnecting {
		r.watch(token, integrationID, st)
	}
	return st, nil
}

func (r *Registry) watch(token, integrationID string, seen State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.active[integrationID]; ok {
		return
	}

	p := NewPoller(r.fetch, r.interval, r.log)
	p.mu.Lock()
	p.state = seen
	p.mu.Unlock()
	r.active[integrationID] = p

	go func() {
		final := p.Run(r.baseCtx, token, integrationID)
		r.log.Info("integration settled",
			"integration_id", integrationID, "status", string(final.Status))

		r.mu.Lock()
		delete(r.active, integrationID)
		r.mu.Unlock()
	}()
}

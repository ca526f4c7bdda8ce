package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"geniefy-platform/internal/backend"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Fetcher pulls the authoritative subscription from the billing backend.
// *backend.Client satisfies it.
type Fetcher interface {
	FetchSubscription(ctx context.Context, token, tenantID string) (backend.Subscription, error)
}

// Service keeps the per-tenant subscription projection and answers
// usability checks from it.
type Service struct {
	repo    Repository
	fetcher Fetcher
	log     *slog.Logger

	// staleAfter bounds how old a projection row may get before Status
	// tries a backend refresh even without an explicit Sync.
	staleAfter time.Duration
	clock      func() time.Time
}

func NewService(repo Repository, fetcher Fetcher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:       repo,
		fetcher:    fetcher,
		log:        log,
		staleAfter: time.Hour,
		clock:      time.Now,
	}
}

// Sync refreshes the projection from the billing backend and returns the
// stored record. An upstream 401 propagates as backend.ErrAuthRequired;
// other upstream failures fall back to the last known record when one
// exists, so a billing outage does not lock tenants out.
func (s *Service) Sync(ctx context.Context, token, tenantID string) (Record, error) {
	if tenantID == "" {
		return Record{}, ErrInvalidArgument
	}
	if s.fetcher == nil {
		return s.repo.Get(ctx, tenantID)
	}

	sub, err := s.fetcher.FetchSubscription(ctx, token, tenantID)
	if err != nil {
		if errors.Is(err, backend.ErrAuthRequired) {
			return Record{}, err
		}
		if last, getErr := s.repo.Get(ctx, tenantID); getErr == nil {
			s.log.Warn("subscription refresh failed, serving last known state",
				"error", err, "tenant_id", tenantID)
			return last, nil
		}
		return Record{}, err
	}

	rec := Record{
		TenantID:  tenantID,
		Plan:      sub.Plan,
		Status:    Status(sub.Status),
		PeriodEnd: sub.PeriodEnd,
		UpdatedAt: s.clock().UTC(),
	}
	if err := s.repo.Upsert(ctx, rec); err != nil {
		s.log.Warn("subscription projection write failed", "error", err, "tenant_id", tenantID)
	}
	return rec, nil
}

// Status returns the tenant's subscription, refreshing from the backend
// when the projection is missing or stale.
func (s *Service) Status(ctx context.Context, token, tenantID string) (Record, error) {
	if tenantID == "" {
		return Record{}, ErrInvalidArgument
	}

	rec, err := s.repo.Get(ctx, tenantID)
	if err == nil && s.clock().Sub(rec.UpdatedAt) < s.staleAfter {
		return rec, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}

	return s.Sync(ctx, token, tenantID)
}

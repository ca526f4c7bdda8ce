package subscription

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("subscription not found")

// Repository stores the per-tenant subscription projection.
type Repository interface {
	Get(ctx context.Context, tenantID string) (Record, error)
	Upsert(ctx context.Context, rec Record) error
}

package subscription

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory Repository for tests and local development.
type MemoryRepo struct {
	mu       sync.Mutex
	byTenant map[string]Record
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byTenant: make(map[string]Record)}
}

func (r *MemoryRepo) Get(ctx context.Context, tenantID string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byTenant[tenantID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *MemoryRepo) Upsert(ctx context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTenant[rec.TenantID] = rec
	return nil
}

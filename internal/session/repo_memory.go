package session

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repository for tests and local development.
type MemoryRepo struct {
	mu     sync.Mutex
	tokens map[string]RefreshToken
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{tokens: make(map[string]RefreshToken)}
}

func (r *MemoryRepo) Save(ctx context.Context, t RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[t.TokenHash] = t
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, tokenHash string) (RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenHash]
	if !ok {
		return RefreshToken{}, ErrTokenNotFound
	}
	return t, nil
}

func (r *MemoryRepo) Revoke(ctx context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[tokenHash]
	if !ok {
		return ErrTokenNotFound
	}
	t.Revoked = true
	r.tokens[tokenHash] = t
	return nil
}

func (r *MemoryRepo) Rotate(ctx context.Context, oldHash string, next RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.tokens[oldHash]
	if !ok {
		return ErrTokenNotFound
	}
	old.Revoked = true
	r.tokens[oldHash] = old
	r.tokens[next.TokenHash] = next
	return nil
}

func (r *MemoryRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h, t := range r.tokens {
		if t.UserID == userID {
			t.Revoked = true
			r.tokens[h] = t
		}
	}
	return nil
}

func (r *MemoryRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for h, t := range r.tokens {
		if t.ExpiresAt.Before(before) {
			delete(r.tokens, h)
			n++
		}
	}
	return n, nil
}

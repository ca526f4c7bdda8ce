package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRotateRevokesOldAndStoresNext(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	old := RefreshToken{TokenHash: "h-old", UserID: "u1", TenantID: "t1", CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour)}
	if err := repo.Save(ctx, old); err != nil {
		t.Fatalf("save: %v", err)
	}

	next := RefreshToken{TokenHash: "h-next", UserID: "u1", TenantID: "t1", CreatedAt: now, ExpiresAt: now.Add(24 * time.Hour)}
	if err := repo.Rotate(ctx, "h-old", next); err != nil {
		t.Fatalf("rotate: %v", err)
	}

	got, err := repo.Get(ctx, "h-old")
	if err != nil {
		t.Fatalf("get old: %v", err)
	}
	if !got.Revoked {
		t.Fatalf("expected old token revoked after rotation")
	}

	got, err = repo.Get(ctx, "h-next")
	if err != nil {
		t.Fatalf("get next: %v", err)
	}
	if got.Revoked {
		t.Fatalf("replacement token must not start revoked")
	}
}

func TestRotateUnknownHash(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	next := RefreshToken{TokenHash: "h-next", UserID: "u1"}
	if err := repo.Rotate(ctx, "h-missing", next); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound, got %v", err)
	}
	if _, err := repo.Get(ctx, "h-next"); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("failed rotation must not store the replacement, got %v", err)
	}
}

package session

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"geniefy-platform/pkg/utils"
)

// PostgresRepo persists refresh tokens in the session_refresh_tokens table.
//
// Expected schema:
//
//	CREATE TABLE session_refresh_tokens (
//	    token_hash  TEXT PRIMARY KEY,
//	    user_id     TEXT NOT NULL,
//	    username    TEXT NOT NULL DEFAULT '',
//	    name        TEXT NOT NULL DEFAULT '',
//	    tenant_id   TEXT NOT NULL,
//	    team_id     TEXT NOT NULL DEFAULT '',
//	    role_id     TEXT NOT NULL DEFAULT '',
//	    remember    BOOLEAN NOT NULL DEFAULT FALSE,
//	    revoked     BOOLEAN NOT NULL DEFAULT FALSE,
//	    created_at  TIMESTAMPTZ NOT NULL,
//	    expires_at  TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX idx_refresh_tokens_user ON session_refresh_tokens (user_id);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, t RefreshToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO session_refresh_tokens
			(token_hash, user_id, username, name, tenant_id, team_id, role_id, remember, revoked, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (token_hash) DO UPDATE SET revoked = EXCLUDED.revoked, expires_at = EXCLUDED.expires_at`,
		t.TokenHash, t.UserID, t.Username, t.Name, t.TenantID, t.TeamID, t.RoleID, t.Remember, t.Revoked, t.CreatedAt, t.ExpiresAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, tokenHash string) (RefreshToken, error) {
	var t RefreshToken
	err := r.db.QueryRowContext(ctx, `
		SELECT token_hash, user_id, username, name, tenant_id, team_id, role_id, remember, revoked, created_at, expires_at
		FROM session_refresh_tokens
		WHERE token_hash = $1`, tokenHash,
	).Scan(&t.TokenHash, &t.UserID, &t.Username, &t.Name, &t.TenantID, &t.TeamID, &t.RoleID, &t.Remember, &t.Revoked, &t.CreatedAt, &t.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return RefreshToken{}, ErrTokenNotFound
	}
	if err != nil {
		return RefreshToken{}, err
	}
	return t, nil
}

func (r *PostgresRepo) Revoke(ctx context.Context, tokenHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE session_refresh_tokens SET revoked = TRUE WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenNotFound
	}
	return nil
}

func (r *PostgresRepo) Rotate(ctx context.Context, oldHash string, next RefreshToken) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE session_refresh_tokens SET revoked = TRUE WHERE token_hash = $1`, oldHash)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrTokenNotFound
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO session_refresh_tokens
				(token_hash, user_id, username, name, tenant_id, team_id, role_id, remember, revoked, created_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (token_hash) DO UPDATE SET revoked = EXCLUDED.revoked, expires_at = EXCLUDED.expires_at`,
			next.TokenHash, next.UserID, next.Username, next.Name, next.TenantID, next.TeamID, next.RoleID, next.Remember, next.Revoked, next.CreatedAt, next.ExpiresAt,
		)
		return err
	})
}

func (r *PostgresRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE session_refresh_tokens SET revoked = TRUE WHERE user_id = $1`, userID)
	return err
}

func (r *PostgresRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM session_refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

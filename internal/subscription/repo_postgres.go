package subscription

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresRepo persists the projection in the tenant_subscriptions table.
//
// Expected schema:
//
//	CREATE TABLE tenant_subscriptions (
//	    tenant_id  TEXT PRIMARY KEY,
//	    plan       TEXT NOT NULL DEFAULT '',
//	    status     TEXT NOT NULL,
//	    period_end TIMESTAMPTZ,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Get(ctx context.Context, tenantID string) (Record, error) {
	var rec Record
	err := r.db.QueryRowContext(ctx, `
		SELECT tenant_id, plan, status, period_end, updated_at
		FROM tenant_subscriptions
		WHERE tenant_id = $1`, tenantID,
	).Scan(&rec.TenantID, &rec.Plan, &rec.Status, &rec.PeriodEnd, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (r *PostgresRepo) Upsert(ctx context.Context, rec Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenant_subscriptions (tenant_id, plan, status, period_end, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			status = EXCLUDED.status,
			period_end = EXCLUDED.period_end,
			updated_at = EXCLUDED.updated_at`,
		rec.TenantID, rec.Plan, rec.Status, rec.PeriodEnd, rec.UpdatedAt,
	)
	return err
}

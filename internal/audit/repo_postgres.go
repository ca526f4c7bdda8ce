package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends events to the auth_audit_events table.
//
// Expected schema:
//
//	CREATE TABLE auth_audit_events (
//	    id              TEXT PRIMARY KEY,
//	    tenant_id       TEXT NOT NULL,
//	    type            TEXT NOT NULL,
//	    actor_user_id   TEXT NOT NULL DEFAULT '',
//	    subject_user_id TEXT NOT NULL DEFAULT '',
//	    team_id         TEXT NOT NULL DEFAULT '',
//	    ip_address      TEXT NOT NULL DEFAULT '',
//	    message         TEXT NOT NULL DEFAULT '',
//	    metadata        JSONB,
//	    created_at      TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX idx_audit_tenant_time ON auth_audit_events (tenant_id, created_at);
//
// Insert-only: no UPDATE or DELETE is ever issued against this table.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auth_audit_events
			(id, tenant_id, type, actor_user_id, subject_user_id, team_id, ip_address, message, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::jsonb, $10)`,
		e.ID, e.TenantID, e.Type, e.ActorUserID, e.SubjectUserID, e.TeamID, e.IPAddress, e.Message, e.Metadata, e.CreatedAt,
	)
	return err
}

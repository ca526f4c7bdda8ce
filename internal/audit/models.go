package audit

import "time"

// Event is an immutable, append-only record of an auth-lifecycle action.
//
// Invariants:
// - Events are never updated or deleted.
// - tenant_id is required for tenancy isolation.
// - Capture is best-effort; session flows must not fail because audit did.
//
// Storage recommendation (Postgres):
// - Table auth_audit_events with an INSERT-only policy.
// - Optional: partition by time for retention.

type Event struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id" db:"tenant_id"`

	// Type indicates which part of the session lifecycle produced the event.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the user performing the action. For impersonation this
	// is the support user, not the impersonated account.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`

	// SubjectUserID is the account acted upon (impersonation target).
	SubjectUserID string `json:"subject_user_id,omitempty" db:"subject_user_id"`

	TeamID    string `json:"team_id,omitempty" db:"team_id"`
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeLogin              EventType = "login"
	EventTypeLogout             EventType = "logout"
	EventTypeRefresh            EventType = "token_refresh"
	EventTypeSwitch             EventType = "workspace_switch"
	EventTypeImpersonationStart EventType = "impersonation_start"
	EventTypeTransitionDenied   EventType = "transition_denied"
)

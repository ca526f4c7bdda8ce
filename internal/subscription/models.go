package subscription

import "time"

// Status is the billing state of a tenant's plan.
type Status string

const (
	StatusActive   Status = "active"
	StatusTrialing Status = "trialing"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
)

// Usable reports whether the tenant may use plan-gated features.
// past_due keeps access off until billing recovers; the dashboard shows the
// banner, this layer blocks the features.
func (s Status) Usable() bool {
	return s == StatusActive || s == StatusTrialing
}

// Record is the locally cached subscription state for a tenant.
//
// Multi-tenant invariant: tenant_id required; one record per tenant.
// The billing backend is the source of truth; this is a projection kept
// fresh by Service.Sync so guards do not hit the backend on every request.
type Record struct {
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	Plan      string    `json:"plan" db:"plan"`
	Status    Status    `json:"status" db:"status"`
	PeriodEnd time.Time `json:"period_end" db:"period_end"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

package audit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records auth-lifecycle audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to tenant users.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.TenantID == "" {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogSession records a plain session event (login, logout, refresh).
func (s *Service) LogSession(ctx context.Context, typ EventType, tenantID, userID, teamID, ip string) error {
	return s.Append(ctx, Event{
		TenantID:    tenantID,
		Type:        typ,
		ActorUserID: userID,
		TeamID:      teamID,
		IPAddress:   ip,
	})
}

// LogImpersonation records the start of a support impersonation.
func (s *Service) LogImpersonation(ctx context.Context, tenantID, actorUserID, subjectUserID, teamID, ip string) error {
	return s.Append(ctx, Event{
		TenantID:      tenantID,
		Type:          EventTypeImpersonationStart,
		ActorUserID:   actorUserID,
		SubjectUserID: subjectUserID,
		TeamID:        teamID,
		IPAddress:     ip,
		Message:       "impersonation started",
	})
}

// LogTransitionDenied records a switch/impersonation rejected by validation.
func (s *Service) LogTransitionDenied(ctx context.Context, tenantID, actorUserID string, reasons []string) error {
	return s.Append(ctx, Event{
		TenantID:    tenantID,
		Type:        EventTypeTransitionDenied,
		ActorUserID: actorUserID,
		Message:     strings.Join(reasons, "; "),
	})
}

package audit

import (
	"context"
	"testing"
)

func TestService_AppendRequiresTenantAndType(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.Append(context.Background(), Event{Type: EventTypeLogin}); err == nil {
		t.Fatalf("expected error")
	}
	if err := svc.Append(context.Background(), Event{TenantID: "t1"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestService_AppendsImmutableEvents(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogSession(context.Background(), EventTypeLogin, "t1", "u1", "ws-1", "1.2.3.4"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event")
	}
	if evs[0].IPAddress != "1.2.3.4" {
		t.Fatalf("expected ip captured")
	}
	if evs[0].Type != EventTypeLogin {
		t.Fatalf("expected login event")
	}
	if evs[0].ID == "" || evs[0].CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp stamped")
	}
}

func TestService_LogImpersonationCapturesBothUsers(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogImpersonation(context.Background(), "t1", "support-1", "u9", "ws-2", ""); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	evs := repo.Events()
	if evs[0].ActorUserID != "support-1" || evs[0].SubjectUserID != "u9" {
		t.Fatalf("expected actor and subject captured: %+v", evs[0])
	}
}

func TestService_LogTransitionDeniedJoinsReasons(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	reasons := []string{"tenant_id not updated correctly. Expected: t3, Got: t2", "team_id not updated correctly. Expected: a, Got: b"}
	if err := svc.LogTransitionDenied(context.Background(), "t1", "u1", reasons); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	evs := repo.Events()
	if evs[0].Message == "" || evs[0].Type != EventTypeTransitionDenied {
		t.Fatalf("expected denial message recorded: %+v", evs[0])
	}
}

package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"geniefy-platform/internal/backend"
)

// scriptedFetcher returns each step in order, repeating the last one.
type scriptedFetcher struct {
	mu    sync.Mutex
	steps []func() (backend.IntegrationStatus, error)
	calls int
}

func (f *scriptedFetcher) FetchIntegrationStatus(ctx context.Context, token, integrationID string) (backend.IntegrationStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.steps) {
		i = len(f.steps) - 1
	}
	f.calls++
	return f.steps[i]()
}

func (f *scriptedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func status(s string) func() (backend.IntegrationStatus, error) {
	return func() (backend.IntegrationStatus, error) {
		return backend.IntegrationStatus{IntegrationID: "hubspot", Status: s}, nil
	}
}

func failure(err error) func() (backend.IntegrationStatus, error) {
	return func() (backend.IntegrationStatus, error) {
		return backend.IntegrationStatus{}, err
	}
}

func TestRunStopsOnTerminalStatus(t *testing.T) {
	f := &scriptedFetcher{steps: []func() (backend.IntegrationStatus, error){
		status("reconnecting"),
		status("reconnecting"),
		status("connected"),
	}}
	p := NewPoller(f, time.Millisecond, nil)

	st := p.Run(context.Background(), "tok", "hubspot")
	if st.Status != StatusConnected {
		t.Fatalf("final status = %q", st.Status)
	}
	if f.callCount() != 3 {
		t.Fatalf("expected 3 checks, got %d", f.callCount())
	}
}

func TestRunSurvivesFetchErrors(t *testing.T) {
	f := &scriptedFetcher{steps: []func() (backend.IntegrationStatus, error){
		status("reconnecting"),
		failure(errors.New("upstream hiccup")),
		failure(errors.New("upstream hiccup")),
		status("disconnected"),
	}}
	p := NewPoller(f, time.Millisecond, nil)

	st := p.Run(context.Background(), "tok", "hubspot")
	if st.Status != StatusDisconnected {
		t.Fatalf("final status = %q", st.Status)
	}
	if st.LastError != "" {
		t.Fatalf("expected error cleared after successful check, got %q", st.LastError)
	}
	if f.callCount() != 4 {
		t.Fatalf("expected the poller to keep going through errors, got %d checks", f.callCount())
	}
}

func TestRunErrorKeepsPreviousStatus(t *testing.T) {
	f := &scriptedFetcher{steps: []func() (backend.IntegrationStatus, error){
		status("reconnecting"),
		failure(errors.New("timeout")),
	}}
	p := NewPoller(f, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan State, 1)
	go func() { done <- p.Run(ctx, "tok", "hubspot") }()

	deadline := time.Now().Add(2 * time.Second)
	for p.State().LastError == "" {
		if time.Now().After(deadline) {
			t.Fatal("poller never recorded the fetch error")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	st := <-done

	if st.Status != StatusReconnecting {
		t.Fatalf("previous status should stand through errors, got %q", st.Status)
	}
	if st.LastError == "" {
		t.Fatal("expected LastError to be recorded")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	f := &scriptedFetcher{steps: []func() (backend.IntegrationStatus, error){
		status("reconnecting"),
	}}
	p := NewPoller(f, time.Hour, nil) // next tick far away; cancel must win

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan State, 1)
	go func() { done <- p.Run(ctx, "tok", "hubspot") }()

	deadline := time.Now().Add(2 * time.Second)
	for f.callCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("poller never ran its first check")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case st := <-done:
		if st.Status != StatusReconnecting {
			t.Fatalf("final status = %q", st.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestDefaultInterval(t *testing.T) {
	p := NewPoller(&scriptedFetcher{steps: []func() (backend.IntegrationStatus, error){status("connected")}}, 0, nil)
	if p.interval != 5*time.Second {
		t.Fatalf("interval = %v", p.interval)
	}
}

func TestTerminal(t *testing.T) {
	if StatusReconnecting.Terminal() {
		t.Fatal("reconnecting must keep polling")
	}
	for _, s := range []Status{StatusConnected, StatusDisconnected, StatusError, Status("unknown")} {
		if !s.Terminal() {
			t.Fatalf("%q should be terminal", s)
		}
	}
}

package call

import (
	"errors"
	"testing"
	"time"

	"callorder/internal/clock"
	"callorder/internal/domain"
)

func newTestManager() *Manager {
	// A very long tick interval keeps the background ticker quiet so
	// tests drive Tick themselves.
	return NewManager(clock.NewFixed(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)), time.Hour, nil)
}

func TestStartAndConnect(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	s, err := m.Start("u1", "b1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.State != domain.CallStateConnecting {
		t.Fatalf("expected connecting, got %s", s.State)
	}

	s, err = m.Connected(s.ID)
	if err != nil {
		t.Fatalf("connected: %v", err)
	}
	if s.State != domain.CallStateActive {
		t.Fatalf("expected active, got %s", s.State)
	}
	if s.StartedAt.IsZero() {
		t.Fatal("expected start timestamp to be set")
	}
}

func TestStartWhileActiveFails(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	s, err := m.Start("u1", "b1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// connecting already blocks a second session
	if _, err := m.Start("u1", "b1"); !errors.Is(err, domain.ErrSessionAlreadyActive) {
		t.Fatalf("expected ErrSessionAlreadyActive, got %v", err)
	}

	if _, err := m.Connected(s.ID); err != nil {
		t.Fatalf("connected: %v", err)
	}
	if _, err := m.Start("u1", "b1"); !errors.Is(err, domain.ErrSessionAlreadyActive) {
		t.Fatalf("expected ErrSessionAlreadyActive while active, got %v", err)
	}

	// a different pair is unaffected
	if _, err := m.Start("u2", "b1"); err != nil {
		t.Fatalf("other consumer should be able to start: %v", err)
	}
}

func TestStartAfterEnd(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	s, _ := m.Start("u1", "b1")
	m.Connected(s.ID)
	if _, err := m.End(s.ID); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := m.Start("u1", "b1"); err != nil {
		t.Fatalf("expected new session after end, got %v", err)
	}
}

func TestTickAdvancesOnlyWhileActive(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	s, _ := m.Start("u1", "b1")

	// connecting: tick is a no-op
	got, err := m.Tick(s.ID)
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if got.Duration != 0 {
		t.Fatalf("expected no duration while connecting, got %s", got.Duration)
	}

	m.Connected(s.ID)
	m.Tick(s.ID)
	got, _ = m.Tick(s.ID)
	if got.Duration != 2*time.Hour {
		t.Fatalf("expected two intervals, got %s", got.Duration)
	}
}

func TestEndFreezesDuration(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	s, _ := m.Start("u1", "b1")
	m.Connected(s.ID)
	m.Tick(s.ID)

	ended, err := m.End(s.ID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	frozen := ended.Duration

	for i := 0; i < 5; i++ {
		m.Tick(s.ID)
	}
	got, _ := m.Get(s.ID)
	if got.Duration != frozen {
		t.Fatalf("duration moved after end: %s != %s", got.Duration, frozen)
	}
	if got.State != domain.CallStateEnded {
		t.Fatalf("expected ended, got %s", got.State)
	}
}

func TestEndIsIdempotent(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	s, _ := m.Start("u1", "b1")
	m.Connected(s.ID)
	first, err := m.End(s.ID)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	second, err := m.End(s.ID)
	if err != nil {
		t.Fatalf("second end must be a no-op: %v", err)
	}
	if second.Duration != first.Duration || second.State != domain.CallStateEnded {
		t.Fatalf("second end changed the session: %+v", second)
	}
}

func TestRedirectAssignsAgent(t *testing.T) {
	m := newTestManager()
	defer m.Close()

	s, _ := m.Start("u1", "b1")
	if _, err := m.Redirect(s.ID, "agent-1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition before connect, got %v", err)
	}

	m.Connected(s.ID)
	got, err := m.Redirect(s.ID, "agent-1")
	if err != nil {
		t.Fatalf("redirect: %v", err)
	}
	if got.AgentID != "agent-1" {
		t.Fatalf("expected agent-1, got %q", got.AgentID)
	}
}

func TestTickerLoopAdvancesAndStops(t *testing.T) {
	m := NewManager(clock.NewSystem(), 5*time.Millisecond, nil)
	defer m.Close()

	s, _ := m.Start("u1", "b1")
	m.Connected(s.ID)

	deadline := time.Now().Add(time.Second)
	for {
		got, _ := m.Get(s.ID)
		if got.Duration > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("ticker loop never advanced the duration")
		}
		time.Sleep(time.Millisecond)
	}

	ended, _ := m.End(s.ID)
	time.Sleep(30 * time.Millisecond)
	got, _ := m.Get(s.ID)
	if got.Duration != ended.Duration {
		t.Fatalf("ticker kept running after end: %s != %s", got.Duration, ended.Duration)
	}
}

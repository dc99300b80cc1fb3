package call

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"callorder/internal/clock"
	"callorder/internal/domain"
	"github.com/google/uuid"
)

// Manager tracks call sessions and their elapsed duration. At most one
// session per (consumer, business) pair may be connecting or active at
// a time. The duration counter is advanced by Tick, either driven by
// the telephony collaborator or by the internal ticker loop that
// Connected starts.
type Manager struct {
	clock     clock.Clock
	tickEvery time.Duration
	logger    *log.Logger

	mu       sync.Mutex
	sessions map[string]*session
	byPair   map[string]string
	closed   bool
}

type session struct {
	domain.CallSession
	cancel context.CancelFunc
}

func NewManager(clk clock.Clock, tickEvery time.Duration, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if tickEvery <= 0 {
		tickEvery = time.Second
	}
	return &Manager{
		clock:     clk,
		tickEvery: tickEvery,
		logger:    logger,
		sessions:  make(map[string]*session),
		byPair:    make(map[string]string),
	}
}

func pairKey(consumerID, businessID string) string {
	return consumerID + "|" + businessID
}

// Start creates a session in the connecting state. It fails with
// domain.ErrSessionAlreadyActive while the pair has a session that is
// connecting or active; an ended session does not block a new one.
func (m *Manager) Start(consumerID, businessID string) (domain.CallSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := pairKey(consumerID, businessID)
	if id, ok := m.byPair[key]; ok {
		if existing := m.sessions[id]; existing != nil && existing.State != domain.CallStateEnded {
			return domain.CallSession{}, domain.ErrSessionAlreadyActive
		}
	}

	s := &session{CallSession: domain.CallSession{
		ID:         uuid.NewString(),
		ConsumerID: consumerID,
		BusinessID: businessID,
		State:      domain.CallStateConnecting,
	}}
	m.sessions[s.ID] = s
	m.byPair[key] = s.ID
	m.logger.Printf("call: start id=%s consumer=%s business=%s", s.ID, consumerID, businessID)
	return s.CallSession, nil
}

// Connected is the telephony accept signal: connecting becomes active,
// the start timestamp is recorded, and the ticker loop begins. Calling
// it in any other state is an invalid transition.
func (m *Manager) Connected(id string) (domain.CallSession, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return domain.CallSession{}, domain.ErrNotFound
	}
	if s.State != domain.CallStateConnecting {
		m.mu.Unlock()
		return domain.CallSession{}, domain.ErrInvalidTransition
	}
	s.State = domain.CallStateActive
	s.StartedAt = m.clock.Now()

	runCtx, cancel := context.WithCancel(context.Background())
	if m.closed {
		cancel()
	} else {
		s.cancel = cancel
		go m.run(runCtx, id)
	}
	snap := s.CallSession
	m.mu.Unlock()

	m.logger.Printf("call: connected id=%s", id)
	return snap, nil
}

// run advances the session until End cancels it.
func (m *Manager) run(ctx context.Context, id string) {
	ticker := time.NewTicker(m.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick(id)
		}
	}
}

// Tick advances the duration counter by one interval. Outside the
// active state it does nothing, so a tick racing End can never move a
// frozen duration.
func (m *Manager) Tick(id string) (domain.CallSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.CallSession{}, domain.ErrNotFound
	}
	if s.State == domain.CallStateActive {
		s.Duration += m.tickEvery
	}
	return s.CallSession, nil
}

// Redirect records the handling agent on an active session.
func (m *Manager) Redirect(id, agentID string) (domain.CallSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.CallSession{}, domain.ErrNotFound
	}
	if s.State != domain.CallStateActive {
		return domain.CallSession{}, domain.ErrInvalidTransition
	}
	s.AgentID = agentID
	return s.CallSession, nil
}

// End freezes the duration and stops the ticker. It is idempotent:
// ending an already-ended session is a no-op, not an error. The state
// flips to ended under the same lock Tick checks, so no late tick can
// resurrect the counter.
func (m *Manager) End(id string) (domain.CallSession, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return domain.CallSession{}, domain.ErrNotFound
	}
	if s.State == domain.CallStateEnded {
		snap := s.CallSession
		m.mu.Unlock()
		return snap, nil
	}
	s.State = domain.CallStateEnded
	cancel := s.cancel
	s.cancel = nil
	snap := s.CallSession
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.logger.Printf("call: end id=%s duration=%s", id, snap.Duration)
	return snap, nil
}

// Get returns a snapshot of the session.
func (m *Manager) Get(id string) (domain.CallSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return domain.CallSession{}, domain.ErrNotFound
	}
	return s.CallSession, nil
}

// Close ends every live session, used on shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	ids := make([]string, 0, len(m.sessions))
	for id, s := range m.sessions {
		if s.State != domain.CallStateEnded {
			ids = append(ids, id)
		}
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.End(id)
	}
}

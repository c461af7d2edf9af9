package tracking

import (
	"sync"

	"backend-pathtracker/internal/pathstore"
	"backend-pathtracker/internal/shared/geo"
)

// Manager owns at most one Session per tracker.
type Manager struct {
	store  pathstore.Store
	events Broadcaster
	opts   []Option

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewManager(store pathstore.Store, events Broadcaster, opts ...Option) *Manager {
	return &Manager{
		store:    store,
		events:   events,
		opts:     opts,
		sessions: map[string]*Session{},
	}
}

// Session returns the tracker's session, creating an idle one on first use.
func (m *Manager) Session(trackerID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}

	s, ok := m.sessions[trackerID]
	if !ok {
		s = NewSession(trackerID, m.store, m.events, m.opts...)
		m.sessions[trackerID] = s
	}
	return s, nil
}

// Deliver routes a coordinate from a shared location provider to the
// tracker's session.
func (m *Manager) Deliver(trackerID string, c geo.Coordinate) error {
	s, err := m.Session(trackerID)
	if err != nil {
		return err
	}
	return s.Deliver(c)
}

func (m *Manager) Store() pathstore.Store { return m.store }

// Close closes every session, saving recordings still in progress.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Close()
		}(s)
	}
	wg.Wait()
}

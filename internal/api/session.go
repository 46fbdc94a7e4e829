package api

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"orderbot-go/internal/policy"
)

// ErrTooManySessions is returned when the store is at capacity.
var ErrTooManySessions = errors.New("session limit reached")

// session is one episode's worth of agents, one per echelon position. mu
// serializes steps on the session: agents mutate their history on every
// decision, and concurrent requests (retries, pipelining) may carry the same
// session id.
type session struct {
	mu     sync.Mutex
	id     uuid.UUID
	agents []*policy.Agent
	period int
}

// sessionStore keeps live sessions in memory, capped at max. Sessions are
// removed when their episode terminates; there is no persistence, matching
// the episode-scoped lifetime of agent state.
type sessionStore struct {
	mu       sync.Mutex
	max      int
	sessions map[uuid.UUID]*session
}

func newSessionStore(max int) *sessionStore {
	return &sessionStore{max: max, sessions: make(map[uuid.UUID]*session)}
}

func (s *sessionStore) create(agents []*policy.Agent) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) >= s.max {
		return nil, ErrTooManySessions
	}
	sess := &session{id: uuid.New(), agents: agents}
	s.sessions[sess.id] = sess
	activeSessions.Set(float64(len(s.sessions)))
	return sess, nil
}

func (s *sessionStore) get(id uuid.UUID) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *sessionStore) remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	activeSessions.Set(float64(len(s.sessions)))
}

func (s *sessionStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

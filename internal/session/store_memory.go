package session

import (
	"context"
	"sync"

	"credit-decision-engine/internal/models"
)

// MemoryStore keeps sessions in process memory behind a RW mutex. It is
// the default store for single-instance deployments and tests; sessions
// vanish on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

// Save stores a copy of the session.
func (s *MemoryStore) Save(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess.Clone()
	return nil
}

// Get returns a copy of the session with the given id.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}

	return sess.Clone(), nil
}

// Delete removes the session with the given id, if present.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

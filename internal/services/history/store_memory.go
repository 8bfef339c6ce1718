package history

import (
	"context"
	"sync"

	"credit-decision-engine/internal/models"
)

// DefaultListLimit caps listings when the caller does not specify a limit.
const DefaultListLimit = 100

// MemoryStore keeps the decision log in process memory. The server falls
// back to it when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.DecisionRecord
}

// NewMemoryStore creates an empty in-memory decision log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds one decision record to the log.
func (s *MemoryStore) Append(ctx context.Context, record *models.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *record
	copied.Reasons = append([]string(nil), record.Reasons...)
	s.records = append(s.records, copied)

	return nil
}

// List returns the most recent decision records, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]models.DecisionRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []models.DecisionRecord
	for i := len(s.records) - 1; i >= 0 && len(records) < limit; i-- {
		records = append(records, s.records[i])
	}

	return records, nil
}

// Count returns the number of decided applications in the log.
func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.records)), nil
}

package memstore

import (
	"sync"

	"ngramlm/internal/domain"
	"ngramlm/internal/port"
)

var _ port.RunStore = (*MemoryStore)(nil)

// MemoryStore keeps runs for the lifetime of the process.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []domain.Run
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) PutRun(run domain.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	return nil
}

func (s *MemoryStore) ListRuns(limit int) ([]domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.runs)
	if limit > 0 && limit < n {
		n = limit
	}
	runs := make([]domain.Run, 0, n)
	for i := len(s.runs) - 1; i >= 0 && len(runs) < n; i-- {
		runs = append(runs, s.runs[i])
	}
	return runs, nil
}

func (s *MemoryStore) ClearRuns() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = nil
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

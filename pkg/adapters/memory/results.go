package memory

import (
	"context"
	"sync"

	"github.com/nexsupply/nexi/pkg/analysis"
	"github.com/nexsupply/nexi/pkg/domain"
)

// ResultStore implements analysis.ResultStore in memory.
type ResultStore struct {
	mu      sync.RWMutex
	records map[string]analysis.Record
}

// NewResultStore creates an empty result store.
func NewResultStore() *ResultStore {
	return &ResultStore{records: make(map[string]analysis.Record)}
}

// SaveResult stores the record under its attempt id, replacing any earlier one.
func (s *ResultStore) SaveResult(ctx context.Context, record analysis.Record) error {
	record.Injected = append([]string(nil), record.Injected...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.AttemptID] = record
	return nil
}

// LoadResult returns domain.ErrResultNotFound for unknown attempts.
func (s *ResultStore) LoadResult(ctx context.Context, attemptID string) (analysis.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[attemptID]
	if !ok {
		return analysis.Record{}, domain.ErrResultNotFound
	}
	record.Injected = append([]string(nil), record.Injected...)
	return record, nil
}

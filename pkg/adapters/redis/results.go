package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nexsupply/nexi/pkg/analysis"
	"github.com/nexsupply/nexi/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// ResultStore implements analysis.ResultStore with one JSON string per attempt.
type ResultStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// ResultOption configures a ResultStore.
type ResultOption func(*ResultStore)

// WithResultTTL expires stored results. Zero keeps them forever.
func WithResultTTL(ttl time.Duration) ResultOption {
	return func(s *ResultStore) {
		s.ttl = ttl
	}
}

// NewResultStore creates a result store over client.
func NewResultStore(client *backend.Client, opts ...ResultOption) *ResultStore {
	s := &ResultStore{
		client: client,
		prefix: DefaultPrefix + "result:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ResultStore) SaveResult(ctx context.Context, record analysis.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+record.AttemptID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save result to redis: %w", err)
	}
	return nil
}

func (s *ResultStore) LoadResult(ctx context.Context, attemptID string) (analysis.Record, error) {
	val, err := s.client.Get(ctx, s.prefix+attemptID).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return analysis.Record{}, domain.ErrResultNotFound
		}
		return analysis.Record{}, fmt.Errorf("failed to get result from redis: %w", err)
	}

	var record analysis.Record
	if err := json.Unmarshal(val, &record); err != nil {
		return analysis.Record{}, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return record, nil
}

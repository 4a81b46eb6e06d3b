package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nexsupply/nexi/pkg/adapters/memory"
	"github.com/nexsupply/nexi/pkg/analysis"
	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunConversationStoreContract(t, store)
}

func TestResultStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewResultStore()

	_, err := store.LoadResult(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrResultNotFound)

	rec := analysis.Record{
		AttemptID: "a1",
		Subject:   analysis.Subject{UserID: "u1"},
		Injected:  []string{analysis.FieldOSINTRiskScore},
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, store.SaveResult(ctx, rec))

	got, err := store.LoadResult(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	got.Injected[0] = "mutated"
	again, _ := store.LoadResult(ctx, "a1")
	assert.Equal(t, analysis.FieldOSINTRiskScore, again.Injected[0])
}

func TestQuotaLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	q := memory.NewQuotaLimiter(2, 1, memory.WithClock(func() time.Time { return now }))

	user := analysis.Subject{UserID: "u1"}
	anon := analysis.Subject{ClientKey: "10.0.0.1"}

	t.Run("user limit", func(t *testing.T) {
		require.NoError(t, q.Consume(ctx, user))
		require.NoError(t, q.Consume(ctx, user))

		err := q.Consume(ctx, user)
		var qerr *domain.QuotaExceededError
		require.ErrorAs(t, err, &qerr)
		assert.Equal(t, domain.QuotaUserDaily, qerr.Reason)
		assert.Equal(t, 2, qerr.Limit)
		assert.Equal(t, domain.KindQuotaExceeded, domain.KindOf(err))
	})

	t.Run("anonymous limit is separate", func(t *testing.T) {
		require.NoError(t, q.Consume(ctx, anon))

		err := q.Consume(ctx, anon)
		var qerr *domain.QuotaExceededError
		require.ErrorAs(t, err, &qerr)
		assert.Equal(t, domain.QuotaAnonymousDaily, qerr.Reason)
		assert.Equal(t, "anon:10.0.0.1", qerr.Subject)
	})

	t.Run("resets next day", func(t *testing.T) {
		now = now.Add(2 * time.Hour)
		assert.NoError(t, q.Consume(ctx, user))
		assert.NoError(t, q.Consume(ctx, anon))
	})

	t.Run("zero disables", func(t *testing.T) {
		open := memory.NewQuotaLimiter(0, 0)
		for i := 0; i < 5; i++ {
			assert.NoError(t, open.Consume(ctx, anon))
		}
	})
}

func TestQuotaLimiter_Concurrent(t *testing.T) {
	ctx := context.Background()
	q := memory.NewQuotaLimiter(10, 0)
	user := analysis.Subject{UserID: "u1"}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if q.Consume(ctx, user) == nil {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}

func TestLimitLog(t *testing.T) {
	log := memory.NewLimitLog()
	ctx := context.Background()

	require.NoError(t, log.RecordLimitHit(ctx, analysis.LimitEvent{AttemptID: "a1", Reason: domain.QuotaUserDaily}))
	require.NoError(t, log.RecordLimitHit(ctx, analysis.LimitEvent{AttemptID: "a2", Reason: domain.QuotaAnonymousDaily}))

	events := log.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "a1", events[0].AttemptID)
	assert.Equal(t, domain.QuotaAnonymousDaily, events[1].Reason)
}

package memory

import (
	"context"
	"sync"
	"time"

	"github.com/nexsupply/nexi/pkg/analysis"
	"github.com/nexsupply/nexi/pkg/domain"
)

// QuotaLimiter implements analysis.QuotaLimiter with per-subject counters
// that reset at UTC midnight. A limit of zero or less disables the check
// for that subject class.
type QuotaLimiter struct {
	userLimit int
	anonLimit int
	now       func() time.Time

	mu     sync.Mutex
	day    string
	counts map[string]int
}

// QuotaOption configures a QuotaLimiter.
type QuotaOption func(*QuotaLimiter)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) QuotaOption {
	return func(q *QuotaLimiter) {
		q.now = now
	}
}

// NewQuotaLimiter creates a limiter allowing userLimit attempts per day to
// identified users and anonLimit to anonymous clients.
func NewQuotaLimiter(userLimit, anonLimit int, opts ...QuotaOption) *QuotaLimiter {
	q := &QuotaLimiter{
		userLimit: userLimit,
		anonLimit: anonLimit,
		now:       time.Now,
		counts:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Consume counts one attempt. Refused attempts are not counted.
func (q *QuotaLimiter) Consume(ctx context.Context, subject analysis.Subject) error {
	limit, reason := q.userLimit, domain.QuotaUserDaily
	if subject.Anonymous() {
		limit, reason = q.anonLimit, domain.QuotaAnonymousDaily
	}
	if limit <= 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if day := q.now().UTC().Format(time.DateOnly); day != q.day {
		q.day = day
		q.counts = make(map[string]int)
	}

	key := subject.Key()
	if q.counts[key] >= limit {
		return &domain.QuotaExceededError{Reason: reason, Subject: key, Limit: limit}
	}
	q.counts[key]++
	return nil
}

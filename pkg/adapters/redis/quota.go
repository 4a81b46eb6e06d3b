package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/nexsupply/nexi/pkg/analysis"
	"github.com/nexsupply/nexi/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// counterTTL outlives the UTC day a counter belongs to.
const counterTTL = 48 * time.Hour

// QuotaLimiter implements analysis.QuotaLimiter with one counter per
// subject and UTC day, shared by every replica. A limit of zero or less
// disables the check for that subject class.
type QuotaLimiter struct {
	client    *backend.Client
	prefix    string
	userLimit int
	anonLimit int
	now       func() time.Time
}

// QuotaOption configures a QuotaLimiter.
type QuotaOption func(*QuotaLimiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) QuotaOption {
	return func(q *QuotaLimiter) {
		q.now = now
	}
}

// NewQuotaLimiter creates a limiter over client.
func NewQuotaLimiter(client *backend.Client, userLimit, anonLimit int, opts ...QuotaOption) *QuotaLimiter {
	q := &QuotaLimiter{
		client:    client,
		prefix:    DefaultPrefix + "quota:",
		userLimit: userLimit,
		anonLimit: anonLimit,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *QuotaLimiter) key(subject analysis.Subject) string {
	return q.prefix + q.now().UTC().Format(time.DateOnly) + ":" + subject.Key()
}

// Consume increments the subject's counter. Refused attempts are taken
// back so the counter reflects attempts that went through.
func (q *QuotaLimiter) Consume(ctx context.Context, subject analysis.Subject) error {
	limit, reason := q.userLimit, domain.QuotaUserDaily
	if subject.Anonymous() {
		limit, reason = q.anonLimit, domain.QuotaAnonymousDaily
	}
	if limit <= 0 {
		return nil
	}

	key := q.key(subject)
	pipe := q.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, counterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to count attempt: %w", err)
	}

	if incr.Val() > int64(limit) {
		if err := q.client.Decr(ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to release refused attempt: %w", err)
		}
		return &domain.QuotaExceededError{Reason: reason, Subject: subject.Key(), Limit: limit}
	}
	return nil
}

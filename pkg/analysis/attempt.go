package analysis

import (
	"context"
	"sync/atomic"
)

// Attempt is the per-attempt state threaded through the request context.
// It carries the limit-hit deduplication flag, so a limit hit is reported
// at most once per attempt and never leaks into other attempts.
type Attempt struct {
	ID      string
	Subject Subject

	limitReported atomic.Bool
}

// NewAttempt creates the state of one analysis attempt.
func NewAttempt(id string, subject Subject) *Attempt {
	return &Attempt{ID: id, Subject: subject}
}

// markLimitReported reports whether this is the first limit hit of the attempt.
func (a *Attempt) markLimitReported() bool {
	return a.limitReported.CompareAndSwap(false, true)
}

type attemptKey struct{}

// WithAttempt returns a context carrying a.
func WithAttempt(ctx context.Context, a *Attempt) context.Context {
	return context.WithValue(ctx, attemptKey{}, a)
}

// AttemptFrom returns the attempt carried by ctx.
func AttemptFrom(ctx context.Context) (*Attempt, bool) {
	a, ok := ctx.Value(attemptKey{}).(*Attempt)
	return a, ok && a != nil
}

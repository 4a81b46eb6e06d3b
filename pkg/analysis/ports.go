package analysis

import (
	"context"
	"time"

	"github.com/nexsupply/nexi/pkg/domain"
)

// Estimator is the external cost and risk estimation service. It receives
// the rendered prompt and returns the raw text payload. Transport and
// service failures should be returned as *domain.UpstreamUnavailableError;
// other errors are wrapped into one.
type Estimator interface {
	Estimate(ctx context.Context, prompt string) (string, error)
}

// EstimatorFunc adapts a function to Estimator.
type EstimatorFunc func(ctx context.Context, prompt string) (string, error)

func (f EstimatorFunc) Estimate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Subject identifies who is charged for an attempt.
type Subject struct {
	// UserID is empty for anonymous callers.
	UserID string `json:"user_id,omitempty"`
	// ClientKey identifies anonymous callers (e.g. the remote address).
	ClientKey string `json:"client_key,omitempty"`
}

// Anonymous reports whether the subject has no user id.
func (s Subject) Anonymous() bool {
	return s.UserID == ""
}

// Key is the quota counter key of the subject.
func (s Subject) Key() string {
	if !s.Anonymous() {
		return "user:" + s.UserID
	}
	return "anon:" + s.ClientKey
}

// QuotaLimiter consumes one unit of the subject's usage allowance. It
// returns *domain.QuotaExceededError when the allowance is exhausted.
type QuotaLimiter interface {
	Consume(ctx context.Context, subject Subject) error
}

// ResultStore persists finished results keyed by attempt id.
type ResultStore interface {
	SaveResult(ctx context.Context, record Record) error
	LoadResult(ctx context.Context, attemptID string) (Record, error)
}

// Record is a stored analysis.
type Record struct {
	AttemptID string                 `json:"attempt_id"`
	Subject   Subject                `json:"subject"`
	Request   domain.AnalysisRequest `json:"request"`
	Result    domain.AnalysisResult  `json:"result"`
	Injected  []string               `json:"injected,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// LimitEvent describes a usage limit hit.
type LimitEvent struct {
	AttemptID string    `json:"attempt_id"`
	Subject   Subject   `json:"subject"`
	Reason    string    `json:"reason"`
	Limit     int       `json:"limit"`
	At        time.Time `json:"at"`
}

// LimitEventSink records limit hits for usage reporting.
type LimitEventSink interface {
	RecordLimitHit(ctx context.Context, event LimitEvent) error
}

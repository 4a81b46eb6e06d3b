package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nexsupply/nexi/internal/logging"
	"github.com/nexsupply/nexi/pkg/compliance"
	"github.com/nexsupply/nexi/pkg/domain"
)

// Pipeline runs analysis attempts. It holds no per-attempt state and is
// safe for concurrent use.
type Pipeline struct {
	gate      *compliance.Gate
	estimator Estimator
	quota     QuotaLimiter
	results   ResultStore
	limits    LimitEventSink
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithQuota checks usage limits before the external call.
func WithQuota(q QuotaLimiter) Option {
	return func(p *Pipeline) {
		p.quota = q
	}
}

// WithResults persists finished results.
func WithResults(s ResultStore) Option {
	return func(p *Pipeline) {
		p.results = s
	}
}

// WithLimitSink records usage limit hits.
func WithLimitSink(s LimitEventSink) Option {
	return func(p *Pipeline) {
		p.limits = s
	}
}

// WithMetrics records attempt outcomes and injections.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a pipeline. gate is mandatory; pass a gate over an
// empty index to run without a blacklist.
func NewPipeline(gate *compliance.Gate, estimator Estimator, opts ...Option) *Pipeline {
	if gate == nil {
		gate = compliance.NewGate(nil)
	}
	p := &Pipeline{
		gate:      gate,
		estimator: estimator,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one attempt: gate, quota, a single estimator call,
// validation and fallback injection, then best-effort persistence.
//
// The attempt state is taken from ctx (see WithAttempt) or created for
// attemptID. Errors are the typed errors of package domain; nothing is
// retried.
func (p *Pipeline) Run(ctx context.Context, attemptID string, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	attempt, ok := AttemptFrom(ctx)
	if !ok {
		attempt = NewAttempt(attemptID, Subject{})
		ctx = WithAttempt(ctx, attempt)
	}
	if attempt.ID == "" {
		attempt.ID = attemptID
	}
	log := p.logger.With("attempt_id", attempt.ID)

	result, injected, err := p.run(ctx, attempt, req, log)
	p.observe(err, injected)
	if err != nil {
		log.Info("analysis failed", "kind", domain.KindOf(err), "err", err)
		return domain.AnalysisResult{}, err
	}

	if p.results != nil {
		rec := Record{
			AttemptID: attempt.ID,
			Subject:   attempt.Subject,
			Request:   req,
			Result:    result,
			Injected:  injected,
			CreatedAt: p.now().UTC(),
		}
		if err := p.results.SaveResult(ctx, rec); err != nil {
			log.Warn("failed to persist analysis", "err", err)
		}
	}
	log.Info("analysis completed", "injected", injected)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, attempt *Attempt, req domain.AnalysisRequest, log *slog.Logger) (domain.AnalysisResult, []string, error) {
	if d := p.gate.Check(req.Reference); d.Blocked {
		return domain.AnalysisResult{}, nil, d.Err()
	}

	if p.quota != nil {
		if err := p.quota.Consume(ctx, attempt.Subject); err != nil {
			var qerr *domain.QuotaExceededError
			if errors.As(err, &qerr) {
				p.ReportLimitHit(ctx, qerr)
				return domain.AnalysisResult{}, nil, err
			}
			// A broken quota backend must not take the analysis down.
			log.Warn("quota check failed, allowing attempt", "err", err)
		}
	}

	if p.estimator == nil {
		return domain.AnalysisResult{}, nil, &domain.UpstreamUnavailableError{Err: errors.New("no estimator configured")}
	}

	start := p.now()
	raw, err := p.estimator.Estimate(ctx, BuildPrompt(req))
	if p.metrics != nil {
		p.metrics.EstimateSeconds.Observe(p.now().Sub(start).Seconds())
	}
	if err != nil {
		var uerr *domain.UpstreamUnavailableError
		if !errors.As(err, &uerr) {
			err = &domain.UpstreamUnavailableError{Err: err}
		}
		return domain.AnalysisResult{}, nil, err
	}

	parsed, dropped, err := ValidateBlocks(raw)
	if err != nil {
		return domain.AnalysisResult{}, nil, err
	}
	if len(dropped) > 0 {
		log.Warn("dropped optional blocks with unexpected shape", "blocks", dropped)
	}
	result, injected := Inject(parsed, req)
	return result, injected, nil
}

// ReportLimitHit records a limit hit with the sink at most once per
// attempt carried by ctx. Without an attempt the event is recorded.
func (p *Pipeline) ReportLimitHit(ctx context.Context, qerr *domain.QuotaExceededError) {
	attempt, ok := AttemptFrom(ctx)
	if ok && !attempt.markLimitReported() {
		return
	}
	if p.limits == nil {
		return
	}
	ev := LimitEvent{Reason: qerr.Reason, Limit: qerr.Limit, At: p.now().UTC()}
	if ok {
		ev.AttemptID, ev.Subject = attempt.ID, attempt.Subject
	}
	if err := p.limits.RecordLimitHit(ctx, ev); err != nil {
		p.logger.Warn("failed to record limit hit", "reason", qerr.Reason, "err", err)
	}
}

func (p *Pipeline) observe(err error, injected []string) {
	if p.metrics == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = string(domain.KindOf(err))
	}
	p.metrics.Attempts.WithLabelValues(outcome).Inc()
	for _, f := range injected {
		p.metrics.Injections.WithLabelValues(f).Inc()
	}
}

// String describes the pipeline configuration for startup logs.
func (p *Pipeline) String() string {
	return fmt.Sprintf("pipeline(quota=%t results=%t limits=%t metrics=%t)", p.quota != nil, p.results != nil, p.limits != nil, p.metrics != nil)
}

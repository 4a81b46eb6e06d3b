package nexi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/nexsupply/nexi/internal/logging"
	"github.com/nexsupply/nexi/internal/runtime"
	"github.com/nexsupply/nexi/pkg/adapters/memory"
	"github.com/nexsupply/nexi/pkg/analysis"
	"github.com/nexsupply/nexi/pkg/compliance"
	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/nexsupply/nexi/pkg/flow"
	"github.com/nexsupply/nexi/pkg/intake"
	"github.com/nexsupply/nexi/pkg/ports"
	"github.com/nexsupply/nexi/pkg/session"
)

// Service is the high-level entry point. It wires the question graph, the
// conversation engine, the intake mapper and the analysis pipeline, and
// keeps conversations in a store behind the session manager.
type Service struct {
	graph    *flow.Graph
	engine   *runtime.Engine
	mapper   *intake.Mapper
	gate     *compliance.Gate
	pipeline *analysis.Pipeline
	sessions *session.Manager
	results  analysis.ResultStore
	logger   *slog.Logger
}

type config struct {
	graph         *flow.Graph
	blacklist     []domain.BlacklistEntry
	estimator     analysis.Estimator
	store         ports.ConversationStore
	locker        ports.DistributedLocker
	quota         analysis.QuotaLimiter
	results       analysis.ResultStore
	limits        analysis.LimitEventSink
	metrics       *analysis.Metrics
	defaultOrigin string
	maxInputSize  int
	logger        *slog.Logger
}

// Option defines a functional option for configuring the Service.
type Option func(*config)

// WithGraph replaces the embedded sourcing graph.
func WithGraph(g *flow.Graph) Option {
	return func(c *config) {
		c.graph = g
	}
}

// WithBlacklist sets the supplier blacklist checked by the compliance gate.
func WithBlacklist(entries []domain.BlacklistEntry) Option {
	return func(c *config) {
		c.blacklist = entries
	}
}

// WithEstimator sets the external estimation service.
func WithEstimator(e analysis.Estimator) Option {
	return func(c *config) {
		c.estimator = e
	}
}

// WithConversationStore replaces the in-memory conversation store.
func WithConversationStore(s ports.ConversationStore) Option {
	return func(c *config) {
		c.store = s
	}
}

// WithLocker serializes turns across replicas.
func WithLocker(l ports.DistributedLocker) Option {
	return func(c *config) {
		c.locker = l
	}
}

// WithQuota enables usage limits.
func WithQuota(q analysis.QuotaLimiter) Option {
	return func(c *config) {
		c.quota = q
	}
}

// WithResults replaces the in-memory result store.
func WithResults(s analysis.ResultStore) Option {
	return func(c *config) {
		c.results = s
	}
}

// WithLimitSink records usage limit hits.
func WithLimitSink(s analysis.LimitEventSink) Option {
	return func(c *config) {
		c.limits = s
	}
}

// WithMetrics records pipeline metrics.
func WithMetrics(m *analysis.Metrics) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithDefaultOrigin overrides intake.DefaultOrigin.
func WithDefaultOrigin(origin string) Option {
	return func(c *config) {
		c.defaultOrigin = origin
	}
}

// WithMaxInputSize caps the size of a single answer.
func WithMaxInputSize(n int) Option {
	return func(c *config) {
		c.maxInputSize = n
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// New wires a Service. Without options it runs the embedded sourcing
// graph, an empty blacklist, in-memory stores and no estimator (analysis
// then fails with upstream_unavailable).
func New(opts ...Option) (*Service, error) {
	c := &config{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	if c.graph == nil {
		c.graph = flow.Sourcing()
	}
	if err := flow.Validate(c.graph); err != nil {
		return nil, fmt.Errorf("invalid question graph: %w", err)
	}
	if c.store == nil {
		c.store = memory.NewStore()
	}
	if c.results == nil {
		c.results = memory.NewResultStore()
	}

	engineOpts := []runtime.Option{runtime.WithLogger(c.logger)}
	if c.maxInputSize > 0 {
		engineOpts = append(engineOpts, runtime.WithMaxInputSize(c.maxInputSize))
	}
	mapperOpts := []intake.Option{intake.WithLogger(c.logger)}
	if c.defaultOrigin != "" {
		mapperOpts = append(mapperOpts, intake.WithDefaultOrigin(c.defaultOrigin))
	}
	sessionOpts := []session.Option{session.WithLogger(c.logger)}
	if c.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(c.locker))
	}

	gate := compliance.NewGate(compliance.NewIndex(c.blacklist), compliance.WithLogger(c.logger))
	pipelineOpts := []analysis.Option{
		analysis.WithLogger(c.logger),
		analysis.WithResults(c.results),
	}
	if c.quota != nil {
		pipelineOpts = append(pipelineOpts, analysis.WithQuota(c.quota))
	}
	if c.limits != nil {
		pipelineOpts = append(pipelineOpts, analysis.WithLimitSink(c.limits))
	}
	if c.metrics != nil {
		pipelineOpts = append(pipelineOpts, analysis.WithMetrics(c.metrics))
	}

	return &Service{
		graph:    c.graph,
		engine:   runtime.NewEngine(c.graph, engineOpts...),
		mapper:   intake.NewMapper(c.graph, mapperOpts...),
		gate:     gate,
		pipeline: analysis.NewPipeline(gate, c.estimator, pipelineOpts...),
		sessions: session.NewManager(c.store, sessionOpts...),
		results:  c.results,
		logger:   c.logger,
	}, nil
}

// Graph returns the question graph.
func (s *Service) Graph() *flow.Graph { return s.graph }

// Engine returns the conversation engine.
func (s *Service) Engine() *runtime.Engine { return s.engine }

// Mapper returns the intake mapper.
func (s *Service) Mapper() *intake.Mapper { return s.mapper }

// Pipeline returns the analysis pipeline.
func (s *Service) Pipeline() *analysis.Pipeline { return s.pipeline }

// Sessions returns the conversation session manager.
func (s *Service) Sessions() *session.Manager { return s.sessions }

// StartConversation creates and stores a conversation. ext may be nil.
func (s *Service) StartConversation(ctx context.Context, ext *domain.ExternalContext) (*domain.ConversationState, runtime.Prompt, error) {
	id, err := NewID()
	if err != nil {
		return nil, runtime.Prompt{}, err
	}
	state, err := s.sessions.LoadOrStart(ctx, id, func() (*domain.ConversationState, error) {
		return s.engine.Start(id, ext)
	})
	if err != nil {
		return nil, runtime.Prompt{}, err
	}
	p, err := s.engine.Prompt(state)
	if err != nil {
		return nil, runtime.Prompt{}, err
	}
	s.logger.Debug("conversation started", "conversation_id", id)
	return state, p, nil
}

// Conversation loads a stored conversation.
func (s *Service) Conversation(ctx context.Context, id string) (*domain.ConversationState, error) {
	return s.sessions.Load(ctx, id)
}

// Answer advances a stored conversation with raw. A rejected answer leaves
// the stored state untouched.
func (s *Service) Answer(ctx context.Context, id string, raw any) (*domain.ConversationState, runtime.Step, error) {
	var step runtime.Step
	state, err := s.sessions.Update(ctx, id, func(current *domain.ConversationState) (*domain.ConversationState, error) {
		next, st, err := s.engine.Advance(current, raw)
		if err != nil {
			return nil, err
		}
		step = st
		return next, nil
	})
	return state, step, err
}

// Revise changes an earlier answer of a conversation waiting at review.
func (s *Service) Revise(ctx context.Context, id, nodeID string, raw any) (*domain.ConversationState, error) {
	return s.sessions.Update(ctx, id, func(current *domain.ConversationState) (*domain.ConversationState, error) {
		return s.engine.Revise(current, nodeID, raw)
	})
}

// Summary returns the recap of a stored conversation.
func (s *Service) Summary(ctx context.Context, id string) (runtime.Summary, error) {
	state, err := s.sessions.Load(ctx, id)
	if err != nil {
		return runtime.Summary{}, err
	}
	return s.engine.Summary(state), nil
}

// DeleteConversation removes a stored conversation.
func (s *Service) DeleteConversation(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// Analyze runs one analysis attempt for req. The attempt (id and subject)
// is threaded through ctx so limit hits are reported once per attempt.
func (s *Service) Analyze(ctx context.Context, attempt *analysis.Attempt, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	ctx = analysis.WithAttempt(ctx, attempt)
	return s.pipeline.Run(ctx, attempt.ID, req)
}

// AnalyzeConversation maps a stored conversation to a request and runs an
// attempt for it.
func (s *Service) AnalyzeConversation(ctx context.Context, id string, attempt *analysis.Attempt) (domain.AnalysisRequest, domain.AnalysisResult, error) {
	state, err := s.sessions.Load(ctx, id)
	if err != nil {
		return domain.AnalysisRequest{}, domain.AnalysisResult{}, err
	}
	req, err := s.mapper.ToRequest(state, state.External)
	if err != nil {
		return domain.AnalysisRequest{}, domain.AnalysisResult{}, err
	}
	result, err := s.Analyze(ctx, attempt, req)
	return req, result, err
}

// RequestFromAnswers maps a raw answer map (node id to value) and optional
// onboarding context to a request, as sent by one-shot clients.
func (s *Service) RequestFromAnswers(answers map[string]any, ext *domain.ExternalContext) (domain.AnalysisRequest, error) {
	state, err := intake.StateFromRaw(s.graph, answers)
	if err != nil {
		return domain.AnalysisRequest{}, err
	}
	return s.mapper.ToRequest(state, ext)
}

// Result loads a stored analysis by attempt id.
func (s *Service) Result(ctx context.Context, attemptID string) (analysis.Record, error) {
	return s.results.LoadResult(ctx, attemptID)
}

// NewID returns a random 128-bit identifier in hex.
func NewID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

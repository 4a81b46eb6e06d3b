// Package gemini implements the analysis Estimator over the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nexsupply/nexi/internal/logging"
	"github.com/nexsupply/nexi/pkg/domain"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the model the estimation prompt is tuned for.
	DefaultModel = "gemini-2.5-pro"
	// DefaultTemperature keeps estimates stable between attempts.
	DefaultTemperature = 0.2
	// DefaultTimeout bounds a single estimation call.
	DefaultTimeout = 90 * time.Second
)

// ErrMissingAPIKey is returned by New when no key is configured.
var ErrMissingAPIKey = errors.New("gemini: api key is not configured")

// generator is the slice of genai.Models the estimator calls.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Estimator sends the analysis prompt to Gemini and returns the raw JSON
// text. It performs exactly one call per Estimate.
type Estimator struct {
	models      generator
	model       string
	temperature float32
	timeout     time.Duration
	baseURL     string
	logger      *slog.Logger
}

// Option configures the Estimator.
type Option func(*Estimator)

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(e *Estimator) {
		e.model = model
	}
}

// WithTemperature overrides DefaultTemperature.
func WithTemperature(t float32) Option {
	return func(e *Estimator) {
		e.temperature = t
	}
}

// WithTimeout overrides DefaultTimeout. Zero disables the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(e *Estimator) {
		e.timeout = d
	}
}

// WithBaseURL points the client at a proxy or a test server.
func WithBaseURL(url string) Option {
	return func(e *Estimator) {
		e.baseURL = url
	}
}

// WithLogger sets the logger used for call diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Estimator) {
		e.logger = logger
	}
}

// New creates an Estimator backed by a Gemini API client.
func New(ctx context.Context, apiKey string, opts ...Option) (*Estimator, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	e := newEstimator(nil, opts...)

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if e.baseURL != "" {
		cfg.HTTPOptions.BaseURL = e.baseURL
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	e.models = client.Models
	return e, nil
}

func newEstimator(models generator, opts ...Option) *Estimator {
	e := &Estimator{
		models:      models,
		model:       DefaultModel,
		temperature: DefaultTemperature,
		timeout:     DefaultTimeout,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate implements analysis.Estimator. Every failure of the call itself
// is reported as *domain.UpstreamUnavailableError; judging the payload is
// left to the response validator.
func (e *Estimator) Estimate(ctx context.Context, prompt string) (string, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr(e.temperature),
	}

	start := time.Now()
	resp, err := e.models.GenerateContent(ctx, e.model, genai.Text(prompt), cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			e.logger.Warn("gemini call failed", "model", e.model, "code", apiErr.Code, "status", apiErr.Status)
		} else {
			e.logger.Warn("gemini call failed", "model", e.model, "err", err)
		}
		return "", &domain.UpstreamUnavailableError{Err: err}
	}
	if resp == nil {
		return "", &domain.UpstreamUnavailableError{Err: errors.New("gemini returned no response")}
	}

	text := resp.Text()
	e.logger.Debug("gemini call finished", "model", e.model, "duration", time.Since(start), "bytes", len(text))
	return text, nil
}

// Model returns the configured model name.
func (e *Estimator) Model() string {
	return e.model
}

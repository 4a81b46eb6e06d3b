package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	calls  int
	model  string
	prompt string
	config *genai.GenerateContentConfig
	resp   *genai.GenerateContentResponse
	err    error
	block  bool
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.resp, f.err
}

func textResponse(s string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(s, genai.RoleModel)}},
	}
}

func TestEstimate(t *testing.T) {
	fake := &fakeModels{resp: textResponse(`{"financials":{}}`)}
	est := newEstimator(fake, WithModel("gemini-test"), WithTemperature(0.5))

	out, err := est.Estimate(context.Background(), "PROJECT CONTEXT")
	require.NoError(t, err)
	assert.Equal(t, `{"financials":{}}`, out)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "gemini-test", fake.model)
	assert.Equal(t, "PROJECT CONTEXT", fake.prompt)
	assert.Equal(t, "application/json", fake.config.ResponseMIMEType)
	require.NotNil(t, fake.config.Temperature)
	assert.InDelta(t, 0.5, *fake.config.Temperature, 1e-6)
}

func TestEstimate_Defaults(t *testing.T) {
	est := newEstimator(&fakeModels{})
	assert.Equal(t, DefaultModel, est.Model())
	assert.InDelta(t, DefaultTemperature, est.temperature, 1e-6)
}

func TestEstimate_Failures(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		fake := &fakeModels{err: genai.APIError{Code: 503, Status: "UNAVAILABLE"}}
		_, err := newEstimator(fake).Estimate(context.Background(), "p")

		var up *domain.UpstreamUnavailableError
		require.ErrorAs(t, err, &up)
		assert.Equal(t, domain.KindUpstreamUnavailable, domain.KindOf(err))
		assert.Equal(t, 1, fake.calls, "no retry")
	})

	t.Run("transport error", func(t *testing.T) {
		boom := errors.New("connection reset")
		_, err := newEstimator(&fakeModels{err: boom}).Estimate(context.Background(), "p")
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, domain.KindUpstreamUnavailable, domain.KindOf(err))
	})

	t.Run("timeout", func(t *testing.T) {
		fake := &fakeModels{block: true}
		_, err := newEstimator(fake, WithTimeout(20*time.Millisecond)).Estimate(context.Background(), "p")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, domain.KindUpstreamUnavailable, domain.KindOf(err))
	})

	t.Run("nil response", func(t *testing.T) {
		_, err := newEstimator(&fakeModels{}).Estimate(context.Background(), "p")
		assert.Equal(t, domain.KindUpstreamUnavailable, domain.KindOf(err))
	})

	t.Run("empty candidates pass through", func(t *testing.T) {
		out, err := newEstimator(&fakeModels{resp: &genai.GenerateContentResponse{}}).Estimate(context.Background(), "p")
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

package nexi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/nexsupply/nexi"
	"github.com/nexsupply/nexi/pkg/adapters/memory"
	"github.com/nexsupply/nexi/pkg/analysis"
	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const estimate = `{
  "financials": {"estimated_landed_cost": 4.2, "estimated_margin_pct": 38.5, "net_profit": 6.1},
  "cost_breakdown": {"factory_exw": 2.1, "shipping": 0.9, "duty": 0.35},
  "risks": {"duty": {"level": "Low", "reason": "HS 3926.90"}},
  "osint_risk_score": 42,
  "executive_summary": "Viable."
}`

var intake = []any{
	"silicone phone case",
	"https://acme-plastics.en.alibaba.com/product/1.html",
	"",
	"amazon_fba",
	"US",
	"not sure",
	"silicone",
	"S",
	"skip",
	"FOB",
	"3",
	"1,000",
	"flexible",
	"fda",
}

func newService(t *testing.T, est analysis.EstimatorFunc, opts ...nexi.Option) *nexi.Service {
	t.Helper()
	base := []nexi.Option{nexi.WithEstimator(est)}
	svc, err := nexi.New(append(base, opts...)...)
	require.NoError(t, err)
	return svc
}

func TestService_ConversationToAnalysis(t *testing.T) {
	ctx := context.Background()
	var prompts int
	svc := newService(t, func(context.Context, string) (string, error) {
		prompts++
		return estimate, nil
	})

	state, prompt, err := svc.StartConversation(ctx, &domain.ExternalContext{ProjectName: "Q3 launch"})
	require.NoError(t, err)
	assert.NotEmpty(t, state.ID)
	assert.Equal(t, "product", prompt.NodeID)

	for _, in := range intake {
		_, _, err = svc.Answer(ctx, state.ID, in)
		require.NoError(t, err)
	}

	stored, err := svc.Conversation(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, "review", stored.CurrentNodeID)
	require.NotNil(t, stored.External)
	assert.Equal(t, "Q3 launch", stored.External.ProjectName)

	summary, err := svc.Summary(ctx, state.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, summary.Items)

	attempt := analysis.NewAttempt("a1", analysis.Subject{UserID: "u1"})
	req, result, err := svc.AnalyzeConversation(ctx, state.ID, attempt)
	require.NoError(t, err)
	assert.Equal(t, "silicone phone case", req.ProductDescription)
	assert.Equal(t, "Q3 launch", req.ProjectName)
	assert.Equal(t, 1, prompts)
	assert.Equal(t, "Viable.", result.ExecutiveSummary)

	rec, err := svc.Result(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "u1", rec.Subject.UserID)
}

func TestService_RejectedAnswerKeepsState(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil)

	state, _, err := svc.StartConversation(ctx, nil)
	require.NoError(t, err)

	_, _, err = svc.Answer(ctx, state.ID, "")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "product", verr.NodeID)

	stored, err := svc.Conversation(ctx, state.ID)
	require.NoError(t, err)
	assert.Equal(t, "product", stored.CurrentNodeID)
	assert.Empty(t, stored.Answers)
}

func TestService_Blacklisted(t *testing.T) {
	ctx := context.Background()
	called := false
	svc := newService(t, func(context.Context, string) (string, error) {
		called = true
		return estimate, nil
	}, nexi.WithBlacklist([]domain.BlacklistEntry{{SupplierID: "S-1", CompanyName: "Acme Plastics", Note: "fraud"}}))

	req, err := svc.RequestFromAnswers(map[string]any{
		"product":   "phone case",
		"reference": "https://acme-plastics.en.alibaba.com/product/1.html",
		"channel":   "amazon_fba",
		"market":    "US",
	}, nil)
	require.NoError(t, err)

	_, err = svc.Analyze(ctx, analysis.NewAttempt("a2", analysis.Subject{ClientKey: "1.2.3.4"}), req)
	assert.Equal(t, domain.KindComplianceBlock, domain.KindOf(err))
	assert.False(t, called)
}

func TestService_QuotaAndLimitLog(t *testing.T) {
	ctx := context.Background()
	limits := memory.NewLimitLog()
	svc := newService(t, func(context.Context, string) (string, error) {
		return estimate, nil
	}, nexi.WithQuota(memory.NewQuotaLimiter(5, 1)), nexi.WithLimitSink(limits))

	req, err := svc.RequestFromAnswers(map[string]any{"product": "mug", "channel": "shopify_dtc", "market": "EU"}, nil)
	require.NoError(t, err)

	subject := analysis.Subject{ClientKey: "10.0.0.1"}
	_, err = svc.Analyze(ctx, analysis.NewAttempt("a1", subject), req)
	require.NoError(t, err)

	_, err = svc.Analyze(ctx, analysis.NewAttempt("a2", subject), req)
	var qerr *domain.QuotaExceededError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, domain.QuotaAnonymousDaily, qerr.Reason)
	require.Len(t, limits.Events(), 1)
	assert.Equal(t, "a2", limits.Events()[0].AttemptID)
}

func TestService_NoEstimator(t *testing.T) {
	svc, err := nexi.New()
	require.NoError(t, err)

	req, err := svc.RequestFromAnswers(map[string]any{"product": "mug", "channel": "shopify_dtc", "market": "EU"}, nil)
	require.NoError(t, err)
	_, err = svc.Analyze(context.Background(), analysis.NewAttempt("a1", analysis.Subject{}), req)
	assert.Equal(t, domain.KindUpstreamUnavailable, domain.KindOf(err))
}

func TestService_UnknownConversation(t *testing.T) {
	svc := newService(t, nil)
	_, err := svc.Conversation(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrConversationNotFound))

	_, _, err = svc.Answer(context.Background(), "missing", "x")
	assert.ErrorIs(t, err, domain.ErrConversationNotFound)
}

func TestNewID(t *testing.T) {
	a, err := nexi.NewID()
	require.NoError(t, err)
	b, err := nexi.NewID()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

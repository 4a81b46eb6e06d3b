package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nexsupply/nexi"
	"github.com/nexsupply/nexi/pkg/adapters/memory"
	"github.com/nexsupply/nexi/pkg/analysis"
	"github.com/nexsupply/nexi/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
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

var blacklist = []domain.BlacklistEntry{
	{SupplierID: "S000101", CompanyName: "Acme", RiskScore: 92, Note: "Counterfeit certificates"},
}

type testServer struct {
	handler http.Handler
	reg     *prometheus.Registry
	calls   int
}

func newTestServer(t *testing.T, est analysis.EstimatorFunc, opts ...nexi.Option) *testServer {
	t.Helper()
	ts := &testServer{reg: prometheus.NewRegistry()}
	if est == nil {
		est = func(context.Context, string) (string, error) { return estimate, nil }
	}
	counting := func(ctx context.Context, prompt string) (string, error) {
		ts.calls++
		return est(ctx, prompt)
	}

	base := []nexi.Option{
		nexi.WithEstimator(analysis.EstimatorFunc(counting)),
		nexi.WithBlacklist(blacklist),
		nexi.WithMetrics(analysis.NewMetrics(ts.reg)),
	}
	svc, err := nexi.New(append(base, opts...)...)
	require.NoError(t, err)

	ts.handler, err = NewHandler(svc, WithGatherer(ts.reg))
	require.NoError(t, err)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func cleanAnswers() map[string]any {
	return map[string]any{
		"product":   "silicone phone case",
		"reference": "SKIPPED",
		"channel":   "amazon_fba",
		"market":    "US",
		"volume":    1000,
	}
}

func TestAnalyze_CleanPass(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodPost, "/analyze", map[string]any{"attempt_id": "a1", "answers": cleanAnswers()}, UserHeader, "u1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "a1", body["attempt_id"])
	result := body["analysis"].(map[string]any)
	assert.Equal(t, "Viable.", result["executive_summary"])
	assert.Equal(t, 1, ts.calls)

	w = ts.do(t, http.MethodGet, "/analyses/a1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rec := decodeBody(t, w)
	assert.Equal(t, "a1", rec["attempt_id"])
	assert.Equal(t, "u1", rec["subject"].(map[string]any)["user_id"])
}

func TestAnalyze_Blacklisted(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodPost, "/analyze", map[string]any{
		"answers":   cleanAnswers(),
		"reference": "https://example.com/supplier/acme",
	})
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "compliance_block", body["error"])
	hit := body["blacklist"].(map[string]any)
	assert.Equal(t, "S000101", hit["supplier_id"])
	assert.Equal(t, "Acme", hit["company_name"])
	assert.Equal(t, float64(92), hit["risk_score"])
	assert.Equal(t, "Counterfeit certificates", hit["note"])
	assert.Zero(t, ts.calls, "blocked attempts never reach the estimator")
}

func TestAnalyze_QuotaExceeded(t *testing.T) {
	ts := newTestServer(t, nil, nexi.WithQuota(memory.NewQuotaLimiter(10, 1)))
	payload := map[string]any{"answers": cleanAnswers()}

	w := ts.do(t, http.MethodPost, "/analyze", payload, "X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/analyze", payload, "X-Forwarded-For", "203.0.113.7")
	require.Equal(t, http.StatusTooManyRequests, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "quota_exceeded", body["error"])
	assert.Equal(t, domain.QuotaAnonymousDaily, body["reason"])
	assert.Equal(t, 1, ts.calls)

	w = ts.do(t, http.MethodPost, "/analyze", payload, "X-Forwarded-For", "198.51.100.2")
	assert.Equal(t, http.StatusOK, w.Code, "other clients keep their own allowance")
}

func TestAnalyze_PipelineFailures(t *testing.T) {
	tests := []struct {
		name   string
		est    analysis.EstimatorFunc
		status int
		kind   string
	}{
		{
			name:   "malformed",
			est:    func(context.Context, string) (string, error) { return "not json", nil },
			status: http.StatusBadGateway,
			kind:   "malformed_response",
		},
		{
			name:   "missing group",
			est:    func(context.Context, string) (string, error) { return `{"financials": {}}`, nil },
			status: http.StatusBadGateway,
			kind:   "malformed_response",
		},
		{
			name:   "upstream",
			est:    func(context.Context, string) (string, error) { return "", errors.New("connection refused") },
			status: http.StatusServiceUnavailable,
			kind:   "upstream_unavailable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.est)
			w := ts.do(t, http.MethodPost, "/analyze", map[string]any{"answers": cleanAnswers()})
			require.Equal(t, tt.status, w.Code, w.Body.String())
			body := decodeBody(t, w)
			assert.Equal(t, false, body["ok"])
			assert.Equal(t, tt.kind, body["error"])
			assert.NotEmpty(t, body["detail"])
			assert.NotContains(t, body, "analysis")
		})
	}
}

func TestAnalyze_Malformed_IncludesRaw(t *testing.T) {
	ts := newTestServer(t, func(context.Context, string) (string, error) { return "{oops", nil })
	w := ts.do(t, http.MethodPost, "/analyze", map[string]any{"answers": cleanAnswers()})
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "{oops", decodeBody(t, w)["raw"])
}

func TestAnalyze_Validation(t *testing.T) {
	ts := newTestServer(t, nil)

	tests := []struct {
		name string
		body any
	}{
		{"empty", map[string]any{}},
		{"no product", map[string]any{"answers": map[string]any{"channel": "amazon_fba"}}},
		{"answers not an object", map[string]any{"answers": "product=mug"}},
		{"user context not strings", map[string]any{"user_context": map[string]any{"product_info": 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/analyze", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, "validation_error", decodeBody(t, w)["error"])
		})
	}
	assert.Zero(t, ts.calls)
}

func TestAnalyze_UserContext(t *testing.T) {
	var prompt string
	ts := newTestServer(t, func(_ context.Context, p string) (string, error) {
		prompt = p
		return estimate, nil
	})

	w := ts.do(t, http.MethodPost, "/analyze", map[string]any{"user_context": map[string]any{
		"product_info":  "bamboo cutting board",
		"sales_channel": "shopify_dtc",
		"market":        "EU",
		"product_specs": "Bamboo, M",
		"volume":        "5000",
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, prompt, "bamboo cutting board")
}

func TestConversation_Lifecycle(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodPost, "/conversations", map[string]any{
		"external_context": map[string]any{"project_name": "Q3 launch", "main_channel": "amazon"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	started := decodeBody(t, w)
	conv := started["conversation"].(map[string]any)
	id := conv["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "product", started["prompt"].(map[string]any)["node_id"])

	// Rejected answers do not move the conversation.
	w = ts.do(t, http.MethodPost, "/conversations/"+id+"/answers", map[string]any{"answer": ""})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Equal(t, "product", decodeBody(t, w)["node_id"])

	inputs := []any{
		"silicone phone case", "skip", "", nil, "US", "not sure", "silicone",
		"S", "skip", "FOB", "3", "1,000", "flexible", []string{"fda"},
	}
	for _, in := range inputs {
		w = ts.do(t, http.MethodPost, "/conversations/"+id+"/answers", map[string]any{"answer": in})
		require.Equal(t, http.StatusOK, w.Code, "answer %v: %s", in, w.Body.String())
	}
	last := decodeBody(t, w)
	assert.Equal(t, "review", last["prompt"].(map[string]any)["node_id"])
	assert.Equal(t, false, last["done"])

	w = ts.do(t, http.MethodGet, "/conversations/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	answers := decodeBody(t, w)["conversation"].(map[string]any)["answers"].(map[string]any)
	assert.Contains(t, answers, "channel", "the pre-filled channel is accepted by an empty answer")

	w = ts.do(t, http.MethodPost, "/conversations/"+id+"/revise", map[string]any{"node_id": "product", "answer": "silicone tablet case"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/conversations/"+id+"/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeBody(t, w)
	first := summary["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "silicone tablet case", first["answer"])

	w = ts.do(t, http.MethodPost, "/conversations/"+id+"/analyze", map[string]any{"attempt_id": "conv-1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "conv-1", decodeBody(t, w)["attempt_id"])

	w = ts.do(t, http.MethodGet, "/analyses/conv-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	req := decodeBody(t, w)["request"].(map[string]any)
	assert.Equal(t, "Q3 launch", req["project_name"])
	assert.Equal(t, "silicone tablet case", req["product_description"])

	w = ts.do(t, http.MethodDelete, "/conversations/"+id, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(t, http.MethodGet, "/conversations/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConversation_NotFound(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/conversations/nope"},
		{http.MethodGet, "/conversations/nope/summary"},
		{http.MethodPost, "/conversations/nope/analyze"},
		{http.MethodGet, "/analyses/nope"},
	} {
		w := ts.do(t, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, tc.path)
		assert.Equal(t, "not_found", decodeBody(t, w)["error"], tc.path)
	}
}

func TestConversation_ReviseOutsideReview(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(t, http.MethodPost, "/conversations", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody(t, w)["conversation"].(map[string]any)["id"].(string)

	w = ts.do(t, http.MethodPost, "/conversations/"+id+"/revise", map[string]any{"node_id": "product", "answer": "mug"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/conversations/"+id+"/revise", map[string]any{"answer": "mug"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "node_id is required by the schema")
}

func TestSubscribeEvents(t *testing.T) {
	sm := NewStreamManager(nil)
	svc, err := nexi.New()
	require.NoError(t, err)
	handler, err := NewHandler(svc, WithStreams(sm))
	require.NoError(t, err)
	ts := &testServer{handler: handler}

	w := ts.do(t, http.MethodPost, "/conversations", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody(t, w)["conversation"].(map[string]any)["id"].(string)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wSub := httptest.NewRecorder()
	reqSub := httptest.NewRequest(http.MethodGet, "/conversations/"+id+"/events", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(wSub, reqSub)
	}()
	require.Eventually(t, func() bool { return sm.Subscribers(id) == 1 }, time.Second, 10*time.Millisecond)

	w = ts.do(t, http.MethodPost, "/conversations/"+id+"/answers", map[string]any{"answer": "ceramic mug"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	output := wSub.Body.String()
	assert.Contains(t, output, "event: ping")
	assert.Contains(t, output, `"type":"answered"`)
	assert.Contains(t, output, `"content":"ceramic mug"`)
	assert.Equal(t, 0, sm.Subscribers(id))
}

func TestGraphAndMeta(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(t, http.MethodGet, "/graph", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "product", decodeBody(t, w)["start"])

	w = ts.do(t, http.MethodGet, "/graph?format=mermaid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "graph TD"))

	w = ts.do(t, http.MethodGet, "/graph?format=png", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])

	w = ts.do(t, http.MethodGet, "/info", nil)
	info := decodeBody(t, w)
	assert.Equal(t, "nexi-http", info["app"])
	assert.Equal(t, "1.0.0", info["api_version"])

	w = ts.do(t, http.MethodGet, "/openapi.yaml", nil)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	ts.do(t, http.MethodPost, "/analyze", map[string]any{"answers": cleanAnswers()})
	w = ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `nexi_analysis_attempts_total{outcome="ok"} 1`)
}

func TestSubjectOf(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, analysis.Subject{ClientKey: "192.0.2.1"}, subjectOf(r))

	r.Header.Set("X-Forwarded-For", " 203.0.113.9 , 10.0.0.1")
	assert.Equal(t, analysis.Subject{ClientKey: "203.0.113.9"}, subjectOf(r))

	r.Header.Set(UserHeader, "u-42")
	assert.Equal(t, analysis.Subject{UserID: "u-42"}, subjectOf(r))
}

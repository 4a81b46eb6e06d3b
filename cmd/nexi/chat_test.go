package main

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/nexsupply/nexi"
	"github.com/nexsupply/nexi/internal/presentation/tui"
	"github.com/nexsupply/nexi/pkg/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const estimate = `{
  "financials": {"estimated_landed_cost": 4.2, "estimated_margin_pct": 38.5, "net_profit": 6.1},
  "cost_breakdown": {"factory_exw": 2.1, "shipping": 0.9, "duty": 0.35},
  "executive_summary": "Viable."
}`

func newChat(t *testing.T, script ...string) (*chat, *bytes.Buffer, *int) {
	t.Helper()
	calls := 0
	svc, err := nexi.New(nexi.WithEstimator(analysis.EstimatorFunc(func(context.Context, string) (string, error) {
		calls++
		return estimate, nil
	})))
	require.NoError(t, err)

	var out bytes.Buffer
	return &chat{
		svc:     svc,
		in:      bufio.NewScanner(strings.NewReader(strings.Join(script, "\n") + "\n")),
		out:     &out,
		render:  tui.Plain,
		analyze: true,
	}, &out, &calls
}

func TestChat_FullInterview(t *testing.T) {
	c, out, calls := newChat(t,
		"silicone phone case", "skip", "", "amazon_fba", "US", "not sure", "silicone",
		"S", "skip", "FOB", "3", "1,000", "flexible", "fda",
		"/edit product silicone tablet case",
		"submit", "no_thanks", "", "no",
	)
	require.NoError(t, c.run(context.Background(), nil))

	text := out.String()
	assert.Contains(t, text, "What product are you looking to source?")
	assert.Contains(t, text, "We'll benchmark against China", "not-sure reassurance is shown")
	assert.Contains(t, text, "| Product | silicone tablet case |")
	assert.Contains(t, text, "| $4.20 | 38.5% | $6.10 |")
	assert.Contains(t, text, "Outcome: `report_only`")
	assert.Equal(t, 1, *calls)
}

func TestChat_RejectedAnswerIsRepeated(t *testing.T) {
	c, out, _ := newChat(t, "", "quit")
	require.NoError(t, c.run(context.Background(), nil))

	text := out.String()
	assert.Equal(t, 2, strings.Count(text, "What product are you looking to source?"))
	assert.Contains(t, text, "an answer is required")
	assert.Contains(t, text, "Bye!")
}

func TestChat_EndOfInput(t *testing.T) {
	c, _, calls := newChat(t)
	c.in = bufio.NewScanner(strings.NewReader(""))
	assert.NoError(t, c.run(context.Background(), nil))
	assert.Zero(t, *calls)
}

func TestRunValidate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runValidate(&out, "", ""))
	assert.Contains(t, out.String(), `Graph is valid`)
	assert.Contains(t, out.String(), `start "product"`)

	assert.Error(t, runValidate(&out, "testdata/missing.yaml", ""))
	assert.Error(t, runValidate(&out, "", "testdata/missing.json"))
}

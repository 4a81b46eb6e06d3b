package analysis

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/nexsupply/nexi/pkg/domain"
)

// MandatoryGroups are the top-level blocks every estimator response must
// carry. They are never fabricated.
var MandatoryGroups = []string{"financials", "cost_breakdown"}

var fence = regexp.MustCompile("```(?:json|JSON)?")

// StripFences removes markdown code fences around a payload.
func StripFences(raw string) string {
	return strings.TrimSpace(fence.ReplaceAllString(raw, ""))
}

// Validate parses the raw estimator output. A payload that is not a JSON
// object, or whose mandatory groups are missing or mistyped, yields a
// *domain.MalformedResponseError with the cleaned text attached.
// Optional blocks with an unexpected shape are dropped; see ValidateBlocks.
func Validate(raw string) (domain.AnalysisResult, error) {
	result, _, err := ValidateBlocks(raw)
	return result, err
}

// ValidateBlocks is Validate that also names the optional blocks it
// dropped. A dropped block is left at its zero value, so the Fallback
// Injector can still repair it.
//
// osint_risk_score is kept only when it is a finite number or a numeric
// string; anything else is left nil for the Fallback Injector.
func ValidateBlocks(raw string) (domain.AnalysisResult, []string, error) {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return domain.AnalysisResult{}, nil, &domain.MalformedResponseError{Reason: "empty response", Raw: raw}
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return domain.AnalysisResult{}, nil, &domain.MalformedResponseError{Reason: "response is not a JSON object", Raw: cleaned, Err: err}
	}

	for _, group := range MandatoryGroups {
		if _, ok := doc[group].(map[string]any); !ok {
			return domain.AnalysisResult{}, nil, &domain.MalformedResponseError{Reason: "missing required field " + group, Raw: cleaned}
		}
	}

	var result domain.AnalysisResult
	if err := decodeBlock(doc["financials"], &result.Financials); err != nil {
		return domain.AnalysisResult{}, nil, &domain.MalformedResponseError{Reason: "unexpected field types in financials", Raw: cleaned, Err: err}
	}
	if err := decodeBlock(doc["cost_breakdown"], &result.CostBreakdown); err != nil {
		return domain.AnalysisResult{}, nil, &domain.MalformedResponseError{Reason: "unexpected field types in cost_breakdown", Raw: cleaned, Err: err}
	}

	var dropped []string
	for _, b := range optionalBlocks(&result) {
		v, ok := doc[b.name]
		if !ok || v == nil {
			continue
		}
		if err := b.decode(v); err != nil {
			dropped = append(dropped, b.name)
		}
	}

	result.OSINTRiskScore = parseScore(doc["osint_risk_score"])
	return result, dropped, nil
}

type optionalBlock struct {
	name   string
	decode func(v any) error
}

// optionalBlocks decodes into a scratch value first so a failed block
// never leaves half-filled fields behind.
func optionalBlocks(r *domain.AnalysisResult) []optionalBlock {
	return []optionalBlock{
		{"scale_analysis", func(v any) error {
			var tiers []domain.ScaleTier
			if err := decodeBlock(v, &tiers); err != nil {
				return err
			}
			r.ScaleAnalysis = tiers
			return nil
		}},
		{"risks", func(v any) error {
			var risks domain.Risks
			if err := decodeBlock(v, &risks); err != nil {
				return err
			}
			r.Risks = risks
			return nil
		}},
		{"duty_analysis", func(v any) error {
			d := new(domain.DutyAnalysis)
			if err := decodeBlock(v, d); err != nil {
				return err
			}
			r.DutyAnalysis = d
			return nil
		}},
		{"logistics_insight", func(v any) error {
			li := new(domain.LogisticsInsight)
			if err := decodeBlock(v, li); err != nil {
				return err
			}
			r.LogisticsInsight = li
			return nil
		}},
		{"market_benchmark", func(v any) error {
			mb := new(domain.MarketBenchmark)
			if err := decodeBlock(v, mb); err != nil {
				return err
			}
			r.MarketBenchmark = mb
			return nil
		}},
		{"strategic_advice", func(v any) error {
			sa := new(domain.StrategicAdvice)
			if err := decodeBlock(v, sa); err != nil {
				return err
			}
			r.StrategicAdvice = sa
			return nil
		}},
		{"executive_summary", func(v any) error {
			var summary string
			if err := decodeBlock(v, &summary); err != nil {
				return err
			}
			r.ExecutiveSummary = summary
			return nil
		}},
	}
}

func decodeBlock(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

func parseScore(v any) *float64 {
	var f float64
	switch s := v.(type) {
	case float64:
		f = s
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

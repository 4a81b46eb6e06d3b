package tui

import (
	"fmt"
	"strings"

	"github.com/nexsupply/nexi/internal/runtime"
	"github.com/nexsupply/nexi/pkg/domain"
)

// FormatPrompt renders a question as markdown, numbering choices so they
// can be picked by position.
func FormatPrompt(p runtime.Prompt) string {
	var b strings.Builder
	if p.Section != "" {
		fmt.Fprintf(&b, "_%s_\n\n", strings.ToUpper(p.Section))
	}
	fmt.Fprintf(&b, "**%s**\n", p.Text)
	if p.Help != "" {
		fmt.Fprintf(&b, "\n%s\n", p.Help)
	}
	if len(p.Choices) > 0 {
		b.WriteString("\n")
		for i, c := range p.Choices {
			fmt.Fprintf(&b, "%d. %s\n", i+1, c.DisplayLabel())
		}
	}
	if p.Kind == domain.KindMultiChoice {
		b.WriteString("\n_Pick one or more, separated by commas._\n")
	}

	var hints []string
	if p.Default != nil {
		hints = append(hints, fmt.Sprintf("press Enter to keep **%s**", p.DefaultLabel))
	}
	if !p.Required {
		hints = append(hints, "type `skip` to skip")
	}
	if p.AllowNotSure {
		hints = append(hints, "type `not sure` if you don't know")
	}
	if len(hints) > 0 {
		fmt.Fprintf(&b, "\n> %s\n", strings.Join(hints, ", "))
	}
	return b.String()
}

// FormatSummary renders the recap as a markdown table.
func FormatSummary(s runtime.Summary) string {
	var b strings.Builder
	b.WriteString("## Summary\n\n| Question | Answer |\n|---|---|\n")
	for _, item := range s.Items {
		fmt.Fprintf(&b, "| %s | %s |\n", cell(item.Question), cell(item.Answer))
	}
	if s.Outcome != "" {
		fmt.Fprintf(&b, "\nOutcome: `%s`\n", s.Outcome)
	}
	return b.String()
}

// FormatAnalysis renders the headline figures and risks of a result.
func FormatAnalysis(r domain.AnalysisResult) string {
	var b strings.Builder
	b.WriteString("## Landed cost estimate\n\n")
	fmt.Fprintf(&b, "| Landed cost | Margin | Net profit |\n|---|---|---|\n| $%.2f | %.1f%% | $%.2f |\n",
		r.Financials.EstimatedLandedCost, r.Financials.EstimatedMarginPct, r.Financials.NetProfit)

	c := r.CostBreakdown
	fmt.Fprintf(&b, "\nFactory $%.2f, shipping $%.2f, duty $%.2f, packaging $%.2f, customs $%.2f, insurance $%.2f\n",
		c.FactoryEXW, c.Shipping, c.Duty, c.Packaging, c.Customs, c.Insurance)

	b.WriteString("\n### Risks\n\n")
	for _, risk := range []struct{ name, level, reason string }{
		{"Duty", r.Risks.Duty.Level, r.Risks.Duty.Reason},
		{"Supplier", r.Risks.Supplier.Level, r.Risks.Supplier.Reason},
		{"Compliance", r.Risks.Compliance.Level, r.Risks.Compliance.Reason},
	} {
		if risk.level == "" {
			continue
		}
		fmt.Fprintf(&b, "- **%s**: %s. %s\n", risk.name, risk.level, risk.reason)
	}
	if r.OSINTRiskScore != nil {
		fmt.Fprintf(&b, "- **Supplier risk score**: %.0f/100\n", *r.OSINTRiskScore)
	}
	if l := r.LogisticsInsight; l != nil && l.ContainerLoading != "" {
		fmt.Fprintf(&b, "\n%s\n", l.ContainerLoading)
	}
	if r.ExecutiveSummary != "" {
		fmt.Fprintf(&b, "\n%s\n", r.ExecutiveSummary)
	}
	return b.String()
}

// FormatMessage renders a system or assistant transcript entry.
func FormatMessage(m domain.Message) string {
	if m.Role == domain.RoleSystem {
		return "> " + m.Content + "\n"
	}
	return m.Content + "\n"
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

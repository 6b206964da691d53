package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/rpgo/allocation-planner/internal/domain"
)

// MarkdownFormatter renders the plan as GitHub-flavored markdown.
type MarkdownFormatter struct{}

func (m MarkdownFormatter) Name() string { return "markdown" }

func (m MarkdownFormatter) Format(plan *domain.RebalancePlan) ([]byte, error) {
	return []byte(planMarkdown(plan)), nil
}

// TerminalFormatter renders the markdown report for a terminal via glamour.
// Style defaults to "notty", which emits no escape codes.
type TerminalFormatter struct {
	Style    string
	WordWrap int
}

func (t TerminalFormatter) Name() string { return "terminal" }

func (t TerminalFormatter) Format(plan *domain.RebalancePlan) ([]byte, error) {
	style, wrap := t.Style, t.WordWrap
	if style == "" {
		style = "notty"
	}
	if wrap == 0 {
		wrap = 100
	}
	r, err := glamour.NewTermRenderer(glamour.WithStandardStyle(style), glamour.WithWordWrap(wrap))
	if err != nil {
		return nil, fmt.Errorf("terminal renderer: %w", err)
	}
	out, err := r.Render(planMarkdown(plan))
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func planMarkdown(plan *domain.RebalancePlan) string {
	var b strings.Builder
	m := plan.Metrics
	ef := plan.EmergencyFundAction

	b.WriteString("# Rebalance Plan\n\n")
	for _, line := range DescribePlan(plan) {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	b.WriteString("\n## Metrics\n\n")
	b.WriteString("| Metric | Value |\n|---|---:|\n")
	fmt.Fprintf(&b, "| Net worth | %s |\n", FormatCurrency(m.TotalNetWorth))
	fmt.Fprintf(&b, "| Investable | %s |\n", FormatCurrency(m.InvestableTotal))
	fmt.Fprintf(&b, "| Emergency fund | %s of %s (%s) |\n", FormatCurrency(ef.Current), FormatCurrency(ef.Target), ef.Status)
	fmt.Fprintf(&b, "| Effective investable | %s |\n", FormatCurrency(m.EffectiveInvestableTotal))

	for _, id := range plan.AccountOrder {
		ap := plan.AccountActions[id]
		fmt.Fprintf(&b, "\n## %s\n\n", ap.AccountName)
		fmt.Fprintf(&b, "_%s account, %s mode, %s available cash_\n\n", ap.TaxCategory, ap.Mode, FormatCurrency(ap.AvailableCash))
		if len(ap.Actions) == 0 {
			b.WriteString("No trades needed.\n")
			continue
		}
		b.WriteString("| Action | Asset class | Amount | Current | Target |\n|---|---|---:|---:|---:|\n")
		for _, a := range ap.Actions {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				a.Action, assetName(a.AssetClassID), FormatCurrency(a.Diff.Abs()), FormatCurrency(a.Current), FormatCurrency(a.Target))
		}
	}

	if len(plan.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range plan.Warnings {
			fmt.Fprintf(&b, "- **%s** %s\n", w.Code, w.Message)
		}
	}
	return b.String()
}

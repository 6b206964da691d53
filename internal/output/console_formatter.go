package output

import (
	"bytes"
	"fmt"

	"github.com/rpgo/allocation-planner/internal/domain"
)

// ConsoleFormatter provides a concise console style summary via the formatter interface.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console-lite" }

func (c ConsoleFormatter) Format(plan *domain.RebalancePlan) ([]byte, error) {
	var buf bytes.Buffer
	m := plan.Metrics
	fmt.Fprintln(&buf, "REBALANCE PLAN SUMMARY")
	fmt.Fprintln(&buf, "================================")
	fmt.Fprintf(&buf, "Net Worth: %s  Investable: %s  Strategy: %s\n",
		FormatCurrency(m.TotalNetWorth), FormatCurrency(m.EffectiveInvestableTotal), plan.Strategy)
	fmt.Fprintf(&buf, "Emergency Fund: %s of %s (%s)\n",
		FormatCurrency(m.EmergencyActual), FormatCurrency(m.EmergencyTarget), plan.EmergencyFundAction.Status)
	fmt.Fprintln(&buf)

	for _, id := range plan.AccountOrder {
		ap := plan.AccountActions[id]
		fmt.Fprintf(&buf, "%s: %d trades, buys=%s sells=%s\n",
			ap.AccountName, len(ap.Actions), FormatCurrency(ap.TotalBuys), FormatCurrency(ap.TotalSells))
	}

	s := AnalyzePlan(plan)
	if s.LargestAccount != "" {
		fmt.Fprintln(&buf)
		fmt.Fprintf(&buf, "Largest trade: %s %s %s in %s\n",
			s.LargestTrade.Action, assetName(s.LargestTrade.AssetClassID), FormatCurrency(s.LargestTrade.Diff.Abs()), s.LargestAccount)
	}
	if s.MaxDriftAsset != "" {
		fmt.Fprintf(&buf, "Largest drift: %s (%s points)\n", assetName(s.MaxDriftAsset), s.MaxDrift.StringFixed(2))
	}
	if len(plan.Warnings) > 0 {
		fmt.Fprintf(&buf, "Warnings: %d\n", len(plan.Warnings))
	}
	return buf.Bytes(), nil
}

package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/rpgo/allocation-planner/internal/domain"
)

// ConsoleVerboseFormatter renders the full plan: metrics, buckets and every account's trades.
type ConsoleVerboseFormatter struct{}

func (c ConsoleVerboseFormatter) Name() string { return "console" }

func (c ConsoleVerboseFormatter) Format(plan *domain.RebalancePlan) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintln(&buf, "PORTFOLIO REBALANCE PLAN")
	fmt.Fprintln(&buf, strings.Repeat("=", 81))
	fmt.Fprintln(&buf)
	fmt.Fprintln(&buf, "SETTINGS:")
	for _, line := range DescribePlan(plan) {
		fmt.Fprintf(&buf, "• %s\n", line)
	}
	fmt.Fprintln(&buf)

	writeMetrics(&buf, plan)
	writeBuckets(&buf, plan)

	for _, id := range plan.AccountOrder {
		writeAccount(&buf, plan.AccountActions[id])
	}

	if len(plan.Warnings) > 0 {
		fmt.Fprintln(&buf, "WARNINGS")
		fmt.Fprintln(&buf, strings.Repeat("-", 40))
		for _, w := range plan.Warnings {
			fmt.Fprintf(&buf, "  [%s] %s\n", w.Code, w.Message)
		}
		fmt.Fprintln(&buf)
	}
	return buf.Bytes(), nil
}

func writeMetrics(w io.Writer, plan *domain.RebalancePlan) {
	m := plan.Metrics
	ef := plan.EmergencyFundAction
	fmt.Fprintln(w, "PORTFOLIO METRICS")
	fmt.Fprintln(w, strings.Repeat("=", 45))
	fmt.Fprintf(w, "Total Net Worth:        %s\n", FormatCurrency(m.TotalNetWorth))
	fmt.Fprintf(w, "Investable Total:       %s\n", FormatCurrency(m.InvestableTotal))
	fmt.Fprintf(w, "Emergency Fund:         %s / %s target (%s, %s)\n",
		FormatCurrency(ef.Current), FormatCurrency(ef.Target), ef.Status, FormatSignedCurrency(ef.Diff))
	fmt.Fprintf(w, "Effective Investable:   %s\n", FormatCurrency(m.EffectiveInvestableTotal))
	fmt.Fprintln(w)

	union := make(map[string]struct{}, len(m.Targets)+len(m.CurrentAllocation))
	for k := range m.Targets {
		union[k] = struct{}{}
	}
	for k := range m.CurrentAllocation {
		union[k] = struct{}{}
	}
	fmt.Fprintf(w, "%-28s %14s %8s %14s %8s\n", "ASSET CLASS", "CURRENT", "%", "TARGET", "%")
	for _, id := range domain.AssetClassIDs() {
		if _, ok := union[id]; !ok {
			continue
		}
		fmt.Fprintf(w, "%-28s %14s %8s %14s %8s\n",
			assetName(id),
			FormatCurrency(m.CurrentAllocation[id]), FormatPercentage(m.CurrentPercent[id]),
			FormatCurrency(m.Targets[id]), FormatPercentage(m.TargetPercent[id]))
	}
	fmt.Fprintln(w)
}

func writeBuckets(w io.Writer, plan *domain.RebalancePlan) {
	fmt.Fprintln(w, "TAX-LOCATION BUCKETS")
	fmt.Fprintln(w, strings.Repeat("=", 45))
	for _, b := range plan.Buckets {
		fmt.Fprintf(w, "%-10s capacity %s, filled %s\n", b.TaxCategory, FormatCurrency(b.Capacity), FormatCurrency(b.Filled))
		for _, id := range sortedAssetIDs(b.Allocations) {
			fmt.Fprintf(w, "    %-26s %14s\n", assetName(id), FormatCurrency(b.Allocations[id]))
		}
	}
	if len(plan.Unplaced) > 0 {
		fmt.Fprintln(w, "Unplaced:")
		for _, id := range sortedAssetIDs(plan.Unplaced) {
			fmt.Fprintf(w, "    %-26s %14s\n", assetName(id), FormatCurrency(plan.Unplaced[id]))
		}
	}
	fmt.Fprintln(w)
}

func writeAccount(w io.Writer, ap domain.AccountPlan) {
	fmt.Fprintf(w, "ACCOUNT: %s (%s, %s mode)\n", ap.AccountName, ap.TaxCategory, ap.Mode)
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "Investable: %s  Available cash: %s\n", FormatCurrency(ap.Investable), FormatCurrency(ap.AvailableCash))
	if len(ap.Actions) == 0 {
		fmt.Fprintln(w, "No trades needed.")
		fmt.Fprintln(w)
		return
	}
	for _, a := range ap.Actions {
		fmt.Fprintf(w, "  %-4s %-26s %14s  (%s → %s) %s\n",
			a.Action, assetName(a.AssetClassID), FormatCurrency(a.Diff.Abs()),
			FormatCurrency(a.Current), FormatCurrency(a.Target), a.Explanation)
	}
	fmt.Fprintf(w, "Total buys: %s  Total sells: %s  Cash after trades: %s\n",
		FormatCurrency(ap.TotalBuys), FormatCurrency(ap.TotalSells), FormatCurrency(ap.CashAfterTrades))
	fmt.Fprintln(w)
}

package output

import (
	"fmt"

	"github.com/rpgo/allocation-planner/internal/domain"
)

// DescribePlan lists the settings that shaped a plan, rendered in detailed outputs.
func DescribePlan(plan *domain.RebalancePlan) []string {
	split := plan.Metrics.Split
	lines := []string{
		fmt.Sprintf("Macro split: %s bonds, %s cash, %s equity",
			FormatPercentage(split.BondPercent), FormatPercentage(split.CashPercent), FormatPercentage(split.EquityPercent())),
		fmt.Sprintf("Tax-location strategy: %s", plan.Strategy),
		fmt.Sprintf("Emergency fund target: %s", FormatCurrency(plan.Metrics.EmergencyTarget)),
	}
	seen := map[domain.RebalanceMode]bool{}
	for _, id := range plan.AccountOrder {
		ap := plan.AccountActions[id]
		if seen[ap.Mode] {
			continue
		}
		seen[ap.Mode] = true
		lines = append(lines, fmt.Sprintf("Rebalance mode %s: %s", ap.Mode, modeDescriptions[ap.Mode]))
	}
	return lines
}

var modeDescriptions = map[domain.RebalanceMode]string{
	domain.ModeStrict: "trade every difference of $10 or more",
	domain.ModeBands:  "trade only after an asset drifts outside its band, then fully rebalance",
	domain.ModeInflow: "never sell; direct available cash toward underweight assets",
}

package output

import (
	"github.com/rpgo/allocation-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// PlanSummary condenses a plan into the handful of numbers a summary view shows.
type PlanSummary struct {
	Accounts        int
	AccountsToTrade int
	Buys            decimal.Decimal
	Sells           decimal.Decimal
	LargestTrade    domain.Action
	LargestAccount  string
	// MaxDrift is the largest gap, in points, between current and target portfolio percent
	MaxDrift      decimal.Decimal
	MaxDriftAsset string
}

// AnalyzePlan computes totals and the single largest trade and drift.
// Ties keep the first occurrence in account then action order.
func AnalyzePlan(plan *domain.RebalancePlan) PlanSummary {
	s := PlanSummary{Accounts: len(plan.AccountOrder)}
	for _, id := range plan.AccountOrder {
		ap := plan.AccountActions[id]
		if len(ap.Actions) > 0 {
			s.AccountsToTrade++
		}
		s.Buys = s.Buys.Add(ap.TotalBuys)
		s.Sells = s.Sells.Add(ap.TotalSells)
		for _, a := range ap.Actions {
			if a.Diff.Abs().GreaterThan(s.LargestTrade.Diff.Abs()) {
				s.LargestTrade = a
				s.LargestAccount = id
			}
		}
	}

	m := plan.Metrics
	union := make(map[string]decimal.Decimal, len(m.TargetPercent)+len(m.CurrentPercent))
	for k := range m.TargetPercent {
		union[k] = decimal.Zero
	}
	for k := range m.CurrentPercent {
		union[k] = decimal.Zero
	}
	for _, id := range sortedAssetIDs(union) {
		drift := m.CurrentPercent[id].Sub(m.TargetPercent[id]).Abs()
		if drift.GreaterThan(s.MaxDrift) {
			s.MaxDrift = drift
			s.MaxDriftAsset = id
		}
	}
	return s
}

package output

import (
	"testing"

	"github.com/rpgo/allocation-planner/internal/domain"
	"github.com/shopspring/decimal"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestAnalyzePlan_TotalsAndLargestTrade(t *testing.T) {
	plan := &domain.RebalancePlan{
		AccountOrder: []string{"a", "b", "c"},
		AccountActions: map[string]domain.AccountPlan{
			"a": {TotalBuys: dec(1000), Actions: []domain.Action{{AssetClassID: "bonds", Diff: dec(1000), Action: domain.ActionBuy}}},
			"b": {TotalBuys: dec(4000), TotalSells: dec(4000), Actions: []domain.Action{
				{AssetClassID: "us_broad", Diff: dec(-4000), Action: domain.ActionSell},
				{AssetClassID: "emerging", Diff: dec(4000), Action: domain.ActionBuy},
			}},
			"c": {},
		},
		Metrics: domain.PortfolioMetrics{
			CurrentPercent: map[string]decimal.Decimal{"us_broad": dec(70), "bonds": dec(30)},
			TargetPercent:  map[string]decimal.Decimal{"us_broad": dec(60), "bonds": dec(25), "emerging": dec(15)},
		},
	}

	s := AnalyzePlan(plan)
	if s.Accounts != 3 || s.AccountsToTrade != 2 {
		t.Fatalf("account counts = %d/%d", s.AccountsToTrade, s.Accounts)
	}
	if !s.Buys.Equal(dec(5000)) || !s.Sells.Equal(dec(4000)) {
		t.Fatalf("totals = %s / %s", s.Buys, s.Sells)
	}
	// first of the two 4000 trades wins the tie
	if s.LargestAccount != "b" || s.LargestTrade.AssetClassID != "us_broad" {
		t.Fatalf("largest = %s in %s", s.LargestTrade.AssetClassID, s.LargestAccount)
	}
	if s.MaxDriftAsset != "emerging" || !s.MaxDrift.Equal(dec(15)) {
		t.Fatalf("max drift = %s %s", s.MaxDriftAsset, s.MaxDrift)
	}
}

func TestAnalyzePlan_Empty(t *testing.T) {
	s := AnalyzePlan(&domain.RebalancePlan{})
	if s.LargestAccount != "" || s.MaxDriftAsset != "" || !s.Buys.IsZero() {
		t.Fatalf("expected empty summary, got %+v", s)
	}
}

func TestDescribePlanListsModesOnce(t *testing.T) {
	plan := &domain.RebalancePlan{
		Strategy:     domain.StrategyRothGrowth,
		AccountOrder: []string{"a", "b", "c"},
		AccountActions: map[string]domain.AccountPlan{
			"a": {Mode: domain.ModeInflow},
			"b": {Mode: domain.ModeBands},
			"c": {Mode: domain.ModeInflow},
		},
	}
	lines := DescribePlan(plan)
	if len(lines) != 5 {
		t.Fatalf("expected 3 settings lines and 2 mode lines, got %v", lines)
	}
	if lines[1] != "Tax-location strategy: roth_growth" {
		t.Fatalf("strategy line = %q", lines[1])
	}
}

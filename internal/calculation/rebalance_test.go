package calculation

import (
	"errors"
	"testing"

	"github.com/rpgo/allocation-planner/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rebalance(t *testing.T, in RebalanceInput) RebalanceResult {
	t.Helper()
	res, err := NewRebalanceModeEngine(nil).Rebalance(in)
	require.NoError(t, err)
	return res
}

func TestStrictModeActsOnFullDiffSellsFirst(t *testing.T) {
	res := rebalance(t, RebalanceInput{
		Current: map[string]decimal.Decimal{"us_broad": d(70000), "bonds": d(10000), "reit": d(5)},
		Target:  map[string]decimal.Decimal{"us_broad": d(60000), "bonds": d(20000), "intl_developed": d(5)},
		Mode:    domain.ModeStrict,
	})

	require.Len(t, res.Actions, 2)
	assert.Equal(t, "us_broad", res.Actions[0].AssetClassID)
	assert.Equal(t, domain.ActionSell, res.Actions[0].Action)
	assertDecimal(t, d(-10000), res.Actions[0].Diff, "sell diff")
	assert.Equal(t, "bonds", res.Actions[1].AssetClassID)
	assert.Equal(t, domain.ActionBuy, res.Actions[1].Action)
	assertDecimal(t, d(10000), res.Actions[1].Diff, "buy diff")
}

func TestStrictModeEpsilon(t *testing.T) {
	res := rebalance(t, RebalanceInput{
		Current: map[string]decimal.Decimal{"us_broad": d(1000)},
		Target:  map[string]decimal.Decimal{"us_broad": d(1009.99)},
		Mode:    domain.ModeStrict,
	})
	assert.Empty(t, res.Actions)
}

func TestSettlementCashIsNeverTraded(t *testing.T) {
	res := rebalance(t, RebalanceInput{
		Current:       map[string]decimal.Decimal{domain.CashAssetID: d(100000)},
		Target:        map[string]decimal.Decimal{"us_broad": d(80000), "bonds": d(20000)},
		AvailableCash: d(100000),
		Mode:          domain.ModeStrict,
	})
	_, found := findAction(res.Actions, domain.CashAssetID)
	assert.False(t, found)
	assert.Len(t, res.Actions, 2)
}

func TestMoneyMarketHoldingSoldToFundBuys(t *testing.T) {
	for _, mode := range []domain.RebalanceMode{domain.ModeStrict, domain.ModeInflow} {
		t.Run(mode.String(), func(t *testing.T) {
			res := rebalance(t, RebalanceInput{
				Current:      map[string]decimal.Decimal{domain.CashAssetID: d(100000)},
				Target:       map[string]decimal.Decimal{"us_broad": d(80000), "bonds": d(20000)},
				CashHoldings: d(100000),
				Mode:         mode,
			})
			require.Len(t, res.Actions, 3)
			sell := res.Actions[0]
			assert.Equal(t, domain.CashAssetID, sell.AssetClassID)
			assert.Equal(t, domain.ActionSell, sell.Action)
			assertDecimal(t, d(-100000), sell.Diff, "money market sold")
			assertDecimal(t, d(0), sell.Target, "money market emptied")

			bonds, _ := findAction(res.Actions, "bonds")
			broad, _ := findAction(res.Actions, "us_broad")
			assertDecimal(t, d(20000), bonds.Diff, "bonds bought in full")
			assertDecimal(t, d(80000), broad.Diff, "us_broad bought in full")
		})
	}
}

func TestMoneyMarketSaleCoversOnlyShortfall(t *testing.T) {
	res := rebalance(t, RebalanceInput{
		Current:       map[string]decimal.Decimal{domain.CashAssetID: d(100000)},
		Target:        map[string]decimal.Decimal{"us_broad": d(80000), "bonds": d(20000)},
		AvailableCash: d(30000),
		CashHoldings:  d(70000),
		Mode:          domain.ModeInflow,
	})
	sell, ok := findAction(res.Actions, domain.CashAssetID)
	require.True(t, ok)
	assertDecimal(t, d(-70000), sell.Diff, "sale")
	assertDecimal(t, d(70000), sell.Current, "row describes the holding")
	broad, _ := findAction(res.Actions, "us_broad")
	assertDecimal(t, d(80000), broad.Diff, "funded by cash plus sale")
}

func TestMoneyMarketKeptWhenAccountCashFundsBuys(t *testing.T) {
	res := rebalance(t, RebalanceInput{
		Current:       map[string]decimal.Decimal{domain.CashAssetID: d(100000)},
		Target:        map[string]decimal.Decimal{domain.CashAssetID: d(40000), "us_broad": d(40000), "bonds": d(20000)},
		AvailableCash: d(60000),
		CashHoldings:  d(40000),
		Mode:          domain.ModeStrict,
	})
	_, found := findAction(res.Actions, domain.CashAssetID)
	assert.False(t, found)
	assert.Len(t, res.Actions, 2)
}

func TestCashShortfallIsNeverABuy(t *testing.T) {
	res := rebalance(t, RebalanceInput{
		Current: map[string]decimal.Decimal{"us_broad": d(100000)},
		Target:  map[string]decimal.Decimal{"us_broad": d(90000), domain.CashAssetID: d(10000)},
		Mode:    domain.ModeStrict,
	})
	require.Len(t, res.Actions, 1)
	assert.Equal(t, "us_broad", res.Actions[0].AssetClassID)
	assert.Equal(t, domain.ActionSell, res.Actions[0].Action)
}

func TestBandsModeHoldsWithinBands(t *testing.T) {
	// us_broad 62% vs 60% target (5pt band), bonds 28% vs 30%, emerging 10% vs 10% target (2.5pt band)
	res := rebalance(t, RebalanceInput{
		Current:     map[string]decimal.Decimal{"us_broad": d(62000), "bonds": d(28000), "emerging": d(10000)},
		Target:      map[string]decimal.Decimal{"us_broad": d(60000), "bonds": d(30000), "emerging": d(10000)},
		Denominator: d(100000),
		Mode:        domain.ModeBands,
	})
	assert.False(t, res.Triggered)
	assert.Empty(t, res.Actions)
}

func TestBandsModeBreachForcesFullRebalance(t *testing.T) {
	// emerging 13% vs 10% target breaches its 2.5pt relative band; us_broad drift is small but still traded
	res := rebalance(t, RebalanceInput{
		Current:     map[string]decimal.Decimal{"us_broad": d(59000), "bonds": d(28000), "emerging": d(13000)},
		Target:      map[string]decimal.Decimal{"us_broad": d(60000), "bonds": d(30000), "emerging": d(10000)},
		Denominator: d(100000),
		Mode:        domain.ModeBands,
	})
	assert.True(t, res.Triggered)
	require.Len(t, res.Actions, 3)
	assert.Equal(t, "emerging", res.Actions[0].AssetClassID)
	assert.Equal(t, domain.ActionSell, res.Actions[0].Action)
	a, ok := findAction(res.Actions, "us_broad")
	require.True(t, ok)
	assertDecimal(t, d(1000), a.Diff, "us_broad rebalanced too")
	assert.Contains(t, a.Explanation, "band breached")
}

func TestBandsModeZeroDenominatorNeverTriggers(t *testing.T) {
	res := rebalance(t, RebalanceInput{
		Current:     map[string]decimal.Decimal{"us_broad": d(500)},
		Target:      map[string]decimal.Decimal{"bonds": d(500)},
		Denominator: decimal.Zero,
		Mode:        domain.ModeBands,
	})
	assert.False(t, res.Triggered)
	assert.Empty(t, res.Actions)
}

func TestBandThreshold(t *testing.T) {
	assertDecimal(t, d(5), bandThreshold(d(20)), "absolute at 20%")
	assertDecimal(t, d(5), bandThreshold(d(60)), "absolute above 20%")
	assertDecimal(t, d(2.5), bandThreshold(d(10)), "relative below 20%")
	assertDecimal(t, d(0), bandThreshold(d(0)), "zero target")
}

func TestInflowModeNeverSellsNonCash(t *testing.T) {
	res := rebalance(t, RebalanceInput{
		Current:       map[string]decimal.Decimal{"us_broad": d(90000), "bonds": d(0), domain.CashAssetID: d(5000)},
		Target:        map[string]decimal.Decimal{"us_broad": d(70000), "bonds": d(25000)},
		AvailableCash: d(5000),
		Mode:          domain.ModeInflow,
	})
	for _, a := range res.Actions {
		if a.AssetClassID != domain.CashAssetID {
			assert.NotEqual(t, domain.ActionSell, a.Action, "inflow sold %s", a.AssetClassID)
		}
	}
	require.Len(t, res.Actions, 1)
	assert.Equal(t, "bonds", res.Actions[0].AssetClassID)
	assertDecimal(t, d(5000), res.Actions[0].Diff, "buy scaled to available cash")
	assert.Contains(t, res.Actions[0].Explanation, "scaled to 20.0%")
}

func TestInflowModeProportionalRationing(t *testing.T) {
	res := rebalance(t, RebalanceInput{
		Current:       map[string]decimal.Decimal{domain.CashAssetID: d(3000)},
		Target:        map[string]decimal.Decimal{"us_broad": d(4000), "bonds": d(2000)},
		AvailableCash: d(3000),
		Mode:          domain.ModeInflow,
	})
	require.Len(t, res.Actions, 2)
	broad, _ := findAction(res.Actions, "us_broad")
	bonds, _ := findAction(res.Actions, "bonds")
	assertDecimal(t, d(2000), broad.Diff, "us_broad half")
	assertDecimal(t, d(1000), bonds.Diff, "bonds half")
	assertDecimal(t, d(4000), broad.Target, "target unchanged")
}

func TestInflowModeFullyFunded(t *testing.T) {
	res := rebalance(t, RebalanceInput{
		Current:       map[string]decimal.Decimal{domain.CashAssetID: d(10000)},
		Target:        map[string]decimal.Decimal{"us_broad": d(6000)},
		AvailableCash: d(10000),
		Mode:          domain.ModeInflow,
	})
	require.Len(t, res.Actions, 1)
	assertDecimal(t, d(6000), res.Actions[0].Diff, "full buy")
	assert.Equal(t, "funded from available cash", res.Actions[0].Explanation)
}

func TestInflowModeNoCashHoldsEverything(t *testing.T) {
	res := rebalance(t, RebalanceInput{
		Current: map[string]decimal.Decimal{"us_broad": d(9000)},
		Target:  map[string]decimal.Decimal{"us_broad": d(6000), "bonds": d(3000)},
		Mode:    domain.ModeInflow,
	})
	assert.Empty(t, res.Actions)
}

func TestRebalanceUnknownMode(t *testing.T) {
	_, err := NewRebalanceModeEngine(nil).Rebalance(RebalanceInput{Mode: domain.RebalanceMode(9)})
	assert.True(t, errors.Is(err, domain.ErrInvalidRebalanceMode))
}

func TestBuildRowsSkipsDust(t *testing.T) {
	rows := buildRows(
		map[string]decimal.Decimal{"us_broad": d(0.5), "bonds": d(100)},
		map[string]decimal.Decimal{"us_broad": d(1), "reit": d(50)},
	)
	require.Len(t, rows, 2)
	assert.Equal(t, "bonds", rows[0].AssetClassID)
	assert.Equal(t, "reit", rows[1].AssetClassID)
}

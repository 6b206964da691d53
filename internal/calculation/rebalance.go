package calculation

import (
	"fmt"
	"sort"

	"github.com/rpgo/allocation-planner/internal/domain"
	dmath "github.com/rpgo/allocation-planner/pkg/decimal"
	"github.com/shopspring/decimal"
)

var (
	// presenceThreshold drops rows where both current and target are dust
	presenceThreshold = decimal.NewFromInt(1)
	// strictEpsilon absorbs floating noise in strict mode
	strictEpsilon = decimal.NewFromInt(10)

	bandAbsoluteCutoff = decimal.NewFromInt(20)
	bandAbsolutePoints = decimal.NewFromInt(5)
	bandRelative       = decimal.NewFromFloat(0.25)
)

// RebalanceInput is everything the mode engine needs for one account
type RebalanceInput struct {
	Current map[string]decimal.Decimal
	Target  map[string]decimal.Decimal
	// AvailableCash is the account's uninvested, non-emergency cash
	AvailableCash decimal.Decimal
	// CashHoldings is the value of cash-class holdings (money market funds).
	// Current's cash row is AvailableCash plus CashHoldings.
	CashHoldings decimal.Decimal
	// Denominator turns dollar rows into percentages for band checks
	Denominator decimal.Decimal
	Mode        domain.RebalanceMode
}

// RebalanceResult is the ordered action list for one account
type RebalanceResult struct {
	Actions   []domain.Action
	Triggered bool
}

// modePolicy decides which rows become trades; it mutates rows in place
type modePolicy interface {
	apply(rows []domain.Action, in RebalanceInput) (triggered bool)
}

var modePolicies = map[domain.RebalanceMode]modePolicy{
	domain.ModeStrict: strictMode{},
	domain.ModeBands:  bandsMode{},
	domain.ModeInflow: inflowMode{},
}

// RebalanceModeEngine turns current-vs-target differences into buy/sell instructions
type RebalanceModeEngine struct {
	Logger Logger
}

// NewRebalanceModeEngine creates a mode engine
func NewRebalanceModeEngine(logger Logger) *RebalanceModeEngine {
	if logger == nil {
		logger = NopLogger{}
	}
	return &RebalanceModeEngine{Logger: logger}
}

// Rebalance compares holdings and returns actions sorted ascending by diff,
// sells first. HOLD rows and zero-magnitude rows are removed. Buys and sells
// settle through the account's uninvested cash, so the cash row only ever
// sells cash holdings, and only the part settlement cash cannot fund.
func (re *RebalanceModeEngine) Rebalance(in RebalanceInput) (RebalanceResult, error) {
	policy, ok := modePolicies[in.Mode]
	if !ok {
		return RebalanceResult{}, fmt.Errorf("%w: %s", domain.ErrInvalidRebalanceMode, in.Mode)
	}

	rows := buildRows(in.Current, in.Target)
	triggered := policy.apply(rows, in)
	settleCashRow(rows, in)

	actions := make([]domain.Action, 0, len(rows))
	for _, r := range rows {
		if r.Action == domain.ActionHold {
			continue
		}
		if r.Diff.Round(2).IsZero() {
			continue
		}
		actions = append(actions, r)
	}
	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Diff.LessThan(actions[j].Diff)
	})

	re.Logger.Debugf("rebalance(%s): %d rows, %d actions, triggered=%t", in.Mode, len(rows), len(actions), triggered)
	return RebalanceResult{Actions: actions, Triggered: triggered}, nil
}

// buildRows creates one row per asset present in either map, in catalog order
func buildRows(current, target map[string]decimal.Decimal) []domain.Action {
	seen := make(map[string]struct{}, len(current)+len(target))
	ids := make([]string, 0, len(current)+len(target))
	for _, m := range []map[string]decimal.Decimal{current, target} {
		for id := range m {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		oi, oj := domain.CatalogOrder(ids[i]), domain.CatalogOrder(ids[j])
		if oi != oj {
			return oi < oj
		}
		return ids[i] < ids[j]
	})

	rows := make([]domain.Action, 0, len(ids))
	for _, id := range ids {
		cur := dmath.NonNegative(current[id])
		tgt := dmath.NonNegative(target[id])
		if !cur.GreaterThan(presenceThreshold) && !tgt.GreaterThan(presenceThreshold) {
			continue
		}
		diff := tgt.Sub(cur)
		action := domain.ActionSell
		if diff.IsPositive() {
			action = domain.ActionBuy
		}
		rows = append(rows, domain.Action{
			AssetClassID: id,
			Current:      cur,
			Target:       tgt,
			Diff:         diff,
			Action:       action,
		})
	}
	return rows
}

func hold(r *domain.Action, why string) {
	r.Action = domain.ActionHold
	r.Explanation = why
}

// tradeTotals sums the non-cash buy and sell magnitudes
func tradeTotals(rows []domain.Action) (buys, sells decimal.Decimal) {
	buys, sells = decimal.Zero, decimal.Zero
	for _, r := range rows {
		if r.AssetClassID == domain.CashAssetID {
			continue
		}
		switch r.Action {
		case domain.ActionBuy:
			buys = buys.Add(r.Diff)
		case domain.ActionSell:
			sells = sells.Add(r.Diff.Abs())
		}
	}
	return buys, sells
}

// cashHoldingSale is how much of the cash holdings to sell: never more than
// the cash excess, and only what settlement cash plus other sells leave unfunded.
func cashHoldingSale(excess, buys, sells decimal.Decimal, in RebalanceInput) decimal.Decimal {
	held := dmath.Min(dmath.NonNegative(in.CashHoldings), dmath.NonNegative(in.Current[domain.CashAssetID]))
	unfunded := buys.Sub(sells).Sub(dmath.NonNegative(in.AvailableCash))
	return dmath.NonNegative(dmath.Min(dmath.Min(unfunded, excess), held))
}

// settleCashRow rewrites the cash row after the mode policy ran. A cash
// shortfall needs no trade: sells of other assets land in account cash.
// A cash excess becomes a sell of cash holdings sized by cashHoldingSale,
// and the row then describes those holdings.
func settleCashRow(rows []domain.Action, in RebalanceInput) {
	for i := range rows {
		r := &rows[i]
		if r.AssetClassID != domain.CashAssetID || r.Action == domain.ActionHold {
			continue
		}
		if r.Action == domain.ActionBuy {
			hold(r, "raised in account cash by other sells")
			return
		}
		buys, sells := tradeTotals(rows)
		sale := cashHoldingSale(r.Diff.Abs(), buys, sells, in)
		if !sale.IsPositive() {
			hold(r, "excess already held as account cash")
			return
		}
		held := dmath.NonNegative(in.CashHoldings)
		r.Current = held
		r.Target = held.Sub(sale)
		r.Diff = sale.Neg()
		r.Explanation = "sell cash holdings to fund buys"
		return
	}
}

// strictMode acts on every difference above the noise epsilon
type strictMode struct{}

func (strictMode) apply(rows []domain.Action, _ RebalanceInput) bool {
	for i := range rows {
		r := &rows[i]
		if r.Diff.Abs().LessThan(strictEpsilon) {
			hold(r, "difference below $10")
			continue
		}
		r.Explanation = "rebalance to target"
	}
	return false
}

// bandsMode rebalances the whole account once any single asset drifts out of its band
type bandsMode struct{}

// bandThreshold is 5 points for targets of 20% or more, otherwise 25% of the target
func bandThreshold(targetPct decimal.Decimal) decimal.Decimal {
	if targetPct.GreaterThanOrEqual(bandAbsoluteCutoff) {
		return bandAbsolutePoints
	}
	return targetPct.Mul(bandRelative)
}

func (bandsMode) apply(rows []domain.Action, in RebalanceInput) bool {
	triggered := false
	breach := ""
	for _, r := range rows {
		targetPct := dmath.Percent(r.Target, in.Denominator)
		currentPct := dmath.Percent(r.Current, in.Denominator)
		drift := currentPct.Sub(targetPct).Abs()
		if drift.GreaterThan(bandThreshold(targetPct)) {
			triggered = true
			breach = fmt.Sprintf("%s drifted %s points", r.AssetClassID, drift.StringFixed(1))
			break
		}
	}
	for i := range rows {
		if !triggered {
			hold(&rows[i], "within bands")
			continue
		}
		rows[i].Explanation = "band breached (" + breach + "); full rebalance"
	}
	return triggered
}

// inflowMode never sells; buys are funded only from available cash
type inflowMode struct{}

func (inflowMode) apply(rows []domain.Action, in RebalanceInput) bool {
	totalBuy := decimal.Zero
	cashExcess := decimal.Zero
	for i := range rows {
		r := &rows[i]
		if r.AssetClassID == domain.CashAssetID {
			if r.Action == domain.ActionSell {
				cashExcess = r.Diff.Abs()
			}
			continue
		}
		if r.Action == domain.ActionSell {
			hold(r, "sells disabled in inflow mode")
			continue
		}
		totalBuy = totalBuy.Add(r.Diff)
	}

	// cash holdings are the one position inflow may sell; their proceeds fund buys
	available := dmath.NonNegative(in.AvailableCash).Add(cashHoldingSale(cashExcess, totalBuy, decimal.Zero, in))
	ratio := decimal.NewFromInt(1)
	scaled := false
	if totalBuy.GreaterThan(available) {
		ratio = dmath.SafeDiv(available, totalBuy)
		scaled = true
	}

	for i := range rows {
		r := &rows[i]
		if r.AssetClassID == domain.CashAssetID || r.Action != domain.ActionBuy {
			continue
		}
		if !available.IsPositive() {
			hold(r, "no cash available")
			continue
		}
		if scaled {
			r.Diff = r.Diff.Mul(ratio)
			r.Explanation = fmt.Sprintf("scaled to %s of need; limited by available cash", dmath.FormatPercent(ratio.Mul(dmath.Hundred())))
			continue
		}
		r.Explanation = "funded from available cash"
	}
	return false
}

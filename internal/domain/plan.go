package domain

import (
	"github.com/shopspring/decimal"
)

// PortfolioMetrics summarizes every account for dashboards and target setting
type PortfolioMetrics struct {
	TotalNetWorth            decimal.Decimal            `json:"total_net_worth"`
	InvestableTotal          decimal.Decimal            `json:"investable_total"`
	EffectiveInvestableTotal decimal.Decimal            `json:"effective_investable_total"`
	EmergencyActual          decimal.Decimal            `json:"emergency_actual"`
	EmergencyTarget          decimal.Decimal            `json:"emergency_target"`
	EmergencySurplus         decimal.Decimal            `json:"emergency_surplus"`
	CurrentAllocation        map[string]decimal.Decimal `json:"current_allocation"`
	Targets                  map[string]decimal.Decimal `json:"targets"`
	CurrentPercent           map[string]decimal.Decimal `json:"current_percent"`
	TargetPercent            map[string]decimal.Decimal `json:"target_percent"`
	AccountTotals            map[string]decimal.Decimal `json:"account_totals"`
	// Split is the macro split actually applied, after glide path and clamping
	Split MacroSplit `json:"split"`
}

// Bucket is the aggregate investable capacity of one tax category
type Bucket struct {
	TaxCategory TaxCategory                `json:"tax_category"`
	Capacity    decimal.Decimal            `json:"capacity"`
	Filled      decimal.Decimal            `json:"filled"`
	Allocations map[string]decimal.Decimal `json:"allocations"`
}

// Available returns the capacity still unfilled
func (b *Bucket) Available() decimal.Decimal {
	avail := b.Capacity.Sub(b.Filled)
	if avail.IsNegative() {
		return decimal.Zero
	}
	return avail
}

// ActionType is the instruction attached to one asset row
type ActionType string

const (
	ActionBuy  ActionType = "BUY"
	ActionSell ActionType = "SELL"
	ActionHold ActionType = "HOLD"
)

// Action is one buy or sell instruction for an asset class in an account
type Action struct {
	AssetClassID string          `json:"asset_class"`
	Current      decimal.Decimal `json:"current"`
	Target       decimal.Decimal `json:"target"`
	Diff         decimal.Decimal `json:"diff"`
	Action       ActionType      `json:"action"`
	Explanation  string          `json:"explanation,omitempty"`
}

// AccountPlan is the target state and ordered action list for one account
type AccountPlan struct {
	AccountID       string                     `json:"account_id"`
	AccountName     string                     `json:"account_name"`
	TaxCategory     TaxCategory                `json:"tax_category"`
	Mode            RebalanceMode              `json:"mode"`
	CurrentTotal    decimal.Decimal            `json:"current_total"`
	Investable      decimal.Decimal            `json:"investable"`
	CurrentHoldings map[string]decimal.Decimal `json:"current_holdings"`
	TargetHoldings  map[string]decimal.Decimal `json:"target_holdings"`
	AvailableCash   decimal.Decimal            `json:"available_cash"`
	TotalBuys       decimal.Decimal            `json:"total_buys"`
	TotalSells      decimal.Decimal            `json:"total_sells"`
	CashAfterTrades decimal.Decimal            `json:"cash_after_trades"`
	Triggered       bool                       `json:"triggered,omitempty"`
	Actions         []Action                   `json:"actions"`
}

// EmergencyStatus classifies the emergency fund against its target
type EmergencyStatus string

const (
	EmergencyBalanced EmergencyStatus = "balanced"
	EmergencySurplus  EmergencyStatus = "surplus"
	EmergencyDeficit  EmergencyStatus = "deficit"
)

// EmergencyFundAction reports how far the emergency fund is from its target
type EmergencyFundAction struct {
	Status  EmergencyStatus `json:"status"`
	Diff    decimal.Decimal `json:"diff"`
	Current decimal.Decimal `json:"current"`
	Target  decimal.Decimal `json:"target"`
}

// WarningCode categorizes non-fatal findings of a planning run
type WarningCode string

const (
	WarnUnplacedTarget   WarningCode = "W1001" // target dollars no bucket could hold
	WarnEquityWeights    WarningCode = "W1002" // equity weights summed to zero, fallback applied
	WarnSplitClamped     WarningCode = "W1003" // macro split exceeded 100% and was clamped
	WarnGlidePathNoAge   WarningCode = "W1004" // glide path enabled without a usable age
	WarnMirroredNoTarget WarningCode = "W1005" // mirrored strategy with zero investable total
	WarnWeightIgnored    WarningCode = "W1006" // equity weight on a non-equity asset class dropped
	WarnConfigClamped    WarningCode = "W1007" // out-of-range configuration value clamped on load
)

// Warning is a non-fatal issue the caller may want to show
type Warning struct {
	Code         WarningCode     `json:"code" yaml:"code"`
	Message      string          `json:"message" yaml:"message"`
	AssetClassID string          `json:"asset_class,omitempty" yaml:"asset_class,omitempty"`
	Amount       decimal.Decimal `json:"amount,omitempty" yaml:"amount,omitempty"`
}

// RebalancePlan is the full engine output
type RebalancePlan struct {
	Metrics             PortfolioMetrics           `json:"metrics"`
	Strategy            TaxStrategy                `json:"strategy"`
	Buckets             []Bucket                   `json:"buckets"`
	Unplaced            map[string]decimal.Decimal `json:"unplaced,omitempty"`
	EmergencyFundAction EmergencyFundAction        `json:"emergency_fund_action"`
	// AccountOrder preserves the input order of accounts for rendering
	AccountOrder   []string               `json:"account_order"`
	AccountActions map[string]AccountPlan `json:"account_actions"`
	Warnings       []Warning              `json:"warnings,omitempty"`
}

// ActionCount returns the number of actionable rows across all accounts
func (rp *RebalancePlan) ActionCount() int {
	n := 0
	for _, ap := range rp.AccountActions {
		n += len(ap.Actions)
	}
	return n
}

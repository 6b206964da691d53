package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TaxStrategy selects how asset classes are located across tax categories
type TaxStrategy int

const (
	StrategyStandard TaxStrategy = iota
	StrategyRothGrowth
	StrategyBalancedRoth
	StrategyMirrored
)

var taxStrategyNames = [...]string{
	StrategyStandard:     "standard",
	StrategyRothGrowth:   "roth_growth",
	StrategyBalancedRoth: "balanced_roth",
	StrategyMirrored:     "mirrored",
}

func (s TaxStrategy) String() string {
	if s < 0 || int(s) >= len(taxStrategyNames) {
		return fmt.Sprintf("TaxStrategy(%d)", int(s))
	}
	return taxStrategyNames[s]
}

// ParseTaxStrategy parses a strategy name such as "roth_growth"
func ParseTaxStrategy(s string) (TaxStrategy, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for i, name := range taxStrategyNames {
		if name == n {
			return TaxStrategy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStrategy, s)
}

func (s TaxStrategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *TaxStrategy) UnmarshalText(text []byte) error {
	parsed, err := ParseTaxStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// RebalanceMode selects which differences between current and target become trades
type RebalanceMode int

const (
	ModeStrict RebalanceMode = iota
	ModeBands
	ModeInflow
)

var rebalanceModeNames = [...]string{
	ModeStrict: "strict",
	ModeBands:  "bands",
	ModeInflow: "inflow",
}

func (m RebalanceMode) String() string {
	if m < 0 || int(m) >= len(rebalanceModeNames) {
		return fmt.Sprintf("RebalanceMode(%d)", int(m))
	}
	return rebalanceModeNames[m]
}

// ParseRebalanceMode parses "strict", "bands" or "inflow"
func ParseRebalanceMode(s string) (RebalanceMode, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	for i, name := range rebalanceModeNames {
		if name == n {
			return RebalanceMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidRebalanceMode, s)
}

func (m RebalanceMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *RebalanceMode) UnmarshalText(text []byte) error {
	parsed, err := ParseRebalanceMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// RebalanceModes holds one mode for taxable accounts and one for tax-advantaged accounts
type RebalanceModes struct {
	Taxable       RebalanceMode `yaml:"taxable" json:"taxable"`
	TaxAdvantaged RebalanceMode `yaml:"tax_advantaged" json:"tax_advantaged"`
}

// For returns the mode that applies to an account of the given tax category
func (rm RebalanceModes) For(tc TaxCategory) RebalanceMode {
	if tc.IsTaxAdvantaged() {
		return rm.TaxAdvantaged
	}
	return rm.Taxable
}

// MacroSplit is the stock/bond/cash mix in percent; equity is the remainder
type MacroSplit struct {
	BondPercent decimal.Decimal `yaml:"bond_percent" json:"bond_percent"`
	CashPercent decimal.Decimal `yaml:"cash_percent" json:"cash_percent"`
}

var hundred = decimal.NewFromInt(100)

func clampPercent(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// Normalized clamps both percentages to [0,100] and trims cash so bond+cash never exceeds 100
func (ms MacroSplit) Normalized() MacroSplit {
	bond := clampPercent(ms.BondPercent)
	cash := clampPercent(ms.CashPercent)
	if room := hundred.Sub(bond); cash.GreaterThan(room) {
		cash = room
	}
	return MacroSplit{BondPercent: bond, CashPercent: cash}
}

// EquityPercent returns 100 - bond - cash of the normalized split
func (ms MacroSplit) EquityPercent() decimal.Decimal {
	n := ms.Normalized()
	return hundred.Sub(n.BondPercent).Sub(n.CashPercent)
}

// GlidePathConfig bounds the age-based bond curve.
// A nil BondMin or BondMax means the default; an explicit 0 is kept.
type GlidePathConfig struct {
	Enabled       bool `yaml:"enabled" json:"enabled"`
	StartAge      int  `yaml:"start_age,omitempty" json:"start_age,omitempty"`
	RetirementAge int  `yaml:"retirement_age,omitempty" json:"retirement_age,omitempty"`
	BondMin       *int `yaml:"bond_min,omitempty" json:"bond_min,omitempty"`
	BondMax       *int `yaml:"bond_max,omitempty" json:"bond_max,omitempty"`
}

// Settings configures target allocation, tax location and rebalancing
type Settings struct {
	EmergencyFundTarget decimal.Decimal            `yaml:"emergency_fund_target" json:"emergency_fund_target"`
	MacroSplit          MacroSplit                 `yaml:"macro_split" json:"macro_split"`
	EquityWeights       map[string]decimal.Decimal `yaml:"equity_weights" json:"equity_weights"`
	TaxStrategy         TaxStrategy                `yaml:"tax_strategy" json:"tax_strategy"`
	RebalanceModes      RebalanceModes             `yaml:"rebalance_modes" json:"rebalance_modes"`
	GlidePath           GlidePathConfig            `yaml:"glide_path,omitempty" json:"glide_path,omitempty"`
}

// Profile carries the personal data the glide path needs
type Profile struct {
	Age        int       `yaml:"age,omitempty" json:"age,omitempty"`
	BirthDate  time.Time `yaml:"birth_date,omitempty" json:"birth_date,omitempty"`
	TargetYear int       `yaml:"target_year,omitempty" json:"target_year,omitempty"`
}

// Portfolio is the full snapshot one engine run consumes
type Portfolio struct {
	Profile  Profile   `yaml:"profile,omitempty" json:"profile,omitempty"`
	Settings Settings  `yaml:"settings" json:"settings"`
	Accounts []Account `yaml:"accounts" json:"accounts"`
}

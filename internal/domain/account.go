package domain

import (
	"github.com/shopspring/decimal"
)

// Holding is a single position inside an account
type Holding struct {
	ID           string          `yaml:"id" json:"id"`
	Name         string          `yaml:"name" json:"name"`
	AssetClassID string          `yaml:"asset_class" json:"asset_class"`
	Value        decimal.Decimal `yaml:"value" json:"value"`
	IsEmergency  bool            `yaml:"emergency,omitempty" json:"emergency,omitempty"`
}

// Account is an investment account of a single tax category
type Account struct {
	ID              string          `yaml:"id" json:"id"`
	Name            string          `yaml:"name" json:"name"`
	TaxCategory     TaxCategory     `yaml:"tax_category" json:"tax_category"`
	Cash            decimal.Decimal `yaml:"cash" json:"cash"`
	CashIsEmergency bool            `yaml:"cash_is_emergency,omitempty" json:"cash_is_emergency,omitempty"`
	Holdings        []Holding       `yaml:"holdings,omitempty" json:"holdings,omitempty"`
}

// nonNegative treats negative balances as zero
func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// CashBalance returns the cash balance, never negative
func (a *Account) CashBalance() decimal.Decimal { return nonNegative(a.Cash) }

// HoldingValue returns the holding's value, never negative
func (h *Holding) HoldingValue() decimal.Decimal { return nonNegative(h.Value) }

// Total returns cash plus every holding value
func (a *Account) Total() decimal.Decimal {
	total := a.CashBalance()
	for i := range a.Holdings {
		total = total.Add(a.Holdings[i].HoldingValue())
	}
	return total
}

// Shielded returns the amount flagged as emergency reserve in this account
func (a *Account) Shielded() decimal.Decimal {
	shielded := decimal.Zero
	if a.CashIsEmergency {
		shielded = shielded.Add(a.CashBalance())
	}
	for i := range a.Holdings {
		if a.Holdings[i].IsEmergency {
			shielded = shielded.Add(a.Holdings[i].HoldingValue())
		}
	}
	return shielded
}

// InvestableCapacity is the account total less its shielded funds
func (a *Account) InvestableCapacity() decimal.Decimal {
	return a.Total().Sub(a.Shielded())
}

// InvestableCash is the uninvested cash not reserved for emergencies
func (a *Account) InvestableCash() decimal.Decimal {
	if a.CashIsEmergency {
		return decimal.Zero
	}
	return a.CashBalance()
}

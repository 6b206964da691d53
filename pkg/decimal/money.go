package decimal

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Hundred returns 100 as a decimal
func Hundred() decimal.Decimal { return hundred }

// NonNegative clamps negative amounts to zero
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// SafeDiv divides a by b and returns zero when b is zero
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// Percent returns part as a percentage of whole, zero when whole is zero
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	return SafeDiv(part, whole).Mul(hundred)
}

// OfPercent returns pct percent of amount
func OfPercent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// Sum adds every value in the map
func Sum(values map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// Min returns the smaller of two amounts
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Max returns the larger of two amounts
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// RoundCents rounds to cents using banker's rounding
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

// ApproxEqual reports whether a and b differ by less than epsilon
func ApproxEqual(a, b, epsilon decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(epsilon)
}

// FormatUSD renders an amount as US dollars with thousands separators, e.g. "$1,234.56"
func FormatUSD(d decimal.Decimal) string {
	cents := d.Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

// FormatSignedUSD prefixes positive amounts with "+"
func FormatSignedUSD(d decimal.Decimal) string {
	s := FormatUSD(d)
	if d.Round(2).IsPositive() && !strings.HasPrefix(s, "+") {
		return "+" + s
	}
	return s
}

// FormatPercent renders a percentage with one decimal, e.g. "12.5%"
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

package calculation

import (
	"testing"

	"github.com/rpgo/allocation-planner/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var testEpsilon = decimal.NewFromFloat(0.01)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func assertDecimal(t *testing.T, expected, actual decimal.Decimal, what string) {
	t.Helper()
	assert.True(t, expected.Sub(actual).Abs().LessThan(testEpsilon),
		"%s: expected %s, got %s", what, expected.StringFixed(2), actual.StringFixed(2))
}

func cashAccount(id string, tc domain.TaxCategory, cash float64) domain.Account {
	return domain.Account{ID: id, Name: id, TaxCategory: tc, Cash: d(cash)}
}

func holding(id, assetClass string, value float64) domain.Holding {
	return domain.Holding{ID: id, Name: id, AssetClassID: assetClass, Value: d(value)}
}

func split(bond, cash float64) domain.MacroSplit {
	return domain.MacroSplit{BondPercent: d(bond), CashPercent: d(cash)}
}

func findAction(actions []domain.Action, id string) (domain.Action, bool) {
	for _, a := range actions {
		if a.AssetClassID == id {
			return a, true
		}
	}
	return domain.Action{}, false
}

package output

import (
	"strconv"

	"github.com/rpgo/allocation-planner/internal/domain"
	dmath "github.com/rpgo/allocation-planner/pkg/decimal"
	"github.com/shopspring/decimal"
)

// FormatCurrency formats a decimal as USD with thousands separators and 2 decimals.
func FormatCurrency(amount decimal.Decimal) string { return dmath.FormatUSD(amount) }

// FormatSignedCurrency is FormatCurrency with an explicit sign on positive amounts.
func FormatSignedCurrency(amount decimal.Decimal) string { return dmath.FormatSignedUSD(amount) }

// FormatPercentage formats a decimal as a percentage with 2 decimals.
func FormatPercentage(amount decimal.Decimal) string { return amount.StringFixed(2) + "%" }

// assetName returns the catalog display name, or the raw id when unknown
func assetName(id string) string {
	ac, err := domain.LookupAssetClass(id)
	if err != nil {
		return id
	}
	return ac.Name
}

// sortedAssetIDs returns the keys of m in catalog order
func sortedAssetIDs(m map[string]decimal.Decimal) []string {
	ids := make([]string, 0, len(m))
	for _, id := range domain.AssetClassIDs() {
		if _, ok := m[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func intToString(i int) string { return strconv.Itoa(i) }

func boolToString(b bool) string { return strconv.FormatBool(b) }

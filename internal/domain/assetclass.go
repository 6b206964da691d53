package domain

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reserved asset-class ids produced directly by the macro split.
const (
	CashAssetID = "cash"
	BondAssetID = "bonds"

	// DefaultEquityAssetID receives the whole equity target when no equity weights are configured
	DefaultEquityAssetID = "us_broad"
)

// AssetCategory separates growth assets from fixed income and cash
type AssetCategory string

const (
	AssetCategoryEquity AssetCategory = "equity"
	AssetCategoryFixed  AssetCategory = "fixed"
)

// TaxCategory identifies how growth and income inside an account are taxed
type TaxCategory string

const (
	TaxCategoryTaxable  TaxCategory = "taxable"
	TaxCategoryDeferred TaxCategory = "deferred"
	TaxCategoryRoth     TaxCategory = "roth"
)

// TaxCategories lists the tax categories in bucket order
var TaxCategories = []TaxCategory{TaxCategoryTaxable, TaxCategoryDeferred, TaxCategoryRoth}

// ParseTaxCategory parses a tax category name (case-insensitive)
func ParseTaxCategory(s string) (TaxCategory, error) {
	switch TaxCategory(strings.ToLower(strings.TrimSpace(s))) {
	case TaxCategoryTaxable:
		return TaxCategoryTaxable, nil
	case TaxCategoryDeferred:
		return TaxCategoryDeferred, nil
	case TaxCategoryRoth:
		return TaxCategoryRoth, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTaxCategory, s)
}

// IsTaxAdvantaged reports whether the category is a deferred or Roth account
func (tc TaxCategory) IsTaxAdvantaged() bool {
	return tc == TaxCategoryDeferred || tc == TaxCategoryRoth
}

// UnmarshalYAML rejects unknown tax categories
func (tc *TaxCategory) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseTaxCategory(s)
	if err != nil {
		return err
	}
	*tc = parsed
	return nil
}

// AssetClass is one entry of the static asset-class catalog
type AssetClass struct {
	ID            string
	Name          string
	Color         string // hex color used by charts
	Category      AssetCategory
	International bool
	// TaxPreference is the ordered list of tax categories this asset is placed in
	TaxPreference []TaxCategory
}

// IsEquity reports whether the asset class is a growth asset
func (ac AssetClass) IsEquity() bool { return ac.Category == AssetCategoryEquity }

var (
	prefTaxableFirst  = []TaxCategory{TaxCategoryTaxable, TaxCategoryRoth, TaxCategoryDeferred}
	prefRothFirst     = []TaxCategory{TaxCategoryRoth, TaxCategoryTaxable, TaxCategoryDeferred}
	prefDeferredFirst = []TaxCategory{TaxCategoryDeferred, TaxCategoryRoth, TaxCategoryTaxable}
	prefCash          = []TaxCategory{TaxCategoryTaxable, TaxCategoryDeferred, TaxCategoryRoth}
)

// catalog is declared in the order used for every deterministic iteration
var catalog = []AssetClass{
	{ID: CashAssetID, Name: "Cash & Money Market", Color: "#9ca3af", Category: AssetCategoryFixed, TaxPreference: prefCash},
	{ID: BondAssetID, Name: "Total Bond Market", Color: "#2563eb", Category: AssetCategoryFixed, TaxPreference: prefDeferredFirst},
	{ID: "tips", Name: "Inflation-Protected Bonds", Color: "#3b82f6", Category: AssetCategoryFixed, TaxPreference: prefDeferredFirst},
	{ID: "treasuries", Name: "US Treasuries", Color: "#1d4ed8", Category: AssetCategoryFixed, TaxPreference: prefDeferredFirst},
	{ID: "corporate_bonds", Name: "Corporate Bonds", Color: "#60a5fa", Category: AssetCategoryFixed, TaxPreference: prefDeferredFirst},
	{ID: "high_yield", Name: "High-Yield Bonds", Color: "#93c5fd", Category: AssetCategoryFixed, TaxPreference: prefDeferredFirst},
	{ID: "intl_bonds", Name: "International Bonds", Color: "#0ea5e9", Category: AssetCategoryFixed, International: true, TaxPreference: prefDeferredFirst},
	{ID: "munis", Name: "Municipal Bonds", Color: "#38bdf8", Category: AssetCategoryFixed, TaxPreference: []TaxCategory{TaxCategoryTaxable, TaxCategoryDeferred, TaxCategoryRoth}},
	{ID: "stable_value", Name: "Stable Value", Color: "#7dd3fc", Category: AssetCategoryFixed, TaxPreference: prefDeferredFirst},
	{ID: "us_broad", Name: "US Total Market", Color: "#16a34a", Category: AssetCategoryEquity, TaxPreference: prefTaxableFirst},
	{ID: "us_large", Name: "US Large Cap", Color: "#22c55e", Category: AssetCategoryEquity, TaxPreference: prefTaxableFirst},
	{ID: "us_large_value", Name: "US Large Cap Value", Color: "#15803d", Category: AssetCategoryEquity, TaxPreference: prefRothFirst},
	{ID: "us_large_growth", Name: "US Large Cap Growth", Color: "#4ade80", Category: AssetCategoryEquity, TaxPreference: prefTaxableFirst},
	{ID: "us_mid", Name: "US Mid Cap", Color: "#65a30d", Category: AssetCategoryEquity, TaxPreference: prefTaxableFirst},
	{ID: "us_small", Name: "US Small Cap", Color: "#84cc16", Category: AssetCategoryEquity, TaxPreference: prefRothFirst},
	{ID: "us_small_value", Name: "US Small Cap Value", Color: "#a3e635", Category: AssetCategoryEquity, TaxPreference: prefRothFirst},
	{ID: "us_dividend", Name: "US Dividend", Color: "#059669", Category: AssetCategoryEquity, TaxPreference: []TaxCategory{TaxCategoryDeferred, TaxCategoryRoth, TaxCategoryTaxable}},
	{ID: "reit", Name: "Real Estate (REITs)", Color: "#d97706", Category: AssetCategoryEquity, TaxPreference: []TaxCategory{TaxCategoryDeferred, TaxCategoryRoth, TaxCategoryTaxable}},
	{ID: "intl_developed", Name: "International Developed", Color: "#9333ea", Category: AssetCategoryEquity, International: true, TaxPreference: prefTaxableFirst},
	{ID: "intl_small", Name: "International Small Cap", Color: "#a855f7", Category: AssetCategoryEquity, International: true, TaxPreference: prefTaxableFirst},
	{ID: "intl_value", Name: "International Value", Color: "#7e22ce", Category: AssetCategoryEquity, International: true, TaxPreference: prefTaxableFirst},
	{ID: "emerging", Name: "Emerging Markets", Color: "#db2777", Category: AssetCategoryEquity, International: true, TaxPreference: prefTaxableFirst},
	{ID: "global", Name: "Global Stock Market", Color: "#6366f1", Category: AssetCategoryEquity, International: true, TaxPreference: prefTaxableFirst},
	{ID: "commodities", Name: "Commodities", Color: "#b45309", Category: AssetCategoryEquity, TaxPreference: []TaxCategory{TaxCategoryDeferred, TaxCategoryRoth, TaxCategoryTaxable}},
	{ID: "crypto", Name: "Crypto", Color: "#f59e0b", Category: AssetCategoryEquity, TaxPreference: prefRothFirst},
}

var catalogIndex = func() map[string]int {
	idx := make(map[string]int, len(catalog))
	for i, ac := range catalog {
		idx[ac.ID] = i
	}
	return idx
}()

// AssetClasses returns the catalog in declaration order.
// The returned slice is a copy; the catalog itself cannot be modified.
func AssetClasses() []AssetClass {
	out := make([]AssetClass, len(catalog))
	for i, ac := range catalog {
		ac.TaxPreference = append([]TaxCategory(nil), ac.TaxPreference...)
		out[i] = ac
	}
	return out
}

// AssetClassIDs returns every catalog id in declaration order
func AssetClassIDs() []string {
	ids := make([]string, len(catalog))
	for i, ac := range catalog {
		ids[i] = ac.ID
	}
	return ids
}

// LookupAssetClass finds an asset class by id
func LookupAssetClass(id string) (AssetClass, error) {
	i, ok := catalogIndex[id]
	if !ok {
		return AssetClass{}, fmt.Errorf("%w: %q", ErrUnknownAssetClass, id)
	}
	ac := catalog[i]
	ac.TaxPreference = append([]TaxCategory(nil), ac.TaxPreference...)
	return ac, nil
}

// IsKnownAssetClass reports whether id exists in the catalog
func IsKnownAssetClass(id string) bool {
	_, ok := catalogIndex[id]
	return ok
}

// CatalogOrder returns the position of id in the catalog, or -1 when unknown
func CatalogOrder(id string) int {
	if i, ok := catalogIndex[id]; ok {
		return i
	}
	return -1
}

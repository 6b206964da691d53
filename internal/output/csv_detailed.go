package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/allocation-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// CSVDetailedExporter provides current and target dollars per account and asset class,
// including rows that need no trade.
type CSVDetailedExporter struct{}

func (c CSVDetailedExporter) Name() string { return "detailed-csv" }

func (c CSVDetailedExporter) Format(plan *domain.RebalancePlan) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Account", "TaxCategory", "AssetClass", "Current", "Target", "Diff", "Traded", "BandsTriggered"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, id := range plan.AccountOrder {
		ap := plan.AccountActions[id]
		traded := make(map[string]bool, len(ap.Actions))
		for _, a := range ap.Actions {
			traded[a.AssetClassID] = true
		}
		union := make(map[string]decimal.Decimal, len(ap.CurrentHoldings)+len(ap.TargetHoldings))
		for k := range ap.CurrentHoldings {
			union[k] = decimal.Zero
		}
		for k := range ap.TargetHoldings {
			union[k] = decimal.Zero
		}
		for _, asset := range sortedAssetIDs(union) {
			cur, tgt := ap.CurrentHoldings[asset], ap.TargetHoldings[asset]
			row := []string{
				ap.AccountID,
				string(ap.TaxCategory),
				asset,
				cur.StringFixed(2),
				tgt.StringFixed(2),
				tgt.Sub(cur).StringFixed(2),
				boolToString(traded[asset]),
				boolToString(ap.Triggered),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

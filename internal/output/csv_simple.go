package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/allocation-planner/internal/domain"
)

// CSVSummarizer implements the action CSV output (one row per trade, accounts in input order).
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(plan *domain.RebalancePlan) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Account", "AccountName", "TaxCategory", "Mode", "AssetClass", "Action", "Current", "Target", "Diff", "Explanation"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, id := range plan.AccountOrder {
		ap := plan.AccountActions[id]
		for _, a := range ap.Actions {
			row := []string{
				ap.AccountID,
				ap.AccountName,
				string(ap.TaxCategory),
				ap.Mode.String(),
				a.AssetClassID,
				string(a.Action),
				a.Current.StringFixed(2),
				a.Target.StringFixed(2),
				a.Diff.StringFixed(2),
				a.Explanation,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

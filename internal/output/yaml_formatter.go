package output

import (
	"github.com/rpgo/allocation-planner/internal/domain"
	"gopkg.in/yaml.v3"
)

// YAMLFormatter serializes the per-account actions as YAML.
type YAMLFormatter struct{}

func (y YAMLFormatter) Name() string { return "yaml" }

type yamlAction struct {
	AssetClass  string `yaml:"asset_class"`
	Action      string `yaml:"action"`
	Current     string `yaml:"current"`
	Target      string `yaml:"target"`
	Diff        string `yaml:"diff"`
	Explanation string `yaml:"explanation,omitempty"`
}

type yamlAccount struct {
	ID              string       `yaml:"id"`
	Name            string       `yaml:"name"`
	TaxCategory     string       `yaml:"tax_category"`
	Mode            string       `yaml:"mode"`
	AvailableCash   string       `yaml:"available_cash"`
	CashAfterTrades string       `yaml:"cash_after_trades"`
	Actions         []yamlAction `yaml:"actions"`
}

type yamlPlan struct {
	Strategy  string           `yaml:"strategy"`
	Emergency string           `yaml:"emergency_fund"`
	Accounts  []yamlAccount    `yaml:"accounts"`
	Warnings  []domain.Warning `yaml:"warnings,omitempty"`
}

func (y YAMLFormatter) Format(plan *domain.RebalancePlan) ([]byte, error) {
	out := yamlPlan{
		Strategy:  plan.Strategy.String(),
		Emergency: string(plan.EmergencyFundAction.Status),
		Warnings:  plan.Warnings,
	}
	for _, id := range plan.AccountOrder {
		ap := plan.AccountActions[id]
		acct := yamlAccount{
			ID:              ap.AccountID,
			Name:            ap.AccountName,
			TaxCategory:     string(ap.TaxCategory),
			Mode:            ap.Mode.String(),
			AvailableCash:   ap.AvailableCash.StringFixed(2),
			CashAfterTrades: ap.CashAfterTrades.StringFixed(2),
			Actions:         make([]yamlAction, 0, len(ap.Actions)),
		}
		for _, a := range ap.Actions {
			acct.Actions = append(acct.Actions, yamlAction{
				AssetClass:  a.AssetClassID,
				Action:      string(a.Action),
				Current:     a.Current.StringFixed(2),
				Target:      a.Target.StringFixed(2),
				Diff:        a.Diff.StringFixed(2),
				Explanation: a.Explanation,
			})
		}
		out.Accounts = append(out.Accounts, acct)
	}
	return yaml.Marshal(out)
}

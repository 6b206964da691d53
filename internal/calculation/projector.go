package calculation

import (
	"github.com/rpgo/allocation-planner/internal/domain"
	dmath "github.com/rpgo/allocation-planner/pkg/decimal"
	"github.com/shopspring/decimal"
)

// AccountProjection holds one account's current and target holdings keyed by asset class
type AccountProjection struct {
	AccountID  string
	Investable decimal.Decimal
	// Current excludes shielded funds; uninvested cash is keyed under the cash asset
	Current map[string]decimal.Decimal
	Target  map[string]decimal.Decimal
	// SettlementCash is the uninvested, non-emergency account cash
	SettlementCash decimal.Decimal
	// CashHoldings is the non-emergency value of cash-class holdings
	CashHoldings decimal.Decimal
}

// AccountProjector distributes bucket allocations across member accounts
type AccountProjector struct{}

// NewAccountProjector creates a projector
func NewAccountProjector() *AccountProjector {
	return &AccountProjector{}
}

// Project returns one projection per account, in input order.
// Bucket strategies split each bucket by the account's share of bucket capacity;
// without buckets every account gets the global targets scaled by its share
// of the effective investable total.
func (ap *AccountProjector) Project(accounts []domain.Account, placement *Placement, metrics *domain.PortfolioMetrics) []AccountProjection {
	out := make([]AccountProjection, 0, len(accounts))
	for i := range accounts {
		acct := &accounts[i]
		capacity := acct.InvestableCapacity()
		current := currentHoldings(acct)
		settlement := acct.InvestableCash()
		proj := AccountProjection{
			AccountID:      acct.ID,
			Investable:     capacity,
			Current:        current,
			Target:         make(map[string]decimal.Decimal),
			SettlementCash: settlement,
			CashHoldings:   dmath.NonNegative(current[domain.CashAssetID].Sub(settlement)),
		}

		if placement.UsesBuckets {
			bucket := placement.Bucket(acct.TaxCategory)
			share := dmath.SafeDiv(capacity, bucket.Capacity)
			for id, v := range bucket.Allocations {
				proj.Target[id] = v.Mul(share)
			}
		} else {
			ratio := dmath.SafeDiv(capacity, metrics.EffectiveInvestableTotal)
			for id, v := range metrics.Targets {
				proj.Target[id] = v.Mul(ratio)
			}
		}
		out = append(out, proj)
	}
	return out
}

// currentHoldings reshapes an account into asset-class-keyed dollars, shielded funds excluded
func currentHoldings(acct *domain.Account) map[string]decimal.Decimal {
	cur := make(map[string]decimal.Decimal, len(acct.Holdings)+1)
	if cash := acct.InvestableCash(); cash.IsPositive() {
		cur[domain.CashAssetID] = cash
	}
	for j := range acct.Holdings {
		h := &acct.Holdings[j]
		if h.IsEmergency {
			continue
		}
		addTo(cur, h.AssetClassID, h.HoldingValue())
	}
	return cur
}

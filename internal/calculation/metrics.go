package calculation

import (
	"fmt"
	"sort"

	"github.com/rpgo/allocation-planner/internal/domain"
	dmath "github.com/rpgo/allocation-planner/pkg/decimal"
	"github.com/shopspring/decimal"
)

// MetricsAggregator scans all accounts and derives current allocation and dollar targets
type MetricsAggregator struct {
	Logger Logger
}

// NewMetricsAggregator creates a metrics aggregator
func NewMetricsAggregator(logger Logger) *MetricsAggregator {
	if logger == nil {
		logger = NopLogger{}
	}
	return &MetricsAggregator{Logger: logger}
}

// Aggregate computes PortfolioMetrics. It fails only when a holding or an
// equity weight references an asset class missing from the catalog; weights on
// fixed-income classes are dropped with a warning.
func (ma *MetricsAggregator) Aggregate(accounts []domain.Account, settings domain.Settings) (*domain.PortfolioMetrics, []domain.Warning, error) {
	var warnings []domain.Warning

	m := &domain.PortfolioMetrics{
		TotalNetWorth:     decimal.Zero,
		InvestableTotal:   decimal.Zero,
		EmergencyActual:   decimal.Zero,
		EmergencyTarget:   dmath.NonNegative(settings.EmergencyFundTarget),
		CurrentAllocation: make(map[string]decimal.Decimal),
		Targets:           make(map[string]decimal.Decimal),
		CurrentPercent:    make(map[string]decimal.Decimal),
		TargetPercent:     make(map[string]decimal.Decimal),
		AccountTotals:     make(map[string]decimal.Decimal, len(accounts)),
	}

	for i := range accounts {
		acct := &accounts[i]
		total := acct.Total()
		m.AccountTotals[acct.ID] = total
		m.TotalNetWorth = m.TotalNetWorth.Add(total)

		cash := acct.CashBalance()
		if acct.CashIsEmergency {
			m.EmergencyActual = m.EmergencyActual.Add(cash)
		} else {
			m.InvestableTotal = m.InvestableTotal.Add(cash)
			addTo(m.CurrentAllocation, domain.CashAssetID, cash)
		}

		for j := range acct.Holdings {
			h := &acct.Holdings[j]
			if !domain.IsKnownAssetClass(h.AssetClassID) {
				return nil, nil, fmt.Errorf("account %s holding %q: %w: %q", acct.ID, h.Name, domain.ErrUnknownAssetClass, h.AssetClassID)
			}
			value := h.HoldingValue()
			if h.IsEmergency {
				m.EmergencyActual = m.EmergencyActual.Add(value)
				continue
			}
			m.InvestableTotal = m.InvestableTotal.Add(value)
			addTo(m.CurrentAllocation, h.AssetClassID, value)
		}
	}

	m.EmergencySurplus = dmath.NonNegative(m.EmergencyActual.Sub(m.EmergencyTarget))
	m.EffectiveInvestableTotal = m.InvestableTotal.Add(m.EmergencySurplus)

	split := settings.MacroSplit.Normalized()
	if !split.BondPercent.Equal(settings.MacroSplit.BondPercent) || !split.CashPercent.Equal(settings.MacroSplit.CashPercent) {
		ma.Logger.Warnf("macro split bond=%s cash=%s clamped to bond=%s cash=%s",
			settings.MacroSplit.BondPercent, settings.MacroSplit.CashPercent, split.BondPercent, split.CashPercent)
		warnings = append(warnings, domain.Warning{
			Code:    domain.WarnSplitClamped,
			Message: fmt.Sprintf("macro split clamped to %s%% bonds / %s%% cash", split.BondPercent, split.CashPercent),
		})
	}
	m.Split = split

	total := m.EffectiveInvestableTotal
	m.Targets[domain.CashAssetID] = dmath.OfPercent(total, split.CashPercent)
	m.Targets[domain.BondAssetID] = dmath.OfPercent(total, split.BondPercent)
	equityTotal := dmath.OfPercent(total, split.EquityPercent())

	weights, ignored, fallback, err := equityWeights(settings.EquityWeights)
	if err != nil {
		return nil, nil, err
	}
	for _, id := range ignored {
		ma.Logger.Warnf("equity weight on %s ignored: not an equity asset class", id)
		warnings = append(warnings, domain.Warning{
			Code:         domain.WarnWeightIgnored,
			Message:      fmt.Sprintf("equity weight on %s ignored; it is not an equity asset class", id),
			AssetClassID: id,
		})
	}
	if fallback && equityTotal.IsPositive() {
		ma.Logger.Warnf("equity weights sum to zero; spreading equity target uniformly")
		warnings = append(warnings, domain.Warning{
			Code:    domain.WarnEquityWeights,
			Message: "equity weights sum to zero; equity target spread uniformly",
		})
	}
	weightSum := decimal.Zero
	for _, w := range weights {
		weightSum = weightSum.Add(w.weight)
	}
	for _, w := range weights {
		m.Targets[w.id] = m.Targets[w.id].Add(equityTotal.Mul(dmath.SafeDiv(w.weight, weightSum)))
	}

	for id, v := range m.CurrentAllocation {
		m.CurrentPercent[id] = dmath.Percent(v, m.InvestableTotal)
	}
	for id, v := range m.Targets {
		m.TargetPercent[id] = dmath.Percent(v, total)
	}

	ma.Logger.Debugf("metrics: net worth %s, investable %s, effective %s, emergency %s/%s",
		m.TotalNetWorth.StringFixed(2), m.InvestableTotal.StringFixed(2), total.StringFixed(2),
		m.EmergencyActual.StringFixed(2), m.EmergencyTarget.StringFixed(2))

	return m, warnings, nil
}

type assetWeight struct {
	id     string
	weight decimal.Decimal
}

// equityWeights validates and orders the configured weights by catalog position,
// returning the fixed-income ids it dropped in catalog order.
// A zero total becomes a uniform spread; no usable weights means 100% DefaultEquityAssetID.
func equityWeights(raw map[string]decimal.Decimal) (weights []assetWeight, ignored []string, fallback bool, err error) {
	weights = make([]assetWeight, 0, len(raw))
	sum := decimal.Zero
	for id, w := range raw {
		ac, err := domain.LookupAssetClass(id)
		if err != nil {
			return nil, nil, false, fmt.Errorf("equity weights: %w", err)
		}
		if !ac.IsEquity() {
			ignored = append(ignored, id)
			continue
		}
		w = dmath.NonNegative(w)
		sum = sum.Add(w)
		weights = append(weights, assetWeight{id: id, weight: w})
	}
	sort.Slice(weights, func(i, j int) bool {
		return domain.CatalogOrder(weights[i].id) < domain.CatalogOrder(weights[j].id)
	})
	sort.Slice(ignored, func(i, j int) bool {
		return domain.CatalogOrder(ignored[i]) < domain.CatalogOrder(ignored[j])
	})

	if len(weights) == 0 {
		return []assetWeight{{id: domain.DefaultEquityAssetID, weight: decimal.NewFromInt(100)}}, ignored, true, nil
	}
	if sum.IsZero() {
		for i := range weights {
			weights[i].weight = decimal.NewFromInt(1)
		}
		return weights, ignored, true, nil
	}
	return weights, ignored, false, nil
}

func addTo(m map[string]decimal.Decimal, id string, v decimal.Decimal) {
	m[id] = m[id].Add(v)
}

package calculation

import (
	"context"
	"fmt"
	"time"

	"github.com/rpgo/allocation-planner/internal/domain"
	"github.com/rpgo/allocation-planner/pkg/dateutil"
	"github.com/shopspring/decimal"
)

var emergencyEpsilon = decimal.NewFromInt(1)

// CalculationEngine runs the full planning pipeline:
// metrics → tax-location buckets → per-account targets → per-mode actions.
// It holds no state between runs; every call recomputes from the snapshot.
type CalculationEngine struct {
	Metrics    *MetricsAggregator
	Allocator  *TaxLocationAllocator
	Projector  *AccountProjector
	Rebalancer *RebalanceModeEngine
	Logger     Logger
	// Now supplies the date used to turn a birth date or target year into an age
	Now func() time.Time
}

// NewCalculationEngine creates a new calculation engine
func NewCalculationEngine() *CalculationEngine {
	logger := NopLogger{}
	return &CalculationEngine{
		Metrics:    NewMetricsAggregator(logger),
		Allocator:  NewTaxLocationAllocator(logger),
		Projector:  NewAccountProjector(),
		Rebalancer: NewRebalanceModeEngine(logger),
		Logger:     logger,
		Now:        time.Now,
	}
}

// SetLogger sets the logger for the engine and its stages. If nil is provided, a no-op logger is used.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		l = NopLogger{}
	}
	ce.Logger = l
	ce.Metrics.Logger = l
	ce.Allocator.Logger = l
	ce.Rebalancer.Logger = l
}

// ResolveSettings applies the glide path, when enabled, to the configured bond percentage
func (ce *CalculationEngine) ResolveSettings(p *domain.Portfolio) (domain.Settings, []domain.Warning) {
	settings := p.Settings
	if !settings.GlidePath.Enabled {
		return settings, nil
	}
	gp := NewGlidePath(settings.GlidePath)
	age, ok := ce.profileAge(p.Profile, gp)
	if !ok {
		ce.Logger.Warnf("glide path enabled but profile has no age, birth date or target year")
		return settings, []domain.Warning{{
			Code:    domain.WarnGlidePathNoAge,
			Message: "glide path enabled without age, birth date or target year; configured bond percentage kept",
		}}
	}
	bond := gp.BondPercent(age)
	ce.Logger.Infof("glide path: age %d → %d%% bonds", age, bond)
	settings.MacroSplit.BondPercent = decimal.NewFromInt(int64(bond))
	return settings, nil
}

func (ce *CalculationEngine) profileAge(profile domain.Profile, gp GlidePath) (int, bool) {
	now := ce.Now()
	switch {
	case profile.Age > 0:
		return profile.Age, true
	case !profile.BirthDate.IsZero():
		return dateutil.Age(profile.BirthDate, now), true
	case profile.TargetYear > 0:
		return dateutil.AgeAtTarget(gp.RetirementAge, dateutil.YearsToTarget(profile.TargetYear, now)), true
	}
	return 0, false
}

// ComputeMetrics runs only the metrics stage
func (ce *CalculationEngine) ComputeMetrics(ctx context.Context, p *domain.Portfolio) (*domain.PortfolioMetrics, []domain.Warning, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if err := checkAccounts(p.Accounts); err != nil {
		return nil, nil, err
	}
	settings, warnings := ce.ResolveSettings(p)
	metrics, mw, err := ce.Metrics.Aggregate(p.Accounts, settings)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics: %w", err)
	}
	return metrics, append(warnings, mw...), nil
}

// Run computes the complete rebalance plan for a portfolio snapshot
func (ce *CalculationEngine) Run(ctx context.Context, p *domain.Portfolio) (*domain.RebalancePlan, error) {
	metrics, warnings, err := ce.ComputeMetrics(ctx, p)
	if err != nil {
		return nil, err
	}
	strategy := p.Settings.TaxStrategy

	placement, err := ce.Allocator.Allocate(metrics.Targets, p.Accounts, strategy)
	if err != nil {
		return nil, fmt.Errorf("tax location: %w", err)
	}
	for _, id := range domain.AssetClassIDs() {
		if left, ok := placement.Unplaced[id]; ok {
			warnings = append(warnings, domain.Warning{
				Code:         domain.WarnUnplacedTarget,
				Message:      fmt.Sprintf("%s of %s target has no room in its preferred accounts", left.StringFixed(2), id),
				AssetClassID: id,
				Amount:       left,
			})
		}
	}
	if !placement.UsesBuckets && metrics.EffectiveInvestableTotal.IsZero() && len(p.Accounts) > 0 {
		warnings = append(warnings, domain.Warning{
			Code:    domain.WarnMirroredNoTarget,
			Message: "mirrored strategy with no investable money; no targets produced",
		})
	}

	plan := &domain.RebalancePlan{
		Metrics:             *metrics,
		Strategy:            strategy,
		Buckets:             placement.OrderedBuckets(),
		Unplaced:            placement.Unplaced,
		EmergencyFundAction: emergencyAction(metrics),
		AccountOrder:        make([]string, 0, len(p.Accounts)),
		AccountActions:      make(map[string]domain.AccountPlan, len(p.Accounts)),
		Warnings:            warnings,
	}

	projections := ce.Projector.Project(p.Accounts, placement, metrics)
	for i, proj := range projections {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		acct := &p.Accounts[i]
		mode := p.Settings.RebalanceModes.For(acct.TaxCategory)
		available := proj.SettlementCash
		res, err := ce.Rebalancer.Rebalance(RebalanceInput{
			Current:       proj.Current,
			Target:        proj.Target,
			AvailableCash: available,
			CashHoldings:  proj.CashHoldings,
			Denominator:   proj.Investable,
			Mode:          mode,
		})
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", acct.ID, err)
		}

		ap := domain.AccountPlan{
			AccountID:       acct.ID,
			AccountName:     acct.Name,
			TaxCategory:     acct.TaxCategory,
			Mode:            mode,
			CurrentTotal:    acct.Total(),
			Investable:      proj.Investable,
			CurrentHoldings: proj.Current,
			TargetHoldings:  proj.Target,
			AvailableCash:   available,
			TotalBuys:       decimal.Zero,
			TotalSells:      decimal.Zero,
			Triggered:       res.Triggered,
			Actions:         res.Actions,
		}
		for _, a := range res.Actions {
			switch a.Action {
			case domain.ActionBuy:
				ap.TotalBuys = ap.TotalBuys.Add(a.Diff)
			case domain.ActionSell:
				ap.TotalSells = ap.TotalSells.Add(a.Diff.Abs())
			}
		}
		ap.CashAfterTrades = available.Sub(ap.TotalBuys).Add(ap.TotalSells)

		plan.AccountOrder = append(plan.AccountOrder, acct.ID)
		plan.AccountActions[acct.ID] = ap
	}

	ce.Logger.Infof("plan: %d accounts, %d actions, %d warnings", len(plan.AccountOrder), plan.ActionCount(), len(plan.Warnings))
	return plan, nil
}

// checkAccounts rejects missing and duplicate ids
func checkAccounts(accounts []domain.Account) error {
	seen := make(map[string]struct{}, len(accounts))
	for i := range accounts {
		id := accounts[i].ID
		if id == "" {
			return fmt.Errorf("account %d has no id", i)
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateAccount, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// emergencyAction compares the shielded reserve with its target
func emergencyAction(m *domain.PortfolioMetrics) domain.EmergencyFundAction {
	diff := m.EmergencyActual.Sub(m.EmergencyTarget)
	status := domain.EmergencyBalanced
	switch {
	case diff.GreaterThanOrEqual(emergencyEpsilon):
		status = domain.EmergencySurplus
	case diff.Neg().GreaterThanOrEqual(emergencyEpsilon):
		status = domain.EmergencyDeficit
	}
	return domain.EmergencyFundAction{
		Status:  status,
		Diff:    diff,
		Current: m.EmergencyActual,
		Target:  m.EmergencyTarget,
	}
}

package calculation

import (
	"fmt"
	"sort"

	"github.com/rpgo/allocation-planner/internal/domain"
	dmath "github.com/rpgo/allocation-planner/pkg/decimal"
	"github.com/shopspring/decimal"
)

// unplacedEpsilon ignores leftovers below one cent
var unplacedEpsilon = decimal.NewFromFloat(0.01)

// Placement is the allocator output: one bucket per tax category plus what no bucket could hold
type Placement struct {
	Buckets  map[domain.TaxCategory]*domain.Bucket
	Unplaced map[string]decimal.Decimal
	// UsesBuckets is false for strategies that project targets without capacity limits
	UsesBuckets bool
}

// Bucket returns the bucket for a tax category; it is never nil
func (p *Placement) Bucket(tc domain.TaxCategory) *domain.Bucket {
	if b, ok := p.Buckets[tc]; ok {
		return b
	}
	return &domain.Bucket{TaxCategory: tc, Allocations: map[string]decimal.Decimal{}}
}

// OrderedBuckets returns the buckets in taxable, deferred, roth order
func (p *Placement) OrderedBuckets() []domain.Bucket {
	out := make([]domain.Bucket, 0, len(domain.TaxCategories))
	for _, tc := range domain.TaxCategories {
		out = append(out, *p.Bucket(tc))
	}
	return out
}

// locationPolicy is the per-strategy behavior of the allocator
type locationPolicy interface {
	// bondPreference returns the bucket order used to place the bond asset
	bondPreference(ac domain.AssetClass) []domain.TaxCategory
	// bulkPlace runs before generic per-asset placement
	bulkPlace(f *bucketFiller)
	usesBuckets() bool
}

var locationPolicies = map[domain.TaxStrategy]locationPolicy{
	domain.StrategyStandard:     standardPolicy{},
	domain.StrategyRothGrowth:   rothGrowthPolicy{},
	domain.StrategyBalancedRoth: balancedRothPolicy{},
	domain.StrategyMirrored:     mirroredPolicy{},
}

var taxFirstBondOrder = []domain.TaxCategory{domain.TaxCategoryDeferred, domain.TaxCategoryTaxable, domain.TaxCategoryRoth}

type standardPolicy struct{}

func (standardPolicy) bondPreference(ac domain.AssetClass) []domain.TaxCategory {
	return ac.TaxPreference
}
func (standardPolicy) bulkPlace(*bucketFiller) {}
func (standardPolicy) usesBuckets() bool       { return true }

// rothGrowthPolicy fills Roth space with equity before anything else
type rothGrowthPolicy struct{}

func (rothGrowthPolicy) bondPreference(domain.AssetClass) []domain.TaxCategory { return taxFirstBondOrder }
func (rothGrowthPolicy) bulkPlace(f *bucketFiller) {
	f.fillProportionally(domain.TaxCategoryRoth, f.equityIDs(func(domain.AssetClass) bool { return true }))
}
func (rothGrowthPolicy) usesBuckets() bool { return true }

// balancedRothPolicy sends domestic equity to Roth and international equity to taxable,
// where the foreign tax credit remains usable
type balancedRothPolicy struct{}

func (balancedRothPolicy) bondPreference(domain.AssetClass) []domain.TaxCategory {
	return taxFirstBondOrder
}
func (balancedRothPolicy) bulkPlace(f *bucketFiller) {
	f.fillProportionally(domain.TaxCategoryRoth, f.equityIDs(func(ac domain.AssetClass) bool { return !ac.International }))
	f.fillProportionally(domain.TaxCategoryTaxable, f.equityIDs(func(ac domain.AssetClass) bool { return ac.International }))
}
func (balancedRothPolicy) usesBuckets() bool { return true }

// mirroredPolicy skips bucket placement; every account replicates the global mix
type mirroredPolicy struct{}

func (mirroredPolicy) bondPreference(ac domain.AssetClass) []domain.TaxCategory {
	return ac.TaxPreference
}
func (mirroredPolicy) bulkPlace(*bucketFiller) {}
func (mirroredPolicy) usesBuckets() bool       { return false }

// TaxLocationAllocator greedily fills tax-category buckets with dollar targets
type TaxLocationAllocator struct {
	Logger Logger
}

// NewTaxLocationAllocator creates an allocator
func NewTaxLocationAllocator(logger Logger) *TaxLocationAllocator {
	if logger == nil {
		logger = NopLogger{}
	}
	return &TaxLocationAllocator{Logger: logger}
}

// Allocate places targets into buckets whose capacity is the investable
// capacity of the accounts in each tax category. Leftover targets that no
// bucket in an asset's preference list can hold are reported as Unplaced.
func (a *TaxLocationAllocator) Allocate(targets map[string]decimal.Decimal, accounts []domain.Account, strategy domain.TaxStrategy) (*Placement, error) {
	policy, ok := locationPolicies[strategy]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidStrategy, strategy)
	}

	buckets := make(map[domain.TaxCategory]*domain.Bucket, len(domain.TaxCategories))
	for _, tc := range domain.TaxCategories {
		buckets[tc] = &domain.Bucket{
			TaxCategory: tc,
			Capacity:    decimal.Zero,
			Filled:      decimal.Zero,
			Allocations: make(map[string]decimal.Decimal),
		}
	}
	for i := range accounts {
		b, ok := buckets[accounts[i].TaxCategory]
		if !ok {
			return nil, fmt.Errorf("account %s: %w: %q", accounts[i].ID, domain.ErrInvalidTaxCategory, accounts[i].TaxCategory)
		}
		b.Capacity = b.Capacity.Add(accounts[i].InvestableCapacity())
	}

	placement := &Placement{Buckets: buckets, Unplaced: map[string]decimal.Decimal{}, UsesBuckets: policy.usesBuckets()}
	if !policy.usesBuckets() {
		return placement, nil
	}

	f, err := newBucketFiller(buckets, targets)
	if err != nil {
		return nil, err
	}

	f.placeByPreference(domain.CashAssetID, domain.TaxCategories)
	if bonds, err := domain.LookupAssetClass(domain.BondAssetID); err == nil {
		f.placeByPreference(domain.BondAssetID, policy.bondPreference(bonds))
	}

	policy.bulkPlace(f)

	for _, id := range f.order {
		if !f.remaining[id].IsPositive() {
			continue
		}
		ac, _ := domain.LookupAssetClass(id)
		prefs := ac.TaxPreference
		if id == domain.BondAssetID {
			prefs = policy.bondPreference(ac)
		} else if id == domain.CashAssetID {
			prefs = domain.TaxCategories
		}
		f.placeByPreference(id, prefs)
	}

	for _, id := range f.order {
		if left := f.remaining[id]; left.GreaterThanOrEqual(unplacedEpsilon) {
			placement.Unplaced[id] = left
			a.Logger.Warnf("allocator: %s of %s could not be placed in any bucket", left.StringFixed(2), id)
		}
	}
	for _, tc := range domain.TaxCategories {
		b := buckets[tc]
		a.Logger.Debugf("allocator: bucket %s capacity %s filled %s", tc, b.Capacity.StringFixed(2), b.Filled.StringFixed(2))
	}
	return placement, nil
}

// bucketFiller tracks remaining targets while buckets are filled
type bucketFiller struct {
	buckets   map[domain.TaxCategory]*domain.Bucket
	remaining map[string]decimal.Decimal
	// order lists every targeted asset id in catalog order
	order []string
}

func newBucketFiller(buckets map[domain.TaxCategory]*domain.Bucket, targets map[string]decimal.Decimal) (*bucketFiller, error) {
	f := &bucketFiller{
		buckets:   buckets,
		remaining: make(map[string]decimal.Decimal, len(targets)),
		order:     make([]string, 0, len(targets)),
	}
	for id, v := range targets {
		if !domain.IsKnownAssetClass(id) {
			return nil, fmt.Errorf("targets: %w: %q", domain.ErrUnknownAssetClass, id)
		}
		f.remaining[id] = dmath.NonNegative(v)
		f.order = append(f.order, id)
	}
	sort.Slice(f.order, func(i, j int) bool {
		return domain.CatalogOrder(f.order[i]) < domain.CatalogOrder(f.order[j])
	})
	return f, nil
}

// fill moves as much of id's remaining target into the bucket as fits
func (f *bucketFiller) fill(tc domain.TaxCategory, id string) {
	f.fillAmount(tc, id, f.remaining[id])
}

// fillAmount places at most want dollars of id into the bucket
func (f *bucketFiller) fillAmount(tc domain.TaxCategory, id string, want decimal.Decimal) {
	b, ok := f.buckets[tc]
	if !ok {
		return
	}
	amount := dmath.Min(dmath.Min(b.Available(), f.remaining[id]), want)
	if !amount.IsPositive() {
		return
	}
	b.Allocations[id] = b.Allocations[id].Add(amount)
	b.Filled = b.Filled.Add(amount)
	f.remaining[id] = f.remaining[id].Sub(amount)
}

// placeByPreference walks the bucket list until the target is exhausted
func (f *bucketFiller) placeByPreference(id string, prefs []domain.TaxCategory) {
	for _, tc := range prefs {
		if !f.remaining[id].IsPositive() {
			return
		}
		f.fill(tc, id)
	}
}

// equityIDs returns equity ids with remaining target that satisfy keep
func (f *bucketFiller) equityIDs(keep func(domain.AssetClass) bool) []string {
	var ids []string
	for _, id := range f.order {
		if !f.remaining[id].IsPositive() {
			continue
		}
		ac, err := domain.LookupAssetClass(id)
		if err != nil || !ac.IsEquity() || !keep(ac) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// fillProportionally pushes as much of ids' remaining targets into one bucket
// as fits, splitting the available space in proportion to each remaining target
func (f *bucketFiller) fillProportionally(tc domain.TaxCategory, ids []string) {
	b, ok := f.buckets[tc]
	if !ok || len(ids) == 0 {
		return
	}
	total := decimal.Zero
	for _, id := range ids {
		total = total.Add(f.remaining[id])
	}
	amount := dmath.Min(b.Available(), total)
	if !amount.IsPositive() {
		return
	}
	for _, id := range ids {
		share := amount.Mul(dmath.SafeDiv(f.remaining[id], total))
		f.fillAmount(tc, id, share)
	}
}

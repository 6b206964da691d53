package config

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rpgo/allocation-planner/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of portfolio snapshot files
type InputParser struct {
	// Logger receives one warning per value the engine will clamp
	Logger zerolog.Logger
}

// NewInputParser creates a new input parser that logs nothing
func NewInputParser() *InputParser {
	return &InputParser{Logger: zerolog.Nop()}
}

// LoadFromFile loads a portfolio from a YAML or JSON file
func (ip *InputParser) LoadFromFile(filename string) (*domain.Portfolio, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates a portfolio document
func (ip *InputParser) Parse(data []byte) (*domain.Portfolio, error) {
	var portfolio domain.Portfolio
	if err := yaml.Unmarshal(data, &portfolio); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	AssignIDs(&portfolio)

	if err := ip.ValidateConfiguration(&portfolio); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	for _, w := range ip.Adjustments(&portfolio) {
		ip.Logger.Warn().Str("code", string(w.Code)).Msg(w.Message)
	}

	return &portfolio, nil
}

// AssignIDs gives every account and holding without an id a random one
func AssignIDs(p *domain.Portfolio) {
	for i := range p.Accounts {
		acct := &p.Accounts[i]
		if acct.ID == "" {
			acct.ID = uuid.NewString()
		}
		if acct.Name == "" {
			acct.Name = acct.ID
		}
		for j := range acct.Holdings {
			if acct.Holdings[j].ID == "" {
				acct.Holdings[j].ID = uuid.NewString()
			}
		}
	}
}

// ValidateConfiguration rejects portfolios the engine cannot interpret:
// missing or duplicate ids, unknown tax categories or asset classes, and bad
// profile ages. Out-of-range numbers are not errors; see Adjustments.
func (ip *InputParser) ValidateConfiguration(p *domain.Portfolio) error {
	if len(p.Accounts) == 0 {
		return fmt.Errorf("no accounts provided")
	}

	seen := make(map[string]struct{}, len(p.Accounts))
	for i := range p.Accounts {
		acct := &p.Accounts[i]
		if _, dup := seen[acct.ID]; dup {
			return fmt.Errorf("%w: %q", domain.ErrDuplicateAccount, acct.ID)
		}
		seen[acct.ID] = struct{}{}
		if err := ip.validateAccount(acct); err != nil {
			return fmt.Errorf("account %s validation failed: %w", acct.ID, err)
		}
	}

	if err := ip.validateWeights(&p.Settings); err != nil {
		return fmt.Errorf("settings validation failed: %w", err)
	}

	if err := ip.validateProfile(&p.Profile); err != nil {
		return fmt.Errorf("profile validation failed: %w", err)
	}

	return nil
}

// validateAccount validates a single account and its holdings
func (ip *InputParser) validateAccount(acct *domain.Account) error {
	if _, err := domain.ParseTaxCategory(string(acct.TaxCategory)); err != nil {
		return err
	}

	holdingIDs := make(map[string]struct{}, len(acct.Holdings))
	for _, h := range acct.Holdings {
		if _, dup := holdingIDs[h.ID]; dup {
			return fmt.Errorf("duplicate holding id %q", h.ID)
		}
		holdingIDs[h.ID] = struct{}{}
		if !domain.IsKnownAssetClass(h.AssetClassID) {
			return fmt.Errorf("holding %s: %w: %q", h.ID, domain.ErrUnknownAssetClass, h.AssetClassID)
		}
	}

	return nil
}

// validateWeights rejects equity weights on ids missing from the catalog
func (ip *InputParser) validateWeights(s *domain.Settings) error {
	for id := range s.EquityWeights {
		if _, err := domain.LookupAssetClass(id); err != nil {
			return fmt.Errorf("equity weight: %w", err)
		}
	}
	return nil
}

// Adjustments lists the values the engine will clamp, ignore or reorder
// instead of using as written. A valid portfolio may still have some.
func (ip *InputParser) Adjustments(p *domain.Portfolio) []domain.Warning {
	var out []domain.Warning
	add := func(format string, args ...any) {
		out = append(out, domain.Warning{Code: domain.WarnConfigClamped, Message: fmt.Sprintf(format, args...)})
	}

	for _, acct := range p.Accounts {
		if acct.Cash.IsNegative() {
			add("account %s: negative cash %s treated as 0", acct.ID, acct.Cash)
		}
		for _, h := range acct.Holdings {
			if h.Value.IsNegative() {
				add("account %s holding %s: negative value %s treated as 0", acct.ID, h.ID, h.Value)
			}
		}
	}

	s := p.Settings
	if s.EmergencyFundTarget.IsNegative() {
		add("negative emergency fund target %s treated as 0", s.EmergencyFundTarget)
	}
	hundred := decimal.NewFromInt(100)
	bond, cash := s.MacroSplit.BondPercent, s.MacroSplit.CashPercent
	if bond.IsNegative() || bond.GreaterThan(hundred) || cash.IsNegative() || cash.GreaterThan(hundred) || bond.Add(cash).GreaterThan(hundred) {
		n := s.MacroSplit.Normalized()
		add("macro split %s%% bonds / %s%% cash clamped to %s%% / %s%%", bond, cash, n.BondPercent, n.CashPercent)
	}

	for _, id := range domain.AssetClassIDs() {
		w, ok := s.EquityWeights[id]
		if !ok {
			continue
		}
		if ac, _ := domain.LookupAssetClass(id); !ac.IsEquity() {
			add("equity weight %q ignored: not an equity asset class", id)
			continue
		}
		if w.IsNegative() {
			add("equity weight %q of %s treated as 0", id, w)
		}
	}

	gp := s.GlidePath
	if gp.Enabled {
		if gp.StartAge > 0 && gp.RetirementAge > 0 && gp.StartAge >= gp.RetirementAge {
			add("glide path start age %d is not before retirement age %d; bonds jump straight to the maximum", gp.StartAge, gp.RetirementAge)
		}
		if outOfPercent(gp.BondMin) || outOfPercent(gp.BondMax) {
			add("glide path bond range clamped to 0..100")
		}
		if gp.BondMin != nil && gp.BondMax != nil && *gp.BondMin > *gp.BondMax {
			add("glide path bond min %d above max %d; swapped", *gp.BondMin, *gp.BondMax)
		}
	}

	return out
}

func outOfPercent(v *int) bool {
	return v != nil && (*v < 0 || *v > 100)
}

// validateProfile validates the optional age inputs
func (ip *InputParser) validateProfile(p *domain.Profile) error {
	if p.Age < 0 || p.Age > 120 {
		return fmt.Errorf("age must be between 0 and 120")
	}
	if !p.BirthDate.IsZero() && p.BirthDate.After(time.Now()) {
		return fmt.Errorf("birth date cannot be in the future")
	}
	if p.TargetYear < 0 {
		return fmt.Errorf("target year cannot be negative")
	}
	return nil
}

// CreateExampleConfiguration creates an example portfolio
func (ip *InputParser) CreateExampleConfiguration() *domain.Portfolio {
	birthDate, _ := time.Parse("2006-01-02", "1980-04-12")

	return &domain.Portfolio{
		Profile: domain.Profile{BirthDate: birthDate},
		Settings: domain.Settings{
			EmergencyFundTarget: decimal.NewFromInt(20000),
			MacroSplit: domain.MacroSplit{
				BondPercent: decimal.NewFromInt(25),
				CashPercent: decimal.NewFromInt(2),
			},
			EquityWeights: map[string]decimal.Decimal{
				"us_broad":       decimal.NewFromInt(55),
				"us_small_value": decimal.NewFromInt(10),
				"intl_developed": decimal.NewFromInt(25),
				"emerging":       decimal.NewFromInt(10),
			},
			TaxStrategy: domain.StrategyStandard,
			RebalanceModes: domain.RebalanceModes{
				Taxable:       domain.ModeInflow,
				TaxAdvantaged: domain.ModeBands,
			},
			GlidePath: domain.GlidePathConfig{Enabled: false},
		},
		Accounts: []domain.Account{
			{
				ID:              "checking",
				Name:            "Checking",
				TaxCategory:     domain.TaxCategoryTaxable,
				Cash:            decimal.NewFromInt(18000),
				CashIsEmergency: true,
			},
			{
				ID:          "brokerage",
				Name:        "Brokerage",
				TaxCategory: domain.TaxCategoryTaxable,
				Cash:        decimal.NewFromInt(7500),
				Holdings: []domain.Holding{
					{ID: "vti", Name: "Total Stock Market", AssetClassID: "us_broad", Value: decimal.NewFromInt(120000)},
					{ID: "vxus", Name: "Total International", AssetClassID: "intl_developed", Value: decimal.NewFromInt(30000)},
					{ID: "vmfxx", Name: "Money Market", AssetClassID: domain.CashAssetID, Value: decimal.NewFromInt(5000), IsEmergency: true},
				},
			},
			{
				ID:          "401k",
				Name:        "401(k)",
				TaxCategory: domain.TaxCategoryDeferred,
				Holdings: []domain.Holding{
					{ID: "target-2045", Name: "S&P 500 Index", AssetClassID: "us_large", Value: decimal.NewFromInt(140000)},
					{ID: "agg", Name: "Aggregate Bond", AssetClassID: domain.BondAssetID, Value: decimal.NewFromInt(35000)},
				},
			},
			{
				ID:          "roth-ira",
				Name:        "Roth IRA",
				TaxCategory: domain.TaxCategoryRoth,
				Cash:        decimal.NewFromInt(6500),
				Holdings: []domain.Holding{
					{ID: "avuv", Name: "Small Cap Value", AssetClassID: "us_small_value", Value: decimal.NewFromInt(40000)},
				},
			},
		},
	}
}

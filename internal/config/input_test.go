package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpgo/allocation-planner/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPortfolioYAML = `profile:
  birth_date: 1975-03-01T00:00:00Z
settings:
  emergency_fund_target: 15000
  macro_split:
    bond_percent: 30
    cash_percent: 5
  equity_weights:
    us_broad: 70
    intl_developed: 30
  tax_strategy: roth_growth
  rebalance_modes:
    taxable: inflow
    tax_advantaged: bands
  glide_path:
    enabled: true
    retirement_age: 67
accounts:
  - id: checking
    name: Checking
    tax_category: taxable
    cash: 15000
    cash_is_emergency: true
  - name: Brokerage
    tax_category: taxable
    cash: 2500.50
    holdings:
      - name: Total Market
        asset_class: us_broad
        value: 80000
  - id: roth
    name: Roth IRA
    tax_category: roth
    holdings:
      - id: bnd
        asset_class: bonds
        value: 20000
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portfolio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewInputParser(t *testing.T) {
	parser := NewInputParser()
	assert.NotNil(t, parser)
}

func TestLoadFromFile_Success(t *testing.T) {
	parser := NewInputParser()
	p, err := parser.LoadFromFile(writeTemp(t, validPortfolioYAML))
	require.NoError(t, err)

	assert.Equal(t, 1975, p.Profile.BirthDate.Year())
	assert.True(t, p.Settings.EmergencyFundTarget.Equal(decimal.NewFromInt(15000)))
	assert.True(t, p.Settings.MacroSplit.BondPercent.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, domain.StrategyRothGrowth, p.Settings.TaxStrategy)
	assert.Equal(t, domain.ModeInflow, p.Settings.RebalanceModes.Taxable)
	assert.Equal(t, domain.ModeBands, p.Settings.RebalanceModes.TaxAdvantaged)
	assert.True(t, p.Settings.GlidePath.Enabled)
	assert.Equal(t, 67, p.Settings.GlidePath.RetirementAge)

	require.Len(t, p.Accounts, 3)
	assert.True(t, p.Accounts[0].CashIsEmergency)
	assert.Equal(t, domain.TaxCategoryRoth, p.Accounts[2].TaxCategory)
	assert.True(t, p.Accounts[1].Cash.Equal(decimal.RequireFromString("2500.50")))
}

func TestLoadFromFile_AssignsMissingIDs(t *testing.T) {
	p, err := NewInputParser().LoadFromFile(writeTemp(t, validPortfolioYAML))
	require.NoError(t, err)

	brokerage := p.Accounts[1]
	_, err = uuid.Parse(brokerage.ID)
	assert.NoError(t, err, "account id should be a uuid")
	assert.Equal(t, "Brokerage", brokerage.Name)
	_, err = uuid.Parse(brokerage.Holdings[0].ID)
	assert.NoError(t, err, "holding id should be a uuid")
	assert.Equal(t, "bnd", p.Accounts[2].Holdings[0].ID)
}

func TestLoadFromFile_FileNotFound(t *testing.T) {
	parser := NewInputParser()
	config, err := parser.LoadFromFile("nonexistent_file.yaml")

	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"tabs", "accounts:\n\t- id: x\n"},
		{"bad strategy", "settings:\n  tax_strategy: yolo\naccounts:\n  - id: a\n    tax_category: taxable\n"},
		{"bad mode", "settings:\n  rebalance_modes:\n    taxable: sometimes\naccounts:\n  - id: a\n    tax_category: taxable\n"},
		{"bad tax category", "accounts:\n  - id: a\n    tax_category: hsa\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := NewInputParser().LoadFromFile(writeTemp(t, tt.content))
			assert.Error(t, err)
			assert.Nil(t, config)
			assert.Contains(t, err.Error(), "failed to parse YAML")
		})
	}
}

func TestParseAcceptsJSON(t *testing.T) {
	doc := `{"settings": {"macro_split": {"bond_percent": 20}}, "accounts": [{"id": "a", "tax_category": "deferred", "cash": 1000}]}`
	p, err := NewInputParser().Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, domain.TaxCategoryDeferred, p.Accounts[0].TaxCategory)
	assert.Equal(t, domain.StrategyStandard, p.Settings.TaxStrategy)
	assert.Equal(t, domain.ModeStrict, p.Settings.RebalanceModes.Taxable)
}

func TestValidateConfiguration_Success(t *testing.T) {
	parser := NewInputParser()
	assert.NoError(t, parser.ValidateConfiguration(createValidTestPortfolio()))
}

func TestValidateConfiguration_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *domain.Portfolio)
		wantErr string
	}{
		{
			name:    "no accounts",
			mutate:  func(p *domain.Portfolio) { p.Accounts = nil },
			wantErr: "no accounts provided",
		},
		{
			name:    "duplicate account",
			mutate:  func(p *domain.Portfolio) { p.Accounts[1].ID = p.Accounts[0].ID },
			wantErr: "duplicate account id",
		},
		{
			name:    "unknown asset class",
			mutate:  func(p *domain.Portfolio) { p.Accounts[1].Holdings[0].AssetClassID = "gold_bars" },
			wantErr: "unknown asset class",
		},
		{
			name: "duplicate holding",
			mutate: func(p *domain.Portfolio) {
				p.Accounts[1].Holdings = append(p.Accounts[1].Holdings, p.Accounts[1].Holdings[0])
			},
			wantErr: "duplicate holding id",
		},
		{
			name:    "unknown equity weight",
			mutate:  func(p *domain.Portfolio) { p.Settings.EquityWeights["gold_bars"] = decimal.NewFromInt(5) },
			wantErr: "equity weight: unknown asset class",
		},
		{
			name:    "age out of range",
			mutate:  func(p *domain.Portfolio) { p.Profile.Age = 150 },
			wantErr: "age must be between 0 and 120",
		},
		{
			name:    "future birth date",
			mutate:  func(p *domain.Portfolio) { p.Profile.BirthDate = time.Now().AddDate(1, 0, 0) },
			wantErr: "birth date cannot be in the future",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := createValidTestPortfolio()
			tt.mutate(p)
			err := NewInputParser().ValidateConfiguration(p)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAdjustmentsLoadWithWarnings(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(p *domain.Portfolio)
		wantWarn string
	}{
		{
			name:     "negative cash",
			mutate:   func(p *domain.Portfolio) { p.Accounts[0].Cash = decimal.NewFromInt(-1) },
			wantWarn: "account checking: negative cash -1 treated as 0",
		},
		{
			name:     "negative holding",
			mutate:   func(p *domain.Portfolio) { p.Accounts[1].Holdings[0].Value = decimal.NewFromInt(-5) },
			wantWarn: "holding vti: negative value -5 treated as 0",
		},
		{
			name:     "negative emergency target",
			mutate:   func(p *domain.Portfolio) { p.Settings.EmergencyFundTarget = decimal.NewFromInt(-1) },
			wantWarn: "negative emergency fund target -1 treated as 0",
		},
		{
			name:     "bond out of range",
			mutate:   func(p *domain.Portfolio) { p.Settings.MacroSplit.BondPercent = decimal.NewFromInt(101) },
			wantWarn: "macro split 101% bonds / 5% cash clamped to 100% / 0%",
		},
		{
			name: "split over 100",
			mutate: func(p *domain.Portfolio) {
				p.Settings.MacroSplit = domain.MacroSplit{BondPercent: decimal.NewFromInt(80), CashPercent: decimal.NewFromInt(30)}
			},
			wantWarn: "macro split 80% bonds / 30% cash clamped to 80% / 20%",
		},
		{
			name:     "fixed income weight",
			mutate:   func(p *domain.Portfolio) { p.Settings.EquityWeights["bonds"] = decimal.NewFromInt(5) },
			wantWarn: `equity weight "bonds" ignored`,
		},
		{
			name:     "negative weight",
			mutate:   func(p *domain.Portfolio) { p.Settings.EquityWeights["us_broad"] = decimal.NewFromInt(-5) },
			wantWarn: `equity weight "us_broad" of -5 treated as 0`,
		},
		{
			name: "glide path ages inverted",
			mutate: func(p *domain.Portfolio) {
				p.Settings.GlidePath = domain.GlidePathConfig{Enabled: true, StartAge: 70, RetirementAge: 60}
			},
			wantWarn: "glide path start age 70 is not before retirement age 60",
		},
		{
			name: "glide path bond range",
			mutate: func(p *domain.Portfolio) {
				p.Settings.GlidePath = domain.GlidePathConfig{Enabled: true, BondMin: intPtr(-5), BondMax: intPtr(40)}
			},
			wantWarn: "glide path bond range clamped to 0..100",
		},
		{
			name: "glide path bounds swapped",
			mutate: func(p *domain.Portfolio) {
				p.Settings.GlidePath = domain.GlidePathConfig{Enabled: true, BondMin: intPtr(60), BondMax: intPtr(40)}
			},
			wantWarn: "glide path bond min 60 above max 40; swapped",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := createValidTestPortfolio()
			tt.mutate(p)
			parser := NewInputParser()
			require.NoError(t, parser.ValidateConfiguration(p))

			warnings := parser.Adjustments(p)
			require.Len(t, warnings, 1)
			assert.Equal(t, domain.WarnConfigClamped, warnings[0].Code)
			assert.Contains(t, warnings[0].Message, tt.wantWarn)
		})
	}
}

func TestAdjustmentsEmptyForValidPortfolio(t *testing.T) {
	parser := NewInputParser()
	assert.Empty(t, parser.Adjustments(createValidTestPortfolio()))
	assert.Empty(t, parser.Adjustments(parser.CreateExampleConfiguration()))
}

func TestParseLogsClampedValues(t *testing.T) {
	doc := `settings:
  macro_split:
    bond_percent: 80
    cash_percent: 30
  equity_weights:
    us_broad: 100
    bonds: 10
accounts:
  - id: a
    tax_category: taxable
    cash: -50
`
	var buf bytes.Buffer
	parser := NewInputParser()
	parser.Logger = zerolog.New(&buf)

	p, err := parser.Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, p.Accounts, 1)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Contains(t, line, `"level":"warn"`)
		assert.Contains(t, line, `"code":"W1007"`)
	}
	assert.Contains(t, lines[0], "negative cash")
	assert.Contains(t, lines[1], "macro split")
	assert.Contains(t, lines[2], `\"bonds\" ignored`)
}

func TestParseKeepsZeroGlideBondFloor(t *testing.T) {
	doc := "settings:\n  glide_path:\n    enabled: true\n    bond_min: 0\naccounts:\n  - id: a\n    tax_category: taxable\n"
	p, err := NewInputParser().Parse([]byte(doc))
	require.NoError(t, err)
	require.NotNil(t, p.Settings.GlidePath.BondMin)
	assert.Equal(t, 0, *p.Settings.GlidePath.BondMin)
	assert.Nil(t, p.Settings.GlidePath.BondMax)
}

func intPtr(v int) *int { return &v }

func TestValidateConfiguration_DuplicateIsSentinel(t *testing.T) {
	p := createValidTestPortfolio()
	p.Accounts[1].ID = p.Accounts[0].ID
	err := NewInputParser().ValidateConfiguration(p)
	assert.True(t, errors.Is(err, domain.ErrDuplicateAccount))
}

func TestCreateExampleConfiguration(t *testing.T) {
	parser := NewInputParser()
	example := parser.CreateExampleConfiguration()

	require.NotNil(t, example)
	assert.NoError(t, parser.ValidateConfiguration(example))
	assert.Len(t, example.Accounts, 4)
	assert.False(t, example.Profile.BirthDate.IsZero())
	assert.Contains(t, example.Settings.EquityWeights, "us_broad")
}

func createValidTestPortfolio() *domain.Portfolio {
	return &domain.Portfolio{
		Profile: domain.Profile{Age: 45},
		Settings: domain.Settings{
			EmergencyFundTarget: decimal.NewFromInt(10000),
			MacroSplit:          domain.MacroSplit{BondPercent: decimal.NewFromInt(20), CashPercent: decimal.NewFromInt(5)},
			EquityWeights:       map[string]decimal.Decimal{"us_broad": decimal.NewFromInt(80), "emerging": decimal.NewFromInt(20)},
		},
		Accounts: []domain.Account{
			{ID: "checking", TaxCategory: domain.TaxCategoryTaxable, Cash: decimal.NewFromInt(10000), CashIsEmergency: true},
			{
				ID: "ira", TaxCategory: domain.TaxCategoryDeferred,
				Holdings: []domain.Holding{{ID: "vti", AssetClassID: "us_broad", Value: decimal.NewFromInt(50000)}},
			},
		},
	}
}

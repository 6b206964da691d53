package main

import (
	"encoding/json"
	"fmt"

	"github.com/rpgo/allocation-planner/internal/calculation"
	"github.com/rpgo/allocation-planner/internal/config"
	"github.com/rpgo/allocation-planner/internal/domain"
	"github.com/rpgo/allocation-planner/internal/output"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// planOverrides are command-line replacements for settings in the portfolio file
type planOverrides struct {
	age            int
	strategy       string
	taxableMode    string
	advantagedMode string
}

func (o planOverrides) apply(p *domain.Portfolio) error {
	if o.age > 0 {
		p.Profile.Age = o.age
		p.Settings.GlidePath.Enabled = true
	}
	if o.strategy != "" {
		s, err := domain.ParseTaxStrategy(o.strategy)
		if err != nil {
			return err
		}
		p.Settings.TaxStrategy = s
	}
	if o.taxableMode != "" {
		m, err := domain.ParseRebalanceMode(o.taxableMode)
		if err != nil {
			return err
		}
		p.Settings.RebalanceModes.Taxable = m
	}
	if o.advantagedMode != "" {
		m, err := domain.ParseRebalanceMode(o.advantagedMode)
		if err != nil {
			return err
		}
		p.Settings.RebalanceModes.TaxAdvantaged = m
	}
	return nil
}

func (a *app) loadPortfolio() (*domain.Portfolio, error) {
	parser := config.NewInputParser()
	parser.Logger = a.log
	p, err := parser.LoadFromFile(a.configPath)
	if err != nil {
		return nil, err
	}
	a.log.Debug().Str("file", a.configPath).Int("accounts", len(p.Accounts)).Msg("portfolio loaded")
	return p, nil
}

func newPlanCmd(a *app) *cobra.Command {
	var (
		format    string
		outputDir string
		o         planOverrides
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute the rebalance plan for every account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.loadPortfolio()
			if err != nil {
				return err
			}
			if err := o.apply(p); err != nil {
				return err
			}
			plan, err := a.engine.Run(cmd.Context(), p)
			if err != nil {
				return err
			}
			for _, w := range plan.Warnings {
				a.log.Warn().Str("code", string(w.Code)).Str("asset_class", w.AssetClassID).Msg(w.Message)
			}

			if outputDir == "" {
				return output.Render(cmd.OutOrStdout(), plan, format)
			}
			files, err := output.GenerateReport(plan, format, outputDir)
			if err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", f)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", a.env.Format, "output format (see 'planner formats')")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", a.env.OutputDir, "write a timestamped report file here instead of stdout")
	cmd.Flags().IntVar(&o.age, "age", 0, "current age; enables the glide path")
	cmd.Flags().StringVar(&o.strategy, "strategy", "", "tax-location strategy override (standard, roth_growth, balanced_roth, mirrored)")
	cmd.Flags().StringVar(&o.taxableMode, "taxable-mode", "", "rebalance mode override for taxable accounts (strict, bands, inflow)")
	cmd.Flags().StringVar(&o.advantagedMode, "advantaged-mode", "", "rebalance mode override for deferred and Roth accounts")
	return cmd
}

func newMetricsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show net worth, emergency fund and per-asset-class targets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.loadPortfolio()
			if err != nil {
				return err
			}
			m, warnings, err := a.engine.ComputeMetrics(cmd.Context(), p)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Metrics  *domain.PortfolioMetrics `json:"metrics"`
					Warnings []domain.Warning         `json:"warnings,omitempty"`
				}{m, warnings})
			}

			fmt.Fprintf(out, "Net worth:            %s\n", output.FormatCurrency(m.TotalNetWorth))
			fmt.Fprintf(out, "Investable:           %s\n", output.FormatCurrency(m.InvestableTotal))
			fmt.Fprintf(out, "Emergency fund:       %s of %s\n", output.FormatCurrency(m.EmergencyActual), output.FormatCurrency(m.EmergencyTarget))
			fmt.Fprintf(out, "Effective investable: %s\n", output.FormatCurrency(m.EffectiveInvestableTotal))
			fmt.Fprintf(out, "Split:                %s bonds / %s cash / %s equity\n",
				output.FormatPercentage(m.Split.BondPercent), output.FormatPercentage(m.Split.CashPercent), output.FormatPercentage(m.Split.EquityPercent()))
			fmt.Fprintln(out)
			for _, ac := range domain.AssetClasses() {
				target, ok := m.Targets[ac.ID]
				current := m.CurrentAllocation[ac.ID]
				if !ok && current.IsZero() {
					continue
				}
				fmt.Fprintf(out, "%-28s current %14s  target %14s\n", ac.Name, output.FormatCurrency(current), output.FormatCurrency(target))
			}
			for _, w := range warnings {
				fmt.Fprintf(out, "warning [%s]: %s\n", w.Code, w.Message)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print metrics as JSON")
	return cmd
}

func newGlidePathCmd(a *app) *cobra.Command {
	var (
		from, to         int
		bondMin, bondMax int
		cfg              domain.GlidePathConfig
	)
	cmd := &cobra.Command{
		Use:   "glidepath",
		Short: "Print the suggested bond percentage for a range of ages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if to < from {
				return fmt.Errorf("--to (%d) must not be less than --from (%d)", to, from)
			}
			if cmd.Flags().Changed("bond-min") {
				cfg.BondMin = &bondMin
			}
			if cmd.Flags().Changed("bond-max") {
				cfg.BondMax = &bondMax
			}
			gp := calculation.NewGlidePath(cfg)
			a.log.Debug().Int("start_age", gp.StartAge).Int("retirement_age", gp.RetirementAge).Msg("glide path")
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "AGE  BONDS")
			for _, pt := range gp.Curve(from, to) {
				fmt.Fprintf(out, "%3d  %s\n", pt.Age, output.FormatPercentage(decimal.NewFromInt(int64(pt.BondPercent))))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&from, "from", 25, "first age")
	cmd.Flags().IntVar(&to, "to", 75, "last age")
	cmd.Flags().IntVar(&cfg.StartAge, "start-age", 0, "age at which bonds start rising (default 40)")
	cmd.Flags().IntVar(&cfg.RetirementAge, "retirement-age", 0, "age at which bonds reach the maximum (default 65)")
	cmd.Flags().IntVar(&bondMin, "bond-min", calculation.DefaultBondMin, "minimum bond percentage")
	cmd.Flags().IntVar(&bondMax, "bond-max", calculation.DefaultBondMax, "maximum bond percentage")
	return cmd
}

func newExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example [file]",
		Short: "Write an example portfolio file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "portfolio.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if err := output.SaveConfiguration(config.NewInputParser().CreateExampleConfiguration(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Example portfolio written to %s\n", path)
			return nil
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a portfolio file without computing a plan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.loadPortfolio()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s is valid: %d accounts\n", a.configPath, len(p.Accounts))
			for _, w := range config.NewInputParser().Adjustments(p) {
				fmt.Fprintf(out, "  [%s] %s\n", w.Code, w.Message)
			}
			return nil
		},
	}
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List output formats and their aliases",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Formats:")
			for _, n := range output.AvailableFormatterNames() {
				fmt.Fprintf(out, "  %s\n", n)
			}
			fmt.Fprintln(out, "Aliases:")
			for _, n := range output.AvailableFormatAliases() {
				fmt.Fprintf(out, "  %s -> %s\n", n, output.NormalizeFormatName(n))
			}
		},
	}
}

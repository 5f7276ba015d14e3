// DDMCalc — Dividend Discount Model Fair Value Calculator
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/finmodel/ddmcalc/api"
	"github.com/finmodel/ddmcalc/internal/config"
	"github.com/finmodel/ddmcalc/internal/ddm"
	"github.com/finmodel/ddmcalc/internal/validate"
	"github.com/finmodel/ddmcalc/pkg/models"
	"github.com/finmodel/ddmcalc/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ddmcalc",
	Short: "DDMCalc — Dividend Discount Model Fair Value Calculator",
	Long: `DDMCalc estimates a stock's fair value from its dividend stream
under three dividend discount models: constant dividend, constant
growth (Gordon), and two-stage growth. Results are available as a CLI
table, a JSON API, and a browser calculator with chart and table views.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(valueCmd)
	rootCmd.AddCommand(cashflowsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Input Flags ---

// registerInputFlags adds the six calculator inputs to a command. Zero
// defaults mean "use the configured default" — resolved in requestFromFlags
// so config loading stays in PersistentPreRunE.
func registerInputFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("dividend", 0, "current per-period dividend")
	cmd.Flags().Float64("required", 0, "required rate of return, percent")
	cmd.Flags().Float64("growth", 0, "constant dividend growth rate, percent")
	cmd.Flags().Float64("short-growth", 0, "short-term growth rate, percent")
	cmd.Flags().Float64("long-growth", 0, "long-term growth rate, percent")
	cmd.Flags().Int("years", 0, "length of the high-growth phase, years")
}

// requestFromFlags merges explicit flags over the configured defaults and
// validates the combined request.
func requestFromFlags(cmd *cobra.Command) (validate.Request, error) {
	req := cfg.Defaults.Request()

	if cmd.Flags().Changed("dividend") {
		req.Dividend, _ = cmd.Flags().GetFloat64("dividend")
	}
	if cmd.Flags().Changed("required") {
		req.RequiredPct, _ = cmd.Flags().GetFloat64("required")
	}
	if cmd.Flags().Changed("growth") {
		req.GrowthPct, _ = cmd.Flags().GetFloat64("growth")
	}
	if cmd.Flags().Changed("short-growth") {
		req.ShortGrowthPct, _ = cmd.Flags().GetFloat64("short-growth")
	}
	if cmd.Flags().Changed("long-growth") {
		req.LongGrowthPct, _ = cmd.Flags().GetFloat64("long-growth")
	}
	if cmd.Flags().Changed("years") {
		req.ShortYears, _ = cmd.Flags().GetInt("years")
	}

	if errs := validate.Check(req); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  ✗ %s\n", e.Error())
		}
		return req, fmt.Errorf("%d invalid input(s)", len(errs))
	}
	return req, nil
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("DDMCalc %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Value Command ---

var valueCmd = &cobra.Command{
	Use:   "value",
	Short: "Compute fair value under all three models",
	Long: `Compute fair value under the constant dividend, constant growth,
and two-stage growth models and print a comparison table.

Examples:
  ddmcalc value --dividend 5 --required 10 --growth 5
  ddmcalc value --dividend 2.5 --required 12 --short-growth 9 --long-growth 2 --years 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}

		result := ddm.ComputeAll(req.Input())
		symbol := cfg.Display.Currency

		fmt.Printf("💰 Fair value for a %s dividend at %s required return\n\n",
			utils.FormatCurrency(symbol, req.Dividend), utils.FormatPct(req.RequiredPct))

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tASSUMPTION\tFAIR VALUE")
		fmt.Fprintf(w, "Constant\tno growth\t%s\n",
			priceCell(symbol, result.Constant))
		fmt.Fprintf(w, "Growth\t%s forever\t%s\n",
			utils.FormatPct(req.GrowthPct), priceCell(symbol, result.Growth))
		fmt.Fprintf(w, "Two-Stage\t%s × %dy, then %s\t%s\n",
			utils.FormatPct(req.ShortGrowthPct), req.ShortYears,
			utils.FormatPct(req.LongGrowthPct), priceCell(symbol, result.Changing))
		return w.Flush()
	},
}

// priceCell renders a model's price, or n/a when its precondition failed.
func priceCell(symbol string, m models.ModelResult) string {
	if !m.Valid() {
		return "n/a (invalid assumptions)"
	}
	return utils.FormatCurrency(symbol, m.Price)
}

// --- Cashflows Command ---

var cashflowsCmd = &cobra.Command{
	Use:   "cashflows",
	Short: "Print one model's projected 10-year cash flows",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := requestFromFlags(cmd)
		if err != nil {
			return err
		}

		modelName, _ := cmd.Flags().GetString("model")
		result := ddm.ComputeAll(req.Input())
		m, ok := result.Model(models.ModelKey(modelName))
		if !ok {
			return fmt.Errorf("unknown model %q (use constant, growth, or changing)", modelName)
		}
		if !m.Valid() {
			fmt.Println("⚠️  No valid price under this model — check the growth and required-return assumptions.")
			return nil
		}

		symbol := cfg.Display.Currency
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "YEAR\tCASH FLOW")
		for _, cf := range m.CashFlows {
			label := fmt.Sprintf("Year %d", cf.Year)
			if cf.Year == 0 {
				label = "Now"
			}
			fmt.Fprintf(w, "%s\t%s\n", label, utils.FormatCurrency(symbol, cf.Dividend))
		}
		return w.Flush()
	},
}

func init() {
	registerInputFlags(valueCmd)
	registerInputFlags(cashflowsCmd)
	cashflowsCmd.Flags().String("model", string(models.ModelGrowth), "model to project (constant, growth, changing)")
}

// --- Serve Command (API + Web UI) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and browser calculator",
	RunE: func(cmd *cobra.Command, args []string) error {
		noUI, _ := cmd.Flags().GetBool("no-ui")

		srv := api.NewServer(cfg)
		if noUI {
			srv.SetServeUI(false)
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 DDMCalc listening on http://%s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().Bool("no-ui", false, "serve the JSON API only, without the embedded web UI")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  DDMCalc — Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:     %s (%s)\n", version, commit)
		fmt.Printf("  Config file: %s\n", config.ConfigFilePath())
		fmt.Printf("  API Server:  %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		fmt.Println("  Calculator defaults:")
		d := cfg.Defaults
		fmt.Printf("    Dividend:          %s\n", utils.FormatCurrency(cfg.Display.Currency, d.Dividend))
		fmt.Printf("    Required return:   %s\n", utils.FormatPct(d.RequiredPct))
		fmt.Printf("    Growth:            %s\n", utils.FormatPct(d.GrowthPct))
		fmt.Printf("    Short-term growth: %s (%d years)\n", utils.FormatPct(d.ShortGrowthPct), d.ShortYears)
		fmt.Printf("    Long-term growth:  %s\n", utils.FormatPct(d.LongGrowthPct))

		if errs := validate.Check(d.Request()); len(errs) > 0 {
			fmt.Println("\n  ⚠️  Defaults fail validation:")
			for _, e := range errs {
				fmt.Printf("    ✗ %s\n", e.Error())
			}
		} else {
			fmt.Println("\n  ✅ Defaults pass validation")
		}
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

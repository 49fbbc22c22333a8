package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"reflectbench/adapters/excel"
	"reflectbench/adapters/jsonfile"
	"reflectbench/adapters/postgres"
	"reflectbench/api"
	"reflectbench/app"
	"reflectbench/domain/analysis"
	"reflectbench/internal"
	"reflectbench/internal/config"
	"reflectbench/ports"
)

func main() {
	// Missing .env is fine; real deployments use the environment directly
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "reflectbench",
		Short: "Statistical validation for reflection-vs-manual benchmark suites",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var alpha float64
	var parallel int64
	var save bool
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [suite-file]",
		Short: "Analyze a benchmark suite file and print per-metric verdicts",
		Long: `Analyze a paired benchmark suite and print a statistical verdict per metric.

The suite file is either harness JSON ({"performance_metrics": {...}}) or an
Excel workbook with <metric>_reflection / <metric>_manual column pairs.

Example: reflectbench analyze results.json --alpha 0.05 --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), args[0], alpha, parallel, save, asJSON)
		},
	}

	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Significance threshold in (0, 1)")
	cmd.Flags().Int64Var(&parallel, "parallel", 4, "Maximum concurrent metric analyses")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the run to the ledger (needs DATABASE_URL)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full run artifact as JSON")

	return cmd
}

func runAnalyze(ctx context.Context, path string, alpha float64, parallel int64, save, asJSON bool) error {
	logger := internal.NewDefaultLogger()

	suite, err := suiteSourceFor(path).LoadSuite(ctx, path)
	if err != nil {
		return err
	}

	var ledger ports.RunLedgerPort
	if save {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			return fmt.Errorf("--save requires DATABASE_URL to be set")
		}
		pgLedger, err := postgres.NewRunLedger(ctx, dbURL)
		if err != nil {
			return err
		}
		defer pgLedger.Close()
		ledger = pgLedger
	}

	service := app.NewAnalysisService(alpha, parallel, ledger, logger)
	run, err := service.AnalyzeSuite(ctx, suite)
	if err != nil {
		return err
	}

	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(run)
	}

	printRun(run)
	return nil
}

// suiteSourceFor picks the reader by file extension; harness JSON is the
// default format
func suiteSourceFor(path string) ports.SampleSourcePort {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return excel.NewReader()
	default:
		return jsonfile.NewReader()
	}
}

func printRun(run *analysis.AnalysisRun) {
	fmt.Printf("Run %s (alpha=%.3f)\n", run.RunID, run.Alpha)
	fmt.Println(strings.Repeat("=", 64))

	for _, m := range run.Metrics {
		fmt.Printf("\n%s\n", m.Metric)
		fmt.Printf("  reflection: mean=%.6g std=%.6g n=%d\n",
			m.ReflectionStats.Mean, m.ReflectionStats.StdDev, m.ReflectionStats.SampleSize)
		fmt.Printf("  manual:     mean=%.6g std=%.6g n=%d\n",
			m.ManualStats.Mean, m.ManualStats.StdDev, m.ManualStats.SampleSize)
		fmt.Printf("  test: %s  statistic=%.4f  p=%.6f  significant=%v\n",
			m.Comparison.Method, m.Comparison.Statistic, m.Comparison.PValue, m.Comparison.Significant)

		if m.EffectSize.Value != nil {
			e := m.EffectSize.Value
			fmt.Printf("  effect: d=%.4f (%s)  hedges_g=%.4f  improvement=%.2f%%\n",
				e.CohensD, e.Magnitude, e.HedgesG, e.PercentImprovement)
		} else if m.EffectSize.Fault != nil {
			fmt.Printf("  effect: unavailable (%s)\n", m.EffectSize.Fault.Message)
		}

		if m.Power.Value != nil {
			p := m.Power.Value
			if p.MinSampleSize80 != nil {
				fmt.Printf("  power: %.4f at n=%d  adequate=%v  min_n_80=%d\n",
					p.Power, p.SampleSize, p.AdequatePower, *p.MinSampleSize80)
			} else {
				fmt.Printf("  power: %.4f at n=%d  adequate=%v  min_n_80=unsolvable\n",
					p.Power, p.SampleSize, p.AdequatePower)
			}
		} else if m.Power.Fault != nil {
			fmt.Printf("  power: unavailable (%s)\n", m.Power.Fault.Message)
		}
	}

	for _, f := range run.Failures {
		fmt.Printf("\n%s\n  FAILED [%s]: %s\n", f.Metric, f.Code, f.Reason)
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", 64))
	fmt.Printf("metrics=%d significant=%d large_effects=%d adequately_powered=%d failed=%d\n",
		run.Summary.TotalMetrics, run.Summary.SignificantMetrics,
		run.Summary.LargeEffects, run.Summary.AdequatelyPowered, run.Summary.FailedMetrics)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP API",
		Long: `Run the HTTP API that accepts benchmark suites and returns analysis runs.

Configuration comes from the environment: PORT, ALPHA, MAX_PARALLEL and the
optional DATABASE_URL run ledger.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	return cmd
}

func runServe(ctx context.Context) error {
	logger := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var ledger ports.RunLedgerPort
	if cfg.Database.Enabled {
		pgLedger, err := postgres.NewRunLedger(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pgLedger.Close()
		ledger = pgLedger
		logger.Info("run ledger enabled")
	} else {
		logger.Info("run ledger disabled, analyses are not persisted")
	}

	service := app.NewAnalysisService(cfg.Analysis.Alpha, cfg.Analysis.MaxParallel, ledger, logger)
	apiApp := api.NewApp(service, ledger, logger)
	return apiApp.Serve(api.Config{Port: cfg.Server.Port})
}

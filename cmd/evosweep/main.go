// Command evosweep runs the batch analysis over an experiment directory:
// per-configuration normality screens, the matching omnibus test, post-hoc
// comparisons, Pareto front extraction and hypervolume ranking, with results
// written as CSV tables, an xlsx report and (optionally) the postgres ledger.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"evosweep/adapters/csvio"
	"evosweep/adapters/excel"
	"evosweep/adapters/postgres"
	"evosweep/app"
	"evosweep/domain/pareto"
	domain "evosweep/domain/stats"
	"evosweep/internal"
	"evosweep/internal/config"
	"evosweep/ports"
)

func main() {
	var (
		metric  = flag.String("metric", "hypervolume", "CSV column holding the per-run metric")
		method  = flag.String("method", string(domain.MethodShapiroWilk), "normality test: shapiro_wilk, kolmogorov_smirnov, anderson_darling")
		mode    = flag.String("mode", string(app.GroupModeConjunction), "normality aggregation: conjunction or majority")
		factors = flag.String("factors", "pc,pm,pop", "comma-separated factor prefixes to analyze in addition to full configurations")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := internal.NewDefaultLogger()

	factorList := strings.Split(*factors, ",")
	if err := run(cfg, logger, *metric, domain.NormalityMethod(*method), app.GroupMode(*mode), factorList); err != nil {
		logger.Error("batch failed: %v", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *internal.Logger, metric string, method domain.NormalityMethod, mode app.GroupMode, factors []string) error {
	ctx := context.Background()

	var ledger ports.ResultLedgerPort
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		pgLedger := postgres.NewResultLedger(db)
		if err := pgLedger.Migrate(ctx); err != nil {
			return err
		}
		ledger = pgLedger
	}

	source := csvio.NewExperimentSource(cfg.Paths.OutputDir, logger)
	samples, err := source.LoadMetricGroups(metric)
	if err != nil {
		return err
	}

	units, err := app.BuildFactorUnits(metric, samples, factors)
	if err != nil {
		return err
	}

	analysis := app.NewAnalysisService(logger, ledger)
	outcome, err := analysis.RunBatch(ctx, app.BatchRequest{
		Units:       units,
		Method:      method,
		Mode:        mode,
		Alpha:       cfg.Analysis.Alpha,
		Parallelism: cfg.Analysis.Parallelism,
	})
	if err != nil {
		return err
	}

	pooled, err := source.LoadFronts()
	if err != nil {
		return err
	}
	paretoSvc := app.NewParetoService(logger)
	ref := pareto.Solution{F1: cfg.Analysis.RefF1, F2: cfg.Analysis.RefF2}
	rankings, fronts, err := paretoSvc.RankByHypervolume(pooled, ref)
	if err != nil {
		return err
	}

	writer := csvio.NewResultWriter(cfg.Paths.OutputDir)
	if err := writer.WriteNormality(outcome.Normality); err != nil {
		return err
	}
	if err := writer.WriteOmnibus(outcome.Omnibus); err != nil {
		return err
	}
	if err := writer.WritePostHoc(outcome.PostHoc); err != nil {
		return err
	}

	report := ports.Report{
		Manifest:  *outcome.Manifest,
		Normality: outcome.Normality,
		Omnibus:   outcome.Omnibus,
		PostHoc:   outcome.PostHoc,
		Fronts:    fronts,
	}
	if err := excel.NewReportWriter().WriteReport(cfg.Paths.ReportFile, report); err != nil {
		return err
	}

	fmt.Println("Merged-front hypervolume ranking:")
	for _, r := range rankings {
		fmt.Printf("%2d. %-40s hv=%.6f front=%d\n", r.Rank, r.Config, r.Hypervolume, r.FrontSize)
	}

	byMean, err := app.RankGroupsByMean(samples)
	if err != nil {
		return err
	}
	fmt.Printf("Best configuration by mean %s: %s (%.6f over %d runs)\n",
		metric, byMean[0].Group, byMean[0].Mean, byMean[0].N)

	logger.Info("report written to %s", cfg.Paths.ReportFile)
	return nil
}

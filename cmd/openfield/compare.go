package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/couchcryptid/openfield-comfort/internal/adapter/comfort"
	"github.com/couchcryptid/openfield-comfort/internal/adapter/energyplus"
	"github.com/couchcryptid/openfield-comfort/internal/adapter/epw"
	"github.com/couchcryptid/openfield-comfort/internal/adapter/file"
	httpadapter "github.com/couchcryptid/openfield-comfort/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/openfield-comfort/internal/adapter/kafka"
	"github.com/couchcryptid/openfield-comfort/internal/adapter/process"
	"github.com/couchcryptid/openfield-comfort/internal/adapter/radiance"
	"github.com/couchcryptid/openfield-comfort/internal/config"
	"github.com/couchcryptid/openfield-comfort/internal/domain"
	"github.com/couchcryptid/openfield-comfort/internal/observability"
	"github.com/couchcryptid/openfield-comfort/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
)

type compareFlags struct {
	scenarios string
	resultDir string
	progress  bool
}

func newCompareCmd() *cobra.Command {
	var f compareFlags
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Evaluate every scenario of the mitigation matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if f.scenarios != "" {
				cfg.ScenarioFile = f.scenarios
			}
			if err := cfg.RequireComparisonInputs(); err != nil {
				return err
			}
			return runCompare(cmd.Context(), cmd.OutOrStdout(), cfg, f)
		},
	}
	cmd.Flags().StringVar(&f.scenarios, "scenarios", "", "scenario matrix YAML file (overrides SCENARIO_FILE)")
	cmd.Flags().StringVar(&f.resultDir, "results", "", "directory for CSV and JSON results (default OUTPUT_DIR/CASE_NAME/results)")
	cmd.Flags().BoolVar(&f.progress, "progress", false, "show a progress bar")
	return cmd
}

func runCompare(parent context.Context, out io.Writer, cfg *config.Config, f compareFlags) error {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	matrix, err := config.LoadMatrix(cfg.ScenarioFile)
	if err != nil {
		return err
	}
	weather, err := epw.ReadFile(cfg.EPWFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := process.NewRunner(cfg.SimulationTimeout, logger)
	resultsDir := cfg.RadianceResultsDir
	if resultsDir == "" {
		resultsDir = radiance.ResultDir(cfg.OutputDir, cfg.CaseName)
	}
	irr, err := radiance.NewSource(resultsDir, cfg.RadianceCommandFile, runner, logger).Irradiance(ctx)
	if err != nil {
		return err
	}

	sim := energyplus.NewCachedSimulator(
		energyplus.NewSimulator(cfg.EnergyPlusBin, cfg.OutputDir, runner, logger, metrics),
		cfg.SimulationCacheSize, metrics)
	client := comfort.NewClient(cfg.ComfortAPIURL, cfg.ComfortAPITimeout, logger, metrics)

	if f.resultDir == "" {
		f.resultDir = filepath.Join(cfg.OutputDir, cfg.CaseName, "results")
	}
	loaders := []pipeline.ResultLoader{file.NewWriter(f.resultDir, logger)}
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		loaders = append(loaders, writer)
	}

	comparison := pipeline.New(sim, client, client, loaders, logger, metrics, pipeline.Options{
		WeatherFile: cfg.EPWFile,
		CaseName:    cfg.CaseName,
		Concurrency: cfg.SimulationConcurrency,
	})

	if cfg.HTTPAddr != "" {
		ready := httpadapter.AllReady(client, comparison)
		srv := httpadapter.NewServer(cfg.HTTPAddr, ready, comparison, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer shutdownServer(srv, cfg, logger)
	}

	if f.progress {
		uiprogress.Start()
		bar := uiprogress.AddBar(len(matrix.Scenarios())).AppendCompleted().PrependElapsed()
		comparison.OnScenario(func(domain.ScenarioResult) { bar.Incr() })
		defer uiprogress.Stop()
	}

	results, err := comparison.Run(ctx, weather, irr, matrix)
	if err != nil {
		return err
	}
	return printSummary(out, results)
}

func shutdownServer(srv *httpadapter.Server, cfg *config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
}

// printSummary writes one line per case.
func printSummary(out io.Writer, results []domain.ScenarioResult) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE\tMEAN UTCI\tCOMFORTABLE HOURS\tVS BASELINE")
	for _, r := range results {
		diff := "-"
		if d := r.Summary.MeanDifference; d != nil {
			diff = strconv.FormatFloat(*d, 'f', 2, 64)
		}
		fmt.Fprintf(tw, "%s\t%.2f\t%d\t%s\n", r.CaseID, r.Summary.MeanUTCI, r.Summary.ComfortableHours, diff)
	}
	return tw.Flush()
}

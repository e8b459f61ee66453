package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/couchcryptid/openfield-comfort/internal/adapter/energyplus"
	"github.com/couchcryptid/openfield-comfort/internal/adapter/epw"
	"github.com/couchcryptid/openfield-comfort/internal/adapter/file"
	"github.com/couchcryptid/openfield-comfort/internal/adapter/process"
	"github.com/couchcryptid/openfield-comfort/internal/config"
	"github.com/couchcryptid/openfield-comfort/internal/domain"
	"github.com/couchcryptid/openfield-comfort/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"
)

// surfaceCSV is the default output name inside the case directory.
const surfaceCSV = "surface_temperature.csv"

type surfaceFlags struct {
	ground domain.Ground
	shaded bool
	out    string
}

func newSurfaceCmd() *cobra.Command {
	f := surfaceFlags{ground: domain.DefaultGround()}
	cmd := &cobra.Command{
		Use:   "surface",
		Short: "Simulate one ground variant and write its hourly surface temperature as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireSimulationInputs(); err != nil {
				return err
			}
			if err := f.ground.Validate(); err != nil {
				return err
			}
			return runSurface(cmd.Context(), cmd.OutOrStdout(), cfg, f)
		},
	}
	fl := cmd.Flags()
	fl.Float64Var(&f.ground.Reflectivity, "reflectivity", f.ground.Reflectivity, "solar and visible reflectivity (0-1)")
	fl.Float64Var(&f.ground.Emissivity, "emissivity", f.ground.Emissivity, "thermal emissivity (0-1)")
	fl.Float64Var(&f.ground.Thickness, "thickness", f.ground.Thickness, "slab thickness in m")
	fl.Float64Var(&f.ground.Conductivity, "conductivity", f.ground.Conductivity, "conductivity in W/m-K")
	fl.Float64Var(&f.ground.Density, "density", f.ground.Density, "density in kg/m3")
	fl.Float64Var(&f.ground.SpecificHeat, "specific-heat", f.ground.SpecificHeat, "specific heat in J/kg-K")
	fl.BoolVar(&f.shaded, "shaded", false, "place an opaque shade box over the ground")
	fl.StringVarP(&f.out, "output", "o", "", "CSV file to write (default: the case directory)")
	return cmd
}

func runSurface(parent context.Context, stdout io.Writer, cfg *config.Config, f surfaceFlags) error {
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	weather, err := epw.ReadFile(cfg.EPWFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim := energyplus.NewSimulator(cfg.EnergyPlusBin, cfg.OutputDir, process.NewRunner(cfg.SimulationTimeout, logger), logger, metrics)
	sc := domain.SurfaceCase{Ground: f.ground, Shaded: f.shaded}
	st, err := sim.Simulate(ctx, domain.SurfaceRequest{
		WeatherFile: cfg.EPWFile,
		Weather:     weather,
		Case:        sc,
		CaseName:    sc.Name(cfg.CaseName),
	})
	if err != nil {
		return err
	}

	if f.out == "" {
		f.out = filepath.Join(sim.CaseDir(sc.Name(cfg.CaseName)), surfaceCSV)
	}
	fh, err := os.Create(f.out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := file.WriteSeries(fh, st.Series); err != nil {
		_ = fh.Close()
		return fmt.Errorf("write %s: %w", f.out, err)
	}
	if err := fh.Close(); err != nil {
		return err
	}
	fmt.Fprintln(stdout, f.out)
	return nil
}

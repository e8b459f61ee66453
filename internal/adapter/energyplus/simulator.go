// Package energyplus simulates ground surface temperature with the EnergyPlus
// whole-building engine: it writes the model definition, runs the engine as a
// subprocess and extracts the hourly series from its standard output file.
package energyplus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/openfield-comfort/internal/adapter/process"
	"github.com/couchcryptid/openfield-comfort/internal/domain"
	"github.com/couchcryptid/openfield-comfort/internal/observability"
)

// File names inside a case directory.
const (
	InputFile  = "in.idf"
	OutputFile = "eplusout.eso"
	caseSubdir = "ground_surface_temperature"
)

// Runner executes an external command.
type Runner interface {
	Run(ctx context.Context, c process.Command) (process.Result, error)
}

// Simulator runs one EnergyPlus simulation per request.
// It implements pipeline.SurfaceSimulator.
type Simulator struct {
	binary    string
	outputDir string
	format    ESOFormat
	runner    Runner
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewSimulator creates a simulator that writes case directories below outputDir.
func NewSimulator(binary, outputDir string, runner Runner, logger *slog.Logger, metrics *observability.Metrics) *Simulator {
	return &Simulator{
		binary:    binary,
		outputDir: outputDir,
		format:    DefaultESOFormat(),
		runner:    runner,
		logger:    logger,
		metrics:   metrics,
	}
}

// CaseDir returns the working directory used for a case name.
func (s *Simulator) CaseDir(caseName string) string {
	return filepath.Join(s.outputDir, caseName, caseSubdir)
}

// Simulate writes the ground model, runs the engine and returns the hourly
// temperature of the slab's top face. The result is tagged with the ground
// and shading state it was simulated under.
func (s *Simulator) Simulate(ctx context.Context, req domain.SurfaceRequest) (domain.SurfaceTemperature, error) {
	start := time.Now()
	st, err := s.simulate(ctx, req)
	s.metrics.SimulationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.Simulations.WithLabelValues("error").Inc()
		var fe *domain.FormatError
		var pe *domain.ParseError
		if errors.As(err, &fe) || errors.As(err, &pe) {
			s.metrics.OutputParseErrors.Inc()
		}
		return domain.SurfaceTemperature{}, fmt.Errorf("simulate %s: %w", req.CaseName, err)
	}
	s.metrics.Simulations.WithLabelValues("success").Inc()
	s.logger.Info("surface temperature simulated",
		"case", req.CaseName,
		"shaded", req.Case.Shaded,
		"reflectivity", req.Case.Ground.Reflectivity,
		"duration", time.Since(start),
	)
	return st, nil
}

func (s *Simulator) simulate(ctx context.Context, req domain.SurfaceRequest) (domain.SurfaceTemperature, error) {
	if req.CaseName == "" {
		return domain.SurfaceTemperature{}, errors.New("case name is required")
	}
	if req.Weather == nil {
		return domain.SurfaceTemperature{}, errors.New("weather is required")
	}
	monthly, err := req.Weather.MonthlyGroundTemperature(domain.ShallowGroundDepth)
	if err != nil {
		return domain.SurfaceTemperature{}, err
	}
	model, err := BuildGroundModel(req.Case.Ground, req.Case.Shaded, monthly)
	if err != nil {
		return domain.SurfaceTemperature{}, err
	}

	dir := s.CaseDir(req.CaseName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.SurfaceTemperature{}, fmt.Errorf("create case directory: %w", err)
	}
	idfPath := filepath.Join(dir, InputFile)
	esoPath := filepath.Join(dir, OutputFile)
	if err := writeModel(idfPath, model); err != nil {
		return domain.SurfaceTemperature{}, err
	}
	// A stale output from an earlier run must never be read back.
	if err := os.Remove(esoPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.SurfaceTemperature{}, fmt.Errorf("remove stale output: %w", err)
	}

	s.logger.Debug("running energyplus", "case", req.CaseName, "dir", dir)
	if _, err := s.runner.Run(ctx, process.Command{
		Path: s.binary,
		Args: []string{"-a", "-w", req.WeatherFile, "-d", dir, idfPath},
		Dir:  dir,
	}); err != nil {
		return domain.SurfaceTemperature{}, err
	}

	values, err := s.readSurfaceTemperature(esoPath)
	if err != nil {
		return domain.SurfaceTemperature{}, err
	}
	if len(values) != req.Weather.Period.Hours {
		return domain.SurfaceTemperature{}, &domain.FormatError{
			Reason: fmt.Sprintf("surface temperature has %d hourly values, weather period has %d", len(values), req.Weather.Period.Hours),
			Line:   -1,
		}
	}
	series, err := domain.NewSeries(SurfaceTempOutput, domain.UnitCelsius, req.Weather.Period, values)
	if err != nil {
		return domain.SurfaceTemperature{}, err
	}
	return domain.SurfaceTemperature{Ground: req.Case.Ground, Shaded: req.Case.Shaded, Series: series}, nil
}

func writeModel(path string, m *Model) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	if _, err := m.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// readSurfaceTemperature parses the output file and returns the column of the
// requested output variable.
func (s *Simulator) readSurfaceTemperature(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open simulation output: %w", err)
	}
	defer f.Close()

	res, err := ReadESO(f, s.format)
	if err != nil {
		return nil, err
	}
	for i, name := range res.Names {
		if strings.HasPrefix(name, SurfaceTempOutput) {
			return res.Column(i)
		}
	}
	return nil, &domain.FormatError{
		Reason: fmt.Sprintf("output declares %v, not %q", res.Names, SurfaceTempOutput),
		Line:   -1,
	}
}

// Package radiance provides the open-field solar irradiance computed by an
// annual grid-based Radiance recipe.
package radiance

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/openfield-comfort/internal/adapter/process"
	"github.com/couchcryptid/openfield-comfort/internal/domain"
	"gonum.org/v1/gonum/floats"
)

// LuminousEfficacy converts Radiance illuminance results (lux) back to
// irradiance (W/m2).
const LuminousEfficacy = 179.0

const illHeaderLines = 6

// Result file names for the single-sensor scene.
const (
	SunFile    = "sun..scene..default.ill"
	TotalFile  = "total..scene..default.ill"
	DirectFile = "direct..scene..default.ill"
)

// ResultDir returns where a recipe written for caseName leaves its results.
func ResultDir(outputDir, caseName string) string {
	return filepath.Join(outputDir, caseName, "gridbased_annual", "result")
}

// Runner executes an external command.
type Runner interface {
	Run(ctx context.Context, c process.Command) (process.Result, error)
}

// Source loads irradiance results, optionally running the recipe first.
type Source struct {
	resultDir   string
	commandFile string
	runner      Runner
	logger      *slog.Logger
}

// NewSource creates a source reading from resultDir. When commandFile is not
// empty it is executed before the results are read.
func NewSource(resultDir, commandFile string, runner Runner, logger *slog.Logger) *Source {
	return &Source{resultDir: resultDir, commandFile: commandFile, runner: runner, logger: logger}
}

// Irradiance returns the direct and diffuse horizontal irradiance.
func (s *Source) Irradiance(ctx context.Context) (domain.Irradiance, error) {
	if s.commandFile != "" {
		s.logger.Info("running radiance recipe", "command_file", s.commandFile)
		if _, err := s.runner.Run(ctx, process.Command{
			Path: s.commandFile,
			Dir:  filepath.Dir(s.commandFile),
		}); err != nil {
			return domain.Irradiance{}, fmt.Errorf("radiance recipe: %w", err)
		}
	}
	irr, err := ReadResults(s.resultDir)
	if err != nil {
		return domain.Irradiance{}, err
	}
	s.logger.Info("solar irradiance loaded", "dir", s.resultDir, "hours", irr.Direct.Len())
	return irr, nil
}

// ReadResults reads the sun, total and direct result files in dir. The sun
// file is the direct component; diffuse is total minus direct.
func ReadResults(dir string) (domain.Irradiance, error) {
	sun, err := readIll(filepath.Join(dir, SunFile))
	if err != nil {
		return domain.Irradiance{}, err
	}
	total, err := readIll(filepath.Join(dir, TotalFile))
	if err != nil {
		return domain.Irradiance{}, err
	}
	direct, err := readIll(filepath.Join(dir, DirectFile))
	if err != nil {
		return domain.Irradiance{}, err
	}
	if len(total) != len(direct) || len(sun) != len(total) {
		return domain.Irradiance{}, fmt.Errorf("radiance results differ in length: sun %d, total %d, direct %d", len(sun), len(total), len(direct))
	}

	period, err := domain.PeriodForHours(len(sun))
	if err != nil {
		return domain.Irradiance{}, fmt.Errorf("radiance results: %w", err)
	}
	diffuse := make([]float64, len(total))
	floats.SubTo(diffuse, total, direct)

	return domain.Irradiance{
		Direct:  domain.Series{Name: "Direct Horizontal Irradiance", Unit: domain.UnitIrradiance, Period: period, Values: sun},
		Diffuse: domain.Series{Name: "Diffuse Horizontal Irradiance", Unit: domain.UnitIrradiance, Period: period, Values: diffuse},
	}, nil
}

// readIll returns the first sensor's hourly values from a tab-separated
// result file, converted to W/m2.
func readIll(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open radiance result: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 256*1024), 4*1024*1024)
	for line := 0; sc.Scan(); line++ {
		if line < illHeaderLines {
			continue
		}
		var out []float64
		for _, tok := range strings.Split(sc.Text(), "\t") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", filepath.Base(path), line+1, err)
			}
			out = append(out, v)
		}
		floats.Scale(1/LuminousEfficacy, out)
		return out, nil
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return nil, fmt.Errorf("%s has no sensor rows", filepath.Base(path))
}

package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Scenario is one cell of the mitigation matrix.
type Scenario struct {
	Ground             Ground     `json:"ground"`
	Shaded             bool       `json:"shaded"`
	EvaporativeCooling bool       `json:"evaporative_cooling"`
	Wind               WindPolicy `json:"wind"`
}

// ID returns the case identifier, e.g. "Baseline_Shaded_CoolPavement_EvaporativeCooling_NoWind".
func (s Scenario) ID() string {
	var b strings.Builder
	b.WriteString("Baseline")
	if s.Shaded {
		b.WriteString("_Shaded")
	}
	if s.Ground.Label != "" {
		b.WriteString("_" + s.Ground.Label)
	}
	if s.EvaporativeCooling {
		b.WriteString("_EvaporativeCooling")
	}
	b.WriteString(s.Wind.Suffix())
	return b.String()
}

// SurfaceCase is a ground variant under one shading state: the unit of work
// for a surface temperature simulation.
type SurfaceCase struct {
	Ground Ground
	Shaded bool
}

// Name returns a directory-safe case name, unique per distinct simulation
// input. The hash suffix keeps variants that differ only in material apart.
func (c SurfaceCase) Name(base string) string {
	shade := "open"
	if c.Shaded {
		shade = "shaded"
	}
	hash := sha256.Sum256([]byte(c.Ground.Key()))
	return fmt.Sprintf("%s_refl%03d_%s_%s", base, int(math.Round(c.Ground.Reflectivity*100)), shade, hex.EncodeToString(hash[:4]))
}

// Matrix lists the options of every mitigation dimension.
type Matrix struct {
	Grounds            []Ground     `yaml:"grounds"`
	Shading            []bool       `yaml:"shading"`
	EvaporativeCooling []bool       `yaml:"evaporative_cooling"`
	Wind               []WindPolicy `yaml:"wind"`
}

// DefaultMatrix is the reference comparison: standard and cool pavement,
// shaded and open, with and without evaporative cooling, calm and 2 m/s wind.
func DefaultMatrix() Matrix {
	standard := DefaultGround()
	standard.Reflectivity = 0.25
	cool := DefaultGround()
	cool.Reflectivity = 0.40
	cool.Label = "CoolPavement"
	return Matrix{
		Grounds:            []Ground{standard, cool},
		Shading:            []bool{true, false},
		EvaporativeCooling: []bool{true, false},
		Wind:               []WindPolicy{WindCalm, 2},
	}
}

// Validate checks every dimension is populated, every ground is physical and
// no two scenarios share a case ID.
func (m Matrix) Validate() error {
	var errs []error
	if len(m.Grounds) == 0 {
		errs = append(errs, errors.New("matrix has no ground variants"))
	}
	if len(m.Shading) == 0 {
		errs = append(errs, errors.New("matrix has no shading options"))
	}
	if len(m.EvaporativeCooling) == 0 {
		errs = append(errs, errors.New("matrix has no evaporative cooling options"))
	}
	if len(m.Wind) == 0 {
		errs = append(errs, errors.New("matrix has no wind policies"))
	}
	for i, g := range m.Grounds {
		if err := g.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("ground %d: %w", i, err))
		}
	}
	for _, w := range m.Wind {
		if err := w.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	seen := make(map[string]bool)
	for _, s := range m.Scenarios() {
		id := s.ID()
		if seen[id] {
			return fmt.Errorf("matrix produces duplicate case id %q; give ground variants distinct labels", id)
		}
		seen[id] = true
	}
	return nil
}

// SurfaceCases returns every ground x shading combination in matrix order.
func (m Matrix) SurfaceCases() []SurfaceCase {
	out := make([]SurfaceCase, 0, len(m.Grounds)*len(m.Shading))
	for _, g := range m.Grounds {
		for _, shaded := range m.Shading {
			out = append(out, SurfaceCase{Ground: g, Shaded: shaded})
		}
	}
	return out
}

// ScenariosFor returns the evaporative cooling x wind scenarios built on one surface case.
func (m Matrix) ScenariosFor(c SurfaceCase) []Scenario {
	out := make([]Scenario, 0, len(m.EvaporativeCooling)*len(m.Wind))
	for _, evap := range m.EvaporativeCooling {
		for _, w := range m.Wind {
			out = append(out, Scenario{Ground: c.Ground, Shaded: c.Shaded, EvaporativeCooling: evap, Wind: w})
		}
	}
	return out
}

// Scenarios returns the full matrix in evaluation order.
func (m Matrix) Scenarios() []Scenario {
	var out []Scenario
	for _, c := range m.SurfaceCases() {
		out = append(out, m.ScenariosFor(c)...)
	}
	return out
}

// BaselineID returns the ID of the unmitigated reference for s: the first
// unlabelled ground, unshaded, without evaporative cooling, same wind policy.
// It returns "" when the matrix has no such scenario.
func (m Matrix) BaselineID(s Scenario) string {
	for _, g := range m.Grounds {
		if g.Label != "" {
			continue
		}
		if !contains(m.Shading, false) || !contains(m.EvaporativeCooling, false) {
			return ""
		}
		return Scenario{Ground: g, Wind: s.Wind}.ID()
	}
	return ""
}

func contains(opts []bool, v bool) bool {
	for _, o := range opts {
		if o == v {
			return true
		}
	}
	return false
}

// Summary condenses a UTCI series.
type Summary struct {
	MeanUTCI         float64                  `json:"mean_utci"`
	HoursByCategory  [NumStressCategories]int `json:"hours_by_category"`
	ComfortableHours int                      `json:"comfortable_hours"`

	// MeanDifference is the mean hourly UTCI difference from the baseline
	// scenario; nil for the baseline itself or when none exists.
	MeanDifference *float64 `json:"mean_difference,omitempty"`
}

// Summarize computes the mean UTCI and the hours spent in each stress category.
func Summarize(utci Series) Summary {
	s := Summary{MeanUTCI: utci.Mean()}
	for _, v := range utci.Values {
		s.HoursByCategory[Categorize(v).Index()]++
	}
	s.ComfortableHours = s.HoursByCategory[NoThermalStress.Index()]
	return s
}

// MeanDifference returns mean(a - b), or an error when the series differ in length.
func MeanDifference(a, b Series) (float64, error) {
	if !SameShape(a, b) {
		return 0, fmt.Errorf("difference: series lengths differ (%d, %d)", a.Len(), b.Len())
	}
	if a.Len() == 0 {
		return 0, nil
	}
	diff := make([]float64, a.Len())
	floats.SubTo(diff, a.Values, b.Values)
	return floats.Sum(diff) / float64(a.Len()), nil
}

// ScenarioResult is the outcome of evaluating one scenario.
type ScenarioResult struct {
	RunID       string    `json:"run_id"`
	CaseID      string    `json:"case_id"`
	Scenario    Scenario  `json:"scenario"`
	UTCI        Series    `json:"utci"`
	Summary     Summary   `json:"summary"`
	GeneratedAt time.Time `json:"generated_at"`
}

// BatchProgress reports how far a comparison batch has got.
type BatchProgress struct {
	RunID     string    `json:"run_id"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	StartedAt time.Time `json:"started_at"`
	Done      bool      `json:"done"`
}

package domain

import (
	"errors"
	"fmt"
	"math"
)

// GroundViewFactor is the share of an open-field observer's view occupied by
// the ground. The surface temperature is weighted by it before entering the
// radiant model.
const GroundViewFactor = 0.5

// Ground holds the physical properties of the simulated ground slab.
type Ground struct {
	Label        string  `json:"label,omitempty" yaml:"label"`
	Thickness    float64 `json:"thickness" yaml:"thickness"`         // m
	Reflectivity float64 `json:"reflectivity" yaml:"reflectivity"`   // 0..1, solar and visible
	Emissivity   float64 `json:"emissivity" yaml:"emissivity"`       // 0..1, thermal absorptance
	Conductivity float64 `json:"conductivity" yaml:"conductivity"`   // W/m-K
	Density      float64 `json:"density" yaml:"density"`             // kg/m3
	SpecificHeat float64 `json:"specific_heat" yaml:"specific_heat"` // J/kg-K
}

// DefaultGround returns the reference dense-concrete-like ground.
func DefaultGround() Ground {
	return Ground{
		Thickness:    0.2,
		Reflectivity: 0.35,
		Emissivity:   0.9,
		Conductivity: 1.1,
		Density:      2250,
		SpecificHeat: 1000,
	}
}

// WithDefaults fills zero-valued physical properties from DefaultGround.
// Reflectivity is always taken as given.
func (g Ground) WithDefaults() Ground {
	d := DefaultGround()
	if g.Thickness == 0 {
		g.Thickness = d.Thickness
	}
	if g.Emissivity == 0 {
		g.Emissivity = d.Emissivity
	}
	if g.Conductivity == 0 {
		g.Conductivity = d.Conductivity
	}
	if g.Density == 0 {
		g.Density = d.Density
	}
	if g.SpecificHeat == 0 {
		g.SpecificHeat = d.SpecificHeat
	}
	return g
}

// Validate checks that every property is physically meaningful.
func (g Ground) Validate() error {
	var errs []error
	positive := []struct {
		name string
		v    float64
	}{
		{"thickness", g.Thickness},
		{"conductivity", g.Conductivity},
		{"density", g.Density},
		{"specific heat", g.SpecificHeat},
	}
	for _, p := range positive {
		if !(p.v > 0) || math.IsInf(p.v, 0) {
			errs = append(errs, fmt.Errorf("ground %s must be positive, got %g", p.name, p.v))
		}
	}
	if g.Reflectivity < 0 || g.Reflectivity > 1 || math.IsNaN(g.Reflectivity) {
		errs = append(errs, fmt.Errorf("ground reflectivity must be within [0, 1], got %g", g.Reflectivity))
	}
	if g.Emissivity < 0 || g.Emissivity > 1 || math.IsNaN(g.Emissivity) {
		errs = append(errs, fmt.Errorf("ground emissivity must be within [0, 1], got %g", g.Emissivity))
	}
	return errors.Join(errs...)
}

// Key identifies the simulation inputs of a ground variant. The label is
// excluded because it does not change the physics.
func (g Ground) Key() string {
	return fmt.Sprintf("t%g_r%g_e%g_k%g_d%g_c%g",
		g.Thickness, g.Reflectivity, g.Emissivity, g.Conductivity, g.Density, g.SpecificHeat)
}

// SurfaceTemperature is a simulated ground surface temperature series together
// with the inputs it was simulated under.
type SurfaceTemperature struct {
	Ground Ground `json:"ground"`
	Shaded bool   `json:"shaded"`
	Series Series `json:"series"`
}

// CheckShading returns a ConfigMismatchError when the surface temperature was
// simulated under a different shading state than requested.
func CheckShading(simulated, requested bool) error {
	if simulated != requested {
		return &ConfigMismatchError{SimulatedShaded: simulated, RequestedShaded: requested}
	}
	return nil
}

// SurfaceRequest asks for the surface temperature of one ground variant under
// one shading state. CaseName names the isolated working directory of the run;
// concurrent requests must use distinct names.
type SurfaceRequest struct {
	WeatherFile string
	Weather     *Weather
	Case        SurfaceCase
	CaseName    string
}

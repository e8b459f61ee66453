package domain

import (
	"context"
	"fmt"
)

// MeanRadiantTemperature prepares the SolarCal inputs for an open-field
// observer and delegates to the radiant model.
//
// The shading state the surface temperature was simulated under must match
// shaded; a mismatch returns a ConfigMismatchError before the model is called.
// Only shading is cross-checked. The reflectance is read from surface.Ground,
// so it always matches the simulation.
func MeanRadiantTemperature(ctx context.Context, model RadiantModel, loc Location, direct, diffuse Series, surface SurfaceTemperature, shaded bool) (Series, error) {
	if err := CheckShading(surface.Shaded, shaded); err != nil {
		return Series{}, err
	}
	if !SameShape(direct, surface.Series) || !SameShape(diffuse, surface.Series) {
		return Series{}, fmt.Errorf("mean radiant temperature: irradiance has %d/%d values, surface temperature has %d",
			direct.Len(), diffuse.Len(), surface.Series.Len())
	}

	exposed := 1.0
	if shaded {
		exposed = 0
	}

	mrt, err := model.MeanRadiantTemperature(ctx, SolarCalInput{
		Location:            loc,
		DirectHorizontal:    direct,
		DiffuseHorizontal:   diffuse,
		LongwaveMRT:         surface.Series.Scaled(GroundViewFactor),
		FractionBodyExposed: exposed,
		FloorReflectance:    surface.Ground.Reflectivity,
	})
	if err != nil {
		return Series{}, fmt.Errorf("mean radiant temperature: %w", err)
	}
	if mrt.Len() != surface.Series.Len() {
		return Series{}, fmt.Errorf("mean radiant temperature: model returned %d values, want %d", mrt.Len(), surface.Series.Len())
	}
	return mrt, nil
}

// UniversalThermalClimateIndex prepares air temperature and wind speed for a
// scenario and delegates to the comfort model. The weather record is not modified.
func UniversalThermalClimateIndex(ctx context.Context, model ComfortModel, w *Weather, mrt Series, wind WindPolicy, evaporativeCooling bool) (Series, error) {
	if err := wind.Validate(); err != nil {
		return Series{}, err
	}
	if !SameShape(w.DryBulb, mrt) {
		return Series{}, fmt.Errorf("utci: mean radiant temperature has %d values, weather has %d", mrt.Len(), w.DryBulb.Len())
	}

	air := w.DryBulb
	if evaporativeCooling {
		cooled, err := EvaporativelyCooled(w.DryBulb, w.RelativeHumidity, w.Pressure)
		if err != nil {
			return Series{}, err
		}
		air = cooled
	}

	utci, err := model.UTCI(ctx, UTCIInput{
		AirTemperature:         air,
		RelativeHumidity:       w.RelativeHumidity,
		MeanRadiantTemperature: mrt,
		WindSpeed:              wind.Speeds(w.WindSpeed),
	})
	if err != nil {
		return Series{}, fmt.Errorf("utci: %w", err)
	}
	if utci.Len() != mrt.Len() {
		return Series{}, fmt.Errorf("utci: model returned %d values, want %d", utci.Len(), mrt.Len())
	}
	return utci, nil
}

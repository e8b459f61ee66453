package domain

import "context"

// SolarCalInput is the input of the horizontal SolarCal mean radiant temperature model.
type SolarCalInput struct {
	Location            Location
	DirectHorizontal    Series  // W/m2
	DiffuseHorizontal   Series  // W/m2
	LongwaveMRT         Series  // °C, view-factor weighted surface temperature
	FractionBodyExposed float64 // 0..1
	FloorReflectance    float64 // 0..1
}

// UTCIInput is the input of the UTCI model.
type UTCIInput struct {
	AirTemperature         Series // °C
	RelativeHumidity       Series // %
	MeanRadiantTemperature Series // °C
	WindSpeed              Series // m/s
}

// RadiantModel computes mean radiant temperature from solar and longwave components.
type RadiantModel interface {
	MeanRadiantTemperature(ctx context.Context, in SolarCalInput) (Series, error)
}

// ComfortModel computes the Universal Thermal Climate Index.
type ComfortModel interface {
	UTCI(ctx context.Context, in UTCIInput) (Series, error)
}

// StressCategory is a UTCI thermal stress class, from -5 (extreme cold stress)
// to 4 (extreme heat stress).
type StressCategory int

// stressBounds are the upper UTCI bounds (°C, inclusive) of each category from
// extreme cold to very strong heat; anything above the last bound is extreme heat.
var stressBounds = [...]float64{-40, -27, -13, 0, 9, 26, 32, 38, 46}

var stressLabels = [...]string{
	"extreme cold stress",
	"very strong cold stress",
	"strong cold stress",
	"moderate cold stress",
	"slight cold stress",
	"no thermal stress",
	"moderate heat stress",
	"strong heat stress",
	"very strong heat stress",
	"extreme heat stress",
}

// NumStressCategories is the number of UTCI stress categories.
const NumStressCategories = len(stressLabels)

// NoThermalStress is the comfortable category, UTCI in (9, 26].
const NoThermalStress StressCategory = 0

// Categorize returns the stress category of a UTCI value.
func Categorize(utci float64) StressCategory {
	for i, b := range stressBounds {
		if utci <= b {
			return StressCategory(i - 5)
		}
	}
	return StressCategory(len(stressBounds) - 5)
}

// Index returns a zero-based position, 0 for extreme cold through 9 for extreme heat.
func (c StressCategory) Index() int { return int(c) + 5 }

func (c StressCategory) String() string {
	if i := c.Index(); i >= 0 && i < len(stressLabels) {
		return stressLabels[i]
	}
	return "unknown"
}

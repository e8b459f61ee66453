package domain

import "fmt"

// Location is the site a weather file describes.
type Location struct {
	City      string  `json:"city"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	TimeZone  float64 `json:"time_zone"` // hours from UTC
	Elevation float64 `json:"elevation"` // m
}

// Weather is the hourly climate record used by the pipeline.
type Weather struct {
	Source           string
	Location         Location
	Period           AnalysisPeriod
	DryBulb          Series // °C
	RelativeHumidity Series // %
	Pressure         Series // Pa, station pressure
	WindSpeed        Series // m/s

	// GroundTemperatures maps a depth in metres to twelve monthly values in °C.
	GroundTemperatures map[float64][12]float64
}

// ShallowGroundDepth is the EPW ground temperature depth used as the boundary
// condition below the simulated slab.
const ShallowGroundDepth = 0.5

// MonthlyGroundTemperature returns the twelve monthly ground temperatures at the given depth.
func (w *Weather) MonthlyGroundTemperature(depth float64) ([12]float64, error) {
	t, ok := w.GroundTemperatures[depth]
	if !ok {
		return [12]float64{}, fmt.Errorf("weather file %s has no ground temperatures at %gm", w.Source, depth)
	}
	return t, nil
}

// Irradiance is the horizontal solar irradiance at the test point.
type Irradiance struct {
	Direct  Series // W/m2, from the sun
	Diffuse Series // W/m2, from the sky dome
}

// Package epw reads EnergyPlus weather files.
package epw

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/openfield-comfort/internal/domain"
)

const headerLines = 8

// Hourly data columns.
const (
	colDryBulb    = 6
	colRelHum     = 8
	colPressure   = 9
	colWindSpeed  = 21
	minDataFields = colWindSpeed + 1
)

// ReadFile reads the weather file at path.
func ReadFile(path string) (*domain.Weather, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open weather file: %w", err)
	}
	defer f.Close()
	return Read(f, path)
}

// Read parses an EPW stream. source names the stream in errors and in the
// returned Weather.
func Read(r io.Reader, source string) (*domain.Weather, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	w := &domain.Weather{Source: source, GroundTemperatures: map[float64][12]float64{}}
	var dry, rh, pres, wind []float64

	for line := 0; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		if line < headerLines {
			if err := parseHeader(w, rec); err != nil {
				return nil, fmt.Errorf("%s line %d: %w", source, line+1, err)
			}
			continue
		}
		if len(rec) < minDataFields {
			return nil, fmt.Errorf("%s line %d: want at least %d fields, got %d", source, line+1, minDataFields, len(rec))
		}
		vals, err := floats(rec, colDryBulb, colRelHum, colPressure, colWindSpeed)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", source, line+1, err)
		}
		dry = append(dry, vals[0])
		rh = append(rh, vals[1])
		pres = append(pres, vals[2])
		wind = append(wind, vals[3])
	}

	period, err := domain.PeriodForHours(len(dry))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	w.Period = period
	w.DryBulb = domain.Series{Name: "Dry Bulb Temperature", Unit: domain.UnitCelsius, Period: period, Values: dry}
	w.RelativeHumidity = domain.Series{Name: "Relative Humidity", Unit: domain.UnitPercent, Period: period, Values: rh}
	w.Pressure = domain.Series{Name: "Atmospheric Station Pressure", Unit: domain.UnitPascal, Period: period, Values: pres}
	w.WindSpeed = domain.Series{Name: "Wind Speed", Unit: domain.UnitMetersPerSec, Period: period, Values: wind}
	return w, nil
}

func parseHeader(w *domain.Weather, rec []string) error {
	switch strings.ToUpper(strings.TrimSpace(rec[0])) {
	case "LOCATION":
		return parseLocation(w, rec)
	case "GROUND TEMPERATURES":
		return parseGroundTemperatures(w, rec)
	}
	return nil
}

// parseLocation reads LOCATION,city,state,country,source,wmo,lat,lon,tz,elevation.
func parseLocation(w *domain.Weather, rec []string) error {
	if len(rec) < 10 {
		return fmt.Errorf("LOCATION has %d fields, want 10", len(rec))
	}
	vals, err := floats(rec, 6, 7, 8, 9)
	if err != nil {
		return fmt.Errorf("LOCATION: %w", err)
	}
	w.Location = domain.Location{
		City:      strings.TrimSpace(rec[1]),
		Country:   strings.TrimSpace(rec[3]),
		Latitude:  vals[0],
		Longitude: vals[1],
		TimeZone:  vals[2],
		Elevation: vals[3],
	}
	return nil
}

// parseGroundTemperatures reads GROUND TEMPERATURES,n, then n blocks of
// depth,conductivity,density,specific heat and twelve monthly values.
func parseGroundTemperatures(w *domain.Weather, rec []string) error {
	if len(rec) < 2 || strings.TrimSpace(rec[1]) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(rec[1]))
	if err != nil {
		return fmt.Errorf("GROUND TEMPERATURES depth count: %w", err)
	}
	const block = 16
	if len(rec) < 2+n*block {
		return fmt.Errorf("GROUND TEMPERATURES declares %d depths but has %d fields", n, len(rec))
	}
	for d := 0; d < n; d++ {
		base := 2 + d*block
		depth, err := strconv.ParseFloat(strings.TrimSpace(rec[base]), 64)
		if err != nil {
			return fmt.Errorf("GROUND TEMPERATURES depth %d: %w", d, err)
		}
		var months [12]float64
		for m := range months {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[base+4+m]), 64)
			if err != nil {
				return fmt.Errorf("GROUND TEMPERATURES depth %g month %d: %w", depth, m+1, err)
			}
			months[m] = v
		}
		w.GroundTemperatures[depth] = months
	}
	return nil
}

func floats(rec []string, cols ...int) ([]float64, error) {
	out := make([]float64, len(cols))
	for i, c := range cols {
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[c]), 64)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", c, err)
		}
		out[i] = v
	}
	return out, nil
}

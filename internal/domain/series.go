package domain

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Units used across the pipeline.
const (
	UnitCelsius       = "°C"
	UnitIrradiance    = "W/m2"
	UnitMetersPerSec  = "m/s"
	UnitPercent       = "%"
	UnitPascal        = "Pa"
	HoursPerYear      = 8760
	HoursPerLeapYear  = 8784
	defaultPeriodYear = 2018
)

// AnalysisPeriod describes the timestamps of an hourly series.
type AnalysisPeriod struct {
	Start time.Time     `json:"start"`
	Step  time.Duration `json:"step"`
	Hours int           `json:"hours"`
}

// FullYear returns an hourly period covering every hour of the given year,
// starting at midnight January 1st UTC.
func FullYear(year int) AnalysisPeriod {
	hours := HoursPerYear
	if isLeap(year) {
		hours = HoursPerLeapYear
	}
	return AnalysisPeriod{
		Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		Step:  time.Hour,
		Hours: hours,
	}
}

// PeriodForHours returns the full-year period matching an hourly value count:
// 8760 maps to a non-leap year, 8784 to a leap year.
func PeriodForHours(n int) (AnalysisPeriod, error) {
	switch n {
	case HoursPerYear:
		return FullYear(defaultPeriodYear), nil
	case HoursPerLeapYear:
		return FullYear(defaultPeriodYear + 2), nil
	default:
		return AnalysisPeriod{}, fmt.Errorf("hourly series has %d values, want %d or %d", n, HoursPerYear, HoursPerLeapYear)
	}
}

// At returns the timestamp of the i-th value.
func (p AnalysisPeriod) At(i int) time.Time {
	return p.Start.Add(time.Duration(i) * p.Step)
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// Series is an hourly numeric sequence tagged with its quantity and unit.
type Series struct {
	Name   string         `json:"name"`
	Unit   string         `json:"unit"`
	Period AnalysisPeriod `json:"period"`
	Values []float64      `json:"values"`
}

// NewSeries builds a Series, rejecting a value count that does not match the period.
func NewSeries(name, unit string, period AnalysisPeriod, values []float64) (Series, error) {
	if len(values) != period.Hours {
		return Series{}, fmt.Errorf("series %q has %d values, period has %d hours", name, len(values), period.Hours)
	}
	return Series{Name: name, Unit: unit, Period: period, Values: values}, nil
}

// ConstantSeries returns a series of n copies of v.
func ConstantSeries(name, unit string, period AnalysisPeriod, v float64) Series {
	values := make([]float64, period.Hours)
	for i := range values {
		values[i] = v
	}
	return Series{Name: name, Unit: unit, Period: period, Values: values}
}

// Len returns the number of values.
func (s Series) Len() int { return len(s.Values) }

// Scaled returns a copy of s with every value multiplied by f. s is not modified.
func (s Series) Scaled(f float64) Series {
	out := s
	out.Values = make([]float64, len(s.Values))
	floats.ScaleTo(out.Values, f, s.Values)
	return out
}

// Mean returns the arithmetic mean of the values, or 0 for an empty series.
func (s Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return floats.Sum(s.Values) / float64(len(s.Values))
}

// Clone returns a deep copy of s.
func (s Series) Clone() Series {
	out := s
	out.Values = append([]float64(nil), s.Values...)
	return out
}

// SameShape reports whether two series can be combined value by value.
func SameShape(a, b Series) bool {
	return len(a.Values) == len(b.Values) && a.Period.Step == b.Period.Step
}

package domain

import (
	"fmt"
	"strconv"
)

// CalmWindSpeed stands in for still air; the UTCI regression is undefined at 0 m/s.
const CalmWindSpeed = 0.01

// WindPolicy selects the wind speed series fed to UTCI:
// 0 is calm, 1 uses the measured weather file values, n >= 2 is a fixed n m/s.
type WindPolicy int

const (
	WindCalm     WindPolicy = 0
	WindMeasured WindPolicy = 1
)

// Validate rejects negative policies.
func (p WindPolicy) Validate() error {
	if p < 0 {
		return fmt.Errorf("wind policy must be >= 0, got %d", p)
	}
	return nil
}

// Speeds returns the wind speed series for the policy. The result always has
// the same length and period as measured.
func (p WindPolicy) Speeds(measured Series) Series {
	period := measured.Period
	period.Hours = measured.Len()
	switch p {
	case WindCalm:
		return ConstantSeries("Wind Speed", UnitMetersPerSec, period, CalmWindSpeed)
	case WindMeasured:
		return measured.Clone()
	default:
		return ConstantSeries("Wind Speed", UnitMetersPerSec, period, float64(p))
	}
}

// Suffix is the case-id fragment for the policy.
func (p WindPolicy) Suffix() string {
	switch p {
	case WindCalm:
		return "_NoWind"
	case WindMeasured:
		return "_MeasuredWind"
	case 2:
		return "_Wind"
	default:
		return "_Wind" + strconv.Itoa(int(p))
	}
}

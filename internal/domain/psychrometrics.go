package domain

import (
	"fmt"
	"math"
)

// EvaporativeEfficiency is the share of the wet bulb depression removed by
// evaporative cooling.
const EvaporativeEfficiency = 0.7

const (
	wetBulbTolerance     = 0.005 // hPa
	wetBulbMaxIterations = 10000
)

// WetBulbTemperature estimates the wet bulb temperature (°C) from dry bulb
// temperature (°C), relative humidity (%) and station pressure (Pa).
//
// It searches for the temperature whose psychrometric vapour pressure matches
// the actual vapour pressure, refining the step by 10x on every sign change.
func WetBulbTemperature(dryBulb, relHumidity, pressure float64) float64 {
	e := saturationVapourPressure(dryBulb) * relHumidity / 100
	hPa := pressure / 100

	tw, step, sign := 0.0, 10.0, 1.0
	for i := 0; i < wetBulbMaxIterations; i++ {
		eg := saturationVapourPressure(tw) - hPa*(dryBulb-tw)*0.00066*(1+0.00155*tw)
		d := e - eg
		if math.Abs(d) <= wetBulbTolerance {
			return tw
		}
		cur := 1.0
		if d < 0 {
			cur = -1
		}
		if cur != sign {
			sign = cur
			step /= 10
		}
		tw += step * sign
	}
	return tw
}

// saturationVapourPressure returns the Magnus saturation vapour pressure in hPa.
func saturationVapourPressure(t float64) float64 {
	return 6.112 * math.Exp(17.67*t/(t+243.5))
}

// EvaporativelyCooled returns the dry bulb series after evaporative cooling:
// dbt - 0.7 * (dbt - wbt) for every hour. The inputs are not modified.
func EvaporativelyCooled(dryBulb, relHumidity, pressure Series) (Series, error) {
	if !SameShape(dryBulb, relHumidity) || !SameShape(dryBulb, pressure) {
		return Series{}, fmt.Errorf("evaporative cooling: series lengths differ (%d, %d, %d)",
			dryBulb.Len(), relHumidity.Len(), pressure.Len())
	}
	out := dryBulb.Clone()
	for i, t := range dryBulb.Values {
		wbt := WetBulbTemperature(t, relHumidity.Values[i], pressure.Values[i])
		out.Values[i] = t - (t-wbt)*EvaporativeEfficiency
	}
	return out, nil
}

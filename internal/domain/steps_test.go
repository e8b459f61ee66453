package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type recordingRadiant struct {
	calls int
	in    SolarCalInput
	err   error
}

func (r *recordingRadiant) MeanRadiantTemperature(_ context.Context, in SolarCalInput) (Series, error) {
	r.calls++
	r.in = in
	if r.err != nil {
		return Series{}, r.err
	}
	return in.LongwaveMRT.Clone(), nil
}

type recordingComfort struct {
	calls int
	in    UTCIInput
}

func (c *recordingComfort) UTCI(_ context.Context, in UTCIInput) (Series, error) {
	c.calls++
	c.in = in
	return in.AirTemperature.Clone(), nil
}

func hourly(t *testing.T, name, unit string, v float64) Series {
	t.Helper()
	return ConstantSeries(name, unit, FullYear(2018), v)
}

func testWeather(t *testing.T) *Weather {
	t.Helper()
	period := FullYear(2018)
	wind := hourly(t, "Wind Speed", UnitMetersPerSec, 0)
	for i := range wind.Values {
		wind.Values[i] = float64(i%7) + 0.5
	}
	return &Weather{
		Source:           "test.epw",
		Period:           period,
		DryBulb:          hourly(t, "Dry Bulb Temperature", UnitCelsius, 30),
		RelativeHumidity: hourly(t, "Relative Humidity", UnitPercent, 50),
		Pressure:         hourly(t, "Atmospheric Station Pressure", UnitPascal, 101325),
		WindSpeed:        wind,
	}
}

// --- mean radiant temperature ---

func TestMeanRadiantTemperature_ShadingMismatch(t *testing.T) {
	model := &recordingRadiant{}
	surface := SurfaceTemperature{
		Ground: DefaultGround(),
		Shaded: true,
		Series: hourly(t, "Surface Outside Face Temperature", UnitCelsius, 20),
	}
	irr := hourly(t, "Irradiance", UnitIrradiance, 100)

	_, err := MeanRadiantTemperature(context.Background(), model, Location{}, irr, irr, surface, false)

	var mismatch *ConfigMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.True(t, mismatch.SimulatedShaded)
	assert.False(t, mismatch.RequestedShaded)
	assert.Contains(t, err.Error(), "is shaded but this calculation isn't")
	assert.Equal(t, 0, model.calls, "model must not be called on mismatch")
}

func TestMeanRadiantTemperature_PreparesSolarCalInputs(t *testing.T) {
	ground := DefaultGround()
	ground.Reflectivity = 0.4
	surface := SurfaceTemperature{
		Ground: ground,
		Shaded: false,
		Series: hourly(t, "Surface Outside Face Temperature", UnitCelsius, 20),
	}
	irr := hourly(t, "Irradiance", UnitIrradiance, 100)

	tests := []struct {
		name    string
		shaded  bool
		exposed float64
	}{
		{"open", false, 1},
		{"shaded", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &recordingRadiant{}
			s := surface
			s.Shaded = tt.shaded

			mrt, err := MeanRadiantTemperature(context.Background(), model, Location{City: "London"}, irr, irr, s, tt.shaded)
			require.NoError(t, err)

			assert.Equal(t, 1, model.calls)
			assert.InDelta(t, tt.exposed, model.in.FractionBodyExposed, 1e-12)
			assert.InDelta(t, 0.4, model.in.FloorReflectance, 1e-12)
			assert.Equal(t, "London", model.in.Location.City)
			assert.InDelta(t, 10.0, model.in.LongwaveMRT.Values[0], 1e-12)
			assert.Equal(t, HoursPerYear, mrt.Len())
		})
	}
}

func TestMeanRadiantTemperature_DoesNotMutateSurface(t *testing.T) {
	surface := SurfaceTemperature{
		Ground: DefaultGround(),
		Series: hourly(t, "Surface Outside Face Temperature", UnitCelsius, 20),
	}
	irr := hourly(t, "Irradiance", UnitIrradiance, 0)

	for i := 0; i < 3; i++ {
		_, err := MeanRadiantTemperature(context.Background(), &recordingRadiant{}, Location{}, irr, irr, surface, false)
		require.NoError(t, err)
	}
	assert.InDelta(t, 20.0, surface.Series.Values[0], 1e-12)
}

func TestMeanRadiantTemperature_ModelError(t *testing.T) {
	surface := SurfaceTemperature{Ground: DefaultGround(), Series: hourly(t, "T", UnitCelsius, 20)}
	irr := hourly(t, "Irradiance", UnitIrradiance, 0)
	model := &recordingRadiant{err: errors.New("service unavailable")}

	_, err := MeanRadiantTemperature(context.Background(), model, Location{}, irr, irr, surface, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service unavailable")
}

// --- UTCI ---

func TestUTCI_CalmWindIgnoresMeasuredValues(t *testing.T) {
	w := testWeather(t)
	model := &recordingComfort{}
	mrt := hourly(t, "Mean Radiant Temperature", UnitCelsius, 35)

	_, err := UniversalThermalClimateIndex(context.Background(), model, w, mrt, WindCalm, false)
	require.NoError(t, err)

	require.Equal(t, w.WindSpeed.Len(), model.in.WindSpeed.Len())
	for i, v := range model.in.WindSpeed.Values {
		if v != CalmWindSpeed {
			t.Fatalf("wind speed at hour %d = %v, want %v", i, v, CalmWindSpeed)
		}
	}
}

func TestUTCI_WindPolicies(t *testing.T) {
	w := testWeather(t)
	mrt := hourly(t, "Mean Radiant Temperature", UnitCelsius, 35)

	tests := []struct {
		name   string
		policy WindPolicy
		hour   int
		want   float64
	}{
		{"measured", WindMeasured, 3, 3.5},
		{"fixed 2", 2, 3, 2},
		{"fixed 5", 5, 100, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &recordingComfort{}
			_, err := UniversalThermalClimateIndex(context.Background(), model, w, mrt, tt.policy, false)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, model.in.WindSpeed.Values[tt.hour], 1e-12)
		})
	}
}

func TestUTCI_EvaporativeCoolingLeavesWeatherUntouched(t *testing.T) {
	w := testWeather(t)
	model := &recordingComfort{}
	mrt := hourly(t, "Mean Radiant Temperature", UnitCelsius, 35)

	_, err := UniversalThermalClimateIndex(context.Background(), model, w, mrt, WindCalm, true)
	require.NoError(t, err)

	// 30 °C at 50% RH has a wet bulb of about 22.14 °C.
	assert.InDelta(t, 24.50, model.in.AirTemperature.Values[0], 0.01)
	assert.InDelta(t, 30.0, w.DryBulb.Values[0], 1e-12)
}

func TestUTCI_NegativeWindPolicy(t *testing.T) {
	w := testWeather(t)
	model := &recordingComfort{}

	_, err := UniversalThermalClimateIndex(context.Background(), model, w, w.DryBulb, -1, false)
	require.Error(t, err)
	assert.Equal(t, 0, model.calls)
}

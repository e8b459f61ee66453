// Package domain models outdoor thermal comfort on an open ground plane.
//
// # Pipeline
//
// A comparison run takes one EPW weather file and evaluates every combination
// of a mitigation matrix:
//
//	ground variant (reflectivity, material)  x  shading  x  evaporative cooling  x  wind
//
// For each ground variant and shading option the ground surface temperature is
// simulated once by EnergyPlus (see the energyplus adapter). The surface
// temperature, together with direct and diffuse horizontal irradiance from a
// Radiance run, feeds the mean radiant temperature (MRT) model. MRT, dry bulb
// temperature, relative humidity and a wind speed series feed the Universal
// Thermal Climate Index (UTCI) model.
//
// The MRT (SolarCal) and UTCI models are external numeric collaborators behind
// [RadiantModel] and [ComfortModel]. This package only prepares their inputs.
//
// # Series
//
// Every hourly quantity is a [Series]: values tagged with a name, a physical
// unit and an [AnalysisPeriod] (start timestamp, hourly step, hour count).
// A non-leap year has 8760 values, a leap year 8784.
//
// # Mitigation conventions
//
// Shading:
//
//	A shaded case encloses the ground with an opaque 200 x 200 x 4 m box in the
//	surface simulation, and sets the fraction of the body exposed to direct sun
//	to 0 in the MRT model. Both steps must agree; see [CheckShading].
//
// Ground view factor:
//
//	An observer on an open field sees the ground over half of their view, so the
//	longwave MRT contribution is the surface temperature scaled by 0.5.
//
// Evaporative cooling:
//
//	Dry bulb temperature is pulled 70% of the way toward the wet bulb
//	temperature: dbt - 0.7 * (dbt - wbt).
//
// Wind policy:
//
//	0   calm, a constant 0.01 m/s
//	1   the measured EPW wind speed
//	n   a constant n m/s for n >= 2
//
// # Case IDs
//
// Scenario IDs are built from the mitigations applied, e.g.
// "Baseline_Shaded_CoolPavement_EvaporativeCooling_NoWind". See [Scenario.ID].
package domain

package energyplus

import (
	"fmt"
	"time"

	"github.com/couchcryptid/openfield-comfort/internal/domain"
)

// Slab and shade box dimensions (m).
const (
	slabX, slabY, slabZ    = 200.0, 200.0, 1.0
	shadeX, shadeY, shadeZ = 200.0, 200.0, 4.0
)

// Object and variable names the simulator reads back.
const (
	TopSurfaceName    = "ground_surface_0"
	SurfaceTempOutput = "Surface Outside Face Temperature"

	materialName      = "ground_material"
	constructionName  = "ground_construction"
	zoneName          = "ground_zone"
	shadeLimitsName   = "shade_schedule_type_limit"
	shadeScheduleName = "shade_schedule_constant"
)

type slabFace struct {
	kind     string
	boundary string
	sun      string
	wind     string
	vertices []Vertex
}

// slabSurfaces returns the six faces of the closed ground volume, top first.
// Only the top face sees sun and wind; the rest touch the ground.
func slabSurfaces() []slabFace {
	x, y, z := slabX/2, slabY/2, slabZ
	buried := func(kind string, vs ...Vertex) slabFace {
		return slabFace{kind: kind, boundary: "Ground", sun: "NoSun", wind: "NoWind", vertices: vs}
	}
	return []slabFace{
		{kind: "Roof", boundary: "Outdoors", sun: "SunExposed", wind: "WindExposed",
			vertices: []Vertex{{-x, y, 0}, {-x, -y, 0}, {x, -y, 0}, {x, y, 0}}},
		buried("Floor", Vertex{x, -y, -z}, Vertex{-x, -y, -z}, Vertex{-x, y, -z}, Vertex{x, y, -z}),
		buried("Wall", Vertex{-x, y, 0}, Vertex{-x, y, -z}, Vertex{-x, -y, -z}, Vertex{-x, -y, 0}),
		buried("Wall", Vertex{x, -y, 0}, Vertex{x, -y, -z}, Vertex{x, y, -z}, Vertex{x, y, 0}),
		buried("Wall", Vertex{x, y, 0}, Vertex{x, y, -z}, Vertex{-x, y, -z}, Vertex{-x, y, 0}),
		buried("Wall", Vertex{-x, -y, 0}, Vertex{-x, -y, -z}, Vertex{x, -y, -z}, Vertex{x, -y, 0}),
	}
}

// shadeSurfaces returns the four walls and the roof of the opaque shade box.
func shadeSurfaces() [][]Vertex {
	x, y, z := shadeX/2, shadeY/2, shadeZ
	return [][]Vertex{
		{{-x, -y, z}, {-x, -y, 0}, {x, -y, 0}, {x, -y, z}},
		{{x, -y, z}, {x, -y, 0}, {x, y, 0}, {x, y, z}},
		{{x, y, z}, {x, y, 0}, {-x, y, 0}, {-x, y, z}},
		{{-x, y, z}, {-x, y, 0}, {-x, -y, 0}, {-x, -y, z}},
		{{x, y, z}, {-x, y, z}, {-x, -y, z}, {x, -y, z}},
	}
}

// BuildGroundModel assembles the IDF model of a bare ground slab with the
// given material, optionally under an opaque shade box. monthly holds the
// January..December ground temperatures (°C) below the slab.
func BuildGroundModel(g domain.Ground, shaded bool, monthly [12]float64) (*Model, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("build ground model: %w", err)
	}

	m := &Model{}
	m.Add("Building",
		S("ground", "Name"),
		N(0, "North Axis {deg}"),
		S("City", "Terrain"),
		N(0.04, "Loads Convergence Tolerance Value"),
		N(0.4, "Temperature Convergence Tolerance Value {deltaC}"),
		S("FullExterior", "Solar Distribution"),
		N(25, "Maximum Number of Warmup Days"),
		N(6, "Minimum Number of Warmup Days"),
	)
	m.Add("ShadowCalculation",
		S("TimestepFrequency", "Calculation Method"),
		N(1, "Calculation Frequency"),
		N(3000, "Maximum Figures in Shadow Overlap Calculations"),
	)
	m.Add("Material",
		S(materialName, "Name"),
		S("MediumRough", "Roughness"),
		N(g.Thickness, "Thickness {m}"),
		N(g.Conductivity, "Conductivity {W/m-K}"),
		N(g.Density, "Density {kg/m3}"),
		N(g.SpecificHeat, "Specific Heat {J/kg-K}"),
		N(g.Emissivity, "Thermal Absorptance"),
		N(1-g.Reflectivity, "Solar Absorptance"),
		N(1-g.Reflectivity, "Visible Absorptance"),
	)
	m.Add("Construction",
		S(constructionName, "Name"),
		S(materialName, "Outside Layer"),
	)
	m.Add("GlobalGeometryRules",
		S("UpperLeftCorner", "Starting Vertex Position"),
		S("Counterclockwise", "Vertex Entry Direction"),
		S("Relative", "Coordinate System"),
	)
	m.Add("Zone", S(zoneName, "Name"))

	for i, s := range slabSurfaces() {
		fields := []Field{
			S(fmt.Sprintf("ground_surface_%d", i), "Name"),
			S(s.kind, "Surface Type"),
			S(constructionName, "Construction Name"),
			S(zoneName, "Zone Name"),
			S(s.boundary, "Outside Boundary Condition"),
			S("", "Outside Boundary Condition Object"),
			S(s.sun, "Sun Exposure"),
			S(s.wind, "Wind Exposure"),
			S("autocalculate", "View Factor to Ground"),
			S("autocalculate", "Number of Vertices"),
		}
		m.Add("BuildingSurface:Detailed", append(fields, vertexFields(s.vertices)...)...)
	}

	ground := make([]Field, 12)
	for i, t := range monthly {
		ground[i] = N(t, fmt.Sprintf("%s Ground Temperature {C}", time.Month(i+1)))
	}
	m.Add("Site:GroundTemperature:BuildingSurface", ground...)

	if shaded {
		m.Add("ScheduleTypeLimits",
			S(shadeLimitsName, "Name"),
			N(0, "Lower Limit Value"),
			N(1, "Upper Limit Value"),
			S("Continuous", "Numeric Type"),
		)
		m.Add("Schedule:Constant",
			S(shadeScheduleName, "Name"),
			S(shadeLimitsName, "Schedule Type Limits Name"),
			N(0, "Hourly Value"),
		)
		for i, vs := range shadeSurfaces() {
			fields := []Field{
				S(fmt.Sprintf("shade_surface_%d", i), "Name"),
				S(shadeScheduleName, "Transmittance Schedule Name"),
				S("autocalculate", "Number of Vertices"),
			}
			m.Add("Shading:Building:Detailed", append(fields, vertexFields(vs)...)...)
		}
	}

	m.Add("Output:Variable",
		S(TopSurfaceName, "Key Value"),
		S(SurfaceTempOutput, "Variable Name"),
		S("hourly", "Reporting Frequency"),
	)
	return m, nil
}

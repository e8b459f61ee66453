package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/openfield-comfort/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "energyplus", cfg.EnergyPlusBin)
	assert.Equal(t, os.TempDir(), cfg.OutputDir)
	assert.Equal(t, "openfield", cfg.CaseName)
	assert.Equal(t, time.Duration(0), cfg.SimulationTimeout)
	assert.Equal(t, 1, cfg.SimulationConcurrency)
	assert.Equal(t, 16, cfg.SimulationCacheSize)
	assert.Equal(t, 30*time.Second, cfg.ComfortAPITimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "utci-scenarios", cfg.KafkaResultTopic)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Empty(t, cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Empty(t, cfg.EPWFile)
	assert.Empty(t, cfg.ScenarioFile)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("EPW_FILE", "/data/london.epw")
	t.Setenv("ENERGYPLUS_BIN", "/usr/local/EnergyPlus-9-0-1/energyplus")
	t.Setenv("OUTPUT_DIR", "/var/openfield")
	t.Setenv("CASE_NAME", "plaza")
	t.Setenv("SIMULATION_TIMEOUT", "15m")
	t.Setenv("SIMULATION_CONCURRENCY", "4")
	t.Setenv("SIMULATION_CACHE_SIZE", "32")
	t.Setenv("RADIANCE_RESULTS_DIR", "/var/openfield/plaza/gridbased_annual/result")
	t.Setenv("RADIANCE_COMMAND_FILE", "/var/openfield/plaza/commands.sh")
	t.Setenv("COMFORT_API_URL", "http://comfort:8000")
	t.Setenv("COMFORT_API_TIMEOUT", "1m")
	t.Setenv("SCENARIO_FILE", "/etc/openfield/scenarios.yaml")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_RESULT_TOPIC", "plaza-utci")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/london.epw", cfg.EPWFile)
	assert.Equal(t, "/usr/local/EnergyPlus-9-0-1/energyplus", cfg.EnergyPlusBin)
	assert.Equal(t, "/var/openfield", cfg.OutputDir)
	assert.Equal(t, "plaza", cfg.CaseName)
	assert.Equal(t, 15*time.Minute, cfg.SimulationTimeout)
	assert.Equal(t, 4, cfg.SimulationConcurrency)
	assert.Equal(t, 32, cfg.SimulationCacheSize)
	assert.Equal(t, "/var/openfield/plaza/gridbased_annual/result", cfg.RadianceResultsDir)
	assert.Equal(t, "/var/openfield/plaza/commands.sh", cfg.RadianceCommandFile)
	assert.Equal(t, "http://comfort:8000", cfg.ComfortAPIURL)
	assert.Equal(t, time.Minute, cfg.ComfortAPITimeout)
	assert.Equal(t, "/etc/openfield/scenarios.yaml", cfg.ScenarioFile)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "plaza-utci", cfg.KafkaResultTopic)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"concurrency too high", "SIMULATION_CONCURRENCY", "17", "SIMULATION_CONCURRENCY"},
		{"concurrency zero", "SIMULATION_CONCURRENCY", "0", "SIMULATION_CONCURRENCY"},
		{"cache size text", "SIMULATION_CACHE_SIZE", "many", "SIMULATION_CACHE_SIZE"},
		{"negative timeout", "SIMULATION_TIMEOUT", "-1s", "SIMULATION_TIMEOUT"},
		{"zero comfort timeout", "COMFORT_API_TIMEOUT", "0s", "COMFORT_API_TIMEOUT"},
		{"bad kafka flag", "KAFKA_ENABLED", "sometimes", "KAFKA_ENABLED"},
		{"bad shutdown timeout", "SHUTDOWN_TIMEOUT", "soon", "SHUTDOWN_TIMEOUT"},
		{"bad batch size", "BATCH_SIZE", "0", "BATCH_SIZE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", " , ")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestRequireInputs(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.RequireSimulationInputs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EPW_FILE")

	cfg.EPWFile = "site.epw"
	require.NoError(t, cfg.RequireSimulationInputs())

	err = cfg.RequireComparisonInputs()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COMFORT_API_URL")

	cfg.ComfortAPIURL = "http://comfort"
	require.NoError(t, cfg.RequireComparisonInputs())
}

// --- scenario matrix ---

func TestLoadMatrix_DefaultWhenUnset(t *testing.T) {
	m, err := LoadMatrix("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMatrix(), m)
}

func TestParseMatrix_PartialFile(t *testing.T) {
	m, err := ParseMatrix([]byte(`
grounds:
  - reflectivity: 0.25
  - label: WhiteTopping
    reflectivity: 0.6
    emissivity: 0.85
wind: [0, 1, 3]
`))
	require.NoError(t, err)

	require.Len(t, m.Grounds, 2)
	assert.InDelta(t, 0.2, m.Grounds[0].Thickness, 1e-9)
	assert.InDelta(t, 2250, m.Grounds[1].Density, 1e-9)
	assert.InDelta(t, 0.85, m.Grounds[1].Emissivity, 1e-9)
	assert.Equal(t, "WhiteTopping", m.Grounds[1].Label)
	assert.Equal(t, []domain.WindPolicy{domain.WindCalm, domain.WindMeasured, 3}, m.Wind)
	assert.Equal(t, []bool{true, false}, m.Shading)
	assert.Len(t, m.Scenarios(), 2*2*2*3)
}

func TestParseMatrix_Empty(t *testing.T) {
	m, err := ParseMatrix(nil)
	require.NoError(t, err)
	assert.Len(t, m.Scenarios(), 16)
}

func TestParseMatrix_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "gronds: []", "gronds"},
		{"negative wind", "wind: [-1]", "wind policy"},
		{"bad reflectivity", "grounds: [{reflectivity: 1.5}]", "reflectivity"},
		{"duplicate ids", "grounds: [{reflectivity: 0.2}, {reflectivity: 0.3}]", "duplicate case id"},
		{"no shading", "shading: []", "no shading options"},
		{"not yaml", "grounds: [", "decode scenario matrix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMatrix([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMatrix_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte("evaporative_cooling: [false]\n"), 0o644))

	m, err := LoadMatrix(path)
	require.NoError(t, err)
	assert.Len(t, m.Scenarios(), 8)

	_, err = LoadMatrix(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCENARIO_FILE")
}

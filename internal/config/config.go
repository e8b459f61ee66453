package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// MaxSimulationConcurrency caps parallel EnergyPlus runs.
const MaxSimulationConcurrency = 16

// Config holds all settings, populated from environment variables.
type Config struct {
	// Inputs.
	EPWFile             string
	RadianceResultsDir  string
	RadianceCommandFile string
	ScenarioFile        string

	// Surface temperature simulation.
	EnergyPlusBin         string
	OutputDir             string
	CaseName              string
	SimulationTimeout     time.Duration
	SimulationConcurrency int
	SimulationCacheSize   int

	// Comfort service.
	ComfortAPIURL     string
	ComfortAPITimeout time.Duration

	// Result publishing.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaResultTopic   string
	BatchSize          int
	BatchFlushInterval time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	simTimeout, err := parseDuration("SIMULATION_TIMEOUT", "0s", true)
	if err != nil {
		return nil, err
	}

	comfortTimeout, err := parseDuration("COMFORT_API_TIMEOUT", "30s", false)
	if err != nil {
		return nil, err
	}

	concurrency, err := parseInt("SIMULATION_CONCURRENCY", 1, 1, MaxSimulationConcurrency)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseInt("SIMULATION_CACHE_SIZE", 16, 1, 1024)
	if err != nil {
		return nil, err
	}

	kafkaEnabled, err := parseBool("KAFKA_ENABLED")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		EPWFile:             os.Getenv("EPW_FILE"),
		RadianceResultsDir:  os.Getenv("RADIANCE_RESULTS_DIR"),
		RadianceCommandFile: os.Getenv("RADIANCE_COMMAND_FILE"),
		ScenarioFile:        os.Getenv("SCENARIO_FILE"),

		EnergyPlusBin:         sharedcfg.EnvOrDefault("ENERGYPLUS_BIN", "energyplus"),
		OutputDir:             sharedcfg.EnvOrDefault("OUTPUT_DIR", os.TempDir()),
		CaseName:              sharedcfg.EnvOrDefault("CASE_NAME", "openfield"),
		SimulationTimeout:     simTimeout,
		SimulationConcurrency: concurrency,
		SimulationCacheSize:   cacheSize,

		ComfortAPIURL:     os.Getenv("COMFORT_API_URL"),
		ComfortAPITimeout: comfortTimeout,

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaResultTopic:   sharedcfg.EnvOrDefault("KAFKA_RESULT_TOPIC", "utci-scenarios"),
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.KafkaEnabled && cfg.KafkaResultTopic == "" {
		return nil, errors.New("KAFKA_RESULT_TOPIC is required")
	}

	return cfg, nil
}

// RequireSimulationInputs checks the settings a surface temperature
// simulation cannot run without.
func (c *Config) RequireSimulationInputs() error {
	if c.EPWFile == "" {
		return errors.New("EPW_FILE is required")
	}
	if c.EnergyPlusBin == "" {
		return errors.New("ENERGYPLUS_BIN is required")
	}
	return nil
}

// RequireComparisonInputs checks the settings a full mitigation comparison
// cannot run without.
func (c *Config) RequireComparisonInputs() error {
	if err := c.RequireSimulationInputs(); err != nil {
		return err
	}
	if c.ComfortAPIURL == "" {
		return errors.New("COMFORT_API_URL is required")
	}
	return nil
}

func parseDuration(key, fallback string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseInt(key string, fallback, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s: must be %d-%d", key, lo, hi)
	}
	return n, nil
}

func parseBool(key string) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q is not a boolean", key, s)
	}
	return b, nil
}

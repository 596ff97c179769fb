package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/storm-track-db/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Source files.
	TornadoCSV    string
	WindCSV       string
	HailCSV       string
	FIPSCSV       string
	FIPSCacheSize int

	TrackTotals domain.TotalsPolicy

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	BatchSize       int

	// Sinks. Each is disabled unless configured.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
	DatabaseURL    string
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is read first if present;
// variables already set in the environment take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	totals, err := domain.ParseTotalsPolicy(sharedcfg.EnvOrDefault("TRACK_TOTALS", "first"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRACK_TOTALS: %w", err)
	}

	cacheSize, err := parseFIPSCacheSize()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		TornadoCSV:    sharedcfg.EnvOrDefault("TORNADO_CSV", "data/torn.csv"),
		WindCSV:       sharedcfg.EnvOrDefault("WIND_CSV", "data/wind.csv"),
		HailCSV:       sharedcfg.EnvOrDefault("HAIL_CSV", "data/hail.csv"),
		FIPSCSV:       sharedcfg.EnvOrDefault("FIPS_CSV", "data/us_cty_fips.txt"),
		FIPSCacheSize: cacheSize,
		TrackTotals:   totals,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		BatchSize:       batchSize,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "storm-events"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
	}

	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

// Sources maps each hazard to its configured source file.
func (c *Config) Sources() map[domain.Hazard]string {
	return map[domain.Hazard]string{
		domain.HazardTornado: c.TornadoCSV,
		domain.HazardWind:    c.WindCSV,
		domain.HazardHail:    c.HailCSV,
	}
}

func parseFIPSCacheSize() (int, error) {
	s := os.Getenv("FIPS_CACHE_SIZE")
	if s == "" {
		return 1000, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid FIPS_CACHE_SIZE")
	}
	return n, nil
}

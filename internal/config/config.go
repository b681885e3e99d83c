package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// County reference data.
	CountyFile string
	PEPEnabled bool
	PEPBaseURL string
	PEPTimeout time.Duration

	// Forecast provider.
	NWSBaseURL   string
	NWSUserAgent string
	NWSTimeout   time.Duration

	// Risk aggregation.
	FetchConcurrency int
	MaxSample        int
	CacheTTL         time.Duration
	CacheMaxEntries  int

	// Optional downstream publishing of computed rows.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaRiskTopic string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first if
// present (development convenience; real environments set variables
// directly).
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	pepTimeout, err := parsePositiveDuration("PEP_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	nwsTimeout, err := parsePositiveDuration("NWS_TIMEOUT", "20s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("CACHE_TTL", "600s")
	if err != nil {
		return nil, err
	}

	concurrency, err := parseIntInRange("FETCH_CONCURRENCY", 6, 1, 64)
	if err != nil {
		return nil, err
	}
	maxSample, err := parseIntInRange("MAX_SAMPLE", 60, 1, 5000)
	if err != nil {
		return nil, err
	}
	cacheEntries, err := parseIntInRange("CACHE_MAX_ENTRIES", 256, 1, 100000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CountyFile: envOrDefault("COUNTY_FILE", "CenPop2020_Mean_CO.txt"),
		PEPEnabled: os.Getenv("PEP_ENABLED") == "true",
		PEPBaseURL: envOrDefault("PEP_BASE_URL", "https://api.census.gov/data/2023/pep/population"),
		PEPTimeout: pepTimeout,

		NWSBaseURL:   envOrDefault("NWS_BASE_URL", "https://api.weather.gov"),
		NWSUserAgent: envOrDefault("NWS_USER_AGENT", "outage-risk-service/1.0 (ops@divergentwx.com)"),
		NWSTimeout:   nwsTimeout,

		FetchConcurrency: concurrency,
		MaxSample:        maxSample,
		CacheTTL:         cacheTTL,
		CacheMaxEntries:  cacheEntries,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaRiskTopic: envOrDefault("KAFKA_RISK_TOPIC", "county-wind-risk"),
	}

	if cfg.CountyFile == "" {
		return nil, errors.New("COUNTY_FILE is required")
	}
	if cfg.NWSUserAgent == "" {
		// The NWS API rejects requests without an identifying User-Agent.
		return nil, errors.New("NWS_USER_AGENT is required")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaRiskTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_RISK_TOPIC is empty")
		}
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseIntInRange(key string, def, min, max int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < min || n > max {
		return 0, fmt.Errorf("invalid %s: must be an integer in [%d, %d]", key, min, max)
	}
	return n, nil
}

func parseBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

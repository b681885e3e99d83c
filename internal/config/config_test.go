package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "CenPop2020_Mean_CO.txt", cfg.CountyFile)
	assert.False(t, cfg.PEPEnabled)
	assert.Equal(t, 30*time.Second, cfg.PEPTimeout)
	assert.Equal(t, "https://api.weather.gov", cfg.NWSBaseURL)
	assert.NotEmpty(t, cfg.NWSUserAgent)
	assert.Equal(t, 20*time.Second, cfg.NWSTimeout)
	assert.Equal(t, 6, cfg.FetchConcurrency)
	assert.Equal(t, 60, cfg.MaxSample)
	assert.Equal(t, 600*time.Second, cfg.CacheTTL)
	assert.Equal(t, 256, cfg.CacheMaxEntries)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "county-wind-risk", cfg.KafkaRiskTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("COUNTY_FILE", "/data/counties.txt")
	t.Setenv("PEP_ENABLED", "true")
	t.Setenv("PEP_TIMEOUT", "10s")
	t.Setenv("NWS_BASE_URL", "http://localhost:9999")
	t.Setenv("NWS_USER_AGENT", "test-agent/0.1")
	t.Setenv("NWS_TIMEOUT", "5s")
	t.Setenv("FETCH_CONCURRENCY", "8")
	t.Setenv("MAX_SAMPLE", "120")
	t.Setenv("CACHE_TTL", "5m")
	t.Setenv("CACHE_MAX_ENTRIES", "32")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_RISK_TOPIC", "risk-out")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "/data/counties.txt", cfg.CountyFile)
	assert.True(t, cfg.PEPEnabled)
	assert.Equal(t, 10*time.Second, cfg.PEPTimeout)
	assert.Equal(t, "http://localhost:9999", cfg.NWSBaseURL)
	assert.Equal(t, "test-agent/0.1", cfg.NWSUserAgent)
	assert.Equal(t, 5*time.Second, cfg.NWSTimeout)
	assert.Equal(t, 8, cfg.FetchConcurrency)
	assert.Equal(t, 120, cfg.MaxSample)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 32, cfg.CacheMaxEntries)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "risk-out", cfg.KafkaRiskTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeCacheTTL(t *testing.T) {
	t.Setenv("CACHE_TTL", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_TTL")
}

func TestLoad_InvalidConcurrency(t *testing.T) {
	t.Setenv("FETCH_CONCURRENCY", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_CONCURRENCY")
}

func TestLoad_ConcurrencyTooLarge(t *testing.T) {
	t.Setenv("FETCH_CONCURRENCY", "500")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FETCH_CONCURRENCY")
}

func TestLoad_InvalidMaxSample(t *testing.T) {
	t.Setenv("MAX_SAMPLE", "9999")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_SAMPLE")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "  ")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

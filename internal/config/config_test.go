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

	assert.Equal(t, "https://www.mygov.in/covid-19/", cfg.SourceURL)
	assert.Equal(t, 15*time.Second, cfg.SourceTimeout)
	assert.Equal(t, "covid-snapshot-etl/1.0", cfg.SourceUserAgent)
	assert.Equal(t, int64(8<<20), cfg.SourceMaxBytes)
	assert.Equal(t, time.Hour, cfg.RefreshInterval)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "covid-daily-snapshots", cfg.KafkaSinkTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("SOURCE_URL", "http://mirror.internal/covid-19/")
	t.Setenv("SOURCE_TIMEOUT", "30s")
	t.Setenv("SOURCE_USER_AGENT", "test-agent/2.0")
	t.Setenv("SOURCE_MAX_BYTES", "1048576")
	t.Setenv("REFRESH_INTERVAL", "15m")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://mirror.internal/covid-19/", cfg.SourceURL)
	assert.Equal(t, 30*time.Second, cfg.SourceTimeout)
	assert.Equal(t, "test-agent/2.0", cfg.SourceUserAgent)
	assert.Equal(t, int64(1048576), cfg.SourceMaxBytes)
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidSourceTimeout(t *testing.T) {
	t.Setenv("SOURCE_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOURCE_TIMEOUT")
}

func TestLoad_NegativeSourceTimeout(t *testing.T) {
	t.Setenv("SOURCE_TIMEOUT", "-5s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOURCE_TIMEOUT")
}

func TestLoad_RefreshIntervalTooShort(t *testing.T) {
	t.Setenv("REFRESH_INTERVAL", "10s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REFRESH_INTERVAL")
}

func TestLoad_InvalidMaxBytes(t *testing.T) {
	t.Setenv("SOURCE_MAX_BYTES", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOURCE_MAX_BYTES")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

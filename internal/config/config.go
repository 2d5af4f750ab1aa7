package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultSourceURL is the MyGov COVID-19 dashboard.
const DefaultSourceURL = "https://www.mygov.in/covid-19/"

// minRefreshInterval keeps the service from hammering the source site.
const minRefreshInterval = time.Minute

// Config holds all service settings, populated from environment variables.
type Config struct {
	SourceURL       string
	SourceTimeout   time.Duration
	SourceUserAgent string
	SourceMaxBytes  int64
	RefreshInterval time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka sink configuration.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	sourceTimeout, err := parsePositiveDuration("SOURCE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	refreshInterval, err := parsePositiveDuration("REFRESH_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}
	if refreshInterval < minRefreshInterval {
		return nil, fmt.Errorf("REFRESH_INTERVAL must be at least %s", minRefreshInterval)
	}

	maxBytes, err := parseMaxBytes()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if s := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); s != "" {
		brokers = sharedcfg.ParseBrokers(s)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		SourceURL:       sharedcfg.EnvOrDefault("SOURCE_URL", DefaultSourceURL),
		SourceTimeout:   sourceTimeout,
		SourceUserAgent: sharedcfg.EnvOrDefault("SOURCE_USER_AGENT", "covid-snapshot-etl/1.0"),
		SourceMaxBytes:  maxBytes,
		RefreshInterval: refreshInterval,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        strings.ToLower(sharedcfg.EnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(sharedcfg.EnvOrDefault("LOG_FORMAT", "json")),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:   kafkaEnabled,
		KafkaBrokers:   brokers,
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "covid-daily-snapshots"),
	}

	if cfg.SourceURL == "" {
		return nil, errors.New("SOURCE_URL is required")
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseMaxBytes() (int64, error) {
	s := sharedcfg.EnvOrDefault("SOURCE_MAX_BYTES", "8388608")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid SOURCE_MAX_BYTES")
	}
	return n, nil
}

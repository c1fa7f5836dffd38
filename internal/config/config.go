package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Ingest modes.
const (
	IngestKafka = "kafka"
	IngestFile  = "file"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	IngestMode       string
	IngestFile       string
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaGroupID     string
	KafkaIdleTimeout time.Duration
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Store configuration.
	DBType string
	DBDSN  string

	// IATAFile is the text form of the IATA reference list. Empty skips seeding.
	IATAFile string

	// Weather enrichment configuration.
	WeatherEnabled    bool
	WeatherBaseURL    string
	WeatherTimeout    time.Duration
	GeocoderBaseURL   string
	GeocoderTimeout   time.Duration
	GeocoderCacheSize int

	ReportDir string
}

// Load reads configuration from environment variables and an optional .env
// file, applying defaults where unset.
func Load() (*Config, error) {
	_ = godotenv.Load()

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

	idleTimeout, err := parsePositiveDuration("KAFKA_IDLE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parsePositiveDuration("WEATHER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	geocoderTimeout, err := parsePositiveDuration("GEOCODER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	weatherEnabled := true
	if v := os.Getenv("WEATHER_ENABLED"); v != "" {
		weatherEnabled = v == "true"
	}

	cfg := &Config{
		IngestMode:         sharedcfg.EnvOrDefault("INGEST_MODE", IngestKafka),
		IngestFile:         os.Getenv("INGEST_FILE"),
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-flight-records"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "flight-delay-etl"),
		KafkaIdleTimeout:   idleTimeout,
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		DBType: sharedcfg.EnvOrDefault("DB_TYPE", "sqlite"),
		DBDSN:  sharedcfg.EnvOrDefault("DB_DSN", "flights.db"),

		IATAFile: os.Getenv("IATA_FILE"),

		WeatherEnabled:    weatherEnabled,
		WeatherBaseURL:    sharedcfg.EnvOrDefault("WEATHER_BASE_URL", "https://archive-api.open-meteo.com/v1/archive"),
		WeatherTimeout:    weatherTimeout,
		GeocoderBaseURL:   sharedcfg.EnvOrDefault("GEOCODER_BASE_URL", "https://photon.komoot.io/api/"),
		GeocoderTimeout:   geocoderTimeout,
		GeocoderCacheSize: parseGeocoderCacheSize(),

		ReportDir: sharedcfg.EnvOrDefault("REPORT_DIR", "airportsDetails"),
	}

	switch cfg.IngestMode {
	case IngestKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required")
		}
		if cfg.KafkaSourceTopic == "" {
			return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
		}
	case IngestFile:
		if cfg.IngestFile == "" {
			return nil, errors.New("INGEST_MODE is file but INGEST_FILE is not set")
		}
	default:
		return nil, fmt.Errorf("invalid INGEST_MODE %q", cfg.IngestMode)
	}

	switch cfg.DBType {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("invalid DB_TYPE %q", cfg.DBType)
	}
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN is required")
	}

	return cfg, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseGeocoderCacheSize() int {
	if s := os.Getenv("GEOCODER_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 256
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, IngestKafka, cfg.IngestMode)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "raw-flight-records", cfg.KafkaSourceTopic)
	assert.Equal(t, "flight-delay-etl", cfg.KafkaGroupID)
	assert.Equal(t, 15*time.Second, cfg.KafkaIdleTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Equal(t, "sqlite", cfg.DBType)
	assert.Equal(t, "flights.db", cfg.DBDSN)
	assert.Empty(t, cfg.IATAFile)
	assert.True(t, cfg.WeatherEnabled)
	assert.Equal(t, "https://archive-api.open-meteo.com/v1/archive", cfg.WeatherBaseURL)
	assert.Equal(t, 10*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, "https://photon.komoot.io/api/", cfg.GeocoderBaseURL)
	assert.Equal(t, 5*time.Second, cfg.GeocoderTimeout)
	assert.Equal(t, 256, cfg.GeocoderCacheSize)
	assert.Equal(t, "airportsDetails", cfg.ReportDir)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("KAFKA_IDLE_TIMEOUT", "1m")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_DSN", "host=db user=etl dbname=flights")
	t.Setenv("IATA_FILE", "/data/iata.txt")
	t.Setenv("WEATHER_ENABLED", "false")
	t.Setenv("WEATHER_TIMEOUT", "3s")
	t.Setenv("GEOCODER_TIMEOUT", "2s")
	t.Setenv("GEOCODER_CACHE_SIZE", "16")
	t.Setenv("REPORT_DIR", "/tmp/out")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, time.Minute, cfg.KafkaIdleTimeout)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.Equal(t, "host=db user=etl dbname=flights", cfg.DBDSN)
	assert.Equal(t, "/data/iata.txt", cfg.IATAFile)
	assert.False(t, cfg.WeatherEnabled)
	assert.Equal(t, 3*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, 2*time.Second, cfg.GeocoderTimeout)
	assert.Equal(t, 16, cfg.GeocoderCacheSize)
	assert.Equal(t, "/tmp/out", cfg.ReportDir)
}

func TestLoad_FileMode(t *testing.T) {
	t.Setenv("INGEST_MODE", "file")
	t.Setenv("INGEST_FILE", "testdata/records.jsonl")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, IngestFile, cfg.IngestMode)
	assert.Equal(t, "testdata/records.jsonl", cfg.IngestFile)
}

func TestLoad_FileModeWithoutFile(t *testing.T) {
	t.Setenv("INGEST_MODE", "file")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INGEST_FILE")
}

func TestLoad_InvalidIngestMode(t *testing.T) {
	t.Setenv("INGEST_MODE", "ftp")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INGEST_MODE")
}

func TestLoad_InvalidDBType(t *testing.T) {
	t.Setenv("DB_TYPE", "mysql")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_TYPE")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_FLUSH_INTERVAL")
}

func TestLoad_InvalidWeatherTimeout(t *testing.T) {
	t.Setenv("WEATHER_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER_TIMEOUT")
}

func TestLoad_NegativeGeocoderTimeout(t *testing.T) {
	t.Setenv("GEOCODER_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEOCODER_TIMEOUT")
}

func TestLoad_BadCacheSizeFallsBack(t *testing.T) {
	t.Setenv("GEOCODER_CACHE_SIZE", "zero")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.GeocoderCacheSize)
}

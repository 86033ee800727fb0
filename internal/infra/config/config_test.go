package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresMongoAndSecret(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	_, err := Load()
	require.ErrorContains(t, err, "MONGO_URI")

	t.Setenv("MONGO_URI", MemoryURI)
	t.Setenv("ACCESS_TOKEN_SECRET", "")
	_, err = Load()
	require.ErrorContains(t, err, "ACCESS_TOKEN_SECRET")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MONGO_URI", MemoryURI)
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.InMemory())
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 15*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 1200*time.Millisecond, cfg.GeocoderDelay)
	assert.Equal(t, ", Sverige", cfg.GeocoderSuffix)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("MONGO_URI", MemoryURI)
	t.Setenv("ACCESS_TOKEN_SECRET", "s3cret")
	t.Setenv("GEOCODER_DELAY", "soon")
	_, err := Load()
	require.ErrorContains(t, err, "GEOCODER_DELAY")
}

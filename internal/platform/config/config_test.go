package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DOCVERIFY_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, key := range []string{"DOCVERIFY_ADDR", "REDIS_URL", "KAFKA_BROKERS", "LOG_LEVEL", "VISION_API_KEY", "VERIFICATION_ATTEMPT_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Empty(t, cfg.Redis.URL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 10, cfg.Verification.AttemptLimit)
	assert.Equal(t, time.Hour, cfg.Verification.AttemptWindow)
	assert.Equal(t, "strict", cfg.Verification.NameMatching)
	assert.Equal(t, slog.LevelInfo, cfg.Logging.Level)
	assert.False(t, cfg.VisionConfigured(), "no API key")
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DOCVERIFY_ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DOCVERIFY_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("VISION_API_KEY", "sk-test")
	t.Setenv("VERIFICATION_ATTEMPT_WINDOW", "15m")
	t.Setenv("VERIFICATION_ATTEMPT_LIMIT", "not-a-number")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, slog.LevelDebug, cfg.Logging.Level)
	assert.Equal(t, 15*time.Minute, cfg.Verification.AttemptWindow)
	assert.Equal(t, 10, cfg.Verification.AttemptLimit, "invalid values fall back to the default")
	assert.True(t, cfg.VisionConfigured())
}

func TestFromEnvLoadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("NAME_MATCHING=fuzzy\n"), 0o600))
	t.Setenv("DOCVERIFY_ENV_FILE", path)
	t.Setenv("NAME_MATCHING", "")
	require.NoError(t, os.Unsetenv("NAME_MATCHING"))

	cfg := FromEnv()
	assert.Equal(t, "fuzzy", cfg.Verification.NameMatching)
}

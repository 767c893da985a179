package config

import (
	"bytes"
	"encoding/base64"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var consoleKeys = []string{
	"CONSOLE_ADDR", "API_BASE_URL", "API_TIMEOUT", "RETRY_BUDGET", "RETRY_BASE",
	"SESSION_KEY", "CSRF_KEY", "COOKIE_SECURE", "UPLOAD_MAX_WIDTH",
	"KAFKA_BROKERS", "KAFKA_TOPIC", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every key so the host environment cannot leak in
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range consoleKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "https://pfos-backend.onrender.com", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, 3, cfg.RetryBudget)
	assert.Equal(t, time.Second, cfg.RetryBase)
	assert.Len(t, cfg.SessionKey, 32)
	assert.Len(t, cfg.CSRFKey, 32)
	assert.False(t, cfg.CookieSecure)
	assert.Zero(t, cfg.UploadMaxWidth)
	assert.False(t, cfg.AuditEnabled())
	assert.Equal(t, "admin-console-events", cfg.KafkaTopic)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 48))
	t.Setenv("API_BASE_URL", "http://localhost:5000/")
	t.Setenv("RETRY_BUDGET", "5")
	t.Setenv("RETRY_BASE", "250ms")
	t.Setenv("SESSION_KEY", key)
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("UPLOAD_MAX_WIDTH", "1200")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	assert.Equal(t, 5, cfg.RetryBudget)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryBase)
	assert.Equal(t, bytes.Repeat([]byte{7}, 48), cfg.SessionKey)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, uint(1200), cfg.UploadMaxWidth)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.AuditEnabled())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"API_TIMEOUT", "soon"},
		{"RETRY_BASE", "-1s"},
		{"RETRY_BUDGET", "0"},
		{"RETRY_BUDGET", "three"},
		{"UPLOAD_MAX_WIDTH", "-10"},
		{"COOKIE_SECURE", "maybe"},
		{"SESSION_KEY", "!!!not-base64"},
		{"CSRF_KEY", base64.StdEncoding.EncodeToString([]byte("short"))},
		{"LOG_LEVEL", "verbose"},
		{"LOG_FORMAT", "xml"},
		{"API_BASE_URL", "/relative"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()

			var cfgErr *Error
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.key, cfgErr.Key)
		})
	}
}

func TestError_RedactsKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_KEY", base64.StdEncoding.EncodeToString([]byte("tiny-secret")))

	_, err := Load()

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "dGlueS1zZWNyZXQ")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: slog.LevelWarn, LogFormat: "json"}

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"k":"v"`)
}

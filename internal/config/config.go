// Package config loads console settings from the environment.
package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const minKeyBytes = 32

type Config struct {
	Addr string

	APIBaseURL  string
	APITimeout  time.Duration
	RetryBudget int
	RetryBase   time.Duration

	SessionKey   []byte
	CSRFKey      []byte
	CookieSecure bool

	// UploadMaxWidth downscales wider product images before upload; 0 disables
	UploadMaxWidth uint

	// KafkaBrokers empty disables the audit stream
	KafkaBrokers []string
	KafkaTopic   string

	LogLevel  slog.Level
	LogFormat string
}

// Error reports an environment variable with an unusable value
type Error struct {
	Key    string
	Value  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config: %s=%q: %s", e.Key, e.Value, e.Reason)
}

// Load reads the environment on top of the defaults. Session and CSRF keys
// are generated when unset so a development console starts without setup.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:       getEnv("CONSOLE_ADDR", ":8080"),
		APIBaseURL: strings.TrimRight(getEnv("API_BASE_URL", "https://pfos-backend.onrender.com"), "/"),
		KafkaTopic: getEnv("KAFKA_TOPIC", "admin-console-events"),
		LogFormat:  strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.APITimeout, err = durationEnv("API_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RetryBase, err = durationEnv("RETRY_BASE", time.Second); err != nil {
		return nil, err
	}
	if cfg.RetryBudget, err = intEnv("RETRY_BUDGET", 3, 1); err != nil {
		return nil, err
	}
	width, err := intEnv("UPLOAD_MAX_WIDTH", 0, 0)
	if err != nil {
		return nil, err
	}
	cfg.UploadMaxWidth = uint(width)

	if cfg.CookieSecure, err = boolEnv("COOKIE_SECURE", false); err != nil {
		return nil, err
	}
	if cfg.SessionKey, err = keyEnv("SESSION_KEY"); err != nil {
		return nil, err
	}
	if cfg.CSRFKey, err = keyEnv("CSRF_KEY"); err != nil {
		return nil, err
	}

	if raw := getEnv("KAFKA_BROKERS", ""); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, &Error{Key: "LOG_LEVEL", Value: os.Getenv("LOG_LEVEL"), Reason: "want debug, info, warn or error"}
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, &Error{Key: "LOG_FORMAT", Value: cfg.LogFormat, Reason: "want text or json"}
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &Error{Key: "API_BASE_URL", Value: cfg.APIBaseURL, Reason: "must be an absolute URL"}
	}

	return cfg, nil
}

// AuditEnabled reports whether admin mutations are streamed to Kafka
func (c *Config) AuditEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// NewLogger builds the process logger writing to w
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, &Error{Key: key, Value: raw, Reason: "want a positive duration like 500ms or 30s"}
	}
	return d, nil
}

func intEnv(key string, def, min int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return 0, &Error{Key: key, Value: raw, Reason: fmt.Sprintf("want an integer >= %d", min)}
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &Error{Key: key, Value: raw, Reason: "want true or false"}
	}
	return b, nil
}

// keyEnv decodes a base64 key of at least 32 bytes, or generates one
func keyEnv(key string) ([]byte, error) {
	raw := os.Getenv(key)
	if raw == "" {
		slog.Warn("key not set, generating a random one; sessions will not survive a restart", "key", key)
		return randomKey(minKeyBytes)
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, &Error{Key: key, Value: "<redacted>", Reason: "not valid base64"}
	}
	if len(decoded) < minKeyBytes {
		return nil, &Error{Key: key, Value: "<redacted>", Reason: fmt.Sprintf("decodes to %d bytes, need at least %d", len(decoded), minKeyBytes)}
	}
	return decoded, nil
}

func randomKey(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return b, nil
}

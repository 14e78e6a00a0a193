// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Passphrase         string
	AdminPassword      string
	ListenAddr         string
	DBPath             string
	KeyFile            string
	SaltFile           string
	QuestionLimit      int
	AdminTokenTTL      time.Duration
	SessionIdleTimeout time.Duration
}

// AdminEnabled reports whether an admin password is configured. Without one
// the admin API answers 503.
func (c *Config) AdminEnabled() bool {
	return c.AdminPassword != ""
}

// LoadDotEnv reads KEY=value pairs from path into the process environment.
// Variables already set take precedence. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from environment variables and returns a validated Config.
// FANQUIZ_PASSPHRASE is only needed on first start, before a key file exists.
// FANQUIZ_ADMIN_PASSWORD is optional; the admin API is disabled when it is absent.
// Optional variables with defaults: FANQUIZ_LISTEN_ADDR (127.0.0.1:8080),
// FANQUIZ_DB_PATH (quiz_data.db), FANQUIZ_KEY_FILE (.master_key),
// FANQUIZ_SALT_FILE (.salt), FANQUIZ_QUESTION_LIMIT (15),
// FANQUIZ_ADMIN_TOKEN_TTL (1h), FANQUIZ_SESSION_IDLE_TIMEOUT (24h).
func Load() (*Config, error) {
	cfg := &Config{
		Passphrase:         os.Getenv("FANQUIZ_PASSPHRASE"),
		AdminPassword:      os.Getenv("FANQUIZ_ADMIN_PASSWORD"),
		ListenAddr:         "127.0.0.1:8080",
		DBPath:             "quiz_data.db",
		KeyFile:            ".master_key",
		SaltFile:           ".salt",
		QuestionLimit:      15,
		AdminTokenTTL:      time.Hour,
		SessionIdleTimeout: 24 * time.Hour,
	}

	if v, ok := os.LookupEnv("FANQUIZ_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("FANQUIZ_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("FANQUIZ_KEY_FILE"); ok {
		cfg.KeyFile = v
	}
	if v, ok := os.LookupEnv("FANQUIZ_SALT_FILE"); ok {
		cfg.SaltFile = v
	}

	if v, ok := os.LookupEnv("FANQUIZ_QUESTION_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("FANQUIZ_QUESTION_LIMIT has invalid integer %q: %w", v, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("FANQUIZ_QUESTION_LIMIT must be at least 1, got %d", n)
		}
		cfg.QuestionLimit = n
	}

	var err error
	if cfg.AdminTokenTTL, err = durationEnv("FANQUIZ_ADMIN_TOKEN_TTL", cfg.AdminTokenTTL); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTimeout, err = durationEnv("FANQUIZ_SESSION_IDLE_TIMEOUT", cfg.SessionIdleTimeout); err != nil {
		return nil, err
	}

	if cfg.DBPath == "" {
		return nil, errors.New("FANQUIZ_DB_PATH must not be empty")
	}
	if cfg.KeyFile == "" || cfg.SaltFile == "" {
		return nil, errors.New("FANQUIZ_KEY_FILE and FANQUIZ_SALT_FILE must not be empty")
	}

	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, v)
	}
	return d, nil
}

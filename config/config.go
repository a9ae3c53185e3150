package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"notes-api/auth"
	"notes-api/db"
)

type Config struct {
	Port string

	StoreDriver string
	DSN         string

	SessionSecret  string
	SessionTTL     time.Duration
	PasswordScheme string

	SeedFile string
	Seed     bool

	LogLevel slog.Level
}

// Load reads a .env file when one exists and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, applying defaults for
// the unset ones.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "12001"),
		StoreDriver:    getEnv("STORE_DRIVER", db.DriverMemory),
		DSN:            os.Getenv("DSN"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SessionTTL:     24 * time.Hour,
		PasswordScheme: getEnv("PASSWORD_SCHEME", auth.SchemePlain),
		SeedFile:       os.Getenv("SEED_FILE"),
		Seed:           true,
		LogLevel:       slog.LevelInfo,
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL %q: %w", v, err)
		}
		cfg.SessionTTL = ttl
	}
	if v := os.Getenv("SEED"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED %q: %w", v, err)
		}
		cfg.Seed = seed
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
	}

	if cfg.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.SessionSecret = secret
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case db.DriverMemory:
	case db.DriverSQLite, db.DriverMySQL, db.DriverPostgres:
		if c.DSN == "" {
			return fmt.Errorf("DSN is required for store driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if _, err := auth.NewPasswordScheme(c.PasswordScheme); err != nil {
		return err
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT must not be empty")
	}
	return nil
}

// Addr is the address the HTTP server listens on.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// randomSecret signs tokens when no SESSION_SECRET is configured.
func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

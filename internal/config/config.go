package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers understood by the store factory.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Config holds application configuration values.
type Config struct {
	Env                string
	AppPort            string
	DatabaseURL        string
	StorageDriver      string
	SQLitePath         string
	JWTSecret          string
	TokenExpires       time.Duration
	AdminName          string
	AdminEmail         string
	AdminPassword      string
	LogLevel           string
	CORSOrigins        string
	TelegramBotToken   string
	TelegramAdminChat  string
	GeneratedJWTSecret bool
}

// IsProduction reports whether the service runs with production safeguards.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SeedAdmin reports whether admin credentials were supplied.
func (c *Config) SeedAdmin() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

// Load reads environment variables (after an optional .env file) and
// returns a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ttl, err := getEnvInt("JWT_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:               strings.ToLower(getEnv("APP_ENV", "development")),
		AppPort:           getEnv("PORT", "8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		StorageDriver:     strings.ToLower(getEnv("STORAGE_DRIVER", "")),
		SQLitePath:        getEnv("SQLITE_PATH", "./database.sqlite"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		TokenExpires:      time.Duration(ttl) * time.Hour,
		AdminName:         getEnv("ADMIN_NAME", "Admin User"),
		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSOrigins:       getEnv("CORS_ORIGINS", "*"),
		TelegramBotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramAdminChat: getEnv("TELEGRAM_ADMIN_CHAT_ID", ""),
	}

	if cfg.StorageDriver == "" {
		cfg.StorageDriver = DriverSQLite
		if cfg.DatabaseURL != "" {
			cfg.StorageDriver = DriverPostgres
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWTSecret = secret
		cfg.GeneratedJWTSecret = true
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.AppPort == "" {
		return errors.New("PORT must be set")
	}
	if c.TokenExpires <= 0 {
		return errors.New("JWT_TTL_HOURS must be positive")
	}

	switch c.StorageDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL must be set for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH must be set for the sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.IsProduction() {
		var missing []string
		if c.JWTSecret == "" {
			missing = append(missing, "JWT_SECRET")
		}
		if c.AdminEmail == "" {
			missing = append(missing, "ADMIN_EMAIL")
		}
		if c.AdminPassword == "" {
			missing = append(missing, "ADMIN_PASSWORD")
		}
		if len(missing) > 0 {
			return fmt.Errorf("%s must be set in production", strings.Join(missing, ", "))
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

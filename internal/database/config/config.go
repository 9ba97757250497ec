// Package config reads postgres connection settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ArakelyanK/dev-insights-dashboard-sub000/pkg/retry"
)

// Config identifies the postgres instance holding analysis state.
type Config struct {
	Host     string
	User     string
	Password string
	DBName   string
	Port     string
	SSLMode  string
	TimeZone string
}

// LoadConfigFromEnv reads DB_* environment variables.
func LoadConfigFromEnv() Config {
	return Config{
		Host:     GetEnv("DB_HOST", "localhost"),
		User:     GetEnv("DB_USER", "postgres"),
		Password: GetEnv("DB_PASSWORD", "postgres"),
		DBName:   GetEnv("DB_NAME", "dev_insights"),
		Port:     GetEnv("DB_PORT", "5432"),
		SSLMode:  GetEnv("DB_SSLMODE", "disable"),
		TimeZone: GetEnv("DB_TIMEZONE", "UTC"),
	}
}

// dsn renders the gorm postgres DSN, substituting the given password so the
// real one never has to appear in logs.
func (c Config) dsn(password string) string {
	pairs := []string{
		"host=" + c.Host,
		"user=" + c.User,
		"password=" + password,
		"dbname=" + c.DBName,
		"port=" + c.Port,
		"sslmode=" + c.SSLMode,
		"TimeZone=" + c.TimeZone,
	}
	return strings.Join(pairs, " ")
}

// BuildDSN returns the connection string for gorm's postgres driver.
func BuildDSN(cfg Config) string {
	return cfg.dsn(cfg.Password)
}

// SanitizeError strips the password and the full DSN out of a connection
// error before it reaches a log line.
func SanitizeError(err error, cfg Config) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	msg = strings.ReplaceAll(msg, cfg.dsn(cfg.Password), cfg.dsn("***"))
	if cfg.Password != "" {
		msg = strings.ReplaceAll(msg, cfg.Password, "***")
	}
	return fmt.Errorf("failed to connect to database: %s", msg)
}

// LoadRetryConfigFromEnv returns the connect-retry profile, with DB_RETRY_*
// overrides applied on top of the postgres defaults.
func LoadRetryConfigFromEnv() retry.Config {
	cfg := retry.PostgresConfig()
	cfg.MaxAttempts = getEnvInt("DB_RETRY_MAX_ATTEMPTS", cfg.MaxAttempts)
	cfg.InitialDelay = getEnvDuration("DB_RETRY_INITIAL_DELAY", cfg.InitialDelay)
	cfg.MaxDelay = getEnvDuration("DB_RETRY_MAX_DELAY", cfg.MaxDelay)
	cfg.Multiplier = getEnvFloat("DB_RETRY_MULTIPLIER", cfg.Multiplier)
	return cfg
}

// GetEnv reads an environment variable with a default fallback.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

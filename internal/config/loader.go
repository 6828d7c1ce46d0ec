package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the booking
// service.
type Config struct {
	HTTPPort    int
	SQLiteDSN   string
	TokenSecret string
	TokenTTL    time.Duration
	LogLevel    string
}

// Load parses configuration values from the current process environment.
//
// When a .env file exists in the working directory (or BOOKING_ENV_FILE
// names one), its entries are loaded first without overriding variables
// already set in the environment. Optional fields fall back to defaults;
// required values are validated with their names reported on error.
func Load() (Config, error) {
	if envFile := strings.TrimSpace(os.Getenv("BOOKING_ENV_FILE")); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return Config{}, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := Config{
		HTTPPort:  8080,
		SQLiteDSN: "file:booking.db",
		TokenTTL:  24 * time.Hour,
		LogLevel:  "info",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("BOOKING_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "BOOKING_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("BOOKING_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := strings.TrimSpace(os.Getenv("BOOKING_TOKEN_SECRET")); secret == "" {
		missing = append(missing, "BOOKING_TOKEN_SECRET")
	} else {
		cfg.TokenSecret = secret
	}

	if ttlValue := strings.TrimSpace(os.Getenv("BOOKING_TOKEN_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "BOOKING_TOKEN_TTL")
		} else {
			cfg.TokenTTL = ttl
		}
	}

	if level := strings.TrimSpace(os.Getenv("BOOKING_LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	clearEnv := func(t *testing.T) {
		t.Helper()
		unset := []string{
			"BOOKING_HTTP_PORT",
			"BOOKING_SQLITE_DSN",
			"BOOKING_TOKEN_TTL",
			"BOOKING_LOG_LEVEL",
			"BOOKING_ENV_FILE",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}
	}

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnv(t)

		const secret = "super-secret"
		t.Setenv("BOOKING_TOKEN_SECRET", secret)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:booking.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.TokenSecret != secret {
			t.Fatalf("expected token secret to be %q, got %q", secret, cfg.TokenSecret)
		}
		if cfg.TokenTTL != 24*time.Hour {
			t.Fatalf("expected default TTL of 24h, got %s", cfg.TokenTTL)
		}
		if cfg.LogLevel != "info" {
			t.Fatalf("expected default log level info, got %q", cfg.LogLevel)
		}
	})

	t.Run("reads explicit values", func(t *testing.T) {
		clearEnv(t)

		t.Setenv("BOOKING_HTTP_PORT", "9090")
		t.Setenv("BOOKING_SQLITE_DSN", "file:custom.db")
		t.Setenv("BOOKING_TOKEN_SECRET", "another-secret")
		t.Setenv("BOOKING_TOKEN_TTL", "30m")
		t.Setenv("BOOKING_LOG_LEVEL", "debug")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:custom.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.TokenTTL != 30*time.Minute {
			t.Fatalf("expected TTL of 30m, got %s", cfg.TokenTTL)
		}
		if cfg.LogLevel != "debug" {
			t.Fatalf("expected log level debug, got %q", cfg.LogLevel)
		}
	})

	t.Run("fails when the token secret is missing", func(t *testing.T) {
		clearEnv(t)

		t.Setenv("BOOKING_TOKEN_SECRET", "")

		if _, err := Load(); err == nil {
			t.Fatal("expected an error for the missing secret")
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		cases := []struct {
			name  string
			key   string
			value string
		}{
			{"non-numeric port", "BOOKING_HTTP_PORT", "eighty"},
			{"negative port", "BOOKING_HTTP_PORT", "-1"},
			{"out-of-range port", "BOOKING_HTTP_PORT", "70000"},
			{"malformed TTL", "BOOKING_TOKEN_TTL", "tomorrow"},
			{"negative TTL", "BOOKING_TOKEN_TTL", "-5m"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				clearEnv(t)

				t.Setenv("BOOKING_TOKEN_SECRET", "super-secret")
				t.Setenv(tc.key, tc.value)

				if _, err := Load(); err == nil {
					t.Fatalf("expected an error for %s=%q", tc.key, tc.value)
				}
			})
		}
	})

	t.Run("loads variables from an env file", func(t *testing.T) {
		clearEnv(t)
		if err := os.Unsetenv("BOOKING_TOKEN_SECRET"); err != nil {
			t.Fatalf("failed to unset secret: %v", err)
		}

		envFile := filepath.Join(t.TempDir(), "booking.env")
		contents := "BOOKING_TOKEN_SECRET=file-secret\nBOOKING_HTTP_PORT=9191\n"
		if err := os.WriteFile(envFile, []byte(contents), 0o600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv("BOOKING_ENV_FILE", envFile)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.TokenSecret != "file-secret" {
			t.Fatalf("expected secret from env file, got %q", cfg.TokenSecret)
		}
		if cfg.HTTPPort != 9191 {
			t.Fatalf("expected port from env file, got %d", cfg.HTTPPort)
		}
	})
}

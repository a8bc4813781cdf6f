package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AuthMode selects how the request boundary resolves the caller. It is
// decided once at process start, never inside the engine.
type AuthMode string

const (
	AuthModeLive AuthMode = "live"
	AuthModeDemo AuthMode = "demo"
)

type Config struct {
	DBDSN       string
	Environment string
	HTTPAddr    string
	AuthMode    AuthMode

	// Domain policy
	CancellationWindow time.Duration // how long before a session confirmation/penalty-free cancellation closes
	RecoveryWindow     time.Duration // how long an opened recovery slot stays claimable
	SweepInterval      time.Duration // background expiry sweep tick

	// Verification gateway
	VerifierURL     string
	VerifierTimeout time.Duration

	MigrationsPath string
}

func Load() (*Config, error) {
	// .env is optional, plain environment variables win in production.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:       os.Getenv("DB_DSN"),
		Environment: getEnv("ENV", "development"),
		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		AuthMode:    AuthMode(getEnv("AUTH_MODE", string(AuthModeLive))),

		CancellationWindow: time.Duration(getEnvInt("CANCELLATION_HOURS", 24)) * time.Hour,
		RecoveryWindow:     time.Duration(getEnvInt("RECOVERY_WINDOW_DAYS", 30)) * 24 * time.Hour,
		SweepInterval:      time.Duration(getEnvInt("SWEEP_INTERVAL_MINUTES", 5)) * time.Minute,

		VerifierURL:     os.Getenv("VERIFIER_URL"),
		VerifierTimeout: time.Duration(getEnvInt("VERIFIER_TIMEOUT_SECONDS", 15)) * time.Second,

		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}
	if cfg.AuthMode != AuthModeLive && cfg.AuthMode != AuthModeDemo {
		return nil, fmt.Errorf("AUTH_MODE must be live or demo, got %q", cfg.AuthMode)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

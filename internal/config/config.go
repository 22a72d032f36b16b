// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"fintrack/pkg/db"
)

// Values of APP_ENV. Anything but development is treated as production.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const developmentJWTSecret = "dev-secret-change-me"

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	Env        string
	ServerPort string
	LogLevel   string
	DB         db.Config

	JWTSecret string
	JWTTTL    time.Duration
	// DevJWTSecret is set when JWT_SECRET was empty and the built-in
	// development secret is in use.
	DevJWTSecret bool

	CORSAllowedOrigins []string

	// ReconcileSchedule is a cron spec for the ledger reconciliation job.
	// Empty disables the job.
	ReconcileSchedule string
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is read first when present; real
// environment variables always win over it.
func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	stmtTimeoutMS, err := strconv.Atoi(getEnv("DB_STATEMENT_TIMEOUT_MS", "5000"))
	if err != nil || stmtTimeoutMS < 0 {
		return nil, fmt.Errorf("invalid DB_STATEMENT_TIMEOUT_MS: %q", os.Getenv("DB_STATEMENT_TIMEOUT_MS"))
	}
	ttlHours, err := strconv.Atoi(getEnv("JWT_TTL_HOURS", "24"))
	if err != nil || ttlHours <= 0 {
		return nil, fmt.Errorf("invalid JWT_TTL_HOURS: %q", os.Getenv("JWT_TTL_HOURS"))
	}

	env := strings.ToLower(getEnv("APP_ENV", EnvProduction))
	secret := os.Getenv("JWT_SECRET")
	devSecret := false
	if secret == "" {
		if env != EnvDevelopment {
			return nil, fmt.Errorf("JWT_SECRET is required when APP_ENV=%s", env)
		}
		secret = developmentJWTSecret
		devSecret = true
	}

	return &AppConfig{
		Env:        env,
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		DB: db.Config{
			Host:             getEnv("DB_HOST", "localhost"),
			Port:             dbPort,
			User:             getEnv("DB_USER", "user"),
			Password:         getEnv("DB_PASSWORD", "password"),
			DBName:           getEnv("DB_NAME", "fintrack"),
			SSLMode:          getEnv("DB_SSLMODE", "disable"),
			StatementTimeout: time.Duration(stmtTimeoutMS) * time.Millisecond,
		},
		JWTSecret:          secret,
		DevJWTSecret:       devSecret,
		JWTTTL:             time.Duration(ttlHours) * time.Hour,
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		ReconcileSchedule:  os.Getenv("RECONCILE_SCHEDULE"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds process settings read from the environment
type Config struct {
	DatabaseURL string
	Port        string
	JWTSecret   string

	LogLevel  string
	LogFormat string

	SeedDemoData bool

	FirebaseCredentialsBase64 string
	FirebaseCredentialsFile   string

	CORSAllowedOrigins []string
}

var ErrMissingDatabaseURL = errors.New("DATABASE_URL environment variable is required")

// Load reads .env (if present) and then the process environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("⚠️  .env file not found, using environment variables from system")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function so it can be tested without touching os env
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DatabaseURL:               strings.TrimSpace(getenv("DATABASE_URL")),
		Port:                      valueOr(getenv("PORT"), "8080"),
		JWTSecret:                 getenv("APP_JWT_SECRET"),
		LogLevel:                  valueOr(getenv("LOG_LEVEL"), "info"),
		LogFormat:                 valueOr(getenv("LOG_FORMAT"), "text"),
		FirebaseCredentialsBase64: getenv("FIREBASE_CREDENTIALS_BASE64"),
		FirebaseCredentialsFile:   valueOr(getenv("FIREBASE_CREDENTIALS_FILE"), "./firebase-service-account.json"),
		CORSAllowedOrigins:        splitList(valueOr(getenv("CORS_ALLOWED_ORIGINS"), "*")),
	}

	if raw := getenv("SEED_DEMO_DATA"); raw != "" {
		seed, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.New("SEED_DEMO_DATA must be a boolean")
		}
		cfg.SeedDemoData = seed
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	return cfg, nil
}

// AuthEnabled reports whether a JWT secret is configured
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return strings.TrimSpace(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

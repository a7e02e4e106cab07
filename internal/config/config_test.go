package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{"DATABASE_URL": "postgres://localhost/tms"}))
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/tms", cfg.DatabaseURL)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "./firebase-service-account.json", cfg.FirebaseCredentialsFile)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.SeedDemoData)
	assert.False(t, cfg.AuthEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"DATABASE_URL":         "postgres://db/tms",
		"PORT":                 "9090",
		"APP_JWT_SECRET":       "s3cret",
		"LOG_LEVEL":            "debug",
		"LOG_FORMAT":           "json",
		"SEED_DEMO_DATA":       "true",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example,",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.AuthEnabled())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.SeedDemoData)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{name: "missing database url", values: map[string]string{}},
		{name: "blank database url", values: map[string]string{"DATABASE_URL": "   "}},
		{name: "bad seed flag", values: map[string]string{"DATABASE_URL": "postgres://db", "SEED_DEMO_DATA": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(env(tt.values))
			assert.Error(t, err)
		})
	}
}

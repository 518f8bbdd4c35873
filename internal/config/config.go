package config

import (
	"os"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	RedisURL    string
	JWKSURL     string
	CORSOrigins string
	TablePrefix string
	// Oracle configuration
	AnthropicAPIKey string
	OracleProvider  string // "anthropic" or "lorem" (dev/test fake)
	OracleModel     string
	// Auto-save
	AutoSaveInterval time.Duration
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		JWKSURL:     getEnv("JWKS_URL", ""),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),

		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OracleProvider:  getEnv("ORACLE_PROVIDER", defaultProvider(env)),
		OracleModel:     getEnv("ORACLE_MODEL", "claude-haiku-4-5-20251001"),

		AutoSaveInterval: getDuration("AUTOSAVE_INTERVAL", 30*time.Second),
	}
}

// defaultProvider picks the lorem fake outside prod so the engine runs
// without API keys.
func defaultProvider(env string) string {
	if env == "prod" {
		return "anthropic"
	}
	return "lorem"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

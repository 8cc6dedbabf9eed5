package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigMethods(t *testing.T) {
	t.Run("Addr returns formatted port", func(t *testing.T) {
		cfg := &Config{Port: 3000}
		assert.Equal(t, ":3000", cfg.Addr())
	})

	t.Run("UpstreamTimeout converts seconds to duration", func(t *testing.T) {
		cfg := &Config{UpstreamTimeoutSecs: 10}
		assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout())
	})

	t.Run("SessionTTL converts hours to duration", func(t *testing.T) {
		cfg := &Config{SessionTTLHours: 24}
		assert.Equal(t, 24*time.Hour, cfg.SessionTTL())
	})
}

func TestValidate(t *testing.T) {
	t.Run("rejects relative marketplace URL", func(t *testing.T) {
		cfg := &Config{MarketplaceBaseURL: "/api"}
		assert.Error(t, cfg.Validate(false))
	})

	t.Run("accepts absolute URL outside production", func(t *testing.T) {
		cfg := &Config{MarketplaceBaseURL: "http://localhost:3001"}
		assert.NoError(t, cfg.Validate(false))
	})

	t.Run("rejects short session secret in production", func(t *testing.T) {
		cfg := &Config{MarketplaceBaseURL: "https://api.example.com", SessionSecret: "short"}
		assert.Error(t, cfg.Validate(true))
	})

	t.Run("rejects known weak secret in production", func(t *testing.T) {
		cfg := &Config{
			MarketplaceBaseURL: "https://api.example.com",
			SessionSecret:      "change-me",
		}
		assert.Error(t, cfg.Validate(true))
	})
}

func TestLoad(t *testing.T) {
	originalEnv := map[string]string{
		"PORT":                 os.Getenv("PORT"),
		"DATABASE_URL":         os.Getenv("DATABASE_URL"),
		"REDIS_URL":            os.Getenv("REDIS_URL"),
		"MARKETPLACE_BASE_URL": os.Getenv("MARKETPLACE_BASE_URL"),
		"DEFAULT_PAGE_SIZE":    os.Getenv("DEFAULT_PAGE_SIZE"),
		"LOG_LEVEL":            os.Getenv("LOG_LEVEL"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	t.Run("loads config with defaults", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Setenv("MARKETPLACE_BASE_URL", "http://localhost:3001")
		os.Unsetenv("PORT")
		os.Unsetenv("DEFAULT_PAGE_SIZE")
		os.Unsetenv("LOG_LEVEL")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
		assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
		assert.Equal(t, 9, cfg.DefaultPageSize)
		assert.Equal(t, 6, cfg.FeaturedPageSize)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("loads custom values", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Setenv("MARKETPLACE_BASE_URL", "http://localhost:3001")
		os.Setenv("PORT", "3000")
		os.Setenv("DEFAULT_PAGE_SIZE", "12")
		os.Setenv("LOG_LEVEL", "debug")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, 12, cfg.DefaultPageSize)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("fails without required MARKETPLACE_BASE_URL", func(t *testing.T) {
		os.Setenv("DATABASE_URL", "postgres://localhost/test")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Unsetenv("MARKETPLACE_BASE_URL")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("fails without required DATABASE_URL", func(t *testing.T) {
		os.Unsetenv("DATABASE_URL")
		os.Setenv("REDIS_URL", "redis://localhost:6379")
		os.Setenv("MARKETPLACE_BASE_URL", "http://localhost:3001")

		_, err := Load()
		assert.Error(t, err)
	})
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port                int    `env:"PORT" envDefault:"8080"`
	DatabaseURL         string `env:"DATABASE_URL,required"`
	RedisURL            string `env:"REDIS_URL,required"`
	MarketplaceBaseURL  string `env:"MARKETPLACE_BASE_URL,required"`
	UpstreamTokenSecret string `env:"UPSTREAM_TOKEN_SECRET"`
	SessionSecret       string `env:"SESSION_SECRET"`
	UpstreamTimeoutSecs int    `env:"UPSTREAM_TIMEOUT_SECONDS" envDefault:"10"`
	SessionTTLHours     int    `env:"SESSION_TTL_HOURS" envDefault:"24"`
	DefaultPageSize     int    `env:"DEFAULT_PAGE_SIZE" envDefault:"9"`
	FeaturedPageSize    int    `env:"FEATURED_PAGE_SIZE" envDefault:"6"`
	LogLevel            string `env:"LOG_LEVEL" envDefault:"info"`
	StaticDir           string `env:"STATIC_DIR" envDefault:"static/portal"`
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSecs) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate(isProduction bool) error {
	parsed, err := url.Parse(c.MarketplaceBaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("MARKETPLACE_BASE_URL must be an absolute URL, got %q", c.MarketplaceBaseURL)
	}

	if isProduction {
		if err := validateSecret("SESSION_SECRET", c.SessionSecret); err != nil {
			return err
		}
		if parsed.Scheme != "https" {
			log.Warn().Msg("MARKETPLACE_BASE_URL is not https in production")
		}
		if strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if c.UpstreamTokenSecret == "" {
			log.Warn().Msg("UPSTREAM_TOKEN_SECRET is empty in production: bearer token signatures will not be verified")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

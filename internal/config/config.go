package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"DSC_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"DSC_DB_MAX_CONNS" default:"8"`

	HTTPAddr           string `envconfig:"DSC_HTTP_ADDR" default:":8080"`
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`

	// TagRounds bounds the tag normalization fixed point.
	TagRounds int `envconfig:"DSC_TAG_ROUNDS" default:"3"`

	DigestWindowDays int `envconfig:"DSC_DIGEST_WINDOW_DAYS" default:"7"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("DSC_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DSC_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DSC_DB_MIN_CONNS (%d) cannot exceed DSC_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("DSC_HTTP_ADDR is required")
	}
	if c.TagRounds < 1 {
		return fmt.Errorf("DSC_TAG_ROUNDS must be >= 1")
	}
	if c.DigestWindowDays < 1 {
		return fmt.Errorf("DSC_DIGEST_WINDOW_DAYS must be >= 1")
	}
	return nil
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}

package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// requirement names a config field that must be non-empty
type requirement struct {
	name  string
	value func(*Config) string
}

var (
	baseRequirements = []requirement{
		{"db_host", func(c *Config) string { return c.DBHost }},
		{"db_user", func(c *Config) string { return c.DBUser }},
		{"db_password", func(c *Config) string { return c.DBPassword }},
		{"db_name", func(c *Config) string { return c.DBName }},
		{"jwt_secret", func(c *Config) string { return c.JWTSecret }},
		{"gemini_api_key", func(c *Config) string { return c.GeminiAPIKey }},
	}

	// Production additionally needs the image provider and an explicit CORS list
	productionRequirements = []requirement{
		{"unsplash_access_key", func(c *Config) string { return c.UnsplashAccessKey }},
		{"allowed_origins", func(c *Config) string { return strings.Join(c.AllowedOrigins, ",") }},
	}
)

// ValidateConfig checks the configuration and reports every problem at once.
func ValidateConfig(cfg *Config) error {
	reqs := baseRequirements
	if cfg.Environment.IsProduction() {
		reqs = append(append([]requirement{}, baseRequirements...), productionRequirements...)
	}

	var errors []string
	for _, r := range reqs {
		if r.value(cfg) == "" {
			errors = append(errors, fmt.Sprintf("required setting %s is not set (secret %s or env %s)", r.name, r.name, strings.ToUpper(r.name)))
		}
	}

	if cfg.GenerationTimeout <= 0 {
		errors = append(errors, "generation_timeout must be positive")
	}
	if cfg.ImageLookupTimeout <= 0 {
		errors = append(errors, "image_lookup_timeout must be positive")
	}
	if cfg.GenerationRateLimit < 0 {
		errors = append(errors, "generation_rate_limit must not be negative")
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("log_level %q is not a valid level", cfg.LogLevel))
	}
	if cfg.Environment.IsProduction() && len(cfg.JWTSecret) > 0 && len(cfg.JWTSecret) < 32 {
		errors = append(errors, "jwt_secret must be at least 32 characters in production")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}

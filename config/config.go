package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort     string
	ServerHost     string
	AllowedOrigins []string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration; caching and rate limiting are off when unset
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// Session signing
	JWTSecret string

	// Recipe generation
	GeminiAPIKey        string
	GeminiModel         string
	GenerationTimeout   time.Duration
	GenerationRateLimit int

	// Image lookup and optional mirroring to S3
	UnsplashAccessKey  string
	ImageLookupTimeout time.Duration
	S3Bucket           string
	AWSRegion          string

	LogLevel string
}

const (
	defaultServerPort          = "8080"
	defaultServerHost          = "0.0.0.0"
	defaultDBPort              = "5432"
	defaultDBSSLMode           = "disable"
	defaultGeminiModel         = "gemini-2.0-flash"
	defaultGenerationTimeout   = 30 * time.Second
	defaultImageLookupTimeout  = 5 * time.Second
	defaultGenerationRateLimit = 10
	defaultLogLevel            = "info"
)

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{Environment: env}

	// CI has no secrets mount; everything comes from the job environment
	var lookup func(string) string
	switch env {
	case CI:
		lookup = envValue
	case Development, Test, Production:
		lookup = secretOrEnv
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := load(cfg, lookup); err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}
	applyDefaults(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func load(cfg *Config, lookup func(string) string) error {
	cfg.ServerPort = lookup("server_port")
	cfg.ServerHost = lookup("server_host")
	cfg.AllowedOrigins = splitList(lookup("allowed_origins"))

	cfg.DBHost = lookup("db_host")
	cfg.DBPort = lookup("db_port")
	cfg.DBUser = lookup("db_user")
	cfg.DBPassword = lookup("db_password")
	cfg.DBName = lookup("db_name")
	cfg.DBSSLMode = lookup("db_ssl_mode")

	cfg.RedisHost = lookup("redis_host")
	cfg.RedisPort = lookup("redis_port")
	cfg.RedisPassword = lookup("redis_password")
	cfg.RedisURL = lookup("redis_url")

	cfg.JWTSecret = lookup("jwt_secret")
	cfg.GeminiAPIKey = lookup("gemini_api_key")
	cfg.GeminiModel = lookup("gemini_model")
	cfg.UnsplashAccessKey = lookup("unsplash_access_key")
	cfg.S3Bucket = lookup("s3_bucket_name")
	cfg.AWSRegion = lookup("aws_region")
	cfg.LogLevel = lookup("log_level")

	var err error
	if cfg.RedisDB, err = parseInt(lookup("redis_db"), 0); err != nil {
		return fmt.Errorf("redis_db: %w", err)
	}
	if cfg.GenerationRateLimit, err = parseInt(lookup("generation_rate_limit"), defaultGenerationRateLimit); err != nil {
		return fmt.Errorf("generation_rate_limit: %w", err)
	}
	if cfg.GenerationTimeout, err = parseDuration(lookup("generation_timeout"), defaultGenerationTimeout); err != nil {
		return fmt.Errorf("generation_timeout: %w", err)
	}
	if cfg.ImageLookupTimeout, err = parseDuration(lookup("image_lookup_timeout"), defaultImageLookupTimeout); err != nil {
		return fmt.Errorf("image_lookup_timeout: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.ServerPort == "" {
		cfg.ServerPort = defaultServerPort
	}
	if cfg.ServerHost == "" {
		cfg.ServerHost = defaultServerHost
	}
	if cfg.DBPort == "" {
		cfg.DBPort = defaultDBPort
	}
	if cfg.DBSSLMode == "" {
		cfg.DBSSLMode = defaultDBSSLMode
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = defaultGeminiModel
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if len(cfg.AllowedOrigins) == 0 && cfg.Environment != Production {
		cfg.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
}

// RedisEnabled reports whether a Redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// S3Enabled reports whether generated recipe images are mirrored to S3.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// DSN returns the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func secretsDir() string {
	if dir := os.Getenv("SECRETS_DIR"); dir != "" {
		return dir
	}
	return "/run/secrets"
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	data, err := os.ReadFile(filepath.Join(secretsDir(), name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func envValue(name string) string {
	return strings.TrimSpace(os.Getenv(strings.ToUpper(name)))
}

// secretOrEnv prefers the Docker secret and falls back to the upper-cased env var.
func secretOrEnv(name string) string {
	if v := readSecret(name); v != "" {
		return v
	}
	return envValue(name)
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

func parseInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	return time.ParseDuration(s)
}

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for course-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (database password, LLM API key) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	Version  string `yaml:"-"`                                      // Set at load time, not from config

	// Database configuration (PostgreSQL). An empty host means the primary
	// store is not configured, which is a valid state: generated courses are
	// written to the file fallback instead.
	Database DatabaseConfig `yaml:"database"`

	// Generator holds the external AI course-generation service settings.
	Generator GeneratorConfig `yaml:"generator"`

	// Storage holds the file-fallback store settings.
	Storage StorageConfig `yaml:"storage"`

	// Moderation holds the optional topic-safety LLM settings.
	Moderation ModerationConfig `yaml:"moderation"`

	// MigrationsPath is where SQL migrations live, relative to the working directory.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:""`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"courseengine"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"course_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// IsConfigured returns true if a primary store has been configured.
func (c *DatabaseConfig) IsConfigured() bool {
	return c.Host != ""
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// GeneratorConfig holds settings for reaching the AI course-generation service.
type GeneratorConfig struct {
	// EndpointsStr is a comma-separated list of candidate base URLs, tried in order.
	EndpointsStr string `yaml:"endpoints" env:"GENERATOR_ENDPOINTS" env-default:"http://127.0.0.1:6000,http://localhost:6000"`

	// Endpoints is the parsed list from EndpointsStr (not from config file).
	Endpoints []string `yaml:"-"`

	// ProbeTimeoutSeconds bounds the /health liveness probe per candidate.
	ProbeTimeoutSeconds int `yaml:"probe_timeout_seconds" env:"GENERATOR_PROBE_TIMEOUT_SECONDS" env-default:"5"`

	// RequestTimeoutSeconds bounds the actual generation call per candidate.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds" env:"GENERATOR_REQUEST_TIMEOUT_SECONDS" env-default:"30"`
}

// ProbeTimeout returns the liveness probe timeout as a duration.
func (c *GeneratorConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// RequestTimeout returns the generation request timeout as a duration.
func (c *GeneratorConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// StorageConfig holds file-fallback storage settings.
type StorageConfig struct {
	// FallbackDir is where course records land when the database is unavailable.
	FallbackDir string `yaml:"fallback_dir" env:"STORAGE_FALLBACK_DIR" env-default:"data/courses"`
}

// ModerationConfig holds the optional OpenAI-compatible endpoint used to
// screen course topics before generation. Moderation is skipped entirely
// when no base URL is configured.
type ModerationConfig struct {
	LLMBaseURL string `yaml:"llm_base_url" env:"MODERATION_LLM_BASE_URL" env-default:""`
	LLMModel   string `yaml:"llm_model" env:"MODERATION_LLM_MODEL" env-default:""`
	LLMAPIKey  string `yaml:"-" env:"MODERATION_LLM_API_KEY"` // Secret - not in YAML
}

// IsConfigured returns true if topic moderation is enabled.
func (c *ModerationConfig) IsConfigured() bool {
	return c.LLMBaseURL != "" && c.LLMModel != ""
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.parseComplexFields(); err != nil {
		return nil, fmt.Errorf("failed to parse config fields: %w", err)
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		cfg.BaseURL = (&url.URL{
			Scheme: "http",
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	return cfg, nil
}

// parseComplexFields handles fields that need post-processing after loading.
func (c *Config) parseComplexFields() error {
	c.Generator.Endpoints = parseEndpoints(c.Generator.EndpointsStr)
	if len(c.Generator.Endpoints) == 0 {
		return fmt.Errorf("generator.endpoints must list at least one candidate base URL")
	}
	return nil
}

// parseEndpoints splits the comma-separated candidate list, trimming blanks.
func parseEndpoints(value string) []string {
	var endpoints []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		endpoints = append(endpoints, strings.TrimSuffix(part, "/"))
	}
	return endpoints
}

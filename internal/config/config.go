package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"horse.fit/mtroute/internal/auth"
	"horse.fit/mtroute/internal/logging"
	"horse.fit/mtroute/internal/translation"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	LogFile           string `envconfig:"LOG_FILE" default:""`
	LogFileMaxSizeMB  int    `envconfig:"LOG_FILE_MAX_SIZE_MB" default:"10"`
	LogFileMaxBackups int    `envconfig:"LOG_FILE_MAX_BACKUPS" default:"3"`

	BackendEndpoint  string        `envconfig:"BACKEND_ENDPOINT" default:"http://127.0.0.1:8845/v1"`
	BackendAPIKey    string        `envconfig:"BACKEND_API_KEY" default:""`
	BackendTimeout   time.Duration `envconfig:"BACKEND_TIMEOUT" default:"120s"`
	BackendSerialize bool          `envconfig:"BACKEND_SERIALIZE" default:"false"`

	// RouteModels overrides the built-in known-routes table, for example
	// "el-en:Helsinki-NLP/opus-mt-el-en,en-el:Helsinki-NLP/opus-mt-en-el".
	// RoutesFile points at a TOML table instead; set at most one of them.
	RouteModels map[string]string `envconfig:"ROUTE_MODELS" default:""`
	RoutesFile  string            `envconfig:"ROUTES_FILE" default:""`

	DefaultMaxNewTokens int `envconfig:"DEFAULT_MAX_NEW_TOKENS" default:"256"`
	MaxNewTokensLimit   int `envconfig:"MAX_NEW_TOKENS_LIMIT" default:"1024"`

	// When DebugModelTokenHash (a bcrypt hash) is set, GET /debug_model
	// requires the matching bearer token.
	DebugModelEndpoint  bool   `envconfig:"DEBUG_MODEL_ENDPOINT" default:"true"`
	DebugModelTokenHash string `envconfig:"DEBUG_MODEL_TOKEN_HASH" default:""`
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
	if strings.TrimSpace(c.BackendEndpoint) == "" {
		return fmt.Errorf("BACKEND_ENDPOINT is required")
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be > 0")
	}
	if c.LogFileMaxSizeMB < 1 {
		return fmt.Errorf("LOG_FILE_MAX_SIZE_MB must be >= 1")
	}
	if c.LogFileMaxBackups < 0 {
		return fmt.Errorf("LOG_FILE_MAX_BACKUPS must be >= 0")
	}
	if c.DefaultMaxNewTokens < 1 {
		return fmt.Errorf("DEFAULT_MAX_NEW_TOKENS must be >= 1")
	}
	if c.MaxNewTokensLimit < 1 {
		return fmt.Errorf("MAX_NEW_TOKENS_LIMIT must be >= 1")
	}
	if c.DefaultMaxNewTokens > c.MaxNewTokensLimit {
		return fmt.Errorf("DEFAULT_MAX_NEW_TOKENS (%d) cannot exceed MAX_NEW_TOKENS_LIMIT (%d)", c.DefaultMaxNewTokens, c.MaxNewTokensLimit)
	}
	if hash := strings.TrimSpace(c.DebugModelTokenHash); hash != "" && !auth.ValidHash(hash) {
		return fmt.Errorf("DEBUG_MODEL_TOKEN_HASH must be a bcrypt hash")
	}
	if strings.TrimSpace(c.RoutesFile) != "" && len(c.RouteModels) > 0 {
		return fmt.Errorf("set either ROUTE_MODELS or ROUTES_FILE, not both")
	}
	for key, model := range c.RouteModels {
		if _, err := translation.ParseRouteKey(key); err != nil {
			return fmt.Errorf("ROUTE_MODELS: %w", err)
		}
		if strings.TrimSpace(model) == "" {
			return fmt.Errorf("ROUTE_MODELS: route %q has no model", key)
		}
	}
	return nil
}

// LogFileOptions maps LOG_FILE settings onto the logger.
func (c *Config) LogFileOptions() logging.FileOptions {
	if c == nil {
		return logging.FileOptions{}
	}
	return logging.FileOptions{
		Path:       c.LogFile,
		MaxSizeMB:  c.LogFileMaxSizeMB,
		MaxBackups: c.LogFileMaxBackups,
	}
}

// Registry builds the known-routes table from RoutesFile or RouteModels,
// falling back to the built-in table.
func (c *Config) Registry() (*translation.Registry, error) {
	if c == nil {
		return translation.NewDefaultRegistry(), nil
	}
	if path := strings.TrimSpace(c.RoutesFile); path != "" {
		return translation.LoadRouteFile(path)
	}
	return translation.NewRegistryFromConfig(c.RouteModels)
}

// LoaderOptions maps backend settings onto the HTTP loader.
func (c *Config) LoaderOptions() translation.LocalLoaderOptions {
	if c == nil {
		return translation.LocalLoaderOptions{}
	}
	return translation.LocalLoaderOptions{
		Endpoint:  c.BackendEndpoint,
		APIKey:    c.BackendAPIKey,
		Timeout:   c.BackendTimeout,
		Serialize: c.BackendSerialize,
	}
}

// OrchestratorOptions maps generation bounds onto the orchestrator.
func (c *Config) OrchestratorOptions() translation.Options {
	if c == nil {
		return translation.Options{}
	}
	return translation.Options{
		DefaultMaxNewTokens: c.DefaultMaxNewTokens,
		MaxNewTokensLimit:   c.MaxNewTokensLimit,
	}
}

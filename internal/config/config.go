// Package config loads and finalizes service configuration from TOML
// files and environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/oakmoor/scout/internal/fetch"
	"github.com/oakmoor/scout/internal/llm"
	"github.com/oakmoor/scout/internal/search"
	"github.com/oakmoor/scout/pkg/database"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvScoutEnv             = "SCOUT_ENV"
	EnvScoutShutdownTimeout = "SCOUT_SHUTDOWN_TIMEOUT"
	EnvScoutVersion         = "SCOUT_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "SCOUT_DB_HOST",
	Port:            "SCOUT_DB_PORT",
	Name:            "SCOUT_DB_NAME",
	User:            "SCOUT_DB_USER",
	Password:        "SCOUT_DB_PASSWORD",
	SSLMode:         "SCOUT_DB_SSL_MODE",
	MaxOpenConns:    "SCOUT_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "SCOUT_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "SCOUT_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "SCOUT_DB_CONN_TIMEOUT",
}

var llmEnv = &llm.Env{
	BaseURL: "SCOUT_LLM_BASE_URL",
	Token:   "OPENAI_API_KEY",
	Model:   "SCOUT_LLM_MODEL",
	Timeout: "SCOUT_LLM_TIMEOUT",
}

var searchEnv = &search.Env{
	BaseURL: "SCOUT_SEARCH_BASE_URL",
	APIKey:  "TAVILY_API_KEY",
	Timeout: "SCOUT_SEARCH_TIMEOUT",
}

var fetchEnv = &fetch.Env{
	Provider:  "SCOUT_FETCH_PROVIDER",
	Timeout:   "SCOUT_FETCH_TIMEOUT",
	UserAgent: "SCOUT_FETCH_USER_AGENT",
}

// Config is the root configuration for the scout service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	LLM             llm.Config      `toml:"llm"`
	Search          search.Config   `toml:"search"`
	Fetch           fetch.Config    `toml:"fetch"`
	Workflow        WorkflowConfig  `toml:"workflow"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the SCOUT_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvScoutEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment
// overlay, and finalizes all values. If no config.toml exists, defaults
// and environment variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.LLM.Merge(&overlay.LLM)
	c.Search.Merge(&overlay.Search)
	c.Fetch.Merge(&overlay.Fetch)
	c.Workflow.Merge(&overlay.Workflow)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.LLM.Finalize(llmEnv); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Search.Finalize(searchEnv); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if err := c.Fetch.Finalize(fetchEnv); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if err := c.Workflow.Finalize(); err != nil {
		return fmt.Errorf("workflow: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvScoutShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvScoutVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvScoutEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

package fetch

import (
	"fmt"
	"os"
	"time"
)

// Fetch providers.
const (
	ProviderHTTP   = "http"
	ProviderTavily = "tavily"
)

// Config holds fetch capability settings.
type Config struct {
	// Provider selects direct HTTP fetching or the search provider's
	// extract endpoint.
	Provider     string `toml:"provider"`
	Timeout      string `toml:"timeout"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
	UserAgent    string `toml:"user_agent"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider  string
	Timeout   string
	UserAgent string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxBodyBytes != 0 {
		c.MaxBodyBytes = overlay.MaxBodyBytes
	}
	if overlay.UserAgent != "" {
		c.UserAgent = overlay.UserAgent
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderHTTP
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = 2 << 20
	}
	if c.UserAgent == "" {
		c.UserAgent = "scout/0.1 (+https://github.com/oakmoor/scout)"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Provider != "" {
		if v := os.Getenv(env.Provider); v != "" {
			c.Provider = v
		}
	}
	if v := os.Getenv(env.Timeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(env.UserAgent); v != "" {
		c.UserAgent = v
	}
}

func (c *Config) validate() error {
	if c.Provider != ProviderHTTP && c.Provider != ProviderTavily {
		return fmt.Errorf("unknown provider: %s", c.Provider)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes cannot be negative")
	}
	return nil
}

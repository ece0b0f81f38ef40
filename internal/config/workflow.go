package config

import (
	"fmt"
	"os"
	"strconv"
)

const EnvWorkflowWorkers = "SCOUT_WORKFLOW_WORKERS"

// WorkflowConfig holds workflow execution settings.
type WorkflowConfig struct {
	// Workers bounds concurrent candidate extractions per run.
	Workers int `toml:"workers"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *WorkflowConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *WorkflowConfig) Merge(overlay *WorkflowConfig) {
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
}

func (c *WorkflowConfig) loadDefaults() {
	if c.Workers == 0 {
		c.Workers = 4
	}
}

func (c *WorkflowConfig) loadEnv() {
	if v := os.Getenv(EnvWorkflowWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}

func (c *WorkflowConfig) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive: %d", c.Workers)
	}
	return nil
}

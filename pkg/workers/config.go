package workers

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// Config holds worker pool sizing.
type Config struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Workers   string
	QueueSize string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDerived()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.QueueSize != 0 {
		c.QueueSize = overlay.QueueSize
	}
}

func (c *Config) loadDefaults() {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// loadDerived fills defaults that depend on other fields after env overrides.
func (c *Config) loadDerived() {
	if c.QueueSize <= 0 {
		c.QueueSize = c.Workers * 4
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Workers != "" {
		if v := os.Getenv(env.Workers); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Workers = n
			}
		}
	}
	if env.QueueSize != "" {
		if v := os.Getenv(env.QueueSize); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.QueueSize = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	if c.QueueSize < 0 {
		return fmt.Errorf("queue_size cannot be negative")
	}
	return nil
}

// Package pagination provides zero-based page requests and result envelopes.
package pagination

import (
	"fmt"
	"os"
	"strconv"
)

// Config bounds the per_page parameter.
type Config struct {
	DefaultPerPage int `toml:"default_per_page"`
	MaxPerPage     int `toml:"max_per_page"`
}

// ConfigEnv maps environment variable names for pagination configuration.
type ConfigEnv struct {
	DefaultPerPage string
	MaxPerPage     string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.DefaultPerPage != 0 {
		c.DefaultPerPage = overlay.DefaultPerPage
	}
	if overlay.MaxPerPage != 0 {
		c.MaxPerPage = overlay.MaxPerPage
	}
}

func (c *Config) loadDefaults() {
	if c.DefaultPerPage <= 0 {
		c.DefaultPerPage = 25
	}
	if c.MaxPerPage <= 0 {
		c.MaxPerPage = 100
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	for name, dst := range map[string]*int{
		env.DefaultPerPage: &c.DefaultPerPage,
		env.MaxPerPage:     &c.MaxPerPage,
	} {
		if name == "" {
			continue
		}
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.DefaultPerPage < 1 {
		return fmt.Errorf("default_per_page must be positive")
	}
	if c.MaxPerPage < 1 {
		return fmt.Errorf("max_per_page must be positive")
	}
	if c.DefaultPerPage > c.MaxPerPage {
		return fmt.Errorf("default_per_page cannot exceed max_per_page")
	}
	return nil
}

package derive

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config controls signed URL lifetime and request coalescing.
type Config struct {
	URLTTL            string `toml:"url_ttl"`
	DisableCoalescing bool   `toml:"disable_coalescing"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	URLTTL            string
	DisableCoalescing string
}

// URLTTLDuration returns URLTTL as a time.Duration.
func (c *Config) URLTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.URLTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.URLTTL == "" {
		c.URLTTL = "1h"
	}
	if env != nil {
		if env.URLTTL != "" {
			if v := os.Getenv(env.URLTTL); v != "" {
				c.URLTTL = v
			}
		}
		if env.DisableCoalescing != "" {
			if v := os.Getenv(env.DisableCoalescing); v != "" {
				if b, err := strconv.ParseBool(v); err == nil {
					c.DisableCoalescing = b
				}
			}
		}
	}

	d, err := time.ParseDuration(c.URLTTL)
	if err != nil {
		return fmt.Errorf("invalid url_ttl: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("url_ttl must be positive")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.URLTTL != "" {
		c.URLTTL = overlay.URLTTL
	}
	if overlay.DisableCoalescing {
		c.DisableCoalescing = true
	}
}

package render

import (
	"fmt"
	"os"
	"strconv"
)

// Config controls rasterization and the external tools used for
// formats pdfcpu cannot produce.
type Config struct {
	DPI        int    `toml:"dpi"`
	TempDir    string `toml:"temp_dir"`
	Magick     string `toml:"magick"`
	Pdftocairo string `toml:"pdftocairo"`
	Background string `toml:"background"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	DPI        string
	TempDir    string
	Magick     string
	Pdftocairo string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.DPI > 0 {
		c.DPI = overlay.DPI
	}
	if overlay.TempDir != "" {
		c.TempDir = overlay.TempDir
	}
	if overlay.Magick != "" {
		c.Magick = overlay.Magick
	}
	if overlay.Pdftocairo != "" {
		c.Pdftocairo = overlay.Pdftocairo
	}
	if overlay.Background != "" {
		c.Background = overlay.Background
	}
}

func (c *Config) loadDefaults() {
	if c.DPI <= 0 {
		c.DPI = 300
	}
	if c.TempDir == "" {
		c.TempDir = os.TempDir()
	}
	if c.Magick == "" {
		c.Magick = "magick"
	}
	if c.Pdftocairo == "" {
		c.Pdftocairo = "pdftocairo"
	}
	if c.Background == "" {
		c.Background = "white"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.DPI != "" {
		if v := os.Getenv(env.DPI); v != "" {
			if dpi, err := strconv.Atoi(v); err == nil {
				c.DPI = dpi
			}
		}
	}
	if env.TempDir != "" {
		if v := os.Getenv(env.TempDir); v != "" {
			c.TempDir = v
		}
	}
	if env.Magick != "" {
		if v := os.Getenv(env.Magick); v != "" {
			c.Magick = v
		}
	}
	if env.Pdftocairo != "" {
		if v := os.Getenv(env.Pdftocairo); v != "" {
			c.Pdftocairo = v
		}
	}
}

func (c *Config) validate() error {
	if c.DPI < 36 || c.DPI > 1200 {
		return fmt.Errorf("dpi must be between 36 and 1200, got %d", c.DPI)
	}
	return nil
}

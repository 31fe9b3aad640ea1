package storage

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Supported storage providers.
const (
	ProviderAzure = "azure"
	ProviderS3    = "s3"
)

// Config selects a blob storage provider and the buckets (Azure containers
// or S3 buckets) documents may be stored in.
type Config struct {
	Provider     string      `toml:"provider"`
	Buckets      []string    `toml:"buckets"`
	PublicBucket string      `toml:"public_bucket"`
	Azure        AzureConfig `toml:"azure"`
	S3           S3Config    `toml:"s3"`
}

// AzureConfig holds Azure Blob Storage connection parameters. When
// ConnectionString is empty the client authenticates against AccountURL
// with the default Azure credential chain.
type AzureConfig struct {
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
}

// S3Config holds S3-compatible connection parameters. Empty access keys
// fall back to the default AWS credential chain.
type S3Config struct {
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	UsePathStyle    bool   `toml:"use_path_style"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider              string
	Buckets               string
	PublicBucket          string
	AzureConnectionString string
	AzureAccountURL       string
	S3Region              string
	S3Endpoint            string
	S3AccessKeyID         string
	S3SecretAccessKey     string
	S3UsePathStyle        string
}

// HasBucket reports whether name is one of the configured buckets.
func (c *Config) HasBucket(name string) bool {
	return slices.Contains(c.Buckets, name)
}

// IsPublic reports whether bucket is the designated public bucket.
func (c *Config) IsPublic(bucket string) bool {
	return bucket != "" && bucket == c.PublicBucket
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
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Buckets != nil {
		c.Buckets = overlay.Buckets
	}
	if overlay.PublicBucket != "" {
		c.PublicBucket = overlay.PublicBucket
	}
	if overlay.Azure.ConnectionString != "" {
		c.Azure.ConnectionString = overlay.Azure.ConnectionString
	}
	if overlay.Azure.AccountURL != "" {
		c.Azure.AccountURL = overlay.Azure.AccountURL
	}
	if overlay.S3.Region != "" {
		c.S3.Region = overlay.S3.Region
	}
	if overlay.S3.Endpoint != "" {
		c.S3.Endpoint = overlay.S3.Endpoint
	}
	if overlay.S3.AccessKeyID != "" {
		c.S3.AccessKeyID = overlay.S3.AccessKeyID
	}
	if overlay.S3.SecretAccessKey != "" {
		c.S3.SecretAccessKey = overlay.S3.SecretAccessKey
	}
	if overlay.S3.UsePathStyle {
		c.S3.UsePathStyle = true
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAzure
	}
	if c.PublicBucket == "" {
		c.PublicBucket = "public-pdfs"
	}
}

// loadDerived fills defaults that depend on the final provider and bucket.
func (c *Config) loadDerived() {
	if len(c.Buckets) == 0 {
		c.Buckets = []string{c.PublicBucket}
	}
	if c.Provider == ProviderS3 && c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
}

func (c *Config) loadEnv(env *Env) {
	setString := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	setString(env.Provider, &c.Provider)
	setString(env.PublicBucket, &c.PublicBucket)
	setString(env.AzureConnectionString, &c.Azure.ConnectionString)
	setString(env.AzureAccountURL, &c.Azure.AccountURL)
	setString(env.S3Region, &c.S3.Region)
	setString(env.S3Endpoint, &c.S3.Endpoint)
	setString(env.S3AccessKeyID, &c.S3.AccessKeyID)
	setString(env.S3SecretAccessKey, &c.S3.SecretAccessKey)

	if env.Buckets != "" {
		if v := os.Getenv(env.Buckets); v != "" {
			buckets := strings.Split(v, ",")
			c.Buckets = make([]string, 0, len(buckets))
			for _, b := range buckets {
				if trimmed := strings.TrimSpace(b); trimmed != "" {
					c.Buckets = append(c.Buckets, trimmed)
				}
			}
		}
	}
	if env.S3UsePathStyle != "" {
		if v := os.Getenv(env.S3UsePathStyle); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.S3.UsePathStyle = b
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderAzure:
		if c.Azure.ConnectionString == "" && c.Azure.AccountURL == "" {
			return fmt.Errorf("azure connection_string or account_url required")
		}
	case ProviderS3:
		if c.S3.Region == "" {
			return fmt.Errorf("s3 region required")
		}
	default:
		return fmt.Errorf("unknown provider: %q", c.Provider)
	}
	for _, b := range c.Buckets {
		if b == "" {
			return fmt.Errorf("bucket names must not be empty")
		}
	}
	return nil
}

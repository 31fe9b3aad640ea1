package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/folio/pkg/formatting"
	"github.com/JaimeStill/folio/pkg/middleware"
	"github.com/JaimeStill/folio/pkg/openapi"
	"github.com/JaimeStill/folio/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "FOLIO_CORS_ENABLED",
	Origins:          "FOLIO_CORS_ORIGINS",
	AllowedMethods:   "FOLIO_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "FOLIO_CORS_ALLOWED_HEADERS",
	AllowCredentials: "FOLIO_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "FOLIO_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPerPage: "FOLIO_PAGINATION_DEFAULT_PER_PAGE",
	MaxPerPage:     "FOLIO_PAGINATION_MAX_PER_PAGE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "FOLIO_OPENAPI_TITLE",
	Description: "FOLIO_OPENAPI_DESCRIPTION",
}

// APIConfig holds API routing, credential, CORS, pagination and OpenAPI settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	APIKeyHeader  string                `toml:"api_key_header"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
	OpenAPI       openapi.Config        `toml:"openapi"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 100 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv, c.APIKeyHeader); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}

	c.OpenAPI.APIKeyHeader = c.APIKeyHeader
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}
	if overlay.APIKeyHeader != "" {
		c.APIKeyHeader = overlay.APIKeyHeader
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "100MB"
	}
	if c.APIKeyHeader == "" {
		c.APIKeyHeader = "X-API-Key"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("FOLIO_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("FOLIO_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
	if v := os.Getenv("FOLIO_API_KEY_HEADER"); v != "" {
		c.APIKeyHeader = v
	}
}

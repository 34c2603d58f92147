package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/accredit/pkg/formatting"
	"github.com/JaimeStill/accredit/pkg/middleware"
	"github.com/JaimeStill/accredit/pkg/openapi"
	"github.com/JaimeStill/accredit/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "ACCREDIT_CORS_ENABLED",
	Origins:          "ACCREDIT_CORS_ORIGINS",
	AllowedMethods:   "ACCREDIT_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "ACCREDIT_CORS_ALLOWED_HEADERS",
	AllowCredentials: "ACCREDIT_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "ACCREDIT_CORS_MAX_AGE",
}

var rateLimitEnv = &middleware.RateLimitEnv{
	Enabled:           "ACCREDIT_RATE_LIMIT_ENABLED",
	RequestsPerSecond: "ACCREDIT_RATE_LIMIT_RPS",
	Burst:             "ACCREDIT_RATE_LIMIT_BURST",
	IdleTTL:           "ACCREDIT_RATE_LIMIT_IDLE_TTL",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:       "ACCREDIT_OPENAPI_TITLE",
	Description: "ACCREDIT_OPENAPI_DESCRIPTION",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "ACCREDIT_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "ACCREDIT_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, request limits, CORS, pagination and OpenAPI
// settings.
type APIConfig struct {
	BasePath    string                     `toml:"base_path"`
	MaxBodySize string                     `toml:"max_body_size"`
	CORS        middleware.CORSConfig      `toml:"cors"`
	RateLimit   middleware.RateLimitConfig `toml:"rate_limit"`
	Pagination  pagination.Config          `toml:"pagination"`
	OpenAPI     openapi.Config             `toml:"openapi"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return 10 * 1024 * 1024 // 10MB fallback
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.RateLimit.Merge(&overlay.RateLimit)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "10MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("ACCREDIT_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("ACCREDIT_API_MAX_BODY_SIZE"); v != "" {
		c.MaxBodySize = v
	}
}

const maxBodyCeiling = 1 << 30

func (c *APIConfig) validate() error {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_body_size must be positive: %s", c.MaxBodySize)
	}
	if size > maxBodyCeiling {
		return fmt.Errorf("max_body_size %s exceeds %s",
			formatting.FormatBytes(size, 1), formatting.FormatBytes(maxBodyCeiling, 0))
	}
	return nil
}

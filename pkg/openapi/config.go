package openapi

import "os"

// Config is the document metadata shown by API clients.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// ConfigEnv names the environment variables that override Config.
type ConfigEnv struct {
	Title       string
	Description string
}

// Finalize fills defaults then applies env. It never fails.
func (c *Config) Finalize(env *ConfigEnv) error {
	if c.Title == "" {
		c.Title = "Accredit API"
	}
	if c.Description == "" {
		c.Description = "Evidence-backed KPI scoring and validation for institutional accreditation."
	}
	if env == nil {
		return nil
	}
	for name, dst := range map[string]*string{env.Title: &c.Title, env.Description: &c.Description} {
		if name == "" {
			continue
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	return nil
}

func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
}

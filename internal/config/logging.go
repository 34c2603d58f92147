package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoggingConfig selects the slog handler the service writes with.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

func (c *LoggingConfig) Finalize() error {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if v := os.Getenv("ACCREDIT_LOG_LEVEL"); v != "" {
		c.Level = v
	}
	if v := os.Getenv("ACCREDIT_LOG_FORMAT"); v != "" {
		c.Format = v
	}

	if _, err := c.level(); err != nil {
		return err
	}
	switch c.Format {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("log format must be text or json: %q", c.Format)
}

func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
}

// Handler builds the configured handler writing to w.
func (c *LoggingConfig) Handler(w io.Writer) slog.Handler {
	lvl, _ := c.level()
	opts := &slog.HandlerOptions{Level: lvl}
	if c.Format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func (c *LoggingConfig) level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(c.Level))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	return lvl, nil
}

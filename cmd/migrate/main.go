// Command migrate applies the embedded submissions schema migrations.
package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/JaimeStill/accredit/internal/config"
	"github.com/JaimeStill/accredit/pkg/database"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "ACCREDIT_DB_DSN"

type options struct {
	dsn     string
	up      bool
	down    bool
	steps   int
	version bool
	force   int
	forced  bool
}

func main() {
	var opts options
	flag.StringVar(&opts.dsn, "dsn", "", "postgres:// connection URL (default: "+envDSN+", then ACCREDIT_DB_* settings)")
	flag.BoolVar(&opts.up, "up", false, "apply all pending migrations")
	flag.BoolVar(&opts.down, "down", false, "revert all migrations")
	flag.IntVar(&opts.steps, "steps", 0, "apply N migrations, negative to revert")
	flag.BoolVar(&opts.version, "version", false, "print the current schema version")
	flag.IntVar(&opts.force, "force", -1, "mark the schema as version N without running migrations")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			opts.forced = true
		}
	})

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(opts, logger); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options, logger *slog.Logger) error {
	dsn, err := resolveDSN(opts.dsn)
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer m.Close()

	switch {
	case opts.version:
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			return fmt.Errorf("version: %w", err)
		}
		logger.Info("schema version", "version", v, "dirty", dirty)
		return nil
	case opts.forced:
		if err := m.Force(opts.force); err != nil {
			return fmt.Errorf("force %d: %w", opts.force, err)
		}
		logger.Info("schema version forced", "version", opts.force)
		return nil
	case opts.up:
		return report(logger, "up", m.Up())
	case opts.down:
		return report(logger, "down", m.Down())
	case opts.steps != 0:
		return report(logger, fmt.Sprintf("%+d steps", opts.steps), m.Steps(opts.steps))
	}

	fmt.Fprintln(os.Stderr, "usage: migrate [-dsn URL] -up | -down | -steps N | -version | -force N")
	flag.PrintDefaults()
	return nil
}

// resolveDSN prefers the flag, then ACCREDIT_DB_DSN, then a URL assembled
// from the same ACCREDIT_DB_* variables the server reads.
func resolveDSN(flagDSN string) (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	cfg := database.Config{Name: "accredit", User: "accredit", Password: "accredit"}
	if err := cfg.Finalize(config.DatabaseEnv); err != nil {
		return "", fmt.Errorf("database config: %w", err)
	}
	return cfg.URL(), nil
}

func report(logger *slog.Logger, direction string, err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("schema already current", "direction", direction)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	logger.Info("migrations applied", "direction", direction)
	return nil
}

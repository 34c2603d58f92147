package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

const (
	EnvScoringKPIWorkers        = "ACCREDIT_SCORING_KPI_WORKERS"
	EnvScoringSubmissionWorkers = "ACCREDIT_SCORING_SUBMISSION_WORKERS"
	EnvScoringSnapshotPrefix    = "ACCREDIT_SCORING_SNAPSHOT_PREFIX"
)

// ScoringConfig bounds the scoring fan-out and names where evidence
// snapshots are kept in blob storage.
type ScoringConfig struct {
	KPIWorkers        int    `toml:"kpi_workers"`
	SubmissionWorkers int    `toml:"submission_workers"`
	SnapshotPrefix    string `toml:"snapshot_prefix"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ScoringConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ScoringConfig) Merge(overlay *ScoringConfig) {
	if overlay.KPIWorkers != 0 {
		c.KPIWorkers = overlay.KPIWorkers
	}
	if overlay.SubmissionWorkers != 0 {
		c.SubmissionWorkers = overlay.SubmissionWorkers
	}
	if overlay.SnapshotPrefix != "" {
		c.SnapshotPrefix = overlay.SnapshotPrefix
	}
}

func (c *ScoringConfig) loadDefaults() {
	if c.KPIWorkers == 0 {
		c.KPIWorkers = runtime.NumCPU()
	}
	if c.SubmissionWorkers == 0 {
		c.SubmissionWorkers = runtime.NumCPU()
	}
	if c.SnapshotPrefix == "" {
		c.SnapshotPrefix = "evidence"
	}
}

func (c *ScoringConfig) loadEnv() {
	if v := os.Getenv(EnvScoringKPIWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.KPIWorkers = n
		}
	}
	if v := os.Getenv(EnvScoringSubmissionWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SubmissionWorkers = n
		}
	}
	if v := os.Getenv(EnvScoringSnapshotPrefix); v != "" {
		c.SnapshotPrefix = v
	}
}

func (c *ScoringConfig) validate() error {
	if c.KPIWorkers < 1 {
		return fmt.Errorf("kpi_workers must be positive: %d", c.KPIWorkers)
	}
	if c.SubmissionWorkers < 1 {
		return fmt.Errorf("submission_workers must be positive: %d", c.SubmissionWorkers)
	}
	return nil
}

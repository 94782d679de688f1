package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"genreshelf/internal/failure"
	"genreshelf/internal/taxonomy"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateGenres(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return configError("paths.library_dir must be set")
	}
	if strings.ContainsAny(c.Paths.StagingSuffix, `/\`) {
		return configError("paths.staging_suffix must not contain path separators")
	}
	if strings.TrimSpace(c.Paths.StagingSuffix) == "" {
		return configError("paths.staging_suffix must not be blank")
	}
	if filepath.Clean(c.Paths.LibraryDir) == filepath.Dir(c.Paths.LibraryDir) {
		return configError("paths.library_dir must not be a filesystem root")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return configError(fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
}

func (c *Config) validateDataset() error {
	targets := make(map[string]string, len(c.Dataset.Columns))
	for from, to := range c.Dataset.Columns {
		if from == "" || to == "" {
			return configError("dataset.columns entries must have non-empty names")
		}
		if prev, ok := targets[to]; ok {
			return configError(fmt.Sprintf("dataset.columns maps both %q and %q to %q", prev, from, to))
		}
		targets[to] = from
	}
	return nil
}

// validateGenres only checks the taxonomy when one is configured; commands that
// need it report a missing taxonomy themselves.
func (c *Config) validateGenres() error {
	if len(c.Genres) == 0 {
		return nil
	}
	if _, err := taxonomy.NewLookup(c.Taxonomy()); err != nil {
		return fmt.Errorf("genres: %w", err)
	}
	return nil
}

func configError(message string) error {
	return fmt.Errorf("%w: %w", failure.ErrConfiguration, errors.New(message))
}

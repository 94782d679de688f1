package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeJournal(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeDataset()
	c.normalizeGenres()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv("GENRESHELF_LIBRARY_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.LibraryDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		c.Paths.LibraryDir = defaultLibraryDir
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.StagingSuffix == "" {
		c.Paths.StagingSuffix = defaultStagingSuffix
	}
	return nil
}

func (c *Config) normalizeJournal() error {
	var err error
	if c.Journal.Path, err = expandPath(strings.TrimSpace(c.Journal.Path)); err != nil {
		return fmt.Errorf("journal.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeDataset() {
	if c.Dataset.Columns == nil {
		c.Dataset.Columns = map[string]string{}
	}
	cleaned := make(map[string]string, len(c.Dataset.Columns))
	for from, to := range c.Dataset.Columns {
		cleaned[strings.TrimSpace(from)] = strings.TrimSpace(to)
	}
	c.Dataset.Columns = cleaned
}

func (c *Config) normalizeGenres() {
	for i := range c.Genres {
		c.Genres[i].Name = strings.TrimSpace(c.Genres[i].Name)
		subs := make([]string, 0, len(c.Genres[i].Subgenres))
		for _, sub := range c.Genres[i].Subgenres {
			subs = append(subs, strings.TrimSpace(sub))
		}
		c.Genres[i].Subgenres = subs
		if c.Genres[i].ID == 0 {
			c.Genres[i].ID = i + 1
		}
	}
}

package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"genreshelf/internal/config"
	"genreshelf/internal/failure"
	"genreshelf/internal/taxonomy"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "genreshelf", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if !filepath.IsAbs(cfg.Paths.LibraryDir) || filepath.Base(cfg.Paths.LibraryDir) != "lyrics" {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	if cfg.Paths.StagingSuffix != "_temp" {
		t.Fatalf("unexpected staging suffix: %q", cfg.Paths.StagingSuffix)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if !cfg.Journal.Enabled {
		t.Fatal("expected journal enabled by default")
	}
	if cfg.JournalPath() != filepath.Join(wantLogDir, "history.db") {
		t.Fatalf("unexpected journal path: %q", cfg.JournalPath())
	}
	if len(cfg.Genres) != 0 {
		t.Fatalf("expected empty default taxonomy, got %d genres", len(cfg.Genres))
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.LogDir); err != nil || !info.IsDir() {
		t.Fatalf("expected log dir to exist: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "genreshelf.toml")

	type payload struct {
		Paths struct {
			LibraryDir    string `toml:"library_dir"`
			StagingSuffix string `toml:"staging_suffix"`
		} `toml:"paths"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
		Genres []taxonomy.Genre `toml:"genres"`
	}
	custom := payload{}
	custom.Paths.LibraryDir = filepath.Join(tempDir, "letras")
	custom.Paths.StagingSuffix = ".staging"
	custom.Logging.Format = "JSON"
	custom.Logging.Level = " Debug "
	custom.Genres = []taxonomy.Genre{
		{Name: " Folklore ", Subgenres: []string{"Chacarera ", "Zamba"}},
		{ID: 9, Name: "Tango", Subgenres: []string{"Tango"}},
	}
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.LibraryDir != custom.Paths.LibraryDir {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	if cfg.Paths.StagingSuffix != ".staging" {
		t.Fatalf("unexpected staging suffix: %q", cfg.Paths.StagingSuffix)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized logging, got %+v", cfg.Logging)
	}
	tax := cfg.Taxonomy()
	if len(tax) != 2 {
		t.Fatalf("expected two genres, got %d", len(tax))
	}
	if tax[0].Name != "Folklore" || tax[0].Subgenres[0] != "Chacarera" {
		t.Fatalf("expected trimmed taxonomy, got %+v", tax[0])
	}
	if tax[0].ID != 1 || tax[1].ID != 9 {
		t.Fatalf("expected assigned and explicit IDs, got %d and %d", tax[0].ID, tax[1].ID)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "genreshelf.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nlibrary_dirr = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestLibraryDirEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GENRESHELF_LIBRARY_DIR", dir)

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.LibraryDir != dir {
		t.Fatalf("expected env library dir %q, got %q", dir, cfg.Paths.LibraryDir)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "Canción del litoral") {
		t.Fatalf("sample config missing reference taxonomy: %s", contents)
	}

	t.Setenv("HOME", t.TempDir())
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if len(cfg.Genres) != 8 {
		t.Fatalf("expected 8 genres in sample, got %d", len(cfg.Genres))
	}
	if cfg.Dataset.Columns["Tiene Letra"] != "Has_Lyrics" {
		t.Fatalf("expected column translation in sample, got %v", cfg.Dataset.Columns)
	}
	if _, err := taxonomy.NewLookup(cfg.Taxonomy()); err != nil {
		t.Fatalf("sample taxonomy should build a lookup: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"blank library dir", func(c *config.Config) { c.Paths.LibraryDir = "" }},
		{"separator in suffix", func(c *config.Config) { c.Paths.StagingSuffix = "/tmp" }},
		{"blank suffix", func(c *config.Config) { c.Paths.StagingSuffix = "  " }},
		{"root library dir", func(c *config.Config) { c.Paths.LibraryDir = "/" }},
		{"bad level", func(c *config.Config) { c.Logging.Level = "verbose" }},
		{"empty column", func(c *config.Config) { c.Dataset.Columns = map[string]string{"Título": ""} }},
		{"duplicate column target", func(c *config.Config) {
			c.Dataset.Columns = map[string]string{"Título": "Title", "Titulo": "Title"}
		}},
		{"colliding taxonomy", func(c *config.Config) {
			c.Genres = []taxonomy.Genre{
				{Name: "Tango", Subgenres: []string{"Arr. en tango"}},
				{Name: "Vals", Subgenres: []string{"Arr en tango"}},
			}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.LibraryDir = "/srv/lyrics"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, failure.ErrConfiguration) {
				t.Fatalf("expected configuration error, got %v", err)
			}
		})
	}
}

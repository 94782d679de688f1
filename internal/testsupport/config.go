package testsupport

import (
	"path/filepath"
	"testing"

	"genreshelf/internal/config"
	"genreshelf/internal/taxonomy"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDir = filepath.Join(base, "lyrics")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithGenres sets the taxonomy on the test config.
func WithGenres(genres ...taxonomy.Genre) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Genres = genres
	}
}

// ReferenceTaxonomy returns a small slice of the reference genre table.
func ReferenceTaxonomy() taxonomy.Taxonomy {
	return taxonomy.Taxonomy{
		{ID: 2, Name: "Folklore", Subgenres: []string{"Zamba", "Chacarera", "Canción del litoral"}},
		{ID: 5, Name: "Otros ritmos", Subgenres: []string{"Bolero", "Java canción"}},
		{ID: 7, Name: "Tango", Subgenres: []string{"Tango", "Arr. en tango"}},
		{ID: 8, Name: "Vals", Subgenres: []string{"Vals", "Vals peruano"}},
	}
}

// Package taxonomy models the genre/subgenre classification used to organize
// the lyrics library.
//
// A Taxonomy is plain configuration data. NewLookup turns it into the
// sanitized subgenre to genre table the reorganizer consults, rejecting
// taxonomies whose names collide once sanitized.
package taxonomy

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"genreshelf/internal/failure"
	"genreshelf/internal/sanitize"
)

// ErrCollision reports two distinct taxonomy names that sanitize to the same key.
var ErrCollision = fmt.Errorf("%w: sanitized name collision", failure.ErrConfiguration)

// Genre is a main genre and the subgenre folder names that belong to it.
type Genre struct {
	ID        int      `toml:"id" json:"id"`
	Name      string   `toml:"name" json:"name"`
	Subgenres []string `toml:"subgenres" json:"subgenres"`
}

// Taxonomy is the ordered list of main genres.
type Taxonomy []Genre

// SubgenreCount returns the number of subgenre entries across all genres.
func (t Taxonomy) SubgenreCount() int {
	total := 0
	for _, g := range t {
		total += len(g.Subgenres)
	}
	return total
}

// Key returns the lookup key for a folder or subgenre name.
func Key(name string) string {
	return norm.NFC.String(sanitize.Name(name))
}

type entry struct {
	genre    string
	original string
}

// Lookup resolves sanitized subgenre names to sanitized genre directories.
type Lookup struct {
	genres    []string
	subgenres map[string]entry
}

// NewLookup validates the taxonomy and builds the subgenre lookup table.
func NewLookup(t Taxonomy) (*Lookup, error) {
	if len(t) == 0 {
		return nil, fmt.Errorf("%w: taxonomy has no genres", failure.ErrConfiguration)
	}
	l := &Lookup{subgenres: make(map[string]entry, t.SubgenreCount())}
	genreOwners := make(map[string]string, len(t))

	for _, g := range t {
		name := strings.TrimSpace(g.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: genre %d has an empty name", failure.ErrConfiguration, g.ID)
		}
		dir := sanitize.Name(name)
		key := norm.NFC.String(dir)
		if owner, ok := genreOwners[key]; ok {
			return nil, fmt.Errorf("%w: genres %q and %q both map to directory %q", ErrCollision, owner, name, dir)
		}
		genreOwners[key] = name
		l.genres = append(l.genres, dir)

		for _, sub := range g.Subgenres {
			sub = strings.TrimSpace(sub)
			if sub == "" {
				return nil, fmt.Errorf("%w: genre %q lists an empty subgenre", failure.ErrConfiguration, name)
			}
			subKey := Key(sub)
			if existing, ok := l.subgenres[subKey]; ok {
				if existing.genre == dir && existing.original == sub {
					continue
				}
				return nil, fmt.Errorf("%w: subgenre %q (%s) and %q (%s) both map to %q",
					ErrCollision, existing.original, existing.genre, sub, dir, subKey)
			}
			l.subgenres[subKey] = entry{genre: dir, original: sub}
		}
	}
	return l, nil
}

// Resolve returns the sanitized genre directory for a folder name.
func (l *Lookup) Resolve(folder string) (string, bool) {
	if l == nil {
		return "", false
	}
	e, ok := l.subgenres[Key(folder)]
	return e.genre, ok
}

// GenreDirs returns the sanitized genre directories in configuration order.
func (l *Lookup) GenreDirs() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.genres))
	copy(out, l.genres)
	return out
}

// Len returns the number of distinct subgenre keys.
func (l *Lookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.subgenres)
}

// Mapping is a single resolved subgenre row.
type Mapping struct {
	Key      string `json:"key"`
	Original string `json:"original"`
	Genre    string `json:"genre"`
}

// Mappings returns every subgenre mapping sorted by genre then key.
func (l *Lookup) Mappings() []Mapping {
	if l == nil {
		return nil
	}
	rows := make([]Mapping, 0, len(l.subgenres))
	for key, e := range l.subgenres {
		rows = append(rows, Mapping{Key: key, Original: e.original, Genre: e.genre})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Genre != rows[j].Genre {
			return rows[i].Genre < rows[j].Genre
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

// IsCollision reports whether err came from a sanitized name collision.
func IsCollision(err error) bool {
	return errors.Is(err, ErrCollision)
}

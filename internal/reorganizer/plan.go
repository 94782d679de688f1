package reorganizer

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"genreshelf/internal/failure"
	"genreshelf/internal/sanitize"
)

// PlanEntry is the classification of one top-level library entry.
type PlanEntry struct {
	Folder string `json:"folder"`
	// Path is the entry location, resolved through symlinks for directories.
	Path string `json:"path"`
	// Destination is the slash-separated path below the staging root.
	Destination string  `json:"destination,omitempty"`
	Genre       string  `json:"genre,omitempty"`
	Outcome     Outcome `json:"outcome"`
	Reason      string  `json:"reason,omitempty"`
}

// Plan is the read-only result of classifying the library.
type Plan struct {
	Source  string      `json:"source"`
	Staging string      `json:"staging"`
	Genres  []string    `json:"genres"`
	Entries []PlanEntry `json:"entries"`
}

// Copies returns the entries that will be copied.
func (p *Plan) Copies() []PlanEntry {
	return p.filter(OutcomeCopied)
}

// Unrecognized returns the folders that match no subgenre.
func (p *Plan) Unrecognized() []PlanEntry {
	return p.filter(OutcomeUnrecognized)
}

func (p *Plan) filter(outcome Outcome) []PlanEntry {
	var out []PlanEntry
	for _, e := range p.Entries {
		if e.Outcome == outcome {
			out = append(out, e)
		}
	}
	return out
}

// Plan classifies the library without modifying anything on disk.
func (r *Reorganizer) Plan(ctx context.Context) (*Plan, error) {
	if err := r.checkSource(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(r.source)
	if err != nil {
		return nil, failure.Wrap(failure.ErrFilesystem, "reorganize", "list library", r.source, err)
	}

	plan := &Plan{
		Source:  r.source,
		Staging: r.staging,
		Genres:  r.lookup.GenreDirs(),
	}
	stagingName := filepath.Base(r.staging)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		full := filepath.Join(r.source, name)
		pe := PlanEntry{Folder: name, Path: full}

		isDir, resolved := entryIsDir(entry, full)
		switch {
		case name == stagingName:
			pe.Outcome = OutcomeSkipped
			pe.Reason = "staging directory"
		case !isDir:
			pe.Outcome = OutcomeSkipped
			pe.Reason = "not a directory"
		default:
			pe.Path = resolved
			if genre, ok := r.lookup.Resolve(name); ok {
				pe.Outcome = OutcomeCopied
				pe.Genre = genre
				pe.Destination = path.Join(genre, sanitize.Name(name))
			} else {
				pe.Outcome = OutcomeUnrecognized
				pe.Reason = fmt.Sprintf("%q matches no subgenre", sanitize.Name(name))
			}
		}
		plan.Entries = append(plan.Entries, pe)
	}
	return plan, nil
}

// entryIsDir reports whether entry is a directory, following a symlink at the
// top level the way a path-based directory check would.
func entryIsDir(entry os.DirEntry, full string) (bool, string) {
	if entry.IsDir() {
		return true, full
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false, full
	}
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		return false, full
	}
	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		return false, full
	}
	return true, resolved
}

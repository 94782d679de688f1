// Package inventory counts what a directory tree contains.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"genreshelf/internal/failure"
)

// Summary describes a counted tree. Dirs excludes the root itself.
type Summary struct {
	Root  string `json:"root"`
	Dirs  int    `json:"dirs"`
	Files int    `json:"files"`
	Bytes int64  `json:"bytes"`
}

// Count walks root and tallies regular files, subdirectories, and file bytes.
// Symlinks are counted as files when they resolve to a regular file and are
// never followed into directories.
func Count(ctx context.Context, root string) (Summary, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return Summary{}, fmt.Errorf("resolve %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Summary{}, failure.Wrap(failure.ErrValidation, "count", "inspect root",
				fmt.Sprintf("path %q is not a valid directory", root), err)
		}
		return Summary{}, failure.Wrap(failure.ErrFilesystem, "count", "inspect root", root, err)
	}
	if !info.IsDir() {
		return Summary{}, failure.Wrap(failure.ErrValidation, "count", "inspect root",
			fmt.Sprintf("path %q is not a valid directory", root), nil)
	}

	summary := Summary{Root: abs}
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == abs {
			return nil
		}
		switch {
		case d.IsDir():
			summary.Dirs++
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return err
			}
			summary.Files++
			summary.Bytes += info.Size()
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Stat(path)
			if err == nil && target.Mode().IsRegular() {
				summary.Files++
				summary.Bytes += target.Size()
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return summary, err
		}
		return summary, failure.Wrap(failure.ErrFilesystem, "count", "walk", abs, err)
	}
	return summary, nil
}

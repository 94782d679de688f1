package reorganizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"genreshelf/internal/logging"
)

var copyFileFn = copyFile

type copyStats struct {
	files   int
	bytes   int64
	skipped int
}

// copyTree copies src into dst, merging with anything already present.
// Existing files are overwritten. Symlinks to regular files are copied as
// files; symlinked directories and special files are skipped.
func copyTree(ctx context.Context, logger *slog.Logger, src, dst string) (copyStats, error) {
	var stats copyStats
	if src == "" || dst == "" {
		return stats, errors.New("copy tree: empty path")
	}
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			return os.Chmod(target, info.Mode().Perm()|0o700)
		}

		info, err := os.Stat(path)
		if err != nil {
			logging.WarnWithContext(logger, "skipping unreadable entry", "copy_entry_skipped",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "entry is not present in the reorganized library"),
			)
			stats.skipped++
			return nil
		}
		if !info.Mode().IsRegular() {
			logging.WarnWithContext(logger, "skipping non-regular entry", "copy_entry_skipped",
				logging.String("path", path),
				logging.String("mode", info.Mode().String()),
				logging.String(logging.FieldImpact, "entry is not present in the reorganized library"),
			)
			stats.skipped++
			return nil
		}
		if err := copyFileFn(path, target, info); err != nil {
			return fmt.Errorf("copy %s: %w", rel, err)
		}
		stats.files++
		stats.bytes += info.Size()
		return nil
	})
	return stats, err
}

// copyFile copies a regular file, preserving permission bits and
// modification time.
func copyFile(src, dst string, info fs.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	// A pre-existing symlink at dst must be replaced, not written through.
	if existing, err := os.Lstat(dst); err == nil && existing.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(dst); err != nil {
			return err
		}
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

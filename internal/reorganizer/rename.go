package reorganizer

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"genreshelf/internal/logging"
	"genreshelf/internal/sanitize"
)

var errTargetExists = errors.New("target already exists")

// RenameResult summarizes a RenameFiles pass.
type RenameResult struct {
	Renamed  int
	Failures []RenameFailure
}

// RenameFiles sanitizes the name of every file below root, visiting children
// before parents. Directories keep their names. A file whose sanitized name is
// already taken keeps its name and is reported as a failure; individual
// failures never abort the pass.
func RenameFiles(ctx context.Context, logger *slog.Logger, root string) (RenameResult, error) {
	var result RenameResult
	if logger == nil {
		logger = logging.NewNop()
	}

	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		dir := dirs[i]
		entries, err := os.ReadDir(dir)
		if err != nil {
			return result, err
		}
		for _, entry := range entries {
			if entry.IsDir() || isDirLink(dir, entry) {
				continue
			}
			name := entry.Name()
			if !sanitize.Changed(name) {
				continue
			}
			from := filepath.Join(dir, name)
			to := filepath.Join(dir, sanitize.Filename(name))
			if err := renameNoClobber(from, to); err != nil {
				result.Failures = append(result.Failures, RenameFailure{Path: from, Target: to, Error: err.Error()})
				logging.WarnWithContext(logger, "file rename failed", "file_rename_failed",
					logging.String("path", from),
					logging.String("target", to),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "rename or remove the conflicting file and rerun"),
					logging.String(logging.FieldImpact, "file keeps its original name"),
				)
				continue
			}
			result.Renamed++
			logger.Debug("renamed file", logging.String("from", name), logging.String("to", filepath.Base(to)))
		}
	}
	return result, nil
}

func renameNoClobber(from, to string) error {
	if _, err := os.Lstat(to); err == nil {
		return errTargetExists
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(from, to)
}

func isDirLink(dir string, entry fs.DirEntry) bool {
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.IsDir()
}

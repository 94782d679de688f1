package reorganizer

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"

	"genreshelf/internal/failure"
)

// LockPath returns the lock file guarding reorganize runs on source. It lives
// beside the library so it survives the final directory swap.
func LockPath(source string) string {
	clean := filepath.Clean(source)
	return filepath.Join(filepath.Dir(clean), "."+filepath.Base(clean)+".genreshelf.lock")
}

func acquireLock(source string) (*flock.Flock, error) {
	path := LockPath(source)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, failure.Wrap(failure.ErrFilesystem, "reorganize", "acquire lock", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: another reorganize run holds %s", failure.ErrLocked, path)
	}
	return lock, nil
}

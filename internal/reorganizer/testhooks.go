package reorganizer

import "io/fs"

// SetCopyFileForTests overrides the per-file copy routine during tests.
func SetCopyFileForTests(fn func(src, dst string, info fs.FileInfo) error) func() {
	previous := copyFileFn
	copyFileFn = fn
	return func() {
		copyFileFn = previous
	}
}

// CopyFile exposes the default copy routine so test overrides can delegate.
func CopyFile(src, dst string, info fs.FileInfo) error {
	return copyFile(src, dst, info)
}

package testsupport

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(strings.Repeat("B", int(size))), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// BuildTree creates files under root from a map of slash-separated relative
// paths to contents. Keys ending in "/" create empty directories.
func BuildTree(t testing.TB, root string, entries map[string]string) {
	t.Helper()

	for rel, content := range entries {
		target := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(target, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", target, err)
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", target, err)
		}
	}
}

// SnapshotTree returns every entry below root keyed by slash-separated
// relative path. Directories map to "/" and files to their contents.
func SnapshotTree(t testing.TB, root string) map[string]string {
	t.Helper()

	out := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			out[rel] = "/"
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot %s: %v", root, err)
	}
	return out
}

// SortedKeys returns the keys of a snapshot in lexical order.
func SortedKeys(snapshot map[string]string) []string {
	keys := make([]string, 0, len(snapshot))
	for k := range snapshot {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AssertSameTree fails the test when two snapshots differ.
func AssertSameTree(t testing.TB, want, got map[string]string) {
	t.Helper()

	for _, key := range SortedKeys(want) {
		g, ok := got[key]
		if !ok {
			t.Fatalf("missing %q in tree (have %v)", key, SortedKeys(got))
		}
		if g != want[key] {
			t.Fatalf("content mismatch for %q: got %q want %q", key, g, want[key])
		}
	}
	for _, key := range SortedKeys(got) {
		if _, ok := want[key]; !ok {
			t.Fatalf("unexpected %q in tree", key)
		}
	}
}

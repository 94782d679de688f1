package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"genreshelf/internal/failure"
	"genreshelf/internal/inventory"
	"genreshelf/internal/journal"
	"genreshelf/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	libraryDir string
	logDir     string
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("GENRESHELF_LIBRARY_DIR", "")

	env := &cliTestEnv{
		baseDir:    base,
		libraryDir: filepath.Join(base, "lyrics"),
		logDir:     filepath.Join(base, "logs"),
		configPath: filepath.Join(base, "genreshelf.toml"),
	}
	content := fmt.Sprintf(`[paths]
library_dir = %q
log_dir = %q

[logging]
level = "error"

[dataset]
index_column = "Unnamed: 0"

[dataset.columns]
"Título" = "Title"
"Género" = "Genre"

[[genres]]
id = 2
name = "Folklore"
subgenres = ["Zamba", "Chacarera"]

[[genres]]
id = 7
name = "Tango"
subgenres = ["Tango", "Arr. en tango"]
`, env.libraryDir, env.logDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func TestReorganizeCommandRebuildsLibraryAndRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.BuildTree(t, env.libraryDir, map[string]string{
		"Chacarera/La Humilde.txt": "x",
		"Arr. en tango/Volver.txt": "y",
		"Cumbia/La pollera.txt":    "z",
	})

	out, _, err := runCLI(t, []string{"reorganize"}, env.configPath)
	if err != nil {
		t.Fatalf("reorganize: %v", err)
	}
	requireContains(t, out, "Library replaced")
	requireContains(t, out, "Cumbia")

	testsupport.AssertSameTree(t, map[string]string{
		"Folklore":                          "/",
		"Folklore/Chacarera":                "/",
		"Folklore/Chacarera/La_Humilde.txt": "x",
		"Tango":                             "/",
		"Tango/Arr_en_tango":                "/",
		"Tango/Arr_en_tango/Volver.txt":     "y",
	}, testsupport.SnapshotTree(t, env.libraryDir))

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var runs []journal.Run
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode history: %v (%s)", err, out)
	}
	if len(runs) != 1 || !runs[0].Promoted || runs[0].Copied != 2 || runs[0].Unrecognized != 1 {
		t.Fatalf("unexpected history: %+v", runs)
	}

	out, _, err = runCLI(t, []string{"history", "show", runs[0].RunID}, env.configPath)
	if err != nil {
		t.Fatalf("history show: %v", err)
	}
	requireContains(t, out, "Tango/Arr_en_tango")
}

func TestReorganizeDryRunLeavesLibraryAlone(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.BuildTree(t, env.libraryDir, map[string]string{"Zamba/a b.txt": "x"})
	before := testsupport.SnapshotTree(t, env.libraryDir)

	out, _, err := runCLI(t, []string{"reorganize", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("reorganize --dry-run: %v", err)
	}
	requireContains(t, out, "Folklore/Zamba")
	testsupport.AssertSameTree(t, before, testsupport.SnapshotTree(t, env.libraryDir))
	if _, err := os.Stat(env.libraryDir + "_temp"); !os.IsNotExist(err) {
		t.Fatalf("expected no staging directory, got %v", err)
	}
}

func TestReorganizeMissingLibraryIsValidationError(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"reorganize", filepath.Join(env.baseDir, "missing")}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing library")
	}
	if code := failure.ExitCode(err); code != 2 {
		t.Fatalf("expected exit code 2, got %d (%v)", code, err)
	}
}

func TestCountCommandJSON(t *testing.T) {
	dir := t.TempDir()
	testsupport.BuildTree(t, dir, map[string]string{
		"a/one.txt":   "123",
		"a/b/two.txt": "4567",
	})

	out, _, err := runCLI(t, []string{"count", "--json", dir}, "")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	var summary inventory.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode count: %v (%s)", err, out)
	}
	if summary.Dirs != 2 || summary.Files != 2 || summary.Bytes != 7 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestCountCommandRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, _, err := runCLI(t, []string{"count", file}, "")
	if failure.ExitCode(err) != 2 {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestColumnsCommandTranslatesHeader(t *testing.T) {
	env := setupCLITestEnv(t)
	input := filepath.Join(env.baseDir, "Tango_Dataset_2025.csv")
	output := filepath.Join(env.baseDir, "Tango_Dataset_2025_EN.csv")
	if err := os.WriteFile(input, []byte("Unnamed: 0,Título,Género\n0,Volver,Tango\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	out, _, err := runCLI(t, []string{"columns", input, output}, env.configPath)
	if err != nil {
		t.Fatalf("columns: %v", err)
	}
	requireContains(t, out, "Unnamed: 0,Title,Genre")
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "Unnamed: 0,Title,Genre\n0,Volver,Tango\n" {
		t.Fatalf("unexpected output: %q", data)
	}
}

func TestTaxonomyCommandReportsCollisions(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"taxonomy"}, env.configPath)
	if err != nil {
		t.Fatalf("taxonomy: %v", err)
	}
	requireContains(t, out, "Arr. en tango")
	requireContains(t, out, "no collisions")

	bad := filepath.Join(env.baseDir, "bad.toml")
	content := "[[genres]]\nname = \"Tango\"\nsubgenres = [\"Arr. en tango\"]\n\n" +
		"[[genres]]\nname = \"Vals\"\nsubgenres = [\"Arr en tango\"]\n"
	if err := os.WriteFile(bad, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, err = runCLI(t, []string{"taxonomy"}, bad)
	if failure.ExitCode(err) != 2 {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "2 genres, 4 subgenres")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}

	out, _, err = runCLI(t, []string{"config", "show"}, target)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "Folklore")
}

package dataset_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"genreshelf/internal/dataset"
	"genreshelf/internal/failure"
)

var translation = map[string]string{
	"Título":      "Title",
	"Género":      "Genre",
	"Subgénero":   "Subgenre",
	"Tiene Letra": "Has_Lyrics",
	"Downloaded":  "Is_Downloaded",
}

func TestRenameColumnsTranslatesHeaderOnly(t *testing.T) {
	input := "Unnamed: 0,Título,Género,Subgénero,Tiene Letra\n" +
		"0,Zamba de mi esperanza,Folklore,Zamba,True\n" +
		"1,\"Título, con coma\",Tango,Tango,False\n"
	var out bytes.Buffer

	result, err := dataset.RenameColumns(context.Background(), strings.NewReader(input), &out, dataset.Options{
		IndexColumn: "Unnamed: 0",
		Columns:     translation,
	})
	if err != nil {
		t.Fatalf("RenameColumns returned error: %v", err)
	}

	want := "Unnamed: 0,Title,Genre,Subgenre,Has_Lyrics\n" +
		"0,Zamba de mi esperanza,Folklore,Zamba,True\n" +
		"1,\"Título, con coma\",Tango,Tango,False\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out.String(), want)
	}
	if result.Rows != 2 || len(result.Renamed) != 4 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Missing) != 1 || result.Missing[0] != "Downloaded" {
		t.Fatalf("expected Downloaded reported missing, got %v", result.Missing)
	}
}

func TestRenameColumnsMovesIndexColumnFirst(t *testing.T) {
	input := "Título,id\nLa Cumparsita,7\n"
	var out bytes.Buffer

	_, err := dataset.RenameColumns(context.Background(), strings.NewReader(input), &out, dataset.Options{
		IndexColumn: "id",
		Columns:     map[string]string{"Título": "Title", "id": "ID"},
	})
	if err != nil {
		t.Fatalf("RenameColumns returned error: %v", err)
	}
	if out.String() != "id,Title\n7,La Cumparsita\n" {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRenameColumnsStripsBOM(t *testing.T) {
	input := "\xef\xbb\xbfTítulo\nVolver\n"
	var out bytes.Buffer

	result, err := dataset.RenameColumns(context.Background(), strings.NewReader(input), &out, dataset.Options{Columns: translation})
	if err != nil {
		t.Fatalf("RenameColumns returned error: %v", err)
	}
	if len(result.Header) != 1 || result.Header[0] != "Title" {
		t.Fatalf("expected BOM-prefixed column to be renamed, got %v", result.Header)
	}
}

func TestRenameColumnsErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		opts  dataset.Options
	}{
		{"empty input", "", dataset.Options{}},
		{"missing index column", "a,b\n1,2\n", dataset.Options{IndexColumn: "Unnamed: 0"}},
		{"duplicate after rename", "Título,Title\nx,y\n", dataset.Options{Columns: translation}},
		{"ragged row", "a,b\n1,2,3\n", dataset.Options{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := dataset.RenameColumns(context.Background(), strings.NewReader(tc.input), &out, tc.opts)
			if !errors.Is(err, failure.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRenameFileInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Tango_Dataset_2025.csv")
	if err := os.WriteFile(path, []byte("Unnamed: 0,Género\n0,Vals\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	result, err := dataset.RenameFile(context.Background(), path, path, dataset.Options{
		IndexColumn: "Unnamed: 0",
		Columns:     translation,
	})
	if err != nil {
		t.Fatalf("RenameFile returned error: %v", err)
	}
	if result.Rows != 1 {
		t.Fatalf("expected one row, got %d", result.Rows)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "Unnamed: 0,Genre\n0,Vals\n" {
		t.Fatalf("unexpected output: %q", data)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp file to be cleaned up, got %d entries", len(entries))
	}
}

func TestRenameFileFailureKeepsExistingOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	output := filepath.Join(dir, "out.csv")
	if err := os.WriteFile(input, []byte("a,b\n1\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	if err := os.WriteFile(output, []byte("previous"), 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}

	if _, err := dataset.RenameFile(context.Background(), input, output, dataset.Options{}); err == nil {
		t.Fatal("expected error for ragged input")
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "previous" {
		t.Fatalf("expected output untouched, got %q", data)
	}
}

func TestRenameFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := dataset.RenameFile(context.Background(), filepath.Join(dir, "nope.csv"), filepath.Join(dir, "out.csv"), dataset.Options{})
	if !errors.Is(err, failure.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

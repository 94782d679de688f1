// Package dataset rewrites the header row of the lyrics dataset CSV,
// translating column names through a configured table. Data rows pass
// through unchanged.
package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"genreshelf/internal/failure"
	"genreshelf/internal/logging"
)

const utf8BOM = "\xef\xbb\xbf"

// Options configures a header rewrite.
type Options struct {
	// IndexColumn, when set, must be present; it is moved to the first
	// position and never renamed.
	IndexColumn string
	Columns     map[string]string
	Logger      *slog.Logger
}

// Rename records one translated header cell.
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Result summarizes a rewrite.
type Result struct {
	Header  []string `json:"header"`
	Renamed []Rename `json:"renamed"`
	// Missing lists configured source columns absent from the input.
	Missing []string `json:"missing,omitempty"`
	Rows    int      `json:"rows"`
}

// RenameColumns copies CSV from r to w, renaming header cells.
func RenameColumns(ctx context.Context, r io.Reader, w io.Writer, opts Options) (Result, error) {
	var result Result
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "dataset")

	buffered := bufio.NewReader(r)
	if prefix, err := buffered.Peek(len(utf8BOM)); err == nil && string(prefix) == utf8BOM {
		_, _ = buffered.Discard(len(utf8BOM))
	}
	reader := csv.NewReader(buffered)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return result, fmt.Errorf("%w: input has no header row", failure.ErrValidation)
	}
	if err != nil {
		return result, fmt.Errorf("%w: read header: %w", failure.ErrValidation, err)
	}

	order, err := columnOrder(header, opts.IndexColumn)
	if err != nil {
		return result, err
	}

	seen := make(map[string]struct{}, len(header))
	out := make([]string, len(order))
	for i, src := range order {
		name := header[src]
		if target, ok := opts.Columns[name]; ok && name != opts.IndexColumn && target != name {
			result.Renamed = append(result.Renamed, Rename{From: name, To: target})
			name = target
		}
		if _, dup := seen[name]; dup {
			return result, fmt.Errorf("%w: column %q appears twice after renaming", failure.ErrValidation, name)
		}
		seen[name] = struct{}{}
		out[i] = name
	}
	result.Header = out
	result.Missing = missingColumns(header, opts.Columns)
	for _, m := range result.Missing {
		logger.Debug("configured column not present", logging.String("column", m))
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(out); err != nil {
		return result, fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(order))
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, fmt.Errorf("%w: read row %d: %w", failure.ErrValidation, result.Rows+1, err)
		}
		for i, src := range order {
			row[i] = record[src]
		}
		if err := writer.Write(row); err != nil {
			return result, fmt.Errorf("write row %d: %w", result.Rows+1, err)
		}
		result.Rows++
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return result, fmt.Errorf("flush csv: %w", err)
	}

	logger.Info("renamed dataset columns",
		logging.Int("renamed", len(result.Renamed)),
		logging.Int("missing", len(result.Missing)),
		logging.Int("rows", result.Rows),
	)
	return result, nil
}

// RenameFile rewrites input into output. The output is written to a
// temporary file in the same directory and renamed into place, so a failed
// rewrite never leaves a truncated output behind. Input and output may be
// the same path.
func RenameFile(ctx context.Context, input, output string, opts Options) (Result, error) {
	in, err := os.Open(input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: input %q does not exist", failure.ErrValidation, input)
		}
		return Result{}, failure.Wrap(failure.ErrFilesystem, "columns", "open input", input, err)
	}
	defer in.Close()

	dir := filepath.Dir(output)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(output)+".*.tmp")
	if err != nil {
		return Result{}, failure.Wrap(failure.ErrFilesystem, "columns", "create output", output, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	result, err := RenameColumns(ctx, in, tmp, opts)
	if err != nil {
		_ = tmp.Close()
		return result, err
	}
	if err := tmp.Close(); err != nil {
		return result, failure.Wrap(failure.ErrFilesystem, "columns", "close output", output, err)
	}
	if err := os.Rename(tmpPath, output); err != nil {
		return result, failure.Wrap(failure.ErrFilesystem, "columns", "replace output", output, err)
	}
	return result, nil
}

func columnOrder(header []string, indexColumn string) ([]int, error) {
	order := make([]int, 0, len(header))
	if indexColumn == "" {
		for i := range header {
			order = append(order, i)
		}
		return order, nil
	}
	idx := -1
	for i, name := range header {
		if name == indexColumn {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: index column %q not found in header", failure.ErrValidation, indexColumn)
	}
	order = append(order, idx)
	for i := range header {
		if i != idx {
			order = append(order, i)
		}
	}
	return order, nil
}

func missingColumns(header []string, columns map[string]string) []string {
	present := make(map[string]struct{}, len(header))
	for _, name := range header {
		present[name] = struct{}{}
	}
	var missing []string
	for name := range columns {
		if _, ok := present[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

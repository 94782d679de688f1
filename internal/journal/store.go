package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"genreshelf/internal/failure"
	"genreshelf/internal/reorganizer"
)

// Run is a recorded reorganize run.
type Run struct {
	RunID          string     `json:"run_id"`
	Source         string     `json:"source"`
	Staging        string     `json:"staging"`
	Status         string     `json:"status"`
	Promoted       bool       `json:"promoted"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
	Genres         []string   `json:"genres"`
	Copied         int        `json:"copied"`
	Unrecognized   int        `json:"unrecognized"`
	Renamed        int        `json:"renamed"`
	RenameFailures int        `json:"rename_failures"`
	Error          string     `json:"error,omitempty"`
}

// Store persists run reports in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the journal database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: journal path is required", failure.ErrConfiguration)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Record stores a finished run report, replacing any earlier record with the
// same run ID.
func (s *Store) Record(ctx context.Context, report *reorganizer.Report) error {
	if report == nil {
		return errors.New("record run: nil report")
	}
	genresJSON, err := json.Marshal(report.Genres)
	if err != nil {
		return fmt.Errorf("marshal genres: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// foreign_keys is per connection, so children are cleared explicitly.
	for _, stmt := range []string{
		"DELETE FROM run_entries WHERE run_id = ?",
		"DELETE FROM rename_failures WHERE run_id = ?",
		"DELETE FROM runs WHERE run_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, report.RunID); err != nil {
			return fmt.Errorf("clear run %s: %w", report.RunID, err)
		}
	}
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO runs (
            run_id, source, staging, status, promoted, started_at, finished_at,
            genres_json, copied, unrecognized, renamed, rename_failures, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		report.Source,
		report.Staging,
		report.Status,
		boolToInt(report.Promoted),
		formatTime(report.StartedAt),
		nullableTime(report.FinishedAt),
		string(genresJSON),
		report.Copied(),
		len(report.Unrecognized()),
		report.Renamed(),
		len(report.RenameFailures),
		nullableString(report.Error),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, e := range report.Entries {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO run_entries (
                run_id, folder, outcome, genre, destination, reason, files, bytes, renamed
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.RunID,
			e.Folder,
			string(e.Outcome),
			nullableString(e.Genre),
			nullableString(e.Destination),
			nullableString(e.Reason),
			e.Files,
			e.Bytes,
			e.Renamed,
		)
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", e.Folder, err)
		}
	}
	for _, f := range report.RenameFailures {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO rename_failures (run_id, path, target, error_message) VALUES (?, ?, ?, ?)",
			report.RunID, f.Path, f.Target, f.Error,
		)
		if err != nil {
			return fmt.Errorf("insert rename failure %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `run_id, source, staging, status, promoted, started_at, finished_at,
    genres_json, copied, unrecognized, renamed, rename_failures, error_message`

// ListRuns returns recorded runs, newest first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, run_id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns a single run. Unknown IDs are failure.ErrNotFound.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE run_id = ?", runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", failure.ErrNotFound, runID)
	}
	return run, err
}

// Entries returns the per-folder outcomes of a run in processing order.
func (s *Store) Entries(ctx context.Context, runID string) ([]reorganizer.EntryReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT folder, outcome, genre, destination, reason, files, bytes, renamed
        FROM run_entries WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []reorganizer.EntryReport
	for rows.Next() {
		var (
			e                          reorganizer.EntryReport
			outcome                    string
			genre, destination, reason sql.NullString
		)
		if err := rows.Scan(&e.Folder, &outcome, &genre, &destination, &reason, &e.Files, &e.Bytes, &e.Renamed); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Outcome = reorganizer.Outcome(outcome)
		e.Genre = genre.String
		e.Destination = destination.String
		e.Reason = reason.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

// RenameFailures returns the files a run could not rename.
func (s *Store) RenameFailures(ctx context.Context, runID string) ([]reorganizer.RenameFailure, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT path, target, error_message FROM rename_failures WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, fmt.Errorf("list rename failures: %w", err)
	}
	defer rows.Close()

	var failures []reorganizer.RenameFailure
	for rows.Next() {
		var f reorganizer.RenameFailure
		if err := rows.Scan(&f.Path, &f.Target, &f.Error); err != nil {
			return nil, fmt.Errorf("scan rename failure: %w", err)
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rename failures: %w", err)
	}
	return failures, nil
}

// Prune deletes runs that started before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stamp := formatTime(cutoff)
	for _, stmt := range []string{
		"DELETE FROM run_entries WHERE run_id IN (SELECT run_id FROM runs WHERE started_at < ?)",
		"DELETE FROM rename_failures WHERE run_id IN (SELECT run_id FROM runs WHERE started_at < ?)",
	} {
		if _, err := tx.ExecContext(ctx, stmt, stamp); err != nil {
			return 0, fmt.Errorf("prune run children: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", stamp)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	return removed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run        Run
		promoted   int
		startedAt  string
		finishedAt sql.NullString
		genresJSON sql.NullString
		errMessage sql.NullString
	)
	err := row.Scan(
		&run.RunID,
		&run.Source,
		&run.Staging,
		&run.Status,
		&promoted,
		&startedAt,
		&finishedAt,
		&genresJSON,
		&run.Copied,
		&run.Unrecognized,
		&run.Renamed,
		&run.RenameFailures,
		&errMessage,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.Promoted = promoted != 0
	run.Error = errMessage.String
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if finishedAt.Valid && finishedAt.String != "" {
		t, err := parseTime(finishedAt.String)
		if err != nil {
			return nil, err
		}
		run.FinishedAt = &t
	}
	if genresJSON.Valid && genresJSON.String != "" {
		if err := json.Unmarshal([]byte(genresJSON.String), &run.Genres); err != nil {
			return nil, fmt.Errorf("decode genres: %w", err)
		}
	}
	return &run, nil
}

// timeLayout has a fixed-width fraction so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

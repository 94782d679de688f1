package reorganizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"genreshelf/internal/failure"
	"genreshelf/internal/logging"
	"genreshelf/internal/sanitize"
	"genreshelf/internal/taxonomy"
)

// DefaultStagingSuffix is appended to the library path to name the staging
// directory.
const DefaultStagingSuffix = "_temp"

// Recorder persists finished run reports.
type Recorder interface {
	Record(ctx context.Context, report *Report) error
}

// Options configures a Reorganizer.
type Options struct {
	Source        string
	StagingSuffix string
	Taxonomy      taxonomy.Taxonomy
	Logger        *slog.Logger
	// Recorder is optional; when set every run that gets past validation is
	// recorded, including failed ones.
	Recorder Recorder
}

// Reorganizer rebuilds one library directory.
type Reorganizer struct {
	source   string
	staging  string
	lookup   *taxonomy.Lookup
	logger   *slog.Logger
	recorder Recorder
}

// New validates options and builds the subgenre lookup. Taxonomy collisions
// are reported here, before anything on disk is touched.
func New(opts Options) (*Reorganizer, error) {
	if strings.TrimSpace(opts.Source) == "" {
		return nil, fmt.Errorf("%w: library directory is required", failure.ErrValidation)
	}
	source, err := filepath.Abs(opts.Source)
	if err != nil {
		return nil, failure.Wrap(failure.ErrValidation, "reorganize", "resolve library", opts.Source, err)
	}
	if filepath.Dir(source) == source {
		return nil, fmt.Errorf("%w: refusing to reorganize filesystem root %q", failure.ErrValidation, source)
	}
	suffix := opts.StagingSuffix
	if suffix == "" {
		suffix = DefaultStagingSuffix
	}
	if strings.ContainsRune(suffix, filepath.Separator) || strings.TrimSpace(suffix) == "" {
		return nil, fmt.Errorf("%w: invalid staging suffix %q", failure.ErrConfiguration, suffix)
	}
	if len(opts.Taxonomy) == 0 {
		return nil, fmt.Errorf("%w: taxonomy has no genres", failure.ErrConfiguration)
	}
	lookup, err := taxonomy.NewLookup(opts.Taxonomy)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reorganizer{
		source:   source,
		staging:  source + suffix,
		lookup:   lookup,
		logger:   logging.NewComponentLogger(logger, "reorganizer"),
		recorder: opts.Recorder,
	}, nil
}

// Source returns the absolute library path.
func (r *Reorganizer) Source() string { return r.source }

// Staging returns the absolute staging path.
func (r *Reorganizer) Staging() string { return r.staging }

// Run performs a full reorganization. The library is replaced only after
// every recognized folder has been copied; on any earlier error the library
// is untouched and the staging directory is left for inspection.
func (r *Reorganizer) Run(ctx context.Context) (report *Report, err error) {
	report = newReport(r.source, r.staging)
	logger := r.logger.With(logging.String(logging.FieldRunID, report.RunID))

	if err := r.checkSource(); err != nil {
		report.finish(err)
		return report, err
	}

	lock, err := acquireLock(r.source)
	if err != nil {
		report.finish(err)
		return report, err
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			logger.Warn("failed to release reorganize lock", logging.Error(unlockErr))
		}
	}()
	defer func() {
		report.finish(err)
		r.record(logger, report)
	}()

	if err := r.checkVolume(); err != nil {
		return report, err
	}

	logger.Info("reorganization started",
		logging.String("source", r.source),
		logging.String("staging", r.staging),
	)

	phase := logger.With(logging.String(logging.FieldPhase, "reset_staging"))
	if err := resetStaging(r.staging); err != nil {
		return report, failure.Wrap(failure.ErrFilesystem, "reorganize", "reset staging", r.staging, err)
	}
	phase.Debug("staging directory ready")

	phase = logger.With(logging.String(logging.FieldPhase, "skeleton"))
	report.Genres = r.lookup.GenreDirs()
	for _, genre := range report.Genres {
		if err := os.Mkdir(filepath.Join(r.staging, genre), 0o755); err != nil {
			return report, failure.Wrap(failure.ErrFilesystem, "reorganize", "create genre folder", genre, err)
		}
		phase.Info("created genre folder", logging.String("genre", genre))
	}

	logger.Debug("subgenre lookup ready",
		logging.String(logging.FieldPhase, "lookup"),
		logging.Int("subgenres", r.lookup.Len()),
	)

	plan, err := r.Plan(ctx)
	if err != nil {
		return report, err
	}
	phase = logger.With(logging.String(logging.FieldPhase, "copy"))
	for _, entry := range plan.Entries {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("reorganization interrupted: %w", err)
		}
		er, err := r.processEntry(ctx, phase, entry)
		report.Entries = append(report.Entries, er.EntryReport)
		report.RenameFailures = append(report.RenameFailures, er.failures...)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return report, fmt.Errorf("reorganization interrupted: %w", err)
			}
			return report, failure.Wrap(failure.ErrFilesystem, "reorganize", "copy subgenre folder", entry.Folder, err)
		}
	}

	if report.Copied() == 0 {
		logging.WarnWithContext(logger, "no recognized subgenre folders; library left unchanged", "reorganize_noop",
			logging.String(logging.FieldPhase, "promote"),
			logging.Int("unrecognized", len(report.Unrecognized())),
			logging.String(logging.FieldErrorHint, "check the genre taxonomy or whether the library is already organized"),
			logging.String(logging.FieldImpact, "library directory was not replaced"),
		)
		if err := os.RemoveAll(r.staging); err != nil {
			return report, failure.Wrap(failure.ErrFilesystem, "reorganize", "remove staging", r.staging, err)
		}
		return report, nil
	}

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("reorganization interrupted before promotion: %w", err)
	}

	phase = logger.With(logging.String(logging.FieldPhase, "promote"))
	phase.Info("replacing library directory", logging.String("source", r.source))
	if err := promote(r.staging, r.source); err != nil {
		return report, failure.Wrap(failure.ErrFilesystem, "reorganize", "promote staging", r.source, err)
	}
	report.Promoted = true

	logger.Info("reorganization complete",
		logging.Int("copied", report.Copied()),
		logging.Int("unrecognized", len(report.Unrecognized())),
		logging.Int("renamed", report.Renamed()),
		logging.Int("rename_failures", len(report.RenameFailures)),
		logging.Duration("elapsed", report.Duration()),
	)
	return report, nil
}

type entryResult struct {
	EntryReport
	failures []RenameFailure
}

func (r *Reorganizer) processEntry(ctx context.Context, logger *slog.Logger, entry PlanEntry) (entryResult, error) {
	res := entryResult{EntryReport: EntryReport{
		Folder:      entry.Folder,
		Outcome:     entry.Outcome,
		Genre:       entry.Genre,
		Destination: entry.Destination,
		Reason:      entry.Reason,
	}}
	switch entry.Outcome {
	case OutcomeSkipped:
		logger.Debug("skipping library entry",
			logging.String("entry", entry.Folder),
			logging.String("reason", entry.Reason),
		)
		return res, nil
	case OutcomeUnrecognized:
		logging.WarnWithContext(logger, "unrecognized subgenre folder", "subgenre_unrecognized",
			logging.String("folder", entry.Folder),
			logging.String("sanitized", sanitize.Name(entry.Folder)),
			logging.String(logging.FieldErrorHint, "add the subgenre to the genre taxonomy"),
			logging.String(logging.FieldImpact, "folder is not carried into the reorganized library"),
		)
		return res, nil
	}

	dest := filepath.Join(r.staging, filepath.FromSlash(entry.Destination))
	logger.Info("copying subgenre folder",
		logging.String("folder", entry.Folder),
		logging.String("genre", entry.Genre),
		logging.String("destination", entry.Destination),
	)
	started := time.Now()
	stats, err := copyTree(ctx, logger, entry.Path, dest)
	res.Files = stats.files
	res.Bytes = stats.bytes
	if err != nil {
		return res, err
	}

	renamed, err := RenameFiles(ctx, logger, dest)
	res.Renamed = renamed.Renamed
	res.failures = renamed.Failures
	if err != nil {
		return res, err
	}
	logger.Info("sanitized file names",
		logging.String("destination", entry.Destination),
		logging.Int("files", stats.files),
		logging.Int64("copied_bytes", stats.bytes),
		logging.Int("renamed", renamed.Renamed),
		logging.Duration("elapsed", time.Since(started)),
	)
	return res, nil
}

func (r *Reorganizer) checkSource() error {
	info, err := os.Stat(r.source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: library directory %q does not exist", failure.ErrValidation, r.source)
		}
		return failure.Wrap(failure.ErrFilesystem, "reorganize", "stat library", r.source, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: library path %q is not a directory", failure.ErrValidation, r.source)
	}
	return nil
}

func (r *Reorganizer) checkVolume() error {
	same, err := sameDevice(r.source, filepath.Dir(r.staging))
	if err != nil {
		return failure.Wrap(failure.ErrFilesystem, "reorganize", "check volume", r.staging, err)
	}
	if !same {
		return fmt.Errorf("%w: staging directory %q must be on the same filesystem as %q", failure.ErrConfiguration, r.staging, r.source)
	}
	return nil
}

func (r *Reorganizer) record(logger *slog.Logger, report *Report) {
	if r.recorder == nil {
		return
	}
	// The run context may already be cancelled; the journal entry should
	// still be written.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.recorder.Record(ctx, report); err != nil {
		logging.WarnWithContext(logger, "failed to record run", "journal_record_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run is missing from history"),
		)
	}
}

func resetStaging(staging string) error {
	if err := os.RemoveAll(staging); err != nil {
		return err
	}
	return os.Mkdir(staging, 0o755)
}

func promote(staging, source string) error {
	if err := os.RemoveAll(source); err != nil {
		return err
	}
	return os.Rename(staging, source)
}

func (r *Report) finish(err error) {
	r.FinishedAt = time.Now().UTC()
	switch {
	case err == nil && r.Promoted:
		r.Status = StatusCompleted
	case err == nil:
		r.Status = StatusNoop
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.Status = StatusInterrupted
		r.Error = err.Error()
	default:
		r.Status = StatusFailed
		r.Error = err.Error()
	}
}

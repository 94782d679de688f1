package reorganizer

import (
	"time"

	"github.com/google/uuid"
)

// Outcome classifies what happened to a top-level library entry.
type Outcome string

const (
	OutcomeCopied       Outcome = "copied"
	OutcomeUnrecognized Outcome = "unrecognized"
	OutcomeSkipped      Outcome = "skipped"
)

// Run statuses recorded on a Report.
const (
	StatusRunning     = "running"
	StatusCompleted   = "completed"
	StatusNoop        = "noop"
	StatusFailed      = "failed"
	StatusInterrupted = "interrupted"
)

// EntryReport records the handling of one top-level library entry.
type EntryReport struct {
	Folder      string  `json:"folder"`
	Outcome     Outcome `json:"outcome"`
	Genre       string  `json:"genre,omitempty"`
	Destination string  `json:"destination,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	Files       int     `json:"files"`
	Bytes       int64   `json:"bytes"`
	Renamed     int     `json:"renamed"`
}

// RenameFailure records a file that kept its original name.
type RenameFailure struct {
	Path   string `json:"path"`
	Target string `json:"target"`
	Error  string `json:"error"`
}

// Report summarizes a reorganize run.
type Report struct {
	RunID          string          `json:"run_id"`
	Source         string          `json:"source"`
	Staging        string          `json:"staging"`
	Status         string          `json:"status"`
	Promoted       bool            `json:"promoted"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
	Genres         []string        `json:"genres"`
	Entries        []EntryReport   `json:"entries"`
	RenameFailures []RenameFailure `json:"rename_failures,omitempty"`
	Error          string          `json:"error,omitempty"`
}

func newReport(source, staging string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Source:    source,
		Staging:   staging,
		Status:    StatusRunning,
		StartedAt: time.Now().UTC(),
	}
}

// Copied returns the number of subgenre folders copied into staging.
func (r *Report) Copied() int {
	return r.count(OutcomeCopied)
}

// Unrecognized returns the folder names that matched no subgenre.
func (r *Report) Unrecognized() []string {
	var names []string
	for _, e := range r.Entries {
		if e.Outcome == OutcomeUnrecognized {
			names = append(names, e.Folder)
		}
	}
	return names
}

// Renamed returns the number of files renamed across all copied folders.
func (r *Report) Renamed() int {
	total := 0
	for _, e := range r.Entries {
		total += e.Renamed
	}
	return total
}

// Duration returns the elapsed run time.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Report) count(outcome Outcome) int {
	n := 0
	for _, e := range r.Entries {
		if e.Outcome == outcome {
			n++
		}
	}
	return n
}

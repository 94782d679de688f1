// Package logging assembles structured slog loggers and formatting helpers used
// across genreshelf commands.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes helpers so warnings carry the same event_type, error_hint and
// impact fields everywhere. The package also provides a no-op logger for tests
// and wiring code that cannot fail.
package logging

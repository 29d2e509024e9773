// Package logging assembles structured slog loggers and formatting helpers used
// across notepipe.
//
// It owns the configurable console/JSON handlers, tees output into the log
// directory, and exposes context-aware helpers so pipeline code can tag log
// lines with run IDs and stage names. A no-op logger is provided for tests and
// wiring code that cannot fail.
package logging

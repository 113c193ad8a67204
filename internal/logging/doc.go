// Package logging assembles structured slog loggers and formatting helpers used
// across lrcsync.
//
// It owns the console and JSON handlers, routes records to the terminal and
// the optional log file, and exposes context-aware helpers so pipeline code can
// tag log lines with the run id, component, and audio file automatically. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
package logging

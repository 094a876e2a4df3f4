// Package logging assembles structured slog loggers and formatting helpers used
// across Minutes services.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so engine code can tag log lines
// with job IDs, subject IDs, and correlation IDs. The package also provides a
// no-op logger for tests and wiring code that cannot fail.
package logging

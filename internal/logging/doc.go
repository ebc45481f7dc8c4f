// Package logging assembles structured slog loggers and formatting helpers
// shared by the kr-notebook commands.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes small attribute helpers so scraping and segmentation
// code tags log lines with the same keys everywhere. The package also provides
// a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape and routing as the rest of the system.
package logging

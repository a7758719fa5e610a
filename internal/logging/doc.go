// Package logging assembles structured slog loggers and formatting helpers used
// across the build stages.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so stage code tags log lines
// with build IDs, stages, locales and catalogue entries. A fan-out handler
// tees a build's records into its own log file, and retention pruning keeps
// that directory bounded. NewNop serves tests and wiring code that cannot fail.
package logging

// Package logging assembles structured slog loggers and formatting helpers used
// across arrimeta.
//
// It owns the console and JSON handlers, per-component level overrides, and
// the optional JSON log file under paths.log_dir. Context helpers tag log lines
// with the batch run ID and the clip file being read. Console output goes to
// stderr by default so extracted metadata on stdout stays machine readable.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits the same field keys.
package logging

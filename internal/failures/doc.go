// Package failures defines the error taxonomy shared by the header extractor,
// schema registry, and decoder.
//
// Errors are tagged with sentinel markers through Wrap so callers can classify
// them with errors.Is while still seeing which stage and file failed. Kind turns
// a tagged error into the short label recorded in per-file batch reports.
package failures

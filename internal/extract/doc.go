// Package extract runs the per-file pipeline (read header, decode, select)
// and fans it out over many files.
//
// Field names are validated against the schema before any file is opened,
// so a typo fails the whole request up front. Batch uses a fixed pool of
// workers that share the read-only schema; each worker opens its own files.
// Results come back in input order with per-file errors classified by
// failures.Kind, and one bad file never stops the rest. Every batch gets a
// run_id that tags its log lines.
package extract

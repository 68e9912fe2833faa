// Package catalog keeps decoded clip metadata in a local SQLite database so
// later runs can list and show clips without rereading camera media.
//
// Entries are keyed by absolute file path and hold the selected fields as an
// ordered JSON object. Writers serialize across processes through an
// exclusive flock on "<db>.lock" and retry briefly when SQLite reports busy.
// Schema changes ship as numbered SQL files under migrations/; Open applies
// any pending ones and refuses a catalog written by a newer build.
package catalog

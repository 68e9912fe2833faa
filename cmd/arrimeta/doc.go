// Package main hosts the arrimeta CLI entrypoint and command graph.
//
// The Cobra-based command tree reads ARRIRAW header metadata from clip files
// and directories, lists the available fields, scaffolds and validates
// configuration, browses the clip catalog, and watches directories for new
// clips. It centralizes configuration resolution, schema construction, and
// structured logging setup so subcommands can focus on output.
//
// Keep this package lean: decoding, batching, and persistence live in the
// internal packages; commands here only wire flags to them.
package main

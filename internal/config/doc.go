// Package config loads, normalizes, and validates arrimeta configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. Besides the usual paths and logging
// sections the file carries the supported container extensions and the
// ordered field lists behind the "default" and "minimal" field sets. Those
// lists are checked against the ARRIRAW schema during Validate, so a typo in
// a field name stops the CLI before any file is read.
package config

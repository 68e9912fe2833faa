// Package scan discovers clip files on disk.
package scan

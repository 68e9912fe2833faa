// Package watch follows directories for new clip files with fsnotify.
//
// Cameras and copy tools write a frame in many small writes, so each file is
// debounced: it reaches the handler only after a quiet period with no further
// write or create events. Hidden files are ignored.
package watch

// Package metadata holds decoded header values and the ordered field mapping
// produced for each clip.
//
// Value is a small tagged union (int, uint, float, string, float tuple) so
// projections keep numbers numeric. Metadata preserves field order through
// JSON encoding and Select.
package metadata

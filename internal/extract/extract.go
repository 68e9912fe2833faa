package extract

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"arrimeta/internal/decode"
	"arrimeta/internal/header"
	"arrimeta/internal/logging"
	"arrimeta/internal/metadata"
	"arrimeta/internal/schema"
)

// Extractor reads header metadata from clip files. It holds only immutable
// state and may be shared across goroutines.
type Extractor struct {
	schema *schema.Schema
	logger *slog.Logger
}

// New returns an extractor for s. A nil logger discards output.
func New(s *schema.Schema, logger *slog.Logger) *Extractor {
	return &Extractor{
		schema: s,
		logger: logging.NewComponentLogger(logger, "extract"),
	}
}

// Schema returns the schema used for decoding.
func (e *Extractor) Schema() *schema.Schema { return e.schema }

// Resolve turns a selection into validated field names.
func (e *Extractor) Resolve(sel schema.Selection) ([]string, error) {
	return e.schema.Resolve(sel)
}

// File extracts names from the clip at path. Names are validated before the
// file is opened.
func (e *Extractor) File(ctx context.Context, path string, names []string) (*metadata.Metadata, error) {
	names, err := e.schema.ResolveNames(names)
	if err != nil {
		return nil, err
	}
	return e.file(ctx, path, names)
}

func (e *Extractor) file(ctx context.Context, path string, names []string) (*metadata.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	block, err := header.Extract(path, e.schema.HeaderSize())
	if err != nil {
		return nil, err
	}
	m, err := decode.Fields(block, e.schema, names)
	if err != nil {
		return nil, err
	}
	logging.WithContext(logging.WithFile(ctx, path), e.logger).Debug("header decoded",
		logging.String(logging.FieldEventType, "file_decoded"),
		logging.Int("fields", m.Len()),
		logging.Duration("elapsed", time.Since(start)),
	)
	return m, nil
}

// ClipName is the file name without directory and extension.
func ClipName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

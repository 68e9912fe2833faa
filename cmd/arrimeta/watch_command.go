package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"arrimeta/internal/catalog"
	"arrimeta/internal/extract"
	"arrimeta/internal/failures"
	"arrimeta/internal/logging"
	"arrimeta/internal/scan"
	"arrimeta/internal/schema"
	"arrimeta/internal/watch"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		fieldsFlag string
		initial    bool
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Catalog clips as they are written into directories",
		Long: `Watch directories for new ARRIRAW files and record their header metadata
in the clip catalog. Files are read once writes to them have settled. Removed
files are dropped from the catalog. Runs until interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ex, logger, err := ctx.extractor(cmd)
			if err != nil {
				return err
			}

			selection := schema.ParseSelection(fieldsFlag)
			if fieldsFlag == "" && len(cfg.Watch.Fields) > 0 {
				selection = schema.NamesSelection(cfg.Watch.Fields...)
			}
			names, err := ex.Resolve(selection)
			if err != nil {
				return err
			}

			store, err := catalog.Open(cfg.Paths.CatalogPath)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer store.Close()

			runCtx := logging.WithRunID(cmd.Context(), uuid.NewString())
			watchLogger := logging.NewComponentLogger(logger, "watch")

			if initial {
				if err := catalogExisting(runCtx, ex, store, args, cfg.SupportedFiles, names, cfg.Batch.Workers); err != nil {
					return err
				}
			}

			handler := func(ctx context.Context, path string) {
				fileLogger := logging.WithContext(logging.WithFile(ctx, path), watchLogger)
				m, err := ex.File(ctx, path, names)
				if err != nil {
					logging.WarnWithContext(fileLogger, "clip not cataloged", "watch_decode_failed",
						logging.String(logging.FieldErrorKind, failures.Kind(err)),
						logging.Error(err),
					)
					return
				}
				if err := store.Put(ctx, path, m); err != nil {
					logging.ErrorWithContext(fileLogger, "catalog write failed", "catalog_write_failed",
						logging.Error(err),
					)
					return
				}
				fileLogger.Info("clip cataloged",
					logging.String(logging.FieldEventType, "clip_cataloged"),
					logging.String("clip", extract.ClipName(path)),
					logging.Int("fields", m.Len()),
				)
			}
			onRemove := func(ctx context.Context, path string) {
				removed, err := store.Remove(ctx, path)
				if err != nil {
					logging.WarnWithContext(logging.WithContext(logging.WithFile(ctx, path), watchLogger),
						"catalog removal failed", "catalog_remove_failed", logging.Error(err))
					return
				}
				if removed {
					watchLogger.Info("clip removed from catalog",
						logging.String(logging.FieldEventType, "clip_uncataloged"),
						logging.String("clip", extract.ClipName(path)),
					)
				}
			}

			w, err := watch.New(args, handler, watch.Options{
				Extensions: cfg.SupportedFiles,
				Debounce:   time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond,
				OnRemove:   onRemove,
				Logger:     logger,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %d director%s; press Ctrl+C to stop\n", len(args), plural(len(args), "y", "ies"))
			return w.Run(runCtx)
		},
	}

	cmd.Flags().StringVarP(&fieldsFlag, "fields", "f", "", "Field set or comma-separated field names (default from config)")
	cmd.Flags().BoolVar(&initial, "initial", false, "Catalog files already present before watching")
	return cmd
}

// catalogExisting records clips already on disk, one file per directory.
func catalogExisting(ctx context.Context, ex *extract.Extractor, store *catalog.Store, roots, exts, names []string, workers int) error {
	paths, err := scan.FindAll(roots, exts, true)
	if errors.Is(err, scan.ErrNoClips) {
		// Empty directories are normal when a watch starts.
		return nil
	}
	if err != nil {
		return err
	}
	report, err := ex.Batch(ctx, paths, names, extract.BatchOptions{Workers: workers})
	if report == nil {
		return err
	}
	for _, res := range report.Results {
		if !res.OK() {
			continue
		}
		if perr := store.Put(ctx, res.Path, res.Metadata); perr != nil {
			return fmt.Errorf("%s: %w", res.Path, perr)
		}
	}
	return err
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

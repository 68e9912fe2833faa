package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"arrimeta/internal/catalog"
	"arrimeta/internal/config"
	"arrimeta/internal/extract"
	"arrimeta/internal/logging"
	"arrimeta/internal/render"
	"arrimeta/internal/scan"
	"arrimeta/internal/schema"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var (
		fieldsFlag  string
		formatFlag  string
		outputFlag  string
		outputDir   string
		workersFlag int
		allFrames   bool
		useCatalog  bool
	)

	cmd := &cobra.Command{
		Use:   "extract <path>...",
		Short: "Extract header metadata from clips and directories",
		Long: `Extract header metadata from ARRIRAW files.

Paths may be files or directories; directories are searched recursively for
supported extensions. --fields accepts a field set (all, default, minimal) or a
comma-separated list of field names.`,
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

			names, err := ex.Resolve(schema.ParseSelection(fieldsFlag))
			if err != nil {
				return err
			}
			format, err := resolveFormat(cmd, formatFlag)
			if err != nil {
				return err
			}

			paths, err := scan.FindAll(args, cfg.SupportedFiles, cfg.Batch.FirstFramePerClip && !allFrames)
			if err != nil {
				return err
			}

			workers := workersFlag
			if workers <= 0 {
				workers = cfg.Batch.Workers
			}
			report, err := ex.Batch(cmd.Context(), paths, names, extract.BatchOptions{Workers: workers})
			if report == nil {
				return err
			}
			if err != nil {
				logger.Warn("batch interrupted", logging.Int("skipped", report.Skipped))
			}

			tbl := collectOutputs(report)
			if useCatalog {
				if catErr := catalogResults(logging.WithRunID(context.WithoutCancel(cmd.Context()), report.RunID), cfg, report, logger); catErr != nil {
					return catErr
				}
			}

			if strings.TrimSpace(outputDir) != "" {
				written, werr := writePerClip(tbl, format, outputDir)
				if werr != nil {
					return werr
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d file(s) to %s\n", len(written), outputDir)
			} else if tbl.Len() > 0 {
				if werr := writeOutput(cmd, tbl, format, outputFlag); werr != nil {
					return werr
				}
			}

			if err != nil {
				return err
			}
			if report.Failed > 0 {
				errOut := cmd.ErrOrStderr()
				for _, res := range report.Failures() {
					fmt.Fprintf(errOut, "%s: %s: %v\n", res.Kind, res.Path, res.Err)
				}
				return fmt.Errorf("%d of %d file(s) failed", report.Failed, len(report.Results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&fieldsFlag, "fields", "f", schema.SetDefault, "Field set (all, default, minimal) or comma-separated field names")
	cmd.Flags().StringVar(&formatFlag, "format", "", "Output format: json, csv, tsv, table or xlsx (default table on a terminal, json otherwise)")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write output to this file instead of stdout")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Write one <clip>.<format> file per file into this directory")
	cmd.Flags().IntVarP(&workersFlag, "workers", "j", 0, "Parallel header reads (default from config)")
	cmd.Flags().BoolVar(&allFrames, "all-frames", false, "Read every frame instead of the first file in each directory")
	cmd.Flags().BoolVar(&useCatalog, "catalog", false, "Record results in the clip catalog")
	cmd.MarkFlagsMutuallyExclusive("output", "output-dir")
	return cmd
}

// collectOutputs keys each decoded file by path so frames that share a clip
// name on different cards stay separate rows.
func collectOutputs(report *extract.Report) *render.Table {
	tbl := render.NewTable()
	for _, res := range report.Results {
		if res.OK() {
			tbl.Add(res.Path, res.Clip, res.Metadata)
		}
	}
	return tbl
}

func catalogResults(ctx context.Context, cfg *config.Config, report *extract.Report, logger *slog.Logger) error {
	store, err := catalog.Open(cfg.Paths.CatalogPath)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()

	var errs []error
	stored := 0
	for _, res := range report.Results {
		if !res.OK() {
			continue
		}
		if err := store.Put(ctx, res.Path, res.Metadata); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Path, err))
			continue
		}
		stored++
	}
	logging.NewComponentLogger(logger, "catalog").Info("catalog updated",
		logging.String(logging.FieldEventType, "catalog_updated"),
		logging.Int("stored", stored),
		logging.String("catalog_path", store.Path()),
	)
	return errors.Join(errs...)
}

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"arrimeta/internal/catalog"
	"arrimeta/internal/render"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse clips recorded by extract --catalog and watch",
	}
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogShowCommand(ctx))
	catalogCmd.AddCommand(newCatalogRemoveCommand(ctx))
	return catalogCmd
}

func openCatalog(ctx *commandContext) (*catalog.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := catalog.Open(cfg.Paths.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return store, nil
}

type catalogRow struct {
	Path      string `json:"path"`
	Clip      string `json:"clip"`
	Reel      string `json:"reel,omitempty"`
	Fields    int    `json:"fields"`
	RunID     string `json:"run_id,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var (
		jsonOutput bool
		reelFlag   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cataloged clips",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var entries []*catalog.Entry
			if reel := strings.TrimSpace(reelFlag); reel != "" {
				entries, err = store.FindByReel(cmd.Context(), reel)
			} else {
				entries, err = store.List(cmd.Context())
			}
			if err != nil {
				return err
			}

			rows := make([]catalogRow, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, catalogRow{
					Path:      e.Path,
					Clip:      e.Clip,
					Reel:      e.Reel,
					Fields:    e.FieldCount,
					RunID:     e.RunID,
					UpdatedAt: e.UpdatedAt.Local().Format(time.DateTime),
				})
			}
			if jsonOutput {
				return writeJSON(cmd, rows)
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				if reelFlag != "" {
					fmt.Fprintf(out, "No clips recorded with reel %s\n", reelFlag)
				} else {
					fmt.Fprintln(out, "Catalog is empty")
				}
				return nil
			}
			cells := make([][]string, 0, len(rows))
			for _, r := range rows {
				cells = append(cells, []string{r.Clip, r.Reel, strconv.Itoa(r.Fields), r.UpdatedAt, r.Path})
			}
			fmt.Fprintln(out, render.Grid([]string{"Clip", "Reel", "Fields", "Updated", "Path"}, cells, 2))
			total, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d clip(s) in %s\n", total, store.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&reelFlag, "reel", "", "Only list clips recorded with this reel")
	return cmd
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	var formatFlag, outputFlag string

	cmd := &cobra.Command{
		Use:   "show <path|clip>...",
		Short: "Show cataloged metadata for files or clip names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(cmd, formatFlag)
			if err != nil {
				return err
			}
			store, err := openCatalog(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			tbl := render.NewTable()
			for _, arg := range args {
				entries, err := lookupEntries(cmd, store, arg)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					return fmt.Errorf("%s is not in the catalog", arg)
				}
				for _, e := range entries {
					m, err := e.Metadata()
					if err != nil {
						return fmt.Errorf("decode catalog entry %s: %w", e.Path, err)
					}
					tbl.Add(e.Path, e.Clip, m)
				}
			}
			return writeOutput(cmd, tbl, format, outputFlag)
		},
	}
	cmd.Flags().StringVar(&formatFlag, "format", "", "Output format: json, csv, tsv, table or xlsx")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write output to this file instead of stdout")
	return cmd
}

func lookupEntries(cmd *cobra.Command, store *catalog.Store, arg string) ([]*catalog.Entry, error) {
	entry, err := store.Get(cmd.Context(), arg)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		return []*catalog.Entry{entry}, nil
	}
	return store.FindByClip(cmd.Context(), arg)
}

func newCatalogRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <path>...",
		Short: "Remove files from the catalog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openCatalog(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			for _, path := range args {
				removed, err := store.Remove(cmd.Context(), path)
				if err != nil {
					return err
				}
				if removed {
					fmt.Fprintf(out, "Removed %s\n", path)
				} else {
					fmt.Fprintf(out, "%s was not cataloged\n", path)
				}
			}
			return nil
		},
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"arrimeta/internal/render"
)

// resolveFormat returns the requested format, or table when stdout is a
// terminal and JSON otherwise.
func resolveFormat(cmd *cobra.Command, requested string) (render.Format, error) {
	if strings.TrimSpace(requested) != "" {
		return render.ParseFormat(requested)
	}
	if isTerminal(cmd.OutOrStdout()) {
		return render.FormatTable, nil
	}
	return render.FormatJSON, nil
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeOutput renders tbl to path, or to the command's stdout when path is
// empty.
func writeOutput(cmd *cobra.Command, tbl *render.Table, format render.Format, path string) error {
	if strings.TrimSpace(path) == "" {
		if format.Binary() && isTerminal(cmd.OutOrStdout()) {
			return fmt.Errorf("%s output is binary; use --output or redirect stdout", format)
		}
		return tbl.Render(cmd.OutOrStdout(), format)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := tbl.Render(f, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", raw)
	return err
}

// renderClip writes a single clip; JSON is a flat object rather than one
// keyed by label.
func renderClip(w io.Writer, c render.Clip, format render.Format) error {
	if format == render.FormatJSON {
		return render.JSON(w, c.Metadata)
	}
	tbl := render.NewTable()
	tbl.Add(c.Key, c.Label, c.Metadata)
	return tbl.Render(w, format)
}

// writePerClip writes one file per row of tbl into dir, named after the row
// label. Labels that only differ by directory are flattened with underscores.
func writePerClip(tbl *render.Table, format render.Format, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	ext := string(format)
	if format == render.FormatTable {
		ext = "txt"
	}
	used := make(map[string]bool)
	var written []string
	for _, c := range tbl.Clips() {
		target := filepath.Join(dir, uniqueName(used, strings.ReplaceAll(c.Label, "/", "_"), ext))
		f, err := os.Create(target)
		if err != nil {
			return written, fmt.Errorf("create output: %w", err)
		}
		if err := renderClip(f, c, format); err != nil {
			_ = f.Close()
			return written, fmt.Errorf("write %s: %w", target, err)
		}
		if err := f.Close(); err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}

func uniqueName(used map[string]bool, base, ext string) string {
	name := base + "." + ext
	for n := 2; used[name]; n++ {
		name = fmt.Sprintf("%s-%d.%s", base, n, ext)
	}
	used[name] = true
	return name
}

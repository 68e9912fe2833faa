package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"arrimeta/internal/render"
	"arrimeta/internal/schema"
)

type fieldInfo struct {
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	Offset      *int     `json:"offset,omitempty"`
	Width       int      `json:"width,omitempty"`
	Unit        string   `json:"unit,omitempty"`
	Inputs      []string `json:"inputs,omitempty"`
	Description string   `json:"description,omitempty"`
}

func newFieldsCommand(ctx *commandContext) *cobra.Command {
	var setFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the header fields that can be extracted",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ctx.ensureSchema()
			if err != nil {
				return err
			}
			names, err := s.Resolve(schema.SetSelection(setFlag))
			if err != nil {
				return err
			}

			infos := make([]fieldInfo, 0, len(names))
			for _, name := range names {
				f, _ := s.Field(name)
				infos = append(infos, describeField(f))
			}

			if jsonOutput {
				return writeJSON(cmd, infos)
			}

			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				offset := "-"
				if info.Offset != nil {
					offset = fmt.Sprintf("0x%04X", *info.Offset)
				}
				width := ""
				if info.Width > 0 {
					width = strconv.Itoa(info.Width)
				}
				rows = append(rows, []string{info.Name, info.Kind, offset, width, info.Unit})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, render.Grid([]string{"Field", "Kind", "Offset", "Width", "Unit"}, rows, 2, 3))
			fmt.Fprintf(out, "%d field(s) in set %q\n", len(infos), setFlag)
			return nil
		},
	}

	cmd.Flags().StringVar(&setFlag, "set", schema.SetAll, "Field set to list (all, default, minimal)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func describeField(f schema.FieldSpec) fieldInfo {
	info := fieldInfo{
		Name:        f.Name,
		Kind:        f.Kind.String(),
		Unit:        f.Unit,
		Description: f.Description,
	}
	if f.Kind == schema.KindDerived {
		info.Inputs = append([]string(nil), f.Derive.Inputs...)
		return info
	}
	offset := f.Offset
	info.Offset = &offset
	info.Width = f.Width
	return info
}

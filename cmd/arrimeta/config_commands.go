package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"arrimeta/internal/config"
	"arrimeta/internal/render"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create, inspect and check the configuration file",
	}
	configCmd.AddCommand(newConfigInitCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	return configCmd
}

// configTarget resolves where config commands read or write: an explicit
// argument, then --config, then the default location.
func configTarget(ctx *commandContext, args []string) (string, error) {
	target := ""
	if len(args) > 0 {
		target = strings.TrimSpace(args[0])
	} else if ctx.configFlag != nil {
		target = strings.TrimSpace(*ctx.configFlag)
	}
	if target == "" {
		return config.DefaultConfigPath()
	}
	return config.ExpandPath(target)
}

func newConfigInitCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "init [path]",
		Short:       "Write an annotated sample configuration",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configTarget(ctx, args)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			if err := config.WriteSample(target, force); err != nil {
				if errors.Is(err, config.ErrConfigExists) {
					return fmt.Errorf("%w (pass --force to replace it)", err)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote sample configuration to %s\n", target)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate [path]",
		Short:       "Check a configuration file and the field sets it names",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configTarget(ctx, args)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			cfg, resolved, exists, err := config.Load(target)
			if err != nil {
				return fmt.Errorf("%s: %w", target, err)
			}
			s, err := cfg.Schema()
			if err != nil {
				return fmt.Errorf("%s: %w", resolved, err)
			}

			source := resolved
			if !exists {
				source += " (missing, using defaults)"
			}
			rows := [][]string{
				{"File", source},
				{"Fields", fmt.Sprintf("%d known, %d default, %d minimal", s.Len(), len(cfg.DefaultFields), len(cfg.MinimalFields))},
				{"Extensions", strings.Join(cfg.SupportedFiles, " ")},
				{"Workers", strconv.Itoa(cfg.Batch.Workers)},
				{"Catalog", cfg.Paths.CatalogPath},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, render.Grid([]string{"Setting", "Value"}, rows))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"uicatalog/internal/config"
	"uicatalog/pkg/fileops"

	"github.com/spf13/cobra"
)

func newConfigCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the uicatalog config file",
	}
	cmd.AddCommand(newConfigInitCmd(opts))
	return cmd
}

func newConfigInitCmd(opts *options) *cobra.Command {
	var (
		force      bool
		categories string
	)

	cmd := &cobra.Command{
		Use:   "init PROJECT_ROOT",
		Short: "Write a config file that serves PROJECT_ROOT",
		Long: `Writes a default config for the project checkout at PROJECT_ROOT to --config,
or to the standard location when --config is not given. An existing file is
only replaced with --force.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(fileops.ExpandPath(args[0]))
			if err != nil {
				return fmt.Errorf("cannot resolve project root: %w", err)
			}

			cfg := config.DefaultConfig()
			cfg.ProjectRoot = root
			cfg.Categories = categories
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			path, exists := opts.configPath, false
			if path == "" {
				path, exists = config.FindConfigFile()
			} else if _, err := os.Stat(path); err == nil {
				exists = true
			}
			if exists && !force {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
			}

			if opts.configPath == "" {
				err = cfg.Save()
			} else {
				err = cfg.SaveTo(path)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Config written to", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	cmd.Flags().StringVar(&categories, "categories", config.CategoriesTaxonomy,
		"how local components are categorized: "+config.CategoriesTaxonomy+" or "+config.CategoriesDirectory)
	return cmd
}

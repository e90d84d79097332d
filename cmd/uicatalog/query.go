package main

import (
	"context"

	"uicatalog/internal/catalog"

	"github.com/spf13/cobra"
)

func newListCmd(opts *options) *cobra.Command {
	var category, version string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List components grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.query(cmd, func(ctx context.Context, c *catalog.Catalog) (any, error) {
				return c.List(ctx, category, version)
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "all", "category to list")
	cmd.Flags().StringVar(&version, "version", "", "Git tag or commit hash")
	opts.addProjectFlag(cmd)
	return cmd
}

func newGetCmd(opts *options) *cobra.Command {
	var (
		req    catalog.GetRequest
		noDeps bool
	)

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Print a component blueprint: code, specs, dependencies and docs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Name = args[0]
			req.IncludeDependencies = !noDeps
			return opts.query(cmd, func(ctx context.Context, c *catalog.Catalog) (any, error) {
				return c.GetComponent(ctx, req)
			})
		},
	}
	cmd.Flags().StringVar(&req.Version, "version", "", "Git tag, commit hash, or 'latest'")
	cmd.Flags().StringVarP(&req.Category, "category", "c", "", "pick the component from this category")
	cmd.Flags().BoolVar(&noDeps, "no-deps", false, "skip dependency resolution")
	opts.addProjectFlag(cmd)
	return cmd
}

func newSpecsCmd(opts *options) *cobra.Command {
	var property, category string

	cmd := &cobra.Command{
		Use:   "specs NAME",
		Short: "Print the Tailwind specs of a component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.query(cmd, func(ctx context.Context, c *catalog.Catalog) (any, error) {
				return c.GetSpecs(ctx, args[0], property, category)
			})
		},
	}
	cmd.Flags().StringVar(&property, "property", "all", "colors, animations, borders, spacing, fonts or all")
	cmd.Flags().StringVarP(&category, "category", "c", "", "pick the component from this category")
	opts.addProjectFlag(cmd)
	return cmd
}

func newSearchCmd(opts *options) *cobra.Command {
	var (
		category     string
		hasAnimation bool
	)

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search components by name and content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := map[string]any{}
			if cmd.Flags().Changed("category") {
				filters["category"] = category
			}
			if cmd.Flags().Changed("has-animation") {
				filters["has_animation"] = hasAnimation
			}
			return opts.query(cmd, func(ctx context.Context, c *catalog.Catalog) (any, error) {
				return c.Search(ctx, args[0], filters)
			})
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only search this category")
	cmd.Flags().BoolVar(&hasAnimation, "has-animation", false, "only components with (or without) animation classes")
	opts.addProjectFlag(cmd)
	return cmd
}

func newChangelogCmd(opts *options) *cobra.Command {
	var versionRange, category string

	cmd := &cobra.Command{
		Use:   "changelog [COMPONENT]",
		Short: "Print the history of a component, or the project releases",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var component string
			if len(args) == 1 {
				component = args[0]
			}
			return opts.query(cmd, func(ctx context.Context, c *catalog.Catalog) (any, error) {
				return c.Changelog(ctx, component, versionRange, category)
			})
		},
	}
	cmd.Flags().StringVar(&versionRange, "range", "", "version range, e.g. v1.0.0..v1.2.0")
	cmd.Flags().StringVarP(&category, "category", "c", "", "pick the component from this category")
	opts.addProjectFlag(cmd)
	return cmd
}

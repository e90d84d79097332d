package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"uicatalog/internal/catalog"
	"uicatalog/internal/config"
	"uicatalog/internal/logging"
	"uicatalog/internal/source"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// options holds the flags shared by the subcommands.
type options struct {
	configPath string
	project    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "uicatalog",
		Short: "Serve a UI component catalog to AI agents over MCP",
		Long: `uicatalog exposes the components of a Next.js project (and optionally of
remote GitHub repositories) as MCP tools and resources: listing, full
blueprints with dependencies, Tailwind specs, search and changelogs.

Without a subcommand it runs the MCP server on stdio.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Variables already set in the environment win over .env
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"config file (default $XDG_CONFIG_HOME/uicatalog/config.yaml, or $"+config.ConfigPathEnv+")")

	root.AddCommand(
		newServeCmd(opts),
		newListCmd(opts),
		newGetCmd(opts),
		newSpecsCmd(opts),
		newSearchCmd(opts),
		newChangelogCmd(opts),
		newTokenCmd(),
		newConfigCmd(opts),
	)
	return root
}

// registry loads and validates the config and builds every catalog it
// describes. The credential store is only consulted when remote projects
// are configured.
func (o *options) registry(logger *logging.AppLogger) (*catalog.Registry, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var token string
	if len(cfg.Projects) > 0 {
		token = source.NewCredentialManager().ResolveToken(cfg.GitHub.Token)
		if token == "" {
			logger.Warn("No GitHub token configured, remote projects are rate limited")
		}
	}

	return catalog.Build(cfg, token, logger)
}

// addProjectFlag registers --project on a query command.
func (o *options) addProjectFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.project, "project", "p", "", "configured remote project (default: the local project)")
}

// query runs op against the selected catalog and prints the result document.
// Failures are printed as {"error": ...} documents too, and returned so the
// process exits non-zero.
func (o *options) query(cmd *cobra.Command, op func(context.Context, *catalog.Catalog) (any, error)) error {
	reg, err := o.registry(logging.GetDefault())
	if err != nil {
		return err
	}

	c, err := reg.Get(o.project)
	var v any
	if err == nil {
		v, err = op(cmd.Context(), c)
	}

	if werr := writeJSON(cmd.OutOrStdout(), catalog.Respond(v, err)); werr != nil {
		return werr
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

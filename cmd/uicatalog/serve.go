package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"uicatalog/internal/logging"
	"uicatalog/internal/mcp"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *options) error {
	logger := logging.GetDefault()

	reg, err := opts.registry(logger)
	if err != nil {
		return err
	}
	logger.Info("Catalogs loaded", "projects", reg.Projects())

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mcp.NewServer(reg, logger)
	defer srv.Stop()

	return srv.Start(ctx)
}

// Package main is the entry point for the uicatalog CLI.
//
// Running `uicatalog` (or `uicatalog serve`) starts the MCP server on stdio.
// The list, get, specs, search and changelog subcommands run the same catalog
// operations once and print the JSON result. `config init` writes a starter
// config file and `token` manages the GitHub token kept in the OS credential
// store.
package main

import (
	"os"

	"uicatalog/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"uicatalog/internal/source"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the GitHub token used for remote projects",
		Long: `The token is kept in the OS credential store. A token in the config file
or in $` + source.TokenEnv + ` takes precedence over the stored one.`,
	}
	cmd.AddCommand(newTokenSetCmd(), newTokenDeleteCmd(), newTokenStatusCmd())
	return cmd
}

func newTokenSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [TOKEN]",
		Short: "Store a GitHub token (read from stdin when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				fmt.Fprint(cmd.ErrOrStderr(), "GitHub token: ")
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read token: %w", err)
				}
				token = strings.TrimSpace(line)
			}

			if err := source.NewCredentialManager().StoreGitHubToken(token); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "GitHub token stored")
			return nil
		},
	}
}

func newTokenDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored GitHub token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := source.NewCredentialManager().DeleteGitHubToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "GitHub token removed")
			return nil
		},
	}
}

func newTokenStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report where a GitHub token would come from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status := source.NewCredentialManager().CredentialStoreStatus()
			status["env_token"] = strings.TrimSpace(os.Getenv(source.TokenEnv)) != ""
			return writeJSON(cmd.OutOrStdout(), status)
		},
	}
}

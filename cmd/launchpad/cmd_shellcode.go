package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/launchpad-sh/launchpad/pkg/config"
	"github.com/launchpad-sh/launchpad/pkg/shellgen"
)

func newShellcodeCmd() *cobra.Command {
	var fish bool

	cmd := &cobra.Command{
		Use:   "shellcode",
		Short: "Print the shell integration script",
		Long: `Print the shell integration script for the current shell.

Install it with:

  eval "$(launchpad shellcode)"        # bash, zsh
  launchpad shellcode --fish | source  # fish`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			params := shellgen.Params{
				ShowMessages:        cfg.ShowEnvMessages,
				ActivationMessage:   cfg.ShellActivationMessage,
				DeactivationMessage: cfg.ShellDeactivationMessage,
				Verbose:             cfg.Verbose,
			}
			if fish {
				fmt.Fprint(cmd.OutOrStdout(), shellgen.GenerateFish(params))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), shellgen.Generate(params))
			return nil
		},
	}

	cmd.Flags().BoolVar(&fish, "fish", false, "emit the fish dialect")
	return cmd
}

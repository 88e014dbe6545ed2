package main

import (
	"github.com/spf13/cobra"
)

// The PATH surgery for deactivation happens in the shell functions emitted
// by shellcode; they own the shell's variables and this process cannot
// mutate them. The command exists so `launchpad deactivate` is a valid
// invocation, and prints nothing so it stays safe inside an eval.
func newDeactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate",
		Short: "Deactivate the current environment (handled by the shell hooks)",
		Long: `Deactivate the current environment.

Deactivation is performed by the __launchpad_deactivate shell function
installed via:

  eval "$(launchpad shellcode)"

which removes the injected PATH segments and restores the original PATH.
This command prints nothing.`,
		Args: cobra.NoArgs,
		Run:  func(cmd *cobra.Command, args []string) {},
	}
}

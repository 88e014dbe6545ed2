package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/launchpad-sh/launchpad/pkg/config"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "launchpad",
		Short: "Per-project development environments from precompiled binaries",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/launchpad/launchpad.toml)")
	cobra.OnInitialize(func() { config.Init(cfgFile) })

	root.AddCommand(newVersionCmd())
	root.AddCommand(newActivateCmd())
	root.AddCommand(newDeactivateCmd())
	root.AddCommand(newShellcodeCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newLsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("launchpad 0.1.0-dev")
		},
	}
}

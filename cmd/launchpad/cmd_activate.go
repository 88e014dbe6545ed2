package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/launchpad-sh/launchpad/pkg/activate"
	"github.com/launchpad-sh/launchpad/pkg/config"
	"github.com/launchpad-sh/launchpad/pkg/logging"
)

func newActivateCmd() *cobra.Command {
	var shellOut bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "activate [dir]",
		Short: "Prepare the environment for a project directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if verbose {
				cfg.Verbose = true
			}
			log := logging.New(cfg.Verbose)
			defer log.Sync()

			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			res := activate.Activate(cmd.Context(), dir, activate.Options{
				Root:           envRootFrom(cfg),
				RegistryURL:    cfg.RegistryURL,
				InstallTimeout: cfg.InstallTimeout,
				InstallWorkers: cfg.InstallWorkers,
				Log:            log,
			})

			errOut := cmd.ErrOrStderr()
			for _, w := range res.Warnings {
				fmt.Fprintf(errOut, "warning: %s\n", w)
			}

			out := cmd.OutOrStdout()
			if shellOut {
				// Eval-able by the shell integration script. Never fail:
				// a broken activation must still leave the shell a prompt.
				if res.BinDir != "" {
					fmt.Fprintf(out, "__launchpad_env_bin=%s\n", shellQuote(res.BinDir))
				}
				if res.Ready {
					fmt.Fprintln(out, "__launchpad_ready=1")
				} else {
					fmt.Fprintln(out, "__launchpad_ready=0")
				}
				return nil
			}

			if res.BinDir == "" {
				fmt.Fprintln(out, "environment unavailable")
				return nil
			}
			switch {
			case res.FastPath:
				fmt.Fprintf(out, "%s ready (cached)\n", res.Fingerprint.ID())
			case res.Ready:
				fmt.Fprintf(out, "%s ready\n", res.Fingerprint.ID())
			default:
				fmt.Fprintf(out, "%s partially ready\n", res.Fingerprint.ID())
			}
			fmt.Fprintf(out, "bin: %s\n", res.BinDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&shellOut, "shell", false, "emit shell-evalable output for the integration script")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "verbose logging")
	return cmd
}

func envRootFrom(cfg config.Config) string {
	if cfg.Home == "" {
		return ""
	}
	return filepath.Join(cfg.Home, "envs")
}

// shellQuote single-quotes s for POSIX shells.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

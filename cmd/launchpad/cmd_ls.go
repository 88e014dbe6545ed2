package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/launchpad-sh/launchpad/pkg/config"
	"github.com/launchpad-sh/launchpad/pkg/logging"
	"github.com/launchpad-sh/launchpad/pkg/platform"
	"github.com/launchpad-sh/launchpad/pkg/registry"
)

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List packages with precompiled binaries for this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			log := logging.New(cfg.Verbose)
			defer log.Sync()

			host, err := platform.Detect()
			if err != nil {
				return err
			}
			arch, err := platform.DetectArch()
			if err != nil {
				return err
			}

			client, err := registry.NewClient(cfg.RegistryURL, registry.ClientOptions{Logger: log})
			if err != nil {
				return err
			}

			names, err := client.ListAvailable(cmd.Context(), host, arch)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintf(out, "no packages published for %s/%s\n", host, arch)
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/launchpad-sh/launchpad/pkg/activate"
	"github.com/launchpad-sh/launchpad/pkg/config"
	"github.com/launchpad-sh/launchpad/pkg/reconcile"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [dir]",
		Short: "Show what activation would do, without installing anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			insp, err := activate.Inspect(dir, activate.Options{Root: envRootFrom(cfg)})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "project: %s\n", insp.Project)
			fmt.Fprintf(out, "id:      %s\n", insp.Fingerprint.ID())
			fmt.Fprintf(out, "env:     %s\n", insp.EnvDir)
			for _, w := range insp.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}

			if len(insp.Decisions) == 0 {
				fmt.Fprintln(out, "no dependencies declared")
				return nil
			}

			fmt.Fprintln(out)
			cached := true
			for _, d := range insp.Decisions {
				name := d.Dep.Name
				if d.Dep.Variant != "" {
					name += " (" + d.Dep.Variant + ")"
				}
				switch d.Action {
				case reconcile.FastPath:
					fmt.Fprintf(out, "  ok %s %s -> %s\n", name, d.Dep.Constraint, d.Installed.Version)
				case reconcile.NeedsInstall:
					cached = false
					fmt.Fprintf(out, "  !  %s %s (not installed)\n", name, d.Dep.Constraint)
				default:
					cached = false
					fmt.Fprintf(out, "  !  %s %s (%s, have %s)\n", name, d.Dep.Constraint, d.Action, d.Installed.Version)
				}
			}

			fmt.Fprintln(out)
			if cached {
				fmt.Fprintln(out, "environment is up to date")
			} else {
				fmt.Fprintln(out, "activation would install or replace the packages marked !")
			}
			return nil
		},
	}
}

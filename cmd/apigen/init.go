// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/apigen/apigen/internal/config"

	"github.com/spf13/cobra"
)

func newInitCommand(root *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a starter apigen.config.cue",
		Long: `Create a starter apigen.config.cue in dir (default: the current directory).

An existing file is left untouched.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			path, created, err := config.CreateDefaultConfig(dir)
			if err != nil {
				return fail(cmd, root.verbose, actionable("create configuration", dir, err))
			}

			w := cmd.OutOrStdout()
			if !created {
				fmt.Fprintf(w, "%s %s already exists\n", warningIcon, CmdStyle.Render(path))
				return nil
			}
			fmt.Fprintf(w, "%s Created %s\n", successIcon, CmdStyle.Render(path))
			fmt.Fprintf(w, "\nNext: edit the input and output paths, then run %s\n", CmdStyle.Render("apigen generate"))
			return nil
		},
	}
}

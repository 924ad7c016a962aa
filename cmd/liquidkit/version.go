package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/liquidkit/version"
)

func (c *cli) versionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				fmt.Fprintln(c.out, version.Short())
				return
			}
			fmt.Fprintln(c.out, version.Get().String())
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only version-commit")
	return cmd
}

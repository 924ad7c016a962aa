package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/liquidkit/picklist"
)

func (c *cli) picklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "picklist",
		Short: "Inspect pick-list files",
	}
	cmd.AddCommand(c.picklistCheckCmd())
	return cmd
}

func (c *cli) picklistCheckCmd() *cobra.Command {
	var (
		opts    picklist.Options
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "check <file>...",
		Short: "Parse pick-lists and report their rows",
		Long: `Parse each pick-list the way a run would and report the row count and
total volume. The first bad row is reported with its row number.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, path := range args {
				pl, err := picklist.ParseFile(path, opts)
				if err != nil {
					fmt.Fprintf(c.out, "%s: %v\n", path, err)
					failed++
					continue
				}
				fmt.Fprintf(c.out, "%s: %d rows, %.1f µL\n", path, pl.Len(), pl.TotalVolume())
				if verbose {
					for _, in := range pl.Instructions() {
						fmt.Fprintf(c.out, "  %s\n", in)
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d pick-lists failed", failed, len(args))
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.Float64Var(&opts.FixedVolume, "fixed-volume", 0, "volume for files without a Volume column (µL)")
	fl.BoolVar(&opts.RequireSource, "require-source", false, "require a Source Well column")
	fl.BoolVarP(&verbose, "verbose", "v", false, "print every row")
	return cmd
}

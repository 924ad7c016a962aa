package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kbukum/liquidkit/labware"
)

func (c *cli) labwareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labware",
		Short: "List known labware definitions",
		Long:  "List the built-in labware definitions plus those loaded from the config's labware files.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			reg := labware.NewRegistry()
			for _, path := range cfg.Labware {
				if _, err := reg.LoadFile(path); err != nil {
					return err
				}
			}
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LOAD NAME\tCATEGORY\tWELLS\tMAX µL")
			for _, n := range reg.Names() {
				def, err := reg.Lookup(n)
				if err != nil {
					return err
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%g\n", def.LoadName, def.Category, def.WellCount(), def.MaxVolume)
			}
			return tw.Flush()
		},
	}
}

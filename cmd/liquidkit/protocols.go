package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (c *cli) protocolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protocols",
		Short: "List the protocols this binary can run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := registry()
			tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			for _, n := range r.Names() {
				fmt.Fprintf(tw, "%s\t%s\n", n, r.Description(n))
			}
			return tw.Flush()
		},
	}
	cmd.AddCommand(c.protocolShowCmd())
	return cmd
}

// protocolShowCmd prints the effective parameters of a protocol as YAML,
// ready to paste under parameters.<name> in the config file.
func (c *cli) protocolShowCmd() *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "show <protocol>",
		Short: "Print a protocol's parameters and deck layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			overrides, err := parseOverrides(params)
			if err != nil {
				return err
			}
			p, err := registry().New(args[0], cfg.decoder(args[0], overrides))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "# %s\n", p.Name())
			for _, d := range layoutDetails(p) {
				fmt.Fprintf(c.out, "#   %s\n", d)
			}
			enc := yaml.NewEncoder(c.out)
			enc.SetIndent(2)
			if err := enc.Encode(p.Parameters()); err != nil {
				return err
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringArrayVar(&params, "set", nil, "override a protocol parameter (key=value, repeatable)")
	return cmd
}

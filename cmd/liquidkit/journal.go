package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/liquidkit/journal"
)

func (c *cli) journalCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Read the run journal",
	}
	cmd.PersistentFlags().StringVar(&path, "journal", "", "journal database file")
	cmd.AddCommand(c.journalListCmd(&path), c.journalExportCmd(&path))
	return cmd
}

// withJournal opens the configured journal for the duration of fn.
func (c *cli) withJournal(ctx context.Context, path string, fn func(*journal.Journal) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if path != "" {
		cfg.Journal.Path = path
	}
	jc := journal.NewComponent(cfg.Journal.Config, c.newLogger(cfg))
	if err := jc.Start(ctx); err != nil {
		return err
	}
	defer jc.Stop(ctx)
	return fn(jc.Journal())
}

func (c *cli) journalListCmd(path *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journaled runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withJournal(cmd.Context(), *path, func(j *journal.Journal) error {
				runs, err := j.Runs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "RUN\tPROTOCOL\tSTATUS\tTRANSFERS\tSTARTED\tDURATION")
				for _, r := range runs {
					status := string(r.Status)
					if r.ErrorCode != "" {
						status += " (" + r.ErrorCode + ")"
					}
					if r.Simulated {
						status += " sim"
					}
					dur := "-"
					if r.FinishedAt != nil {
						dur = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
						r.ID, r.Protocol, status, r.Transfers, r.StartedAt.Local().Format(time.DateTime), dur)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "show at most this many runs (0 for all)")
	return cmd
}

func (c *cli) journalExportCmd(path *string) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <run-id|latest>",
		Short: "Export a run's transfers as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withJournal(ctx, *path, func(j *journal.Journal) error {
				id := args[0]
				if id == "latest" {
					run, err := j.Latest(ctx)
					if err != nil {
						return err
					}
					id = run.ID
				}
				if output == "" || output == "-" {
					return j.ExportCSV(ctx, id, c.out)
				}
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := j.ExportCSV(ctx, id, f); err != nil {
					f.Close()
					return err
				}
				return f.Close()
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

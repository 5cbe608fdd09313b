package main

import (
	"fmt"

	"github.com/emberhaus/internal/transfer"
	"github.com/spf13/cobra"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Fill empty collections with demo content",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, _, log, err := opts.openDatabase()
			if err != nil {
				return err
			}
			defer log.Sync()

			counts, err := transfer.SeedDemo(gdb)
			if err != nil {
				return err
			}
			if counts.Total() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "every collection already has content, nothing seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d rows (journal %d, events %d, rituals %d, sections %d, pages %d)\n",
				counts.Total(), counts.Journal, counts.Events, counts.Rituals, counts.Pages, counts.StandalonePages)
			return nil
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emberhaus/internal/transfer"
	"github.com/spf13/cobra"
)

func newImportLegacyCmd(opts *rootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "import-legacy",
		Short: "Import the legacy journal, events, rituals and pages JSON files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if dir == "" {
				return errors.New("--dir is required")
			}
			gdb, _, log, err := opts.openDatabase()
			if err != nil {
				return err
			}
			defer log.Sync()

			reports, err := transfer.ImportLegacy(gdb, dir, log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range reports {
				fmt.Fprintf(out, "%-14s imported %d, skipped %d, failed %d\n", r.File, r.Imported, r.Skipped, len(r.Failed))
				for _, msg := range r.Failed {
					fmt.Fprintf(out, "  %s\n", msg)
				}
				failed += len(r.Failed)
			}
			if len(reports) == 0 {
				fmt.Fprintf(out, "no legacy files found in %s (looked for %s)\n", dir, strings.Join([]string{
					transfer.LegacyJournalFile, transfer.LegacyEventsFile, transfer.LegacyRitualsFile, transfer.LegacyPagesFile,
				}, ", "))
			}
			if failed > 0 {
				return fmt.Errorf("%d legacy rows could not be imported", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory holding the legacy JSON files")
	return cmd
}

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/emberhaus/internal/transfer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBackupCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a JSON snapshot of every collection, drafts included",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, _, log, err := opts.openDatabase()
			if err != nil {
				return err
			}
			defer log.Sync()

			snap, err := transfer.Export(gdb, time.Now())
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			if err := transfer.WriteSnapshot(w, snap); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}
			log.Info("snapshot written",
				zap.String("out", out),
				zap.Int("journal", len(snap.Journal)),
				zap.Int("events", len(snap.Events)),
				zap.Int("rituals", len(snap.Rituals)),
				zap.Int("pages", len(snap.Pages)),
				zap.Int("standalone_pages", len(snap.StandalonePages)),
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "snapshot file to write (stdout when empty)")
	return cmd
}

func newRestoreCmd(opts *rootOptions) *cobra.Command {
	var (
		in      string
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Load a snapshot, upserting rows by id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in == "" {
				return errors.New("--in is required")
			}
			f, err := os.Open(in)
			if err != nil {
				return fmt.Errorf("opening %s: %w", in, err)
			}
			defer f.Close()

			snap, err := transfer.ReadSnapshot(f)
			if err != nil {
				return err
			}

			gdb, _, log, err := opts.openDatabase()
			if err != nil {
				return err
			}
			defer log.Sync()

			counts, err := transfer.Restore(gdb, snap, replace)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %d rows (journal %d, events %d, rituals %d, sections %d, pages %d)\n",
				counts.Total(), counts.Journal, counts.Events, counts.Rituals, counts.Pages, counts.StandalonePages)
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "snapshot file to read")
	cmd.Flags().BoolVar(&replace, "replace", false, "empty every table before loading")
	return cmd
}

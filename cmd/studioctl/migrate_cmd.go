package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emberhaus/internal/db"
	"github.com/emberhaus/internal/transfer"
	"github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateDBCmd(opts *rootOptions) *cobra.Command {
	var (
		toDriver string
		toDSN    string
	)
	cmd := &cobra.Command{
		Use:   "migrate-db",
		Short: "Copy every table from the configured database into another one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(toDSN) == "" {
				return errors.New("--to-dsn is required")
			}
			dsn, err := targetDSN(toDriver, toDSN)
			if err != nil {
				return err
			}

			src, cfg, log, err := opts.openDatabase()
			if err != nil {
				return err
			}
			defer log.Sync()

			dst, err := db.Open(toDriver, dsn, nil)
			if err != nil {
				return fmt.Errorf("opening target database: %w", err)
			}

			counts, err := transfer.CopyAll(src, dst)
			if err != nil {
				return err
			}
			log.Info("database copied",
				zap.String("from", cfg.DBDriver),
				zap.String("to", toDriver),
				zap.Int("rows", counts.Total()),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "copied %d rows into %s\n", counts.Total(), toDriver)
			return nil
		},
	}
	cmd.Flags().StringVar(&toDriver, "to-driver", "mysql", "target driver (mysql or sqlite)")
	cmd.Flags().StringVar(&toDSN, "to-dsn", "", "target DSN (go-sql-driver format for mysql, file path for sqlite)")
	return cmd
}

// targetDSN validates a MySQL DSN and turns on time parsing, which the timestamp
// columns need.
func targetDSN(driver, dsn string) (string, error) {
	switch strings.ToLower(driver) {
	case "mysql":
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		if cfg.Params == nil {
			cfg.Params = map[string]string{}
		}
		if _, ok := cfg.Params["charset"]; !ok {
			cfg.Params["charset"] = "utf8mb4"
		}
		return cfg.FormatDSN(), nil
	case "sqlite":
		return dsn, nil
	default:
		return "", fmt.Errorf("unsupported target driver %q", driver)
	}
}

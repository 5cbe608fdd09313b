// Command studioctl runs maintenance tasks against the site database: backups,
// restores, legacy imports, database moves and password hashing.
package main

import (
	"fmt"
	"os"

	"github.com/emberhaus/internal/config"
	"github.com/emberhaus/internal/db"
	"github.com/emberhaus/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type rootOptions struct {
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "studioctl:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "studioctl",
		Short:         "Maintenance tasks for the Emberhaus content database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultConfigPath, "path to the YAML config file")

	root.AddCommand(
		newBackupCmd(opts),
		newRestoreCmd(opts),
		newImportLegacyCmd(opts),
		newMigrateDBCmd(opts),
		newSeedCmd(opts),
		newHashPasswordCmd(),
	)
	return root
}

// openDatabase loads the configuration and opens the configured database, migrating
// the schema first.
func (o *rootOptions) openDatabase() (*gorm.DB, config.AppConfig, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, cfg, nil, err
	}
	log, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Development: true})
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("building logger: %w", err)
	}

	dsn := cfg.DatabasePath
	if cfg.DBDriver == "mysql" {
		dsn = cfg.DatabaseDSN
	}
	gdb, err := db.Open(cfg.DBDriver, dsn, nil)
	if err != nil {
		return nil, cfg, log, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return nil, cfg, log, fmt.Errorf("migrating database: %w", err)
	}
	return gdb, cfg, log, nil
}

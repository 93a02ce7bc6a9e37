package main

import (
	"github.com/justsurfingit/job-trends-api/internal/config"
	"github.com/justsurfingit/job-trends-api/internal/database"
	"github.com/justsurfingit/job-trends-api/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cmd.Context(), database.OptionsFromConfig(cfg), log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db); err != nil {
		return err
	}
	log.Info("schema migrated", zap.String("driver", cfg.DBDriver))
	return nil
}

package main

import (
	"absence-instances/internal/db"
	"absence-instances/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the attendance and reporting tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, *configFile)
			if err != nil {
				return err
			}
			defer a.close()

			conn, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer conn.Close()

			applied, err := db.RunMigrations(cmd.Context(), conn, a.cfg.DBDriver, a.log)
			if err != nil {
				return err
			}
			a.log.Info("Migrations complete", zap.Int(logger.FieldCount, applied))
			return nil
		},
	}
}

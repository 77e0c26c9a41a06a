package main

import (
	"fmt"

	"absence-instances/internal/db"
	"absence-instances/internal/logger"
	"absence-instances/internal/middleware"
	"absence-instances/internal/models"
	"absence-instances/internal/seed"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSeedCmd(configFile *string) *cobra.Command {
	var confirm bool
	var students, applications, periodsPerDay int
	var randomSeed int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the attendance table with demo data (development only)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, *configFile)
			if err != nil {
				return err
			}
			defer a.close()

			if !a.cfg.IsDevelopment() {
				return errors.WithHint(errors.New("refusing to seed outside development"), "set APP_ENV=development")
			}
			if !confirm {
				return errors.WithHint(errors.New("seeding writes demo rows"), "re-run with --confirm")
			}

			period, err := a.cfg.Period()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			conn, err := a.connect(ctx)
			if err != nil {
				return err
			}
			defer conn.Close()

			if _, err := db.RunMigrations(ctx, conn, a.cfg.DBDriver, a.log); err != nil {
				return err
			}

			opts := seed.DefaultOptions(period)
			opts.Students = students
			opts.Applications = applications
			opts.PeriodsPerDay = periodsPerDay
			opts.Seed = randomSeed

			records, summary := seed.Generate(opts)
			repo := models.NewRepository(conn, a.cfg.DBDriver)
			if err := repo.InsertAttendance(ctx, a.cfg.SourceTable, records); err != nil {
				return err
			}

			fields := []zap.Field{
				zap.String(logger.FieldTable, a.cfg.SourceTable),
				zap.Int(logger.FieldCount, summary.Records),
			}
			for pattern, n := range summary.ByPattern {
				fields = append(fields, zap.Int("students_"+string(pattern), n))
			}
			a.log.Info("Seeded attendance", fields...)
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "confirm", false, "confirm writing demo data")
	cmd.Flags().IntVar(&students, "students", 25, "number of students")
	cmd.Flags().IntVar(&applications, "applications", 1, "applications per student")
	cmd.Flags().IntVar(&periodsPerDay, "periods-per-day", 1, "roll calls per school day")
	cmd.Flags().Int64Var(&randomSeed, "seed", 1, "random seed")
	cmd.Flags().String("start", "", "first seeded date (PERIOD_START_DATE)")
	cmd.Flags().String("end", "", "last seeded date (PERIOD_END_DATE)")
	cmd.Flags().String("source-table", "", "attendance table to fill (SOURCE_TABLE)")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for REPORT_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := middleware.HashPassword(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

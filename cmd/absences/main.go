package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"absence-instances/internal/config"
	"absence-instances/internal/db"
	"absence-instances/internal/logger"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "absences",
		Short:         "Derive absence instances from roll call attendance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().String("database-url", "", "database connection string (DATABASE_URL)")
	root.PersistentFlags().String("db-driver", "", "pgx or sqlite (DB_DRIVER)")
	root.PersistentFlags().Bool("debug", false, "enable debug logging (DEBUG)")
	root.PersistentFlags().Bool("log-json", false, "log as JSON (LOG_JSON)")

	root.AddCommand(newComputeCmd(&configFile))
	root.AddCommand(newServeCmd(&configFile))
	root.AddCommand(newMigrateCmd(&configFile))
	root.AddCommand(newSeedCmd(&configFile))
	root.AddCommand(newHashPasswordCmd())
	return root
}

// flagKeys maps command line flags onto config keys.
var flagKeys = map[string]string{
	"database-url": "database_url",
	"db-driver":    "db_driver",
	"debug":        "debug",
	"log-json":     "log_json",
	"start":        "period_start_date",
	"end":          "period_end_date",
	"source-table": "source_table",
	"output-table": "output_table",
	"workers":      "workers",
	"strict":       "strict",
	"port":         "port",
}

type app struct {
	cfg *config.Config
	log *zap.Logger
}

// loadApp resolves configuration as defaults < config file < environment < flags.
func loadApp(cmd *cobra.Command, configFile string) (*app, error) {
	v, err := config.NewViper(configFile)
	if err != nil {
		return nil, err
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		bindErr = v.BindPFlag(key, f)
	})
	if bindErr != nil {
		return nil, errors.Wrap(bindErr, "failed to bind flags")
	}

	cfg, err := config.LoadWithViper(v)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Debug, cfg.LogJSON)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log}, nil
}

func (a *app) connect(ctx context.Context) (*sql.DB, error) {
	return db.Connect(ctx, a.cfg.DBDriver, a.cfg.DatabaseURL, a.log)
}

func (a *app) close() {
	_ = a.log.Sync()
}

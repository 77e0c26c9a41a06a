package main

import (
	"context"
	"net/http"
	"time"

	"absence-instances/internal/absence"
	"absence-instances/internal/handlers"
	"absence-instances/internal/models"
	"absence-instances/internal/sink"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve absence instances over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, *configFile)
			if err != nil {
				return err
			}
			defer a.close()

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

			repo := models.NewRepository(conn, a.cfg.DBDriver)

			var sinks []absence.Sink
			var cache handlers.InstanceCache
			if a.cfg.RedisURL != "" {
				client, err := sink.NewRedisClient(ctx, a.cfg.RedisURL)
				if err != nil {
					a.log.Warn("Failed to connect to Redis, caching disabled", zap.Error(err))
				} else {
					defer client.Close()
					redisSink := sink.NewRedisSink(client, a.cfg.RedisKeyPrefix, a.cfg.RedisTTL)
					sinks = append(sinks, sink.NewBestEffortSink(redisSink, a.log))
					cache = redisSink
				}
			}

			svc := absence.NewService(
				absence.TableSource{Reader: repo, Table: a.cfg.SourceTable},
				a.log,
				absence.Options{Workers: a.cfg.WorkerCount(), Strict: a.cfg.Strict},
				sinks...,
			)

			if a.cfg.ReportUser == "" {
				a.log.Warn("REPORT_USER not set, /api/absences is unauthenticated")
			}

			h := handlers.NewAPIHandler(svc, cache, conn, period, a.log)
			srv := &http.Server{
				Addr:              ":" + a.cfg.Port,
				Handler:           handlers.NewMux(h, a.cfg.ReportUser, a.cfg.ReportPasswordHash, a.log),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("Server starting", zap.String("addr", srv.Addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return errors.Wrap(err, "server failed")
				}
				return nil
			case <-ctx.Done():
			}

			a.log.Info("Shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			return errors.Wrap(srv.Shutdown(shutdownCtx), "failed to shut down server")
		},
	}

	cmd.Flags().String("port", "", "listen port (PORT)")
	cmd.Flags().String("start", "", "default period start, YYYY-MM-DD (PERIOD_START_DATE)")
	cmd.Flags().String("end", "", "default period end, YYYY-MM-DD (PERIOD_END_DATE)")
	cmd.Flags().String("source-table", "", "attendance table to read (SOURCE_TABLE)")
	cmd.Flags().Int("workers", 0, "partitions processed concurrently (WORKERS)")
	cmd.Flags().Bool("strict", false, "answer 422 when any partition is malformed (STRICT)")
	return cmd
}

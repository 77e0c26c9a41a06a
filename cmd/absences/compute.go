package main

import (
	"io"
	"os"

	"absence-instances/internal/absence"
	"absence-instances/internal/logger"
	"absence-instances/internal/models"
	"absence-instances/internal/sink"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newComputeCmd(configFile *string) *cobra.Command {
	var format, out string
	var save, cache bool

	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute absence instances for a period and write them out",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(cmd, *configFile)
			if err != nil {
				return err
			}
			defer a.close()

			outFormat, err := sink.ParseFormat(format)
			if err != nil {
				return err
			}
			period, err := a.cfg.Period()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			conn, err := a.connect(ctx)
			if err != nil {
				return errors.Mark(err, models.ErrSourceUnavailable)
			}
			defer conn.Close()

			repo := models.NewRepository(conn, a.cfg.DBDriver)

			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return errors.Wrapf(err, "failed to create %s", out)
				}
				defer f.Close()
				w = f
			}

			sinks := []absence.Sink{sink.NewWriterSink(w, outFormat)}
			if save {
				sinks = append(sinks, sink.NewTableSink(repo, a.cfg.OutputTable))
			}
			if cache {
				if a.cfg.RedisURL == "" {
					return errors.WithHint(errors.New("--cache needs a redis url"), "set REDIS_URL")
				}
				client, err := sink.NewRedisClient(ctx, a.cfg.RedisURL)
				if err != nil {
					return err
				}
				defer client.Close()
				sinks = append(sinks, sink.NewRedisSink(client, a.cfg.RedisKeyPrefix, a.cfg.RedisTTL))
			}

			svc := absence.NewService(
				absence.TableSource{Reader: repo, Table: a.cfg.SourceTable},
				a.log,
				absence.Options{Workers: a.cfg.WorkerCount(), Strict: a.cfg.Strict},
				sinks...,
			)

			report, err := svc.Run(ctx, period)
			if err != nil {
				return err
			}
			if len(report.Rejected) > 0 {
				a.log.Warn("Some partitions were excluded from the output",
					zap.Int(logger.FieldCount, len(report.Rejected)))
			}
			return nil
		},
	}

	cmd.Flags().String("start", "", "first date of the period, YYYY-MM-DD (PERIOD_START_DATE)")
	cmd.Flags().String("end", "", "last date of the period, YYYY-MM-DD (PERIOD_END_DATE)")
	cmd.Flags().String("source-table", "", "attendance table to read (SOURCE_TABLE)")
	cmd.Flags().String("output-table", "", "reporting table written by --save (OUTPUT_TABLE)")
	cmd.Flags().Int("workers", 0, "partitions processed concurrently, 0 for one per CPU (WORKERS)")
	cmd.Flags().Bool("strict", false, "fail the run when any partition is malformed (STRICT)")
	cmd.Flags().StringVar(&format, "format", string(sink.FormatCSV), "output format: csv|json|table")
	cmd.Flags().StringVar(&out, "out", "", "write output to a file instead of stdout")
	cmd.Flags().BoolVar(&save, "save", false, "replace the period's rows in the reporting table")
	cmd.Flags().BoolVar(&cache, "cache", false, "publish the result to redis")
	return cmd
}

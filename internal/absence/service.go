package absence

import (
	"context"
	"time"

	"absence-instances/internal/logger"
	"absence-instances/internal/models"
	"absence-instances/internal/util"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Source supplies the attendance snapshot for a period.
type Source interface {
	SelectAttendance(ctx context.Context, period models.Period) ([]models.AttendanceRecord, error)
}

// Sink receives the instances of a successful run.
type Sink interface {
	Name() string
	Write(ctx context.Context, run models.Run, instances []models.AbsenceInstance) error
}

type attendanceReader interface {
	SelectAttendance(ctx context.Context, table string, period models.Period) ([]models.AttendanceRecord, error)
}

// TableSource reads one attendance table through a repository.
type TableSource struct {
	Reader attendanceReader
	Table  string
}

func (s TableSource) SelectAttendance(ctx context.Context, period models.Period) ([]models.AttendanceRecord, error) {
	return s.Reader.SelectAttendance(ctx, s.Table, period)
}

// Report is what a run hands back to its caller.
type Report struct {
	Run models.Run
	*Result
}

type Service struct {
	source Source
	sinks  []Sink
	opts   Options
	log    *zap.Logger
	now    func() time.Time
}

func NewService(source Source, log *zap.Logger, opts Options, sinks ...Sink) *Service {
	return &Service{
		source: source,
		sinks:  sinks,
		opts:   opts,
		log:    log,
		now:    time.Now,
	}
}

// Run reads the snapshot, computes instances and hands them to every sink.
// Source failures are fatal. Sinks only see a run that computed cleanly.
func (s *Service) Run(ctx context.Context, period models.Period) (*Report, error) {
	run := models.Run{ID: uuid.New(), Period: period, ComputedAt: s.now().UTC()}
	log := s.log.With(
		zap.String(logger.FieldRunID, run.ID.String()),
		zap.String(logger.FieldPeriodStart, util.FormatDate(period.Start)),
		zap.String(logger.FieldPeriodEnd, util.FormatDate(period.End)),
	)
	started := time.Now()

	if err := util.ValidatePeriod(period.Start, period.End); err != nil {
		return nil, err
	}

	records, err := s.source.SelectAttendance(ctx, period)
	if err != nil {
		log.Error("Failed to read attendance", zap.Error(err))
		return nil, errors.Mark(err, models.ErrSourceUnavailable)
	}
	records = Select(records, period)
	if len(records) == 0 {
		log.Info("No attendance in period", zap.Int(logger.FieldCount, 0))
	}

	result, err := Compute(ctx, records, s.opts)
	if result != nil {
		for _, r := range result.Rejected {
			log.Warn("Rejected attendance partition",
				zap.String(logger.FieldStudentID, r.Key.StudentID),
				zap.String(logger.FieldApplicationID, r.Key.ApplicationID),
				zap.String("reason", r.Reason),
				zap.String("date", util.FormatDate(r.Date)),
				zap.String("period_id", r.PeriodID),
			)
		}
	}
	if err != nil {
		return nil, err
	}

	for _, r := range result.Rejected {
		run.Rejected = append(run.Rejected, r.Key)
	}
	report := &Report{Run: run, Result: result}
	for _, sink := range s.sinks {
		sinkStarted := time.Now()
		if err := sink.Write(ctx, run, result.Instances); err != nil {
			return report, errors.Wrapf(err, "sink %s", sink.Name())
		}
		log.Debug("Sink written",
			zap.String(logger.FieldSink, sink.Name()),
			zap.Int(logger.FieldCount, len(result.Instances)),
			logger.Duration(time.Since(sinkStarted)),
		)
	}

	log.Info("Absence instances computed",
		zap.Int("partitions", result.Partitions),
		zap.Int("records", result.Records),
		zap.Int("absences", result.Absences),
		zap.Int("instances", len(result.Instances)),
		zap.Int("rejected", len(result.Rejected)),
		logger.Duration(time.Since(started)),
	)
	return report, nil
}

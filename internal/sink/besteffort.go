package sink

import (
	"context"

	"absence-instances/internal/logger"
	"absence-instances/internal/models"

	"go.uber.org/zap"
)

type namedWriter interface {
	Name() string
	Write(ctx context.Context, run models.Run, instances []models.AbsenceInstance) error
}

// BestEffortSink logs write failures instead of failing the run.
// serve wraps the Redis cache with it so a cache outage does not stop reports.
type BestEffortSink struct {
	next namedWriter
	log  *zap.Logger
}

func NewBestEffortSink(next namedWriter, log *zap.Logger) *BestEffortSink {
	return &BestEffortSink{next: next, log: log}
}

func (s *BestEffortSink) Name() string {
	return s.next.Name()
}

func (s *BestEffortSink) Write(ctx context.Context, run models.Run, instances []models.AbsenceInstance) error {
	if err := s.next.Write(ctx, run, instances); err != nil {
		s.log.Warn("Sink write failed, continuing without it",
			zap.String(logger.FieldSink, s.next.Name()),
			zap.String(logger.FieldRunID, run.ID.String()),
			zap.Error(err),
		)
	}
	return nil
}

package sink

import (
	"context"

	"absence-instances/internal/models"
)

type instanceSaver interface {
	SaveInstances(ctx context.Context, table string, run models.Run, instances []models.AbsenceInstance) error
}

// TableSink persists a run into the reporting table, replacing the period.
type TableSink struct {
	repo  instanceSaver
	table string
}

func NewTableSink(repo instanceSaver, table string) *TableSink {
	return &TableSink{repo: repo, table: table}
}

func (s *TableSink) Name() string {
	return "table:" + s.table
}

func (s *TableSink) Write(ctx context.Context, run models.Run, instances []models.AbsenceInstance) error {
	return s.repo.SaveInstances(ctx, s.table, run, instances)
}

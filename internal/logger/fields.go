package logger

import (
	"time"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging.
const (
	FieldRunID         = "run_id"
	FieldStudentID     = "student_id"
	FieldApplicationID = "application_id"
	FieldTable         = "table"
	FieldCount         = "count"
	FieldDurationMS    = "duration_ms"
	FieldPeriodStart   = "period_start"
	FieldPeriodEnd     = "period_end"
	FieldSink          = "sink"
)

// Duration reports d in milliseconds under FieldDurationMS.
func Duration(d time.Duration) zap.Field {
	return zap.Int64(FieldDurationMS, d.Milliseconds())
}

package sink

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"absence-instances/internal/models"
	"absence-instances/internal/util"

	"github.com/cockroachdb/errors"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatTable:
		return f, nil
	default:
		return "", errors.Newf("unknown output format %q (want csv, json or table)", s)
	}
}

// WriterSink renders the report to an io.Writer.
type WriterSink struct {
	w      io.Writer
	format Format
}

func NewWriterSink(w io.Writer, format Format) *WriterSink {
	return &WriterSink{w: w, format: format}
}

func (s *WriterSink) Name() string {
	return "writer:" + string(s.format)
}

func (s *WriterSink) Write(_ context.Context, run models.Run, instances []models.AbsenceInstance) error {
	rows := models.ReportRows(instances)
	switch s.format {
	case FormatCSV:
		return writeCSV(s.w, rows)
	case FormatJSON:
		return writeJSON(s.w, run, rows)
	case FormatTable:
		return writeTable(s.w, rows)
	default:
		return errors.Newf("unknown output format %q", s.format)
	}
}

func writeCSV(w io.Writer, rows []models.ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.ReportColumns); err != nil {
		return errors.Wrap(err, "failed to write csv header")
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.StudentID, r.ApplicationID, r.StartDate, r.EndDate, strconv.Itoa(r.MissedDays),
		}); err != nil {
			return errors.Wrap(err, "failed to write csv row")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush csv")
}

// Document is the JSON report envelope.
type Document struct {
	RunID           string             `json:"run_id"`
	PeriodStartDate string             `json:"period_start_date"`
	PeriodEndDate   string             `json:"period_end_date"`
	ComputedAt      string             `json:"computed_at"`
	Instances       []models.ReportRow `json:"instances"`
}

func NewDocument(run models.Run, rows []models.ReportRow) Document {
	return Document{
		RunID:           run.ID.String(),
		PeriodStartDate: util.FormatDate(run.Period.Start),
		PeriodEndDate:   util.FormatDate(run.Period.End),
		ComputedAt:      run.ComputedAt.UTC().Format(time.RFC3339),
		Instances:       rows,
	}
}

func writeJSON(w io.Writer, run models.Run, rows []models.ReportRow) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(NewDocument(run, rows)), "failed to encode json report")
}

func writeTable(w io.Writer, rows []models.ReportRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STUDENT\tAPPLICATION\tSTART\tEND\tMISSED")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", r.StudentID, r.ApplicationID, r.StartDate, r.EndDate, r.MissedDays)
	}
	return errors.Wrap(tw.Flush(), "failed to flush table")
}

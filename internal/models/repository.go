package models

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"absence-instances/internal/db"
	"absence-instances/internal/util"

	"github.com/cockroachdb/errors"
)

// tableNamePattern accepts bare or schema/catalog qualified identifiers.
// Table names are interpolated into SQL, so nothing else is allowed through.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*){0,2}$`)

// ValidateTableName rejects anything that is not a plain SQL identifier.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return errors.Newf("invalid table name %q", name)
	}
	return nil
}

// Repository reads roll call attendance and writes absence instances.
type Repository struct {
	db     *sql.DB
	driver string
}

// NewRepository wraps conn; driver selects the placeholder dialect.
func NewRepository(conn *sql.DB, driver string) *Repository {
	return &Repository{db: conn, driver: driver}
}

func (r *Repository) rebind(query string) string {
	return db.Rebind(r.driver, query)
}

// SelectAttendance returns every record in table whose date falls inside the
// period, bounds included, for all students and applications. Presence and
// possibility are not filtered here: streak boundaries need the presences.
func (r *Repository) SelectAttendance(ctx context.Context, table string, period Period) ([]AttendanceRecord, error) {
	if err := ValidateTableName(table); err != nil {
		return nil, errors.Mark(err, ErrSourceUnavailable)
	}

	query := fmt.Sprintf(`
		SELECT COALESCE(attendance_roll_call_record_unique_id, ''),
		       student_unique_id, application_id, date,
		       attendance_roll_call_id, is_present, is_possible_attendance
		FROM %s
		WHERE date BETWEEN $1 AND $2
		ORDER BY student_unique_id, application_id, date, attendance_roll_call_id
	`, table)

	rows, err := r.db.QueryContext(ctx, r.rebind(query),
		util.FormatDate(period.Start), util.FormatDate(period.End))
	if err != nil {
		return nil, SourceUnavailable(err, "failed to query %s", table)
	}
	defer rows.Close()

	var records []AttendanceRecord
	for rows.Next() {
		var rec AttendanceRecord
		var rawDate interface{}
		if err := rows.Scan(
			&rec.RecordID, &rec.StudentID, &rec.ApplicationID, &rawDate,
			&rec.PeriodID, &rec.IsPresent, &rec.IsPossibleAttendance,
		); err != nil {
			return nil, SourceUnavailable(err, "failed to scan %s row", table)
		}
		rec.Date, err = scanDate(rawDate)
		if err != nil {
			return nil, SourceUnavailable(err, "bad date in %s for student %s", table, rec.StudentID)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, SourceUnavailable(err, "failed to read %s", table)
	}

	return records, nil
}

// InsertAttendance writes roll call records in one transaction.
func (r *Repository) InsertAttendance(ctx context.Context, table string, records []AttendanceRecord) error {
	if err := ValidateTableName(table); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, r.rebind(fmt.Sprintf(`
		INSERT INTO %s (
			attendance_roll_call_record_unique_id, student_unique_id, application_id,
			date, attendance_roll_call_id, is_present, is_possible_attendance
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, table)))
	if err != nil {
		return errors.Wrapf(err, "failed to prepare insert into %s", table)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			rec.RecordID, rec.StudentID, rec.ApplicationID, util.FormatDate(rec.Date),
			rec.PeriodID, rec.IsPresent, rec.IsPossibleAttendance,
		); err != nil {
			return errors.Wrapf(err, "failed to insert attendance %s for student %s", rec.RecordID, rec.StudentID)
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit attendance")
}

// SaveInstances replaces the stored instances for run.Period with instances.
// Re-running a period therefore leaves exactly one copy of its output.
func (r *Repository) SaveInstances(ctx context.Context, table string, run Run, instances []AbsenceInstance) error {
	if err := ValidateTableName(table); err != nil {
		return err
	}

	start := util.FormatDate(run.Period.Start)
	end := util.FormatDate(run.Period.End)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, r.rebind(fmt.Sprintf(
		`DELETE FROM %s WHERE period_start_date = $1 AND period_end_date = $2`, table,
	)), start, end); err != nil {
		return errors.Wrapf(err, "failed to clear previous instances in %s", table)
	}

	stmt, err := tx.PrepareContext(ctx, r.rebind(fmt.Sprintf(`
		INSERT INTO %s (
			run_id, student_unique_id, application_id,
			absence_start_date, absence_end_date, possible_attendance_days_missed,
			period_start_date, period_end_date, computed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, table)))
	if err != nil {
		return errors.Wrapf(err, "failed to prepare insert into %s", table)
	}
	defer stmt.Close()

	for _, inst := range instances {
		if _, err := stmt.ExecContext(ctx,
			run.ID.String(), inst.StudentID, inst.ApplicationID,
			util.FormatDate(inst.StartDate), util.FormatDate(inst.EndDate), inst.MissedDays,
			start, end, run.ComputedAt.UTC(),
		); err != nil {
			return errors.Wrapf(err, "failed to insert absence instance for %s", inst.Key())
		}
	}

	return errors.Wrap(tx.Commit(), "failed to commit absence instances")
}

// ListInstances returns the stored instances for a period in report order.
func (r *Repository) ListInstances(ctx context.Context, table string, period Period) ([]AbsenceInstance, error) {
	if err := ValidateTableName(table); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, r.rebind(fmt.Sprintf(`
		SELECT student_unique_id, application_id, absence_start_date,
		       absence_end_date, possible_attendance_days_missed
		FROM %s
		WHERE period_start_date = $1 AND period_end_date = $2
		ORDER BY student_unique_id, application_id, absence_start_date
	`, table)), util.FormatDate(period.Start), util.FormatDate(period.End))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query %s", table)
	}
	defer rows.Close()

	var instances []AbsenceInstance
	for rows.Next() {
		var inst AbsenceInstance
		var rawStart, rawEnd interface{}
		if err := rows.Scan(&inst.StudentID, &inst.ApplicationID, &rawStart, &rawEnd, &inst.MissedDays); err != nil {
			return nil, errors.Wrap(err, "failed to scan absence instance")
		}
		if inst.StartDate, err = scanDate(rawStart); err != nil {
			return nil, err
		}
		if inst.EndDate, err = scanDate(rawEnd); err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, errors.Wrap(rows.Err(), "failed to read absence instances")
}

// scanDate normalizes a DATE column. PostgreSQL hands back time.Time,
// SQLite may hand back either a time or the stored text.
func scanDate(v interface{}) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		y, m, day := d.Date()
		return time.Date(y, m, day, 0, 0, 0, 0, time.UTC), nil
	case string:
		return parseDateText(d)
	case []byte:
		return parseDateText(string(d))
	case nil:
		return time.Time{}, errors.New("date is null")
	default:
		return time.Time{}, errors.Newf("unsupported date type %T", v)
	}
}

func parseDateText(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) < len(util.DateLayout) {
		return time.Time{}, errors.Newf("invalid date %q", s)
	}
	t, err := time.Parse(util.DateLayout, s[:len(util.DateLayout)])
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid date %q", s)
	}
	return t, nil
}

package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrSourceUnavailable marks failures reading the attendance source.
// These are fatal for a run: no partial result is produced.
var ErrSourceUnavailable = errors.New("attendance source unavailable")

// MalformedRecordError reports a partition whose records break the
// (date, period) uniqueness needed for the running presence count.
type MalformedRecordError struct {
	Key      PartitionKey
	Date     time.Time
	PeriodID string
	Reason   string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed attendance for %s on %s period %q: %s",
		e.Key, e.Date.Format("2006-01-02"), e.PeriodID, e.Reason)
}

// SourceUnavailable wraps err so that errors.Is(err, ErrSourceUnavailable) holds.
func SourceUnavailable(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	wrapped := errors.Wrapf(err, format, args...)
	if IsUndefinedTableError(err) {
		wrapped = errors.WithHint(wrapped, "check SOURCE_TABLE or run `absences migrate`")
	}
	return errors.Mark(wrapped, ErrSourceUnavailable)
}

// IsSourceUnavailable reports whether err came from the attendance source.
func IsSourceUnavailable(err error) bool {
	return errors.Is(err, ErrSourceUnavailable)
}

// IsUndefinedTableError checks for a missing relation.
// PostgreSQL reports SQLSTATE 42P01; SQLite only reports it in the message.
func IsUndefinedTableError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01"
	}

	return strings.Contains(strings.ToLower(err.Error()), "no such table")
}

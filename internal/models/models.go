package models

import (
	"time"

	"absence-instances/internal/util"

	"github.com/google/uuid"
)

// AttendanceRecord is one roll call mark for a student within an application.
type AttendanceRecord struct {
	RecordID             string    `json:"attendance_roll_call_record_unique_id,omitempty"`
	StudentID            string    `json:"student_unique_id"`
	ApplicationID        string    `json:"application_id"`
	Date                 time.Time `json:"date"`
	PeriodID             string    `json:"attendance_roll_call_id"`
	IsPresent            bool      `json:"is_present"`
	IsPossibleAttendance bool      `json:"is_possible_attendance"`
}

// Key returns the partition the record belongs to.
func (r AttendanceRecord) Key() PartitionKey {
	return PartitionKey{StudentID: r.StudentID, ApplicationID: r.ApplicationID}
}

// TaggedRecord is an attendance record with its running presence count.
type TaggedRecord struct {
	AttendanceRecord
	GroupID int `json:"absence_group_id"`
}

// AbsenceInstance is one contiguous absence streak.
type AbsenceInstance struct {
	StudentID     string    `json:"student_unique_id"`
	ApplicationID string    `json:"application_id"`
	StartDate     time.Time `json:"absence_start_date"`
	EndDate       time.Time `json:"absence_end_date"`
	MissedDays    int       `json:"possible_attendance_days_missed"`
}

func (a AbsenceInstance) Key() PartitionKey {
	return PartitionKey{StudentID: a.StudentID, ApplicationID: a.ApplicationID}
}

// PartitionKey identifies one (student, application) enrollment.
type PartitionKey struct {
	StudentID     string `json:"student_unique_id"`
	ApplicationID string `json:"application_id"`
}

func (k PartitionKey) String() string {
	return k.StudentID + "/" + k.ApplicationID
}

// Less orders keys by student then application.
func (k PartitionKey) Less(o PartitionKey) bool {
	if k.StudentID != o.StudentID {
		return k.StudentID < o.StudentID
	}
	return k.ApplicationID < o.ApplicationID
}

// Period is an inclusive calendar date window.
type Period struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls inside the window, bounds included.
func (p Period) Contains(d time.Time) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// Run describes one computation, stamped onto persisted output.
type Run struct {
	ID         uuid.UUID
	Period     Period
	ComputedAt time.Time
	// Rejected lists partitions withheld from the output as malformed.
	Rejected []PartitionKey
}

// ReportRow is the reporting contract for one absence instance.
type ReportRow struct {
	StudentID     string `json:"student_unique_id"`
	ApplicationID string `json:"application_id"`
	StartDate     string `json:"absence_start_date"`
	EndDate       string `json:"absence_end_date"`
	MissedDays    int    `json:"possible_attendance_days_missed"`
}

// ReportColumns names the ReportRow fields in output order.
var ReportColumns = []string{
	"student_unique_id",
	"application_id",
	"absence_start_date",
	"absence_end_date",
	"possible_attendance_days_missed",
}

func NewReportRow(a AbsenceInstance) ReportRow {
	return ReportRow{
		StudentID:     a.StudentID,
		ApplicationID: a.ApplicationID,
		StartDate:     util.FormatDate(a.StartDate),
		EndDate:       util.FormatDate(a.EndDate),
		MissedDays:    a.MissedDays,
	}
}

// ReportRows converts instances, keeping their order. It never returns nil
// so that JSON encodes an empty report as [].
func ReportRows(instances []AbsenceInstance) []ReportRow {
	rows := make([]ReportRow, 0, len(instances))
	for _, inst := range instances {
		rows = append(rows, NewReportRow(inst))
	}
	return rows
}

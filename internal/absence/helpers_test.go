package absence

import (
	"fmt"
	"time"

	"absence-instances/internal/models"
)

func sept(d int) time.Time {
	return time.Date(2025, time.September, d, 0, 0, 0, 0, time.UTC)
}

func absent(student, app string, d int) models.AttendanceRecord {
	return record(student, app, d, "1", false, true)
}

func present(student, app string, d int) models.AttendanceRecord {
	return record(student, app, d, "1", true, true)
}

func notPossible(student, app string, d int) models.AttendanceRecord {
	return record(student, app, d, "1", false, false)
}

func record(student, app string, d int, periodID string, isPresent, isPossible bool) models.AttendanceRecord {
	return models.AttendanceRecord{
		RecordID:             fmt.Sprintf("%s-%s-%02d-%s", student, app, d, periodID),
		StudentID:            student,
		ApplicationID:        app,
		Date:                 sept(d),
		PeriodID:             periodID,
		IsPresent:            isPresent,
		IsPossibleAttendance: isPossible,
	}
}

func instance(student, app string, start, end, missed int) models.AbsenceInstance {
	return models.AbsenceInstance{
		StudentID:     student,
		ApplicationID: app,
		StartDate:     sept(start),
		EndDate:       sept(end),
		MissedDays:    missed,
	}
}

func septPeriod(start, end int) models.Period {
	return models.Period{Start: sept(start), End: sept(end)}
}

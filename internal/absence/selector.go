package absence

import (
	"absence-instances/internal/models"
	"absence-instances/internal/util"
)

// Select returns the records dated inside period, bounds included.
// Presence and possibility are left untouched so the tagger sees every
// presence that closes a streak.
func Select(records []models.AttendanceRecord, period models.Period) []models.AttendanceRecord {
	start, end := util.DateOnly(period.Start), util.DateOnly(period.End)
	window := models.Period{Start: start, End: end}

	selected := make([]models.AttendanceRecord, 0, len(records))
	for _, rec := range records {
		if window.Contains(util.DateOnly(rec.Date)) {
			selected = append(selected, rec)
		}
	}
	return selected
}

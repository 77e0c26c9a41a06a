package absence

import (
	"sort"

	"absence-instances/internal/models"
	"absence-instances/internal/util"
)

// Tag orders a partition by (date, period) and folds the running presence
// count into each record's GroupID, counting the record itself.
//
// A repeated (date, period) pair makes the count ambiguous, so the whole
// partition is rejected with a *models.MalformedRecordError.
func Tag(p Partition) ([]models.TaggedRecord, error) {
	ordered := make([]models.AttendanceRecord, len(p.Records))
	copy(ordered, p.Records)
	for i := range ordered {
		ordered[i].Date = util.DateOnly(ordered[i].Date)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return recordLess(ordered[i], ordered[j])
	})

	tagged := make([]models.TaggedRecord, len(ordered))
	presences := 0
	for i, rec := range ordered {
		if rec.StudentID != p.Key.StudentID || rec.ApplicationID != p.Key.ApplicationID {
			return nil, &models.MalformedRecordError{
				Key:      p.Key,
				Date:     rec.Date,
				PeriodID: rec.PeriodID,
				Reason:   "record belongs to partition " + rec.Key().String(),
			}
		}
		if i > 0 && sameSlot(ordered[i-1], rec) {
			return nil, &models.MalformedRecordError{
				Key:      p.Key,
				Date:     rec.Date,
				PeriodID: rec.PeriodID,
				Reason:   "duplicate date and period",
			}
		}

		if rec.IsPresent {
			presences++
		}
		tagged[i] = models.TaggedRecord{AttendanceRecord: rec, GroupID: presences}
	}

	return tagged, nil
}

func recordLess(a, b models.AttendanceRecord) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return util.ComparePeriodIDs(a.PeriodID, b.PeriodID) < 0
}

func sameSlot(a, b models.AttendanceRecord) bool {
	return a.Date.Equal(b.Date) && util.ComparePeriodIDs(a.PeriodID, b.PeriodID) == 0
}

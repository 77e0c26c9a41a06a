package absence

import "absence-instances/internal/models"

// IsAbsence reports a missed day on which attendance was possible.
func IsAbsence(r models.AttendanceRecord) bool {
	return r.IsPossibleAttendance && !r.IsPresent
}

// FilterAbsences keeps only the true absences from a tagged stream.
func FilterAbsences(tagged []models.TaggedRecord) []models.TaggedRecord {
	absences := make([]models.TaggedRecord, 0, len(tagged))
	for _, rec := range tagged {
		if IsAbsence(rec.AttendanceRecord) {
			absences = append(absences, rec)
		}
	}
	return absences
}

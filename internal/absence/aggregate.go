package absence

import (
	"sort"

	"absence-instances/internal/models"
)

type groupKey struct {
	partition models.PartitionKey
	groupID   int
}

// Aggregate collapses absences sharing (student, application, group) into
// one instance spanning their earliest and latest dates. MissedDays counts
// records, not calendar days. Output is in report order.
func Aggregate(absences []models.TaggedRecord) []models.AbsenceInstance {
	index := make(map[groupKey]int)
	var instances []models.AbsenceInstance

	for _, rec := range absences {
		key := groupKey{partition: rec.Key(), groupID: rec.GroupID}
		i, ok := index[key]
		if !ok {
			index[key] = len(instances)
			instances = append(instances, models.AbsenceInstance{
				StudentID:     rec.StudentID,
				ApplicationID: rec.ApplicationID,
				StartDate:     rec.Date,
				EndDate:       rec.Date,
				MissedDays:    1,
			})
			continue
		}

		inst := &instances[i]
		if rec.Date.Before(inst.StartDate) {
			inst.StartDate = rec.Date
		}
		if rec.Date.After(inst.EndDate) {
			inst.EndDate = rec.Date
		}
		inst.MissedDays++
	}

	SortInstances(instances)
	return instances
}

// SortInstances orders by (student, application, start date).
func SortInstances(instances []models.AbsenceInstance) {
	sort.SliceStable(instances, func(i, j int) bool {
		a, b := instances[i], instances[j]
		if a.Key() != b.Key() {
			return a.Key().Less(b.Key())
		}
		return a.StartDate.Before(b.StartDate)
	})
}

package absence

import (
	"sort"

	"absence-instances/internal/models"
)

// Partition holds every record of one (student, application) pair.
type Partition struct {
	Key     models.PartitionKey
	Records []models.AttendanceRecord
}

// PartitionRecords splits records by (student, application).
// Partitions come back ordered by key; records keep their input order.
func PartitionRecords(records []models.AttendanceRecord) []Partition {
	index := make(map[models.PartitionKey]int)
	var partitions []Partition

	for _, rec := range records {
		key := rec.Key()
		i, ok := index[key]
		if !ok {
			i = len(partitions)
			index[key] = i
			partitions = append(partitions, Partition{Key: key})
		}
		partitions[i].Records = append(partitions[i].Records, rec)
	}

	sort.Slice(partitions, func(i, j int) bool {
		return partitions[i].Key.Less(partitions[j].Key)
	})
	return partitions
}

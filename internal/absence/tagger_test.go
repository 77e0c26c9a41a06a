package absence

import (
	"testing"

	"absence-instances/internal/models"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupIDs(tagged []models.TaggedRecord) []int {
	ids := make([]int, len(tagged))
	for i, r := range tagged {
		ids[i] = r.GroupID
	}
	return ids
}

func TestTagRunningPresenceCount(t *testing.T) {
	p := Partition{
		Key: models.PartitionKey{StudentID: "S", ApplicationID: "P"},
		Records: []models.AttendanceRecord{
			absent("S", "P", 1),
			absent("S", "P", 2),
			present("S", "P", 3),
			absent("S", "P", 4),
			notPossible("S", "P", 5),
			present("S", "P", 6),
			present("S", "P", 7),
		},
	}

	tagged, err := Tag(p)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 1, 1, 1, 2, 3}, groupIDs(tagged))
}

func TestTagWithoutPresencesKeepsGroupZero(t *testing.T) {
	p := Partition{
		Key:     models.PartitionKey{StudentID: "S", ApplicationID: "P"},
		Records: []models.AttendanceRecord{absent("S", "P", 1), notPossible("S", "P", 2), absent("S", "P", 3)},
	}

	tagged, err := Tag(p)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 0}, groupIDs(tagged))
}

func TestTagOrdersByDateThenPeriod(t *testing.T) {
	p := Partition{
		Key: models.PartitionKey{StudentID: "S", ApplicationID: "P"},
		Records: []models.AttendanceRecord{
			record("S", "P", 2, "10", false, true),
			record("S", "P", 1, "1", false, true),
			record("S", "P", 2, "2", true, true),
			record("S", "P", 2, "1", false, true),
		},
	}

	tagged, err := Tag(p)
	require.NoError(t, err)

	var order []string
	for _, r := range tagged {
		order = append(order, r.Date.Format("01-02")+"/"+r.PeriodID)
	}
	assert.Equal(t, []string{"09-01/1", "09-02/1", "09-02/2", "09-02/10"}, order)
	assert.Equal(t, []int{0, 0, 1, 1}, groupIDs(tagged))
}

func TestTagDoesNotMutateInput(t *testing.T) {
	records := []models.AttendanceRecord{absent("S", "P", 3), present("S", "P", 1)}
	p := Partition{Key: models.PartitionKey{StudentID: "S", ApplicationID: "P"}, Records: records}

	_, err := Tag(p)
	require.NoError(t, err)

	assert.Equal(t, 3, records[0].Date.Day())
	assert.Equal(t, 1, records[1].Date.Day())
}

func TestTagRejectsDuplicateSlot(t *testing.T) {
	p := Partition{
		Key: models.PartitionKey{StudentID: "S", ApplicationID: "P"},
		Records: []models.AttendanceRecord{
			absent("S", "P", 1),
			present("S", "P", 2),
			absent("S", "P", 2),
		},
	}

	tagged, err := Tag(p)
	require.Error(t, err)
	assert.Nil(t, tagged)

	var malformed *models.MalformedRecordError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, p.Key, malformed.Key)
	assert.Equal(t, sept(2), malformed.Date)
	assert.Equal(t, "1", malformed.PeriodID)
}

func TestTagRejectsNumericallyEqualPeriods(t *testing.T) {
	p := Partition{
		Key:     models.PartitionKey{StudentID: "S", ApplicationID: "P"},
		Records: []models.AttendanceRecord{record("S", "P", 1, "7", false, true), record("S", "P", 1, "07", true, true)},
	}

	_, err := Tag(p)
	assert.Error(t, err)
}

func TestTagRejectsForeignRecord(t *testing.T) {
	p := Partition{
		Key:     models.PartitionKey{StudentID: "S", ApplicationID: "P"},
		Records: []models.AttendanceRecord{absent("S", "P", 1), absent("T", "P", 2)},
	}

	_, err := Tag(p)
	assert.Error(t, err)
}

func periodIDs(tagged []models.TaggedRecord) []string {
	ids := make([]string, len(tagged))
	for i, r := range tagged {
		ids[i] = r.PeriodID
	}
	return ids
}

func TestTagIsIndependentOfInputOrder(t *testing.T) {
	two := record("S", "P", 1, "2", false, true)
	ten := record("S", "P", 1, "10", true, true)
	mixed := record("S", "P", 1, "1a", false, true)

	orders := [][]models.AttendanceRecord{
		{two, ten, mixed},
		{two, mixed, ten},
		{ten, two, mixed},
		{ten, mixed, two},
		{mixed, two, ten},
		{mixed, ten, two},
	}

	for _, records := range orders {
		tagged, err := Tag(Partition{Key: models.PartitionKey{StudentID: "S", ApplicationID: "P"}, Records: records})
		require.NoError(t, err)

		assert.Equal(t, []string{"2", "10", "1a"}, periodIDs(tagged))
		assert.Equal(t, []int{0, 1, 1}, groupIDs(tagged))
	}
}

func TestTagKeepsDistinctlySpelledPeriodIDs(t *testing.T) {
	p := Partition{
		Key: models.PartitionKey{StudentID: "S", ApplicationID: "P"},
		Records: []models.AttendanceRecord{
			record("S", "P", 1, "1", false, true),
			record("S", "P", 1, "01", true, true),
		},
	}

	tagged, err := Tag(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"01", "1"}, periodIDs(tagged))
	assert.Equal(t, []int{1, 1}, groupIDs(tagged))
}

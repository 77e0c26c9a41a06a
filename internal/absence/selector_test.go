package absence

import (
	"testing"
	"time"

	"absence-instances/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestSelect(t *testing.T) {
	records := []models.AttendanceRecord{
		absent("S", "P", 1),
		present("S", "P", 2),
		absent("S", "P", 3),
		notPossible("S", "P", 4),
		absent("S", "P", 5),
	}

	tests := []struct {
		name   string
		period models.Period
		want   []int
	}{
		{name: "inclusive on both ends", period: septPeriod(2, 4), want: []int{2, 3, 4}},
		{name: "single day", period: septPeriod(3, 3), want: []int{3}},
		{name: "covers everything", period: septPeriod(1, 30), want: []int{1, 2, 3, 4, 5}},
		{name: "nothing in range", period: septPeriod(10, 20), want: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(records, tt.period)

			days := make([]int, 0, len(got))
			for _, r := range got {
				days = append(days, r.Date.Day())
			}
			assert.Equal(t, tt.want, days)
		})
	}
}

func TestSelectKeepsPresenceAndPossibility(t *testing.T) {
	records := []models.AttendanceRecord{present("S", "P", 1), notPossible("S", "P", 2)}

	got := Select(records, septPeriod(1, 2))

	assert.Equal(t, records, got)
}

func TestSelectIgnoresClockTime(t *testing.T) {
	r := absent("S", "P", 30)
	r.Date = r.Date.Add(18 * time.Hour)

	got := Select([]models.AttendanceRecord{r}, septPeriod(1, 30))

	assert.Len(t, got, 1)
}

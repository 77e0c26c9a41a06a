// Package seed generates demo roll call attendance for development databases.
package seed

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"absence-instances/internal/models"
	"absence-instances/internal/util"

	"github.com/google/uuid"
)

// recordNamespace keeps generated record ids stable across runs.
var recordNamespace = uuid.MustParse("3f0c6f0e-5b0a-4c55-9d5c-2c1f7e1a8b42")

// Pattern shapes one seeded student's attendance.
type Pattern string

const (
	PatternPerfect    Pattern = "perfect"     // present every school day
	PatternLongStreak Pattern = "long_streak" // one multi-week absence in the middle of the term
	PatternHoliday    Pattern = "holiday"     // absences on both sides of a closure week
	PatternNever      Pattern = "never"       // enrolled but never present
	PatternRandom     Pattern = "random"
)

// plan cycles through the scripted patterns before falling back to random ones.
var plan = []Pattern{PatternPerfect, PatternLongStreak, PatternHoliday, PatternNever}

type Options struct {
	Students      int
	Applications  int
	PeriodsPerDay int
	Period        models.Period
	// AbsenceRate is the chance of a random student missing a roll call.
	AbsenceRate float64
	Seed        int64
}

func DefaultOptions(period models.Period) Options {
	return Options{
		Students:      25,
		Applications:  1,
		PeriodsPerDay: 1,
		Period:        period,
		AbsenceRate:   0.12,
		Seed:          1,
	}
}

// Summary counts what Generate produced, per pattern.
type Summary struct {
	Records   int
	ByPattern map[Pattern]int
}

// Generate builds attendance for every student and application across the
// period. Weekends and the closure week are marked not possible. The same
// options always produce the same records.
func Generate(opts Options) ([]models.AttendanceRecord, Summary) {
	rng := rand.New(rand.NewSource(opts.Seed))
	start := util.DateOnly(opts.Period.Start)
	end := util.DateOnly(opts.Period.End)
	days := int(end.Sub(start).Hours()/24) + 1

	closureStart := start.AddDate(0, 0, days/2)
	closureEnd := closureStart.AddDate(0, 0, 6)

	periods := opts.PeriodsPerDay
	if periods < 1 {
		periods = 1
	}

	summary := Summary{ByPattern: make(map[Pattern]int)}
	var records []models.AttendanceRecord

	for s := 1; s <= opts.Students; s++ {
		pattern := PatternRandom
		if s <= len(plan) {
			pattern = plan[s-1]
		}
		summary.ByPattern[pattern]++

		for a := 1; a <= opts.Applications; a++ {
			studentID := fmt.Sprintf("seed-student-%03d", s)
			applicationID := fmt.Sprintf("seed-application-%02d", a)

			for d := 0; d < days; d++ {
				date := start.AddDate(0, 0, d)
				possible := !isWeekend(date) && (date.Before(closureStart) || date.After(closureEnd))

				for p := 1; p <= periods; p++ {
					present := false
					if possible {
						present = isPresent(pattern, d, days, closureStart.Sub(start), rng, opts.AbsenceRate)
					}
					periodID := strconv.Itoa(p)
					records = append(records, models.AttendanceRecord{
						RecordID:             recordID(studentID, applicationID, date, periodID),
						StudentID:            studentID,
						ApplicationID:        applicationID,
						Date:                 date,
						PeriodID:             periodID,
						IsPresent:            present,
						IsPossibleAttendance: possible,
					})
				}
			}
		}
	}

	summary.Records = len(records)
	return records, summary
}

func isPresent(pattern Pattern, day, days int, closureOffset time.Duration, rng *rand.Rand, absenceRate float64) bool {
	closureDay := int(closureOffset.Hours() / 24)
	switch pattern {
	case PatternPerfect:
		return true
	case PatternLongStreak:
		return day < days/4 || day >= days/4+15
	case PatternHoliday:
		return day < closureDay-3 || day > closureDay+10
	case PatternNever:
		return false
	default:
		return rng.Float64() >= absenceRate
	}
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func recordID(studentID, applicationID string, date time.Time, periodID string) string {
	key := studentID + "|" + applicationID + "|" + util.FormatDate(date) + "|" + periodID
	return uuid.NewSHA1(recordNamespace, []byte(key)).String()
}

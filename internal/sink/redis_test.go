package sink

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"absence-instances/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisSinkPeriodKey(t *testing.T) {
	s := NewRedisSink(nil, "absences", time.Hour)

	key := s.PeriodKey(testRun().Period)

	assert.Equal(t, "absences:2025-09-01:2025-12-31", key)
	assert.Equal(t, "redis:absences", s.Name())
}

func TestEncodePartitions(t *testing.T) {
	values, err := encodePartitions(testInstances())
	require.NoError(t, err)

	require.Len(t, values, 2)

	var rows []models.ReportRow
	require.NoError(t, json.Unmarshal([]byte(values["S1|A1"].(string)), &rows))
	assert.Equal(t, []models.ReportRow{
		{StudentID: "S1", ApplicationID: "A1", StartDate: "2025-09-01", EndDate: "2025-09-02", MissedDays: 2},
		{StudentID: "S1", ApplicationID: "A1", StartDate: "2025-09-04", EndDate: "2025-09-04", MissedDays: 1},
	}, rows)
	assert.Contains(t, values, "S2, Jr|A1")
}

func TestEncodePartitionsEmpty(t *testing.T) {
	values, err := encodePartitions(nil)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func newTestRedisSink(t *testing.T) (*RedisSink, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSink(client, "absences", time.Hour), mr
}

func TestRedisSinkWriteAndLookup(t *testing.T) {
	s, mr := newTestRedisSink(t)
	ctx := context.Background()
	run := testRun()

	require.NoError(t, s.Write(ctx, run, testInstances()))

	key := s.PeriodKey(run.Period)
	assert.Equal(t, time.Hour, mr.TTL(key))
	assert.Equal(t, time.Hour, mr.TTL(key+":run"))

	rows, err := s.Lookup(ctx, run.Period, models.PartitionKey{StudentID: "S1", ApplicationID: "A1"})
	require.NoError(t, err)
	assert.Equal(t, []models.ReportRow{
		{StudentID: "S1", ApplicationID: "A1", StartDate: "2025-09-01", EndDate: "2025-09-02", MissedDays: 2},
		{StudentID: "S1", ApplicationID: "A1", StartDate: "2025-09-04", EndDate: "2025-09-04", MissedDays: 1},
	}, rows)
}

func TestRedisSinkLookupUncachedPeriodIsMiss(t *testing.T) {
	s, _ := newTestRedisSink(t)

	_, err := s.Lookup(context.Background(), testRun().Period, models.PartitionKey{StudentID: "S1", ApplicationID: "A1"})
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisSinkLookupPartitionWithoutAbsences(t *testing.T) {
	s, _ := newTestRedisSink(t)
	ctx := context.Background()
	run := testRun()
	require.NoError(t, s.Write(ctx, run, testInstances()))

	rows, err := s.Lookup(ctx, run.Period, models.PartitionKey{StudentID: "S9", ApplicationID: "A1"})
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestRedisSinkLookupRejectedPartitionIsMiss(t *testing.T) {
	s, _ := newTestRedisSink(t)
	ctx := context.Background()
	run := testRun()
	run.Rejected = []models.PartitionKey{{StudentID: "S3", ApplicationID: "A1"}}
	require.NoError(t, s.Write(ctx, run, testInstances()))

	_, err := s.Lookup(ctx, run.Period, models.PartitionKey{StudentID: "S3", ApplicationID: "A1"})
	assert.ErrorIs(t, err, ErrCacheMiss)

	rows, err := s.Lookup(ctx, run.Period, models.PartitionKey{StudentID: "S1", ApplicationID: "A1"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRedisSinkWriteReplacesPreviousRun(t *testing.T) {
	s, mr := newTestRedisSink(t)
	ctx := context.Background()
	run := testRun()
	require.NoError(t, s.Write(ctx, run, testInstances()))

	require.NoError(t, s.Write(ctx, run, testInstances()[2:]))

	key := s.PeriodKey(run.Period)
	fields, err := mr.HKeys(key)
	require.NoError(t, err)
	assert.Equal(t, []string{"S2, Jr|A1"}, fields)

	rows, err := s.Lookup(ctx, run.Period, models.PartitionKey{StudentID: "S1", ApplicationID: "A1"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRedisSinkWriteEmptyRunKeepsMarker(t *testing.T) {
	s, mr := newTestRedisSink(t)
	ctx := context.Background()
	run := testRun()
	require.NoError(t, s.Write(ctx, run, testInstances()))

	require.NoError(t, s.Write(ctx, run, nil))

	key := s.PeriodKey(run.Period)
	assert.False(t, mr.Exists(key))
	assert.True(t, mr.Exists(key+":run"))

	rows, err := s.Lookup(ctx, run.Period, models.PartitionKey{StudentID: "S1", ApplicationID: "A1"})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRedisSinkExpiredRunIsMiss(t *testing.T) {
	s, mr := newTestRedisSink(t)
	ctx := context.Background()
	run := testRun()
	require.NoError(t, s.Write(ctx, run, testInstances()))

	mr.FastForward(2 * time.Hour)

	_, err := s.Lookup(ctx, run.Period, models.PartitionKey{StudentID: "S1", ApplicationID: "A1"})
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisSinkErrors(t *testing.T) {
	s, mr := newTestRedisSink(t)
	ctx := context.Background()
	mr.SetError("LOADING Redis is loading the dataset in memory")

	assert.Error(t, s.Write(ctx, testRun(), testInstances()))

	_, err := s.Lookup(ctx, testRun().Period, models.PartitionKey{StudentID: "S1", ApplicationID: "A1"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

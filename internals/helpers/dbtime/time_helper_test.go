package dbtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wat = time.FixedZone("WAT", 3600)

func withLocation(t *testing.T, l *time.Location) *time.Location {
	t.Helper()
	prev := Location()
	SetLocation(l)
	t.Cleanup(func() { SetLocation(prev) })
	return l
}

func TestDayBoundsUsesLocalCalendarDay(t *testing.T) {
	l := withLocation(t, wat)

	// 23:30 UTC on Mar 1 is already Mar 2 in WAT
	start, next := DayBounds(time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, l), start)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, l), next)
}

func TestDayBoundsIdempotent(t *testing.T) {
	withLocation(t, time.UTC)
	s1, e1 := DayBounds(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	s2, e2 := DayBounds(s1)
	assert.Equal(t, s1, s2)
	assert.Equal(t, e1, e2)
}

func TestWeekBoundsStartsMonday(t *testing.T) {
	withLocation(t, time.UTC)
	cases := []time.Time{
		time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC),  // monday
		time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC),  // thursday
		time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), // sunday
	}
	for _, c := range cases {
		mon, next := WeekBounds(c)
		assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), mon, c.Weekday().String())
		assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), next)
	}
}

func TestMonthBounds(t *testing.T) {
	withLocation(t, time.UTC)
	start, next := MonthBounds(time.Date(2024, 2, 29, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), next)
}

func TestParseDate(t *testing.T) {
	l := withLocation(t, wat)

	got, err := ParseDate("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, l), got)

	_, err = ParseDate("01/03/2024")
	assert.Error(t, err)

	def := time.Date(2020, 1, 1, 0, 0, 0, 0, l)
	got, err = ParseDateOr("  ", def)
	require.NoError(t, err)
	assert.Equal(t, def, got)
}

func TestBucketKey(t *testing.T) {
	withLocation(t, time.UTC)
	d := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01", BucketKey(d, GroupByDay))
	assert.Equal(t, "2024-W09", BucketKey(d, GroupByWeek))
	assert.Equal(t, "2024-03", BucketKey(d, GroupByMonth))
	assert.Equal(t, "20240301", YMD(d))

	assert.True(t, GroupByWeek.Valid())
	assert.False(t, GroupBy("year").Valid())
}

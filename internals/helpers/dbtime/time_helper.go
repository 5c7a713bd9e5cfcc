// Package dbtime holds calendar arithmetic in the server's local time zone.
// Every "day" in the system (attendance date, daily reports, receipt date
// stamps) is a calendar day of Location().
package dbtime

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

var loc atomic.Pointer[time.Location]

func init() { loc.Store(time.UTC) }

// SetLocation installs the local time zone used for all day boundaries.
func SetLocation(l *time.Location) {
	if l == nil {
		l = time.UTC
	}
	loc.Store(l)
}

func Location() *time.Location { return loc.Load() }

func Now() time.Time { return time.Now().In(Location()) }

// StartOfDay is midnight of t's calendar day in Location().
func StartOfDay(t time.Time) time.Time {
	t = t.In(Location())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location())
}

// DayBounds returns [start, next) of t's local day.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// WeekBounds returns [monday, next monday) of the week containing t.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	offset := (int(start.Weekday()) + 6) % 7 // monday = 0
	monday := start.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 7)
}

// MonthBounds returns [first day, first day of next month).
func MonthBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(Location())
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, Location())
	return start, start.AddDate(0, 1, 0)
}

// ParseDate accepts YYYY-MM-DD (local day) or RFC3339.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation("2006-01-02", s, Location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(Location()), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
}

// ParseDateOr returns def when s is empty.
func ParseDateOr(s string, def time.Time) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	return ParseDate(s)
}

type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

func (g GroupBy) Valid() bool {
	switch g {
	case GroupByDay, GroupByWeek, GroupByMonth:
		return true
	}
	return false
}

// BucketKey labels t for period aggregation: 2024-03-01, 2024-W09, 2024-03.
func BucketKey(t time.Time, g GroupBy) string {
	t = t.In(Location())
	switch g {
	case GroupByWeek:
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	case GroupByMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// YMD is the compact date stamp used in receipt numbers.
func YMD(t time.Time) string { return t.In(Location()).Format("20060102") }

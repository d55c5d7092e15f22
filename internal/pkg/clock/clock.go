// Package clock holds the day/week/month arithmetic shared by the attendance engine.
// All functions are pure; the Clock interface exists so callers can pin "now" in tests.
package clock

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// System returns a Clock that reads the wall clock in loc.
func System(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Func adapts a plain function to the Clock interface.
type Func func() time.Time

func (f Func) Now() time.Time { return f() }

// StartOfDay truncates t to midnight in t's own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayKey formats the calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(DateLayout)
}

// MinutesBetween returns b-a in whole minutes, truncated toward zero.
// The result is negative when b is before a; callers clamp.
func MinutesBetween(a, b time.Time) int {
	return int(b.Sub(a) / time.Minute)
}

// StartOfWeek returns the Monday midnight of t's week.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -WeekdayIndex(day))
}

// WeekdayIndex maps Monday..Sunday to 0..6.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// StartOfMonth returns midnight on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// DaysInMonth reports the number of calendar days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// WorkingDaysBetween counts Monday-Friday days in [start, end], both inclusive.
func WorkingDaysBetween(start, end time.Time) int {
	start, end = StartOfDay(start), StartOfDay(end)
	if end.Before(start) {
		return 0
	}
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if WeekdayIndex(d) < 5 {
			count++
		}
	}
	return count
}

// ParseTimeOfDay parses an HH:MM string into minutes after midnight.
func ParseTimeOfDay(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// AtMinuteOfDay returns the instant minuteOfDay minutes after day's midnight.
func AtMinuteOfDay(day time.Time, minuteOfDay int) time.Time {
	day = StartOfDay(day)
	return time.Date(day.Year(), day.Month(), day.Day(), minuteOfDay/60, minuteOfDay%60, 0, 0, day.Location())
}

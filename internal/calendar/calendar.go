// Package calendar holds the day-granularity date rules shared by the
// repositories and services. Every calendar value is a time.Time at
// midnight in the tracker's configured location.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

// ErrInvalidDate is returned by ParseDate for unparseable input.
var ErrInvalidDate = errors.New("invalid date")

// Clock abstracts time.Now so services can be tested at fixed instants.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// FixedClock always returns T.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

// LoadLocation resolves a configured zone name. "" and "Local" mean the
// process location.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return loc, nil
}

// DayStart returns midnight of t's calendar day as observed in loc.
func DayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Today is DayStart of the clock's current instant.
func Today(clock Clock, loc *time.Location) time.Time {
	return DayStart(clock.Now(), loc)
}

// FromStoreDate reinterprets a DATE value scanned from postgres (midnight
// UTC) as midnight of the same calendar day in loc.
func FromStoreDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate accepts RFC3339 timestamps or plain YYYY-MM-DD dates and
// returns the start of the matching day in loc. Timestamps with an offset
// are converted to loc first, so "2024-03-04T03:00:00Z" is March 4th in
// America/Sao_Paulo.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return DayStart(t, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Weekday returns 0 for Sunday through 6 for Saturday.
func Weekday(day time.Time) int {
	return int(day.Weekday())
}

// HabitAppliesOn reports whether a habit scheduled on weekDays and created
// on createdAt is possible on day. Both dates must be day starts in the
// same location.
func HabitAppliesOn(weekDays []int, createdAt, day time.Time) bool {
	if createdAt.After(day) {
		return false
	}
	wd := Weekday(day)
	for _, d := range weekDays {
		if d == wd {
			return true
		}
	}
	return false
}

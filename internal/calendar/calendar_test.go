package calendar

import (
	"errors"
	"testing"
	"time"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q): %v", name, err)
	}
	return loc
}

func TestParseDate(t *testing.T) {
	sp := mustLoc(t, "America/Sao_Paulo")

	cases := []struct {
		in   string
		want string
	}{
		{"2024-03-04", "2024-03-04"},
		{"2024-03-04T03:00:00.000Z", "2024-03-04"},
		{"2024-03-04T02:59:59Z", "2024-03-03"},
		{"2024-03-04T23:30:00-03:00", "2024-03-04"},
		{"2024-03-04T10:00:00", "2024-03-04"},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in, sp)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", tc.in, err)
			continue
		}
		if got.Format("2006-01-02") != tc.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got.Format("2006-01-02"), tc.want)
		}
		if got.Hour() != 0 || got.Minute() != 0 || got.Location() != sp {
			t.Errorf("ParseDate(%q) = %v, not a day start in %v", tc.in, got, sp)
		}
	}
}

func TestParseDateInvalid(t *testing.T) {
	for _, in := range []string{"", "yesterday", "2024-13-01", "04/03/2024"} {
		if _, err := ParseDate(in, time.UTC); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) err = %v, want ErrInvalidDate", in, err)
		}
	}
}

func TestFromStoreDate(t *testing.T) {
	tokyo := mustLoc(t, "Asia/Tokyo")
	stored := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	got := FromStoreDate(stored, tokyo)
	want := time.Date(2024, 5, 6, 0, 0, 0, 0, tokyo)
	if !got.Equal(want) {
		t.Errorf("FromStoreDate = %v, want %v", got, want)
	}
}

func TestToday(t *testing.T) {
	clock := FixedClock{T: time.Date(2024, 5, 6, 23, 30, 0, 0, time.UTC)}
	tokyo := mustLoc(t, "Asia/Tokyo")
	if got := Today(clock, tokyo).Format("2006-01-02"); got != "2024-05-07" {
		t.Errorf("Today in Tokyo = %s, want 2024-05-07", got)
	}
}

// Habit created on a Monday with weekDays=[1,3,5] applies the following
// Wednesday but not the following Tuesday.
func TestHabitAppliesOnWeekdays(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)
	wednesday := monday.AddDate(0, 0, 2)
	weekDays := []int{1, 3, 5}

	if !HabitAppliesOn(weekDays, monday, wednesday) {
		t.Error("habit should apply on Wednesday")
	}
	if HabitAppliesOn(weekDays, monday, tuesday) {
		t.Error("habit should not apply on Tuesday")
	}
	if !HabitAppliesOn(weekDays, monday, monday) {
		t.Error("habit should apply on its creation day")
	}
}

func TestHabitAppliesOnNeverBeforeCreation(t *testing.T) {
	created := time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC) // Wednesday
	previousMonday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	if HabitAppliesOn([]int{0, 1, 2, 3, 4, 5, 6}, created, previousMonday) {
		t.Error("habit must not apply before its creation date")
	}
}

func TestWeekday(t *testing.T) {
	sunday := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	if Weekday(sunday) != 0 {
		t.Errorf("Sunday = %d, want 0", Weekday(sunday))
	}
	if Weekday(sunday.AddDate(0, 0, 6)) != 6 {
		t.Error("Saturday should be 6")
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
)

// Habit is a recurring activity tracked on WeekDays (0=Sunday … 6=Saturday)
// from CreatedAt onward.
type Habit struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	WeekDays  []int     `json:"weekDays"`
}

// Day is the aggregation unit for completions and tasks. Date is unique.
type Day struct {
	ID   uuid.UUID `json:"id"`
	Date time.Time `json:"date"`
}

// DayHabit records that HabitID was completed on DayID.
type DayHabit struct {
	ID      uuid.UUID `json:"id"`
	DayID   uuid.UUID `json:"day_id"`
	HabitID uuid.UUID `json:"habit_id"`
}

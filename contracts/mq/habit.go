package mq

import "time"

type HabitCreatedPayload struct {
	HabitID   string    `json:"habit_id"`
	Title     string    `json:"title"`
	WeekDays  []int     `json:"week_days"`
	CreatedAt string    `json:"created_at"` // YYYY-MM-DD
	TraceID   string    `json:"trace_id,omitempty"`
	EmittedAt time.Time `json:"emitted_at"`
}

type HabitDeletedPayload struct {
	HabitID   string    `json:"habit_id"`
	TraceID   string    `json:"trace_id,omitempty"`
	EmittedAt time.Time `json:"emitted_at"`
}

// HabitToggledPayload carries the completion state after the toggle.
type HabitToggledPayload struct {
	HabitID   string    `json:"habit_id"`
	DayID     string    `json:"day_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Completed bool      `json:"completed"`
	TraceID   string    `json:"trace_id,omitempty"`
	EmittedAt time.Time `json:"emitted_at"`
}

package mq

import "time"

type TaskCreatedPayload struct {
	TaskID    string    `json:"task_id"`
	DayID     string    `json:"day_id"`
	Title     string    `json:"title"`
	Date      string    `json:"date"` // YYYY-MM-DD
	TraceID   string    `json:"trace_id,omitempty"`
	EmittedAt time.Time `json:"emitted_at"`
}

type TaskToggledPayload struct {
	TaskID    string    `json:"task_id"`
	Date      string    `json:"date"`
	Completed bool      `json:"completed"`
	TraceID   string    `json:"trace_id,omitempty"`
	EmittedAt time.Time `json:"emitted_at"`
}

type TaskDeletedPayload struct {
	TaskID    string    `json:"task_id"`
	Date      string    `json:"date"`
	TraceID   string    `json:"trace_id,omitempty"`
	EmittedAt time.Time `json:"emitted_at"`
}

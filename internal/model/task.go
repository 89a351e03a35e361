package model

import (
	"time"

	"github.com/google/uuid"
)

// SingleTask is a one-off item bound to exactly one day.
type SingleTask struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
	DayID     uuid.UUID `json:"day_id"`
	CreatedAt time.Time `json:"created_at"`
}

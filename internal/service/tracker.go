package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habittracker/internal/calendar"
)

// Tracker carries the calendar settings every service shares.
type Tracker struct {
	Clock          calendar.Clock
	Location       *time.Location
	AllowPastEdits bool
}

func (t Tracker) now() time.Time {
	if t.Clock == nil {
		return time.Now()
	}
	return t.Clock.Now()
}

func (t Tracker) loc() *time.Location {
	if t.Location == nil {
		return time.Local
	}
	return t.Location
}

func (t Tracker) Today() time.Time {
	return calendar.DayStart(t.now(), t.loc())
}

// dayOf normalizes an optional date to its day start, defaulting to today.
func (t Tracker) dayOf(date *time.Time) time.Time {
	if date == nil {
		return t.Today()
	}
	return calendar.DayStart(*date, t.loc())
}

// checkEditable returns ErrFutureDay for days after today and
// ErrDayLocked for days before today unless past edits are allowed.
func (t Tracker) checkEditable(day time.Time) error {
	today := t.Today()
	if day.After(today) {
		return ErrFutureDay
	}
	if !t.AllowPastEdits && day.Before(today) {
		return ErrDayLocked
	}
	return nil
}

// inTx runs fn inside a transaction and commits when fn succeeds.
func inTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

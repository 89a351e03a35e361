package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"habittracker/internal/calendar"
	"habittracker/internal/model"
	"habittracker/internal/repository"
)

// SeedCmd resets the tracker and creates today's Day with one task.
type SeedCmd struct {
	Reset bool   `help:"Delete every habit, day and task first." default:"true" negatable:""`
	Task  string `help:"Title of the task created for today." default:"Write software"`
}

func (c *SeedCmd) Run(app *Context) error {
	title := strings.TrimSpace(c.Task)
	if title == "" {
		return fmt.Errorf("task title must not be blank")
	}

	loc, err := app.Location()
	if err != nil {
		return err
	}
	pool, err := app.Pool()
	if err != nil {
		return err
	}
	ctx := context.Background()
	today := calendar.Today(calendar.SystemClock, loc)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if c.Reset {
		if err := repository.ResetAll(ctx, tx, app.Logger); err != nil {
			return err
		}
	}

	day, err := repository.NewDayRepository(tx, loc, app.Logger).GetOrCreate(ctx, today)
	if err != nil {
		return err
	}
	task := &model.SingleTask{
		ID:    uuid.New(),
		Title: title,
		Date:  today,
		DayID: day.ID,
	}
	if err := repository.NewTaskRepository(tx, loc, app.Logger).Insert(ctx, task); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	fmt.Fprintf(app.Out, "seeded %s with task %q (%s)\n", today.Format("2006-01-02"), task.Title, task.ID)
	return nil
}

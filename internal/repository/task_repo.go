package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"habittracker/internal/calendar"
	"habittracker/internal/model"
)

type TaskRepository struct {
	db     DBTX
	loc    *time.Location
	logger *zap.Logger
}

func NewTaskRepository(db DBTX, loc *time.Location, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{
		db:     db,
		loc:    loc,
		logger: logger,
	}
}

func (r *TaskRepository) WithTx(tx pgx.Tx) *TaskRepository {
	return &TaskRepository{db: tx, loc: r.loc, logger: r.logger}
}

const taskColumns = `id, title, date, completed, day_id, created_at`

// Insert stores t and fills in CreatedAt from the database.
func (r *TaskRepository) Insert(ctx context.Context, t *model.SingleTask) error {
	r.logger.Debug("Inserting single task",
		zap.String("task_id", t.ID.String()),
		zap.String("title", t.Title),
		zap.Time("date", t.Date),
	)

	err := r.db.QueryRow(ctx, `
        INSERT INTO single_tasks (id, title, date, completed, day_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at
    `, t.ID, t.Title, t.Date, t.Completed, t.DayID).Scan(&t.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert single task", zap.Error(err))
		return err
	}

	r.logger.Info("Single task inserted successfully",
		zap.String("task_id", t.ID.String()),
		zap.String("day_id", t.DayID.String()),
	)
	return nil
}

func (r *TaskRepository) Get(ctx context.Context, id uuid.UUID) (*model.SingleTask, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM single_tasks WHERE id = $1`, id)
	t, err := r.scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get single task",
			zap.String("task_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) ListByDate(ctx context.Context, date time.Time) ([]model.SingleTask, error) {
	r.logger.Debug("Listing single tasks by date", zap.Time("date", date))

	rows, err := r.db.Query(ctx, `
        SELECT `+taskColumns+` FROM single_tasks
        WHERE date = $1
        ORDER BY created_at, id
    `, date)
	if err != nil {
		r.logger.Error("Failed to list single tasks", zap.Error(err))
		return nil, err
	}
	return r.collect(rows)
}

func (r *TaskRepository) ListByDay(ctx context.Context, dayID uuid.UUID) ([]model.SingleTask, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+taskColumns+` FROM single_tasks
        WHERE day_id = $1
        ORDER BY created_at, id
    `, dayID)
	if err != nil {
		r.logger.Error("Failed to list single tasks for day",
			zap.String("day_id", dayID.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return r.collect(rows)
}

// Toggle flips completed in place and returns the updated task.
func (r *TaskRepository) Toggle(ctx context.Context, id uuid.UUID) (*model.SingleTask, error) {
	r.logger.Debug("Toggling single task", zap.String("task_id", id.String()))

	row := r.db.QueryRow(ctx, `
        UPDATE single_tasks SET completed = NOT completed
        WHERE id = $1
        RETURNING `+taskColumns, id)
	t, err := r.scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to toggle single task", zap.Error(err))
		return nil, err
	}

	r.logger.Info("Single task toggled",
		zap.String("task_id", id.String()),
		zap.Bool("completed", t.Completed),
	)
	return &t, nil
}

// Delete removes the task and returns the row as it was.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) (*model.SingleTask, error) {
	row := r.db.QueryRow(ctx, `
        DELETE FROM single_tasks WHERE id = $1
        RETURNING `+taskColumns, id)
	t, err := r.scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to delete single task", zap.Error(err))
		return nil, err
	}

	r.logger.Info("Single task deleted", zap.String("task_id", id.String()))
	return &t, nil
}

func (r *TaskRepository) collect(rows pgx.Rows) ([]model.SingleTask, error) {
	defer rows.Close()

	tasks := []model.SingleTask{}
	for rows.Next() {
		t, err := r.scanTask(rows)
		if err != nil {
			r.logger.Error("Failed to scan single task", zap.Error(err))
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) scanTask(row pgx.Row) (model.SingleTask, error) {
	var t model.SingleTask
	if err := row.Scan(&t.ID, &t.Title, &t.Date, &t.Completed, &t.DayID, &t.CreatedAt); err != nil {
		return model.SingleTask{}, err
	}
	t.Date = calendar.FromStoreDate(t.Date, r.loc)
	return t, nil
}

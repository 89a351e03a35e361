package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// resetOrder lists tables children first so foreign keys never block.
var resetOrder = []string{
	"day_habits",
	"habit_week_days",
	"single_tasks",
	"days",
	"habits",
}

// ResetAll deletes every tracker row. Outbox history is kept.
func ResetAll(ctx context.Context, db DBTX, logger *zap.Logger) error {
	for _, table := range resetOrder {
		result, err := db.Exec(ctx, "DELETE FROM "+table)
		if err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
		logger.Info("Table cleared",
			zap.String("table", table),
			zap.Int64("rows", result.RowsAffected()),
		)
	}
	return nil
}

package service

import "errors"

var (
	ErrHabitNotFound     = errors.New("habit not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrHabitNotScheduled = errors.New("habit is not scheduled on this date")
	ErrDayLocked         = errors.New("past days can no longer be edited")
	ErrFutureDay         = errors.New("future days cannot be completed yet")
	ErrInvalidRange      = errors.New("from must not be after to")
)

package model

import (
	"time"

	"github.com/google/uuid"
)

// DayDetail is the per-date view: which habits apply, which were done, and
// the day's single tasks. Totals count habits and tasks together.
type DayDetail struct {
	PossibleHabits      []Habit      `json:"possibleHabits"`
	CompletedHabits     []uuid.UUID  `json:"completedHabits"`
	Tasks               []SingleTask `json:"tasks"`
	TotalPossibleItems  int          `json:"totalPossibleItems"`
	TotalCompletedItems int          `json:"totalCompletedItems"`
}

// NewDayDetail assembles a DayDetail and its totals. Nil inputs become
// empty slices so the JSON never carries null arrays.
func NewDayDetail(possible []Habit, completed []uuid.UUID, tasks []SingleTask) DayDetail {
	if possible == nil {
		possible = []Habit{}
	}
	if completed == nil {
		completed = []uuid.UUID{}
	}
	if tasks == nil {
		tasks = []SingleTask{}
	}

	doneTasks := 0
	for _, t := range tasks {
		if t.Completed {
			doneTasks++
		}
	}

	return DayDetail{
		PossibleHabits:      possible,
		CompletedHabits:     completed,
		Tasks:               tasks,
		TotalPossibleItems:  len(possible) + len(tasks),
		TotalCompletedItems: len(completed) + doneTasks,
	}
}

// DaySummary is one calendar cell: applicable items (Amount) against
// completed ones for an existing Day. Both counts include single tasks.
type DaySummary struct {
	ID        uuid.UUID `json:"id"`
	Date      time.Time `json:"date"`
	Amount    int       `json:"amount"`
	Completed int       `json:"completed"`
}

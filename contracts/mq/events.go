// Package mq holds the routing keys and payloads published on the
// habits.events exchange. Consumers depend on these shapes.
package mq

// Routing keys
const (
	RoutingKeyHabitCreated = "habit.created"
	RoutingKeyHabitDeleted = "habit.deleted"
	RoutingKeyHabitToggled = "habit.toggled"
	RoutingKeyTaskCreated  = "task.created"
	RoutingKeyTaskToggled  = "task.toggled"
	RoutingKeyTaskDeleted  = "task.deleted"
)

// Aggregate types stored on outbox rows.
const (
	AggregateHabit = "habit"
	AggregateTask  = "single_task"
)

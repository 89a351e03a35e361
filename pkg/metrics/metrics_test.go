package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestIncrementHabitToggle(t *testing.T) {
	before := testutil.ToFloat64(HabitToggleCount.WithLabelValues("completed"))
	IncrementHabitToggle(true)
	IncrementHabitToggle(false)
	after := testutil.ToFloat64(HabitToggleCount.WithLabelValues("completed"))
	if after-before != 1 {
		t.Errorf("completed counter moved by %v, want 1", after-before)
	}
}

func TestIncrementOutboxPublish(t *testing.T) {
	before := testutil.ToFloat64(OutboxPublishCount.WithLabelValues("habit.created", "sent"))
	IncrementOutboxPublish("habit.created", "sent")
	after := testutil.ToFloat64(OutboxPublishCount.WithLabelValues("habit.created", "sent"))
	if after-before != 1 {
		t.Errorf("counter moved by %v, want 1", after-before)
	}
}

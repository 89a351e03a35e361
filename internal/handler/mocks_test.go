package handler

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"habittracker/internal/model"
)

var errMockUnexpected = errors.New("unexpected call")

type mockHabitService struct {
	CreateFunc    func(ctx context.Context, title string, weekDays []int) (*model.Habit, error)
	GetFunc       func(ctx context.Context, id uuid.UUID) (*model.Habit, error)
	ListFunc      func(ctx context.Context) ([]model.Habit, error)
	DeleteFunc    func(ctx context.Context, id uuid.UUID) error
	ToggleFunc    func(ctx context.Context, id uuid.UUID, date *time.Time) (bool, error)
	CompletedFunc func(ctx context.Context, id uuid.UUID, date *time.Time) (bool, error)
}

func (m *mockHabitService) Create(ctx context.Context, title string, weekDays []int) (*model.Habit, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, title, weekDays)
	}
	return nil, errMockUnexpected
}

func (m *mockHabitService) Get(ctx context.Context, id uuid.UUID) (*model.Habit, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, errMockUnexpected
}

func (m *mockHabitService) List(ctx context.Context) ([]model.Habit, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, errMockUnexpected
}

func (m *mockHabitService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return errMockUnexpected
}

func (m *mockHabitService) Toggle(ctx context.Context, id uuid.UUID, date *time.Time) (bool, error) {
	if m.ToggleFunc != nil {
		return m.ToggleFunc(ctx, id, date)
	}
	return false, errMockUnexpected
}

func (m *mockHabitService) Completed(ctx context.Context, id uuid.UUID, date *time.Time) (bool, error) {
	if m.CompletedFunc != nil {
		return m.CompletedFunc(ctx, id, date)
	}
	return false, errMockUnexpected
}

type mockTaskService struct {
	CreateFunc     func(ctx context.Context, title string, date time.Time) (*model.SingleTask, error)
	GetFunc        func(ctx context.Context, id uuid.UUID) (*model.SingleTask, error)
	ListByDateFunc func(ctx context.Context, date time.Time) ([]model.SingleTask, error)
	ToggleFunc     func(ctx context.Context, id uuid.UUID) (*model.SingleTask, error)
	DeleteFunc     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTaskService) Create(ctx context.Context, title string, date time.Time) (*model.SingleTask, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, title, date)
	}
	return nil, errMockUnexpected
}

func (m *mockTaskService) Get(ctx context.Context, id uuid.UUID) (*model.SingleTask, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, errMockUnexpected
}

func (m *mockTaskService) ListByDate(ctx context.Context, date time.Time) ([]model.SingleTask, error) {
	if m.ListByDateFunc != nil {
		return m.ListByDateFunc(ctx, date)
	}
	return nil, errMockUnexpected
}

func (m *mockTaskService) Toggle(ctx context.Context, id uuid.UUID) (*model.SingleTask, error) {
	if m.ToggleFunc != nil {
		return m.ToggleFunc(ctx, id)
	}
	return nil, errMockUnexpected
}

func (m *mockTaskService) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return errMockUnexpected
}

type mockDayService struct {
	DetailFunc func(ctx context.Context, date time.Time) (model.DayDetail, error)
}

func (m *mockDayService) Detail(ctx context.Context, date time.Time) (model.DayDetail, error) {
	if m.DetailFunc != nil {
		return m.DetailFunc(ctx, date)
	}
	return model.DayDetail{}, errMockUnexpected
}

type mockSummaryService struct {
	SummaryFunc func(ctx context.Context, from, to *time.Time) ([]model.DaySummary, error)
}

func (m *mockSummaryService) Summary(ctx context.Context, from, to *time.Time) ([]model.DaySummary, error) {
	if m.SummaryFunc != nil {
		return m.SummaryFunc(ctx, from, to)
	}
	return nil, errMockUnexpected
}

// mockGuard accepts each key once.
type mockGuard struct {
	seen map[string]bool
}

func (m *mockGuard) AcquireOnce(_ context.Context, scope, key string) bool {
	if m.seen == nil {
		m.seen = map[string]bool{}
	}
	k := scope + ":" + key
	if m.seen[k] {
		return false
	}
	m.seen[k] = true
	return true
}

func (m *mockGuard) Release(_ context.Context, scope, key string) {
	delete(m.seen, scope+":"+key)
}

type mockAuth struct {
	LoginFunc func(password string) (string, error)
}

func (m *mockAuth) Login(password string) (string, error) {
	return m.LoginFunc(password)
}

type mockReplayer struct {
	ReplayEventFunc        func(ctx context.Context, eventID int64) error
	ReplayFailedEventsFunc func(ctx context.Context, limit int) (int, error)
}

func (m *mockReplayer) ReplayEvent(ctx context.Context, eventID int64) error {
	return m.ReplayEventFunc(ctx, eventID)
}

func (m *mockReplayer) ReplayFailedEvents(ctx context.Context, limit int) (int, error) {
	return m.ReplayFailedEventsFunc(ctx, limit)
}

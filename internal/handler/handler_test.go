package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"habittracker/internal/model"
	"habittracker/internal/service"
	"habittracker/pkg/outbox"
)

var testLoc = time.UTC

type testServer struct {
	habits  *mockHabitService
	tasks   *mockTaskService
	days    *mockDayService
	summary *mockSummaryService
	auth    *mockAuth
	replay  *mockReplayer
	router  *gin.Engine
}

func newTestServer() *testServer {
	gin.SetMode(gin.TestMode)
	ts := &testServer{
		habits:  &mockHabitService{},
		tasks:   &mockTaskService{},
		days:    &mockDayService{},
		summary: &mockSummaryService{},
		auth:    &mockAuth{},
		replay:  &mockReplayer{},
		router:  gin.New(),
	}
	logger := zap.NewNop()
	guard := &mockGuard{}

	habitH := NewHabitHandler(ts.habits, guard, testLoc, logger)
	taskH := NewTaskHandler(ts.tasks, guard, testLoc, logger)
	dayH := NewDayHandler(ts.days, ts.summary, testLoc, logger)
	authH := NewAuthHandler(ts.auth, logger)
	adminH := NewAdminHandler(ts.replay, logger)

	r := ts.router
	r.GET("/day", dayH.GetDay)
	r.GET("/summary", dayH.GetSummary)
	r.GET("/habits", habitH.ListHabits)
	r.GET("/habits/:id", habitH.GetHabit)
	r.POST("/habits", habitH.CreateHabit)
	r.PATCH("/habits/:id/toggle", habitH.ToggleHabit)
	r.DELETE("/habits/:id", habitH.DeleteHabit)
	r.POST("/single-task", taskH.CreateTask)
	r.GET("/single-task", taskH.ListTasks)
	r.PATCH("/tasks/:id/toggle", taskH.ToggleTask)
	r.DELETE("/tasks/:id", taskH.DeleteTask)
	r.POST("/auth/token", authH.IssueToken)
	r.POST("/admin/outbox/replay", adminH.ReplayOutboxEvent)
	r.POST("/admin/outbox/replay-failed", adminH.ReplayFailedEvents)
	return ts
}

func (ts *testServer) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestCreateHabit(t *testing.T) {
	ts := newTestServer()
	var gotTitle string
	var gotDays []int
	ts.habits.CreateFunc = func(_ context.Context, title string, weekDays []int) (*model.Habit, error) {
		gotTitle, gotDays = title, weekDays
		return &model.Habit{ID: uuid.New(), Title: title, WeekDays: weekDays}, nil
	}

	w := ts.do(http.MethodPost, "/habits", `{"title":"  Drink water ","weekDays":[1,3,5]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if gotTitle != "Drink water" {
		t.Errorf("title passed = %q", gotTitle)
	}
	if len(gotDays) != 3 {
		t.Errorf("weekDays passed = %v", gotDays)
	}

	var habit model.Habit
	decode(t, w, &habit)
	if habit.Title != "Drink water" {
		t.Errorf("response title = %q", habit.Title)
	}
}

func TestCreateHabitValidation(t *testing.T) {
	long := strings.Repeat("x", 201)
	cases := map[string]string{
		"blank title":      `{"title":"   ","weekDays":[1]}`,
		"missing title":    `{"weekDays":[1]}`,
		"long title":       fmt.Sprintf(`{"title":%q,"weekDays":[1]}`, long),
		"no weekDays":      `{"title":"Read","weekDays":[]}`,
		"missing weekDays": `{"title":"Read"}`,
		"weekday too big":  `{"title":"Read","weekDays":[7]}`,
		"negative weekday": `{"title":"Read","weekDays":[-1]}`,
		"duplicate days":   `{"title":"Read","weekDays":[1,1]}`,
		"malformed json":   `{"title":`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			ts := newTestServer()
			called := false
			ts.habits.CreateFunc = func(context.Context, string, []int) (*model.Habit, error) {
				called = true
				return &model.Habit{}, nil
			}

			w := ts.do(http.MethodPost, "/habits", body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
			if called {
				t.Error("service called for invalid input")
			}
			var resp map[string]string
			decode(t, w, &resp)
			if resp["error"] == "" {
				t.Error("missing error message")
			}
		})
	}
}

func TestGetHabit(t *testing.T) {
	ts := newTestServer()
	id := uuid.New()
	ts.habits.GetFunc = func(_ context.Context, got uuid.UUID) (*model.Habit, error) {
		if got != id {
			return nil, service.ErrHabitNotFound
		}
		return &model.Habit{ID: id, Title: "Read"}, nil
	}

	if w := ts.do(http.MethodGet, "/habits/"+id.String(), ""); w.Code != http.StatusOK {
		t.Errorf("existing: status = %d", w.Code)
	}
	if w := ts.do(http.MethodGet, "/habits/"+uuid.NewString(), ""); w.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d", w.Code)
	}
	if w := ts.do(http.MethodGet, "/habits/not-a-uuid", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d", w.Code)
	}
}

func TestListHabitsInternalError(t *testing.T) {
	ts := newTestServer()
	ts.habits.ListFunc = func(context.Context) ([]model.Habit, error) {
		return nil, errors.New("connection refused")
	}

	w := ts.do(http.MethodGet, "/habits", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "connection refused") {
		t.Errorf("internal cause leaked: %s", w.Body.String())
	}
}

func TestToggleHabitErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrHabitNotFound, http.StatusNotFound},
		{service.ErrHabitNotScheduled, http.StatusUnprocessableEntity},
		{service.ErrDayLocked, http.StatusConflict},
		{service.ErrFutureDay, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		ts := newTestServer()
		ts.habits.ToggleFunc = func(context.Context, uuid.UUID, *time.Time) (bool, error) {
			return false, c.err
		}
		w := ts.do(http.MethodPatch, "/habits/"+uuid.NewString()+"/toggle", "")
		if w.Code != c.want {
			t.Errorf("%v: status = %d, want %d", c.err, w.Code, c.want)
		}
	}
}

func TestToggleHabitDate(t *testing.T) {
	ts := newTestServer()
	var gotDate *time.Time
	ts.habits.ToggleFunc = func(_ context.Context, _ uuid.UUID, date *time.Time) (bool, error) {
		gotDate = date
		return true, nil
	}

	w := ts.do(http.MethodPatch, "/habits/"+uuid.NewString()+"/toggle?date=2024-01-03", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	want := time.Date(2024, 1, 3, 0, 0, 0, 0, testLoc)
	if gotDate == nil || !gotDate.Equal(want) {
		t.Errorf("date passed = %v, want %v", gotDate, want)
	}
	var resp map[string]bool
	decode(t, w, &resp)
	if !resp["completed"] {
		t.Errorf("response = %v", resp)
	}

	if w := ts.do(http.MethodPatch, "/habits/"+uuid.NewString()+"/toggle?date=yesterday", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad date: status = %d", w.Code)
	}

	gotDate = &want
	if w := ts.do(http.MethodPatch, "/habits/"+uuid.NewString()+"/toggle", ""); w.Code != http.StatusOK || gotDate != nil {
		t.Errorf("no date: status = %d, date = %v", w.Code, gotDate)
	}
}

func TestToggleHabitIdempotencyKey(t *testing.T) {
	ts := newTestServer()
	toggles, reads := 0, 0
	ts.habits.ToggleFunc = func(context.Context, uuid.UUID, *time.Time) (bool, error) {
		toggles++
		return true, nil
	}
	ts.habits.CompletedFunc = func(context.Context, uuid.UUID, *time.Time) (bool, error) {
		reads++
		return true, nil
	}

	path := "/habits/" + uuid.NewString() + "/toggle"
	for i := 0; i < 3; i++ {
		w := ts.do(http.MethodPatch, path, "", IdempotencyHeader, "key-1")
		if w.Code != http.StatusOK {
			t.Fatalf("attempt %d: status = %d", i, w.Code)
		}
	}
	if toggles != 1 || reads != 2 {
		t.Errorf("toggles = %d, reads = %d; want 1 and 2", toggles, reads)
	}
}

func TestToggleHabitRetryAfterFailure(t *testing.T) {
	ts := newTestServer()
	toggles := 0
	fail := true
	ts.habits.ToggleFunc = func(context.Context, uuid.UUID, *time.Time) (bool, error) {
		toggles++
		if fail {
			return false, errors.New("connection reset")
		}
		return true, nil
	}
	ts.habits.CompletedFunc = func(context.Context, uuid.UUID, *time.Time) (bool, error) {
		t.Error("retry after a failed toggle must not be treated as a replay")
		return false, nil
	}

	path := "/habits/" + uuid.NewString() + "/toggle"
	if w := ts.do(http.MethodPatch, path, "", IdempotencyHeader, "key-1"); w.Code != http.StatusInternalServerError {
		t.Fatalf("first attempt: status = %d", w.Code)
	}

	fail = false
	w := ts.do(http.MethodPatch, path, "", IdempotencyHeader, "key-1")
	if w.Code != http.StatusOK {
		t.Fatalf("retry: status = %d", w.Code)
	}
	var resp map[string]bool
	decode(t, w, &resp)
	if !resp["completed"] || toggles != 2 {
		t.Errorf("completed = %v, toggles = %d; want true and 2", resp["completed"], toggles)
	}
}

func TestToggleIdempotencyKeyScopedPerItem(t *testing.T) {
	ts := newTestServer()
	toggled := map[uuid.UUID]int{}
	ts.habits.ToggleFunc = func(_ context.Context, id uuid.UUID, _ *time.Time) (bool, error) {
		toggled[id]++
		return true, nil
	}
	ts.tasks.ToggleFunc = func(_ context.Context, id uuid.UUID) (*model.SingleTask, error) {
		toggled[id]++
		return &model.SingleTask{ID: id, Completed: true}, nil
	}

	habitA, habitB := uuid.New(), uuid.New()
	taskA, taskB := uuid.New(), uuid.New()
	paths := []string{
		"/habits/" + habitA.String() + "/toggle",
		"/habits/" + habitB.String() + "/toggle",
		"/habits/" + habitA.String() + "/toggle?date=2024-01-08",
		"/tasks/" + taskA.String() + "/toggle",
		"/tasks/" + taskB.String() + "/toggle",
	}
	for _, p := range paths {
		if w := ts.do(http.MethodPatch, p, "", IdempotencyHeader, "shared"); w.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", p, w.Code)
		}
	}

	if toggled[habitA] != 2 || toggled[habitB] != 1 || toggled[taskA] != 1 || toggled[taskB] != 1 {
		t.Errorf("toggles = %v; every item and day should toggle once per key", toggled)
	}
}

func TestToggleTaskRetryAfterFailure(t *testing.T) {
	ts := newTestServer()
	toggles := 0
	ts.tasks.ToggleFunc = func(_ context.Context, id uuid.UUID) (*model.SingleTask, error) {
		toggles++
		if toggles == 1 {
			return nil, service.ErrDayLocked
		}
		return &model.SingleTask{ID: id, Completed: true}, nil
	}

	path := "/tasks/" + uuid.NewString() + "/toggle"
	if w := ts.do(http.MethodPatch, path, "", IdempotencyHeader, "key-1"); w.Code != http.StatusConflict {
		t.Fatalf("first attempt: status = %d", w.Code)
	}
	if w := ts.do(http.MethodPatch, path, "", IdempotencyHeader, "key-1"); w.Code != http.StatusOK || toggles != 2 {
		t.Errorf("retry: status = %d, toggles = %d", w.Code, toggles)
	}
}

func TestDeleteHabit(t *testing.T) {
	ts := newTestServer()
	ts.habits.DeleteFunc = func(context.Context, uuid.UUID) error { return nil }

	w := ts.do(http.MethodDelete, "/habits/"+uuid.NewString(), "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]string
	decode(t, w, &resp)
	if resp["message"] == "" {
		t.Errorf("response = %v", resp)
	}

	ts.habits.DeleteFunc = func(context.Context, uuid.UUID) error { return service.ErrHabitNotFound }
	if w := ts.do(http.MethodDelete, "/habits/"+uuid.NewString(), ""); w.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d", w.Code)
	}
}

func TestCreateTask(t *testing.T) {
	ts := newTestServer()
	var gotDate time.Time
	ts.tasks.CreateFunc = func(_ context.Context, title string, date time.Time) (*model.SingleTask, error) {
		gotDate = date
		return &model.SingleTask{ID: uuid.New(), Title: title, Date: date}, nil
	}

	w := ts.do(http.MethodPost, "/single-task", `{"title":"Call mom","date":"2024-03-01T15:04:05Z"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if want := time.Date(2024, 3, 1, 0, 0, 0, 0, testLoc); !gotDate.Equal(want) {
		t.Errorf("date passed = %v, want %v", gotDate, want)
	}

	for _, body := range []string{
		`{"title":"Call mom"}`,
		`{"title":"Call mom","date":"03/01/2024"}`,
		`{"title":"","date":"2024-03-01"}`,
	} {
		if w := ts.do(http.MethodPost, "/single-task", body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestListTasksRequiresDate(t *testing.T) {
	ts := newTestServer()
	ts.tasks.ListByDateFunc = func(context.Context, time.Time) ([]model.SingleTask, error) {
		return []model.SingleTask{}, nil
	}

	if w := ts.do(http.MethodGet, "/single-task", ""); w.Code != http.StatusBadRequest {
		t.Errorf("no date: status = %d", w.Code)
	}
	w := ts.do(http.MethodGet, "/single-task?date=2024-03-01", "")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestToggleTask(t *testing.T) {
	ts := newTestServer()
	ts.tasks.ToggleFunc = func(_ context.Context, id uuid.UUID) (*model.SingleTask, error) {
		return &model.SingleTask{ID: id, Completed: true}, nil
	}

	w := ts.do(http.MethodPatch, "/tasks/"+uuid.NewString()+"/toggle", "")
	var resp map[string]bool
	decode(t, w, &resp)
	if w.Code != http.StatusOK || !resp["completed"] {
		t.Errorf("status = %d, resp = %v", w.Code, resp)
	}

	ts.tasks.ToggleFunc = func(context.Context, uuid.UUID) (*model.SingleTask, error) {
		return nil, service.ErrTaskNotFound
	}
	if w := ts.do(http.MethodPatch, "/tasks/"+uuid.NewString()+"/toggle", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d", w.Code)
	}
}

func TestDeleteTask(t *testing.T) {
	ts := newTestServer()
	ts.tasks.DeleteFunc = func(context.Context, uuid.UUID) error { return service.ErrTaskNotFound }
	if w := ts.do(http.MethodDelete, "/tasks/"+uuid.NewString(), ""); w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
	if w := ts.do(http.MethodDelete, "/tasks/42", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d", w.Code)
	}
}

func TestGetDay(t *testing.T) {
	ts := newTestServer()
	h := model.Habit{ID: uuid.New(), Title: "Read", WeekDays: []int{3}}
	ts.days.DetailFunc = func(_ context.Context, date time.Time) (model.DayDetail, error) {
		return model.NewDayDetail([]model.Habit{h}, []uuid.UUID{h.ID}, nil), nil
	}

	if w := ts.do(http.MethodGet, "/day", ""); w.Code != http.StatusBadRequest {
		t.Errorf("no date: status = %d", w.Code)
	}

	w := ts.do(http.MethodGet, "/day?date=2024-01-03", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		PossibleHabits      []model.Habit `json:"possibleHabits"`
		CompletedHabits     []string      `json:"completedHabits"`
		Tasks               []any         `json:"tasks"`
		TotalPossibleItems  int           `json:"totalPossibleItems"`
		TotalCompletedItems int           `json:"totalCompletedItems"`
	}
	decode(t, w, &resp)
	if resp.TotalPossibleItems != 1 || resp.TotalCompletedItems != 1 {
		t.Errorf("totals = %d/%d", resp.TotalCompletedItems, resp.TotalPossibleItems)
	}
	if resp.Tasks == nil || len(resp.CompletedHabits) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetSummary(t *testing.T) {
	ts := newTestServer()
	var gotFrom, gotTo *time.Time
	ts.summary.SummaryFunc = func(_ context.Context, from, to *time.Time) ([]model.DaySummary, error) {
		gotFrom, gotTo = from, to
		return []model.DaySummary{{ID: uuid.New(), Amount: 3, Completed: 2}}, nil
	}

	w := ts.do(http.MethodGet, "/summary?from=2024-01-01", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if gotFrom == nil || gotTo != nil {
		t.Errorf("from = %v, to = %v", gotFrom, gotTo)
	}
	var rows []model.DaySummary
	decode(t, w, &rows)
	if len(rows) != 1 || rows[0].Amount != 3 || rows[0].Completed != 2 {
		t.Errorf("rows = %+v", rows)
	}

	if w := ts.do(http.MethodGet, "/summary?to=nope", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad to: status = %d", w.Code)
	}

	ts.summary.SummaryFunc = func(context.Context, *time.Time, *time.Time) ([]model.DaySummary, error) {
		return nil, service.ErrInvalidRange
	}
	if w := ts.do(http.MethodGet, "/summary?from=2024-02-01&to=2024-01-01", ""); w.Code != http.StatusBadRequest {
		t.Errorf("inverted range: status = %d", w.Code)
	}
}

func TestIssueToken(t *testing.T) {
	ts := newTestServer()
	ts.auth.LoginFunc = func(password string) (string, error) {
		if password != "hunter2" {
			return "", service.ErrInvalidPassword
		}
		return "signed", nil
	}

	w := ts.do(http.MethodPost, "/auth/token", `{"password":"hunter2"}`)
	var resp map[string]string
	decode(t, w, &resp)
	if w.Code != http.StatusOK || resp["token"] != "signed" {
		t.Errorf("status = %d, resp = %v", w.Code, resp)
	}
	if w := ts.do(http.MethodPost, "/auth/token", `{"password":"nope"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d", w.Code)
	}
	if w := ts.do(http.MethodPost, "/auth/token", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty body: status = %d", w.Code)
	}
}

func TestReplayOutboxEvent(t *testing.T) {
	ts := newTestServer()
	ts.replay.ReplayEventFunc = func(_ context.Context, id int64) error {
		if id == 7 {
			return nil
		}
		return fmt.Errorf("%w: %d", outbox.ErrEventNotFound, id)
	}
	ts.replay.ReplayFailedEventsFunc = func(_ context.Context, limit int) (int, error) {
		return limit, nil
	}

	if w := ts.do(http.MethodPost, "/admin/outbox/replay?id=7", ""); w.Code != http.StatusOK {
		t.Errorf("existing: status = %d", w.Code)
	}
	if w := ts.do(http.MethodPost, "/admin/outbox/replay?id=8", ""); w.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d", w.Code)
	}
	if w := ts.do(http.MethodPost, "/admin/outbox/replay?id=abc", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d", w.Code)
	}

	w := ts.do(http.MethodPost, "/admin/outbox/replay-failed?limit=5", "")
	var resp map[string]any
	decode(t, w, &resp)
	if w.Code != http.StatusOK || resp["success_count"] != float64(5) {
		t.Errorf("status = %d, resp = %v", w.Code, resp)
	}
}

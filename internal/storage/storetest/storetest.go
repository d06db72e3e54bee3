// Package storetest holds the behaviour every storage backend must share.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"habitd/internal/models"
	"habitd/internal/storage"
)

// Run exercises the storage.Store contract against the store returned by open.
// open is called once per subtest; stores backed by a shared server may keep
// data between calls, so every case works with freshly generated ids.
func Run(t *testing.T, open func(t *testing.T) storage.Store) {
	cases := []struct {
		name string
		fn   func(t *testing.T, store storage.Store)
	}{
		{"Users", testUsers},
		{"HabitLifecycle", testHabitLifecycle},
		{"HabitOwnership", testHabitOwnership},
		{"ListTasksHalfOpenWeek", testListTasksHalfOpenWeek},
		{"TaskCompletionAndDelete", testTaskCompletionAndDelete},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, open(t))
		})
	}
}

func mustDay(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := models.ParseDay(raw)
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}
	return d
}

func testUsers(t *testing.T, store storage.Store) {
	ctx := context.Background()
	email := uuid.NewString() + "@example.com"

	created, err := store.CreateUser(ctx, models.User{Name: "Ada", Email: email, PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp: %#v", created)
	}

	byEmail, err := store.GetUserByEmail(ctx, email)
	if err != nil || byEmail.ID != created.ID || byEmail.PasswordHash != "hash" {
		t.Fatalf("unexpected lookup: %#v (%v)", byEmail, err)
	}

	if _, err := store.CreateUser(ctx, models.User{Name: "Other", Email: email, PasswordHash: "x"}); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := store.GetUser(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testHabitLifecycle(t *testing.T, store storage.Store) {
	ctx := context.Background()
	u1, u2 := uuid.NewString(), uuid.NewString()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first, err := store.CreateHabit(ctx, models.Habit{Owner: u1, Name: "Read", TargetDays: []string{"Mon", "Wed"}, CreatedAt: base})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	second, err := store.CreateHabit(ctx, models.Habit{Owner: u1, Name: "Run", TargetDays: models.AllWeekdays(), CreatedAt: base.Add(time.Hour)})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	if _, err := store.CreateHabit(ctx, models.Habit{Owner: u2, Name: "Swim", TargetDays: models.AllWeekdays(), CreatedAt: base}); err != nil {
		t.Fatalf("create habit: %v", err)
	}

	habits, err := store.ListHabits(ctx, u1)
	if err != nil {
		t.Fatalf("list habits: %v", err)
	}
	if len(habits) != 2 || habits[0].ID != second.ID || habits[1].ID != first.ID {
		t.Fatalf("expected newest first, got %#v", habits)
	}
	if len(habits[1].TargetDays) != 2 || habits[1].TargetDays[0] != "Mon" {
		t.Fatalf("unexpected target days: %v", habits[1].TargetDays)
	}

	toggled, err := store.ToggleHabitDay(ctx, u1, first.ID, mustDay(t, "2024-03-11"))
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if len(toggled.CompletedDates) != 1 || models.DayKey(toggled.CompletedDates[0]) != "2024-03-11" {
		t.Fatalf("unexpected completed dates: %v", toggled.CompletedDates)
	}

	habits, err = store.ListHabits(ctx, u1)
	if err != nil {
		t.Fatalf("list habits: %v", err)
	}
	if len(habits[1].CompletedDates) != 1 || len(habits[0].CompletedDates) != 0 {
		t.Fatalf("completions attached to wrong habit: %#v", habits)
	}

	toggled, err = store.ToggleHabitDay(ctx, u1, first.ID, mustDay(t, "2024-03-11T22:00:00Z"))
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if len(toggled.CompletedDates) != 0 {
		t.Fatalf("expected toggle on same day to remove it, got %v", toggled.CompletedDates)
	}

	if err := store.DeleteHabit(ctx, u1, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetHabit(ctx, u1, first.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func testHabitOwnership(t *testing.T, store storage.Store) {
	ctx := context.Background()
	owner, intruder := uuid.NewString(), uuid.NewString()

	habit, err := store.CreateHabit(ctx, models.Habit{Owner: owner, Name: "Read", TargetDays: models.AllWeekdays()})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}

	if _, err := store.GetHabit(ctx, intruder, habit.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := store.ToggleHabitDay(ctx, intruder, habit.ID, mustDay(t, "2024-03-11")); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("toggle: expected ErrNotFound, got %v", err)
	}
	if err := store.DeleteHabit(ctx, intruder, habit.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
	if got, err := store.ListHabits(ctx, intruder); err != nil || len(got) != 0 {
		t.Fatalf("expected empty list for intruder, got %#v (%v)", got, err)
	}

	untouched, err := store.GetHabit(ctx, owner, habit.ID)
	if err != nil || len(untouched.CompletedDates) != 0 {
		t.Fatalf("habit changed by intruder: %#v (%v)", untouched, err)
	}
}

func testListTasksHalfOpenWeek(t *testing.T, store storage.Store) {
	ctx := context.Background()
	u1, u2 := uuid.NewString(), uuid.NewString()
	start := mustDay(t, "2024-03-10")

	for _, raw := range []string{"2024-03-09", "2024-03-16", "2024-03-10", "2024-03-17", "2024-03-12"} {
		d := mustDay(t, raw)
		if _, err := store.CreateTask(ctx, models.Task{Owner: u1, Date: d, TaskName: "task " + raw, Category: "general", DayOfWeek: models.DayOfWeek(d)}); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
	if _, err := store.CreateTask(ctx, models.Task{Owner: u2, Date: start, TaskName: "foreign", Category: "general", DayOfWeek: "Sunday"}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	tasks, err := store.ListTasks(ctx, u1, start, start.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	want := []string{"2024-03-10", "2024-03-12", "2024-03-16"}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %#v", len(want), tasks)
	}
	for i, task := range tasks {
		if models.DayKey(task.Date) != want[i] || task.Owner != u1 {
			t.Fatalf("task %d: unexpected %#v", i, task)
		}
	}
}

func testTaskCompletionAndDelete(t *testing.T, store storage.Store) {
	ctx := context.Background()
	u1, u2 := uuid.NewString(), uuid.NewString()
	d := mustDay(t, "2024-03-14")

	task, err := store.CreateTask(ctx, models.Task{Owner: u1, Date: d, TaskName: "Write report", Category: "work", DayOfWeek: models.DayOfWeek(d)})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.Completed || task.DayOfWeek != "Thursday" {
		t.Fatalf("unexpected created task: %#v", task)
	}

	if _, err := store.SetTaskCompleted(ctx, u2, task.ID, true); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}

	updated, err := store.SetTaskCompleted(ctx, u1, task.ID, true)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Completed || updated.TaskName != task.TaskName || updated.Category != "work" || !updated.Date.Equal(task.Date) {
		t.Fatalf("unexpected update result: %#v", updated)
	}

	if err := store.DeleteTask(ctx, u2, task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}
	if err := store.DeleteTask(ctx, u1, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteTask(ctx, u1, task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"habitd/internal/models"
	"habitd/internal/storage"
	"habitd/internal/storage/storetest"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "habitd-test.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		return setupStore(t)
	})
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	if _, err := Open("", nil); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitd.db")
	ctx := context.Background()

	store, err := Open(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	habit, err := store.CreateHabit(ctx, models.Habit{Owner: "u1", Name: "Read", TargetDays: models.AllWeekdays()})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err = Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	got, err := store.GetHabit(ctx, "u1", habit.ID)
	if err != nil {
		t.Fatalf("get habit after reopen: %v", err)
	}
	if got.Name != "Read" || len(got.TargetDays) != 7 {
		t.Fatalf("unexpected habit after reopen: %#v", got)
	}
}

func TestDeleteHabitCascadesCompletions(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	habit, err := store.CreateHabit(ctx, models.Habit{Owner: "u1", Name: "Read", TargetDays: models.AllWeekdays()})
	if err != nil {
		t.Fatalf("create habit: %v", err)
	}
	day, _ := models.ParseDay("2024-03-11")
	if _, err := store.ToggleHabitDay(ctx, "u1", habit.ID, day); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := store.DeleteHabit(ctx, "u1", habit.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var count int
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM habit_completions WHERE habit_id = ?`, habit.ID).Scan(&count); err != nil {
		t.Fatalf("count completions: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected completions to be removed, found %d", count)
	}
}

package progress

import (
	"testing"
	"time"

	"habitd/internal/models"
)

func day(t *testing.T, raw string) time.Time {
	t.Helper()
	d, err := models.ParseDay(raw)
	if err != nil {
		t.Fatalf("parse day %q: %v", raw, err)
	}
	return d
}

func TestWeekDatesStartOnSunday(t *testing.T) {
	// 2024-03-10 is a Sunday.
	anchor := day(t, "2024-03-10")
	for i := 0; i < 14; i++ {
		at := anchor.AddDate(0, 0, i).Add(13 * time.Hour)
		dates := WeekDates(at)
		if len(dates) != 7 {
			t.Fatalf("expected 7 dates, got %d", len(dates))
		}
		if dates[0].Weekday() != time.Sunday {
			t.Fatalf("week of %v starts on %v", at, dates[0].Weekday())
		}
		for j := 1; j < len(dates); j++ {
			if !dates[j].Equal(dates[j-1].AddDate(0, 0, 1)) {
				t.Fatalf("dates not consecutive: %v", dates)
			}
		}
		if at.Before(dates[0]) || !at.Before(dates[6].AddDate(0, 0, 1)) {
			t.Fatalf("anchor %v outside its week %v..%v", at, dates[0], dates[6])
		}
	}
}

func TestWeekStartOnSundayIsIdentity(t *testing.T) {
	sunday := day(t, "2024-03-17")
	if got := WeekStart(sunday); !got.Equal(sunday) {
		t.Fatalf("expected %v, got %v", sunday, got)
	}
}

func TestDailyCompletion(t *testing.T) {
	tasks := []models.Task{
		{Date: day(t, "2024-03-14"), Completed: true},
		{Date: day(t, "2024-03-14")},
		{Date: day(t, "2024-03-14"), Completed: true},
		{Date: day(t, "2024-03-15"), Completed: true},
	}
	completed, total := DailyCompletion(tasks, day(t, "2024-03-14").Add(20*time.Hour))
	if completed != 2 || total != 3 {
		t.Fatalf("expected 2/3, got %d/%d", completed, total)
	}
	completed, total = DailyCompletion(tasks, day(t, "2024-03-16"))
	if completed != 0 || total != 0 {
		t.Fatalf("expected 0/0, got %d/%d", completed, total)
	}
}

func TestDailySeries(t *testing.T) {
	tasks := []models.Task{
		{Date: day(t, "2024-03-10"), Completed: true},
		{Date: day(t, "2024-03-14"), Completed: true},
		{Date: day(t, "2024-03-14"), Completed: true},
		{Date: day(t, "2024-03-16")},
	}
	got := DailySeries(tasks, WeekDates(day(t, "2024-03-12")))
	want := []int{1, 0, 0, 0, 2, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestHabitWeeklyProgressUsesFixedDenominator(t *testing.T) {
	habit := models.Habit{Name: "Read", TargetDays: []string{"Mon", "Wed", "Fri"}}
	monday := day(t, "2024-03-11").Add(9 * time.Hour)
	habit.Toggle(monday)

	if got := HabitWeeklyProgress(habit, WeekDates(monday)); got != 14 {
		t.Fatalf("expected 14%%, got %d%%", got)
	}

	habit.Toggle(day(t, "2024-03-13"))
	habit.Toggle(day(t, "2024-03-15"))
	if got := HabitWeeklyProgress(habit, WeekDates(monday)); got != 43 {
		t.Fatalf("expected 43%% for every target day, got %d%%", got)
	}

	// Completions outside the week do not count.
	habit.Toggle(day(t, "2024-03-18"))
	if got := HabitWeeklyProgress(habit, WeekDates(monday)); got != 43 {
		t.Fatalf("expected 43%%, got %d%%", got)
	}
}

func TestOverallProgress(t *testing.T) {
	if got := OverallProgress(nil); got != 0 {
		t.Fatalf("expected 0 for no tasks, got %d", got)
	}
	tasks := []models.Task{{Completed: true}, {}, {}}
	if got := OverallProgress(tasks); got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
	tasks = append(tasks, models.Task{Completed: true}, models.Task{Completed: true}, models.Task{Completed: true}, models.Task{Completed: true}, models.Task{})
	// 5 of 8 = 62.5 rounds half up.
	if got := OverallProgress(tasks); got != 63 {
		t.Fatalf("expected 63, got %d", got)
	}
}

func TestSummarize(t *testing.T) {
	habit := models.Habit{ID: "h1", Name: "Run"}
	habit.Toggle(day(t, "2024-03-10"))
	habit.Toggle(day(t, "2024-03-12"))

	tasks := []models.Task{
		{Date: day(t, "2024-03-12"), Completed: true},
		{Date: day(t, "2024-03-12")},
		{Date: day(t, "2024-03-16"), Completed: true},
	}

	summary := Summarize(day(t, "2024-03-13"), []models.Habit{habit}, tasks)
	if !summary.WeekStart.Equal(day(t, "2024-03-10")) {
		t.Fatalf("unexpected week start %v", summary.WeekStart)
	}
	if len(summary.Days) != 7 || summary.Days[2].Total != 2 || summary.Days[2].Completed != 1 {
		t.Fatalf("unexpected days: %#v", summary.Days)
	}
	if summary.Days[2].DayOfWeek != "Tuesday" {
		t.Fatalf("expected Tuesday, got %s", summary.Days[2].DayOfWeek)
	}
	if summary.CompletedTasks != 2 || summary.TotalTasks != 3 || summary.Overall != 67 {
		t.Fatalf("unexpected totals: %d/%d %d%%", summary.CompletedTasks, summary.TotalTasks, summary.Overall)
	}
	if len(summary.Habits) != 1 || summary.Habits[0].Progress != 29 {
		t.Fatalf("unexpected habits: %#v", summary.Habits)
	}
	if !summary.Habits[0].Days[0] || summary.Habits[0].Days[1] || !summary.Habits[0].Days[2] {
		t.Fatalf("unexpected habit days: %v", summary.Habits[0].Days)
	}
}

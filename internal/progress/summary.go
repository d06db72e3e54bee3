package progress

import (
	"time"

	"habitd/internal/models"
)

// DaySummary describes task completion on one day of the week.
type DaySummary struct {
	Date      time.Time `json:"date"`
	DayOfWeek string    `json:"dayOfWeek"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
}

// HabitSummary is a habit's completion within the week.
type HabitSummary struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Days     []bool `json:"days"`
	Progress int    `json:"progress"`
}

// WeekSummary bundles everything the dashboard shows for one week.
type WeekSummary struct {
	WeekStart      time.Time      `json:"weekStart"`
	Days           []DaySummary   `json:"days"`
	Series         []int          `json:"series"`
	Habits         []HabitSummary `json:"habits"`
	CompletedTasks int            `json:"completedTasks"`
	TotalTasks     int            `json:"totalTasks"`
	Overall        int            `json:"overallPercentage"`
}

// Summarize aggregates habits and tasks for the week containing anchor. Task
// totals cover the whole tasks slice, which callers load for that week.
func Summarize(anchor time.Time, habits []models.Habit, tasks []models.Task) WeekSummary {
	dates := WeekDates(anchor)

	summary := WeekSummary{
		WeekStart: dates[0],
		Days:      make([]DaySummary, 0, len(dates)),
		Series:    DailySeries(tasks, dates),
		Habits:    make([]HabitSummary, 0, len(habits)),
		Overall:   OverallProgress(tasks),
	}

	for _, d := range dates {
		completed, total := DailyCompletion(tasks, d)
		summary.Days = append(summary.Days, DaySummary{
			Date:      d,
			DayOfWeek: models.DayOfWeek(d),
			Completed: completed,
			Total:     total,
		})
	}

	for _, h := range habits {
		days := make([]bool, len(dates))
		for i, d := range dates {
			days[i] = h.CompletedOn(d)
		}
		summary.Habits = append(summary.Habits, HabitSummary{
			ID:       h.ID,
			Name:     h.Name,
			Days:     days,
			Progress: HabitWeeklyProgress(h, dates),
		})
	}

	for _, t := range tasks {
		summary.TotalTasks++
		if t.Completed {
			summary.CompletedTasks++
		}
	}
	return summary
}

// Package progress computes weekly completion statistics for habits and tasks.
// Every function is pure and works on calendar days as produced by models.Day.
package progress

import (
	"math"
	"time"

	"habitd/internal/models"
)

// DaysPerWeek is the fixed length of a tracking week and the denominator of
// HabitWeeklyProgress.
const DaysPerWeek = 7

// WeekStart returns the Sunday on or before anchor.
func WeekStart(anchor time.Time) time.Time {
	day := models.Day(anchor)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WeekDates returns the seven consecutive days of the Sunday-based week that
// contains anchor.
func WeekDates(anchor time.Time) []time.Time {
	start := WeekStart(anchor)
	dates := make([]time.Time, DaysPerWeek)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

// DailyCompletion counts the tasks dated on date and how many of them are done.
func DailyCompletion(tasks []models.Task, date time.Time) (completed, total int) {
	for _, t := range tasks {
		if !models.SameDay(t.Date, date) {
			continue
		}
		total++
		if t.Completed {
			completed++
		}
	}
	return completed, total
}

// DailySeries returns the number of completed tasks for each day of weekDates.
func DailySeries(tasks []models.Task, weekDates []time.Time) []int {
	series := make([]int, len(weekDates))
	for i, d := range weekDates {
		series[i], _ = DailyCompletion(tasks, d)
	}
	return series
}

// HabitWeeklyProgress is the share of weekDates on which habit was completed,
// as a rounded percentage of DaysPerWeek.
//
// The denominator ignores habit.TargetDays: a habit scheduled three days a week
// tops out at 43% unless it is also done on its off days. Existing dashboards
// depend on this number, so it is kept as is.
func HabitWeeklyProgress(habit models.Habit, weekDates []time.Time) int {
	hits := 0
	for _, d := range weekDates {
		if habit.CompletedOn(d) {
			hits++
		}
	}
	return percent(hits, DaysPerWeek)
}

// OverallProgress is the rounded percentage of completed tasks, or 0 when
// there are none.
func OverallProgress(tasks []models.Task) int {
	completed := 0
	for _, t := range tasks {
		if t.Completed {
			completed++
		}
	}
	return percent(completed, len(tasks))
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Floor(float64(part)*100/float64(whole) + 0.5))
}

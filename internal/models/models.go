package models

import (
	"sort"
	"time"
)

// DefaultCategory is assigned to tasks created without a category.
const DefaultCategory = "general"

// User is an account that owns habits and tasks.
type User struct {
	ID           string    `json:"_id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// Habit is a recurring activity marked done per calendar day.
type Habit struct {
	ID             string      `json:"_id" bson:"_id"`
	Owner          string      `json:"user" bson:"user"`
	Name           string      `json:"name" bson:"name"`
	TargetDays     []string    `json:"targetDays" bson:"targetDays"`
	CompletedDates []time.Time `json:"completedDates" bson:"completedDates"`
	CreatedAt      time.Time   `json:"createdAt" bson:"createdAt"`
}

// CompletedOn reports whether the habit is marked done on day's calendar date.
func (h Habit) CompletedOn(day time.Time) bool {
	for _, d := range h.CompletedDates {
		if SameDay(d, day) {
			return true
		}
	}
	return false
}

// Toggle flips the completion mark for day's calendar date and reports whether
// the day is marked afterwards. Entries sharing that date are all removed, so a
// habit never holds the same day twice.
func (h *Habit) Toggle(day time.Time) bool {
	day = Day(day)
	kept := h.CompletedDates[:0:0]
	removed := false
	for _, d := range h.CompletedDates {
		if SameDay(d, day) {
			removed = true
			continue
		}
		kept = append(kept, Day(d))
	}
	if !removed {
		kept = append(kept, day)
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Before(kept[j]) })
	h.CompletedDates = kept
	return !removed
}

// Task is a one-off item anchored to a calendar day.
type Task struct {
	ID        string    `json:"_id" bson:"_id"`
	Owner     string    `json:"user" bson:"user"`
	Date      time.Time `json:"date" bson:"date"`
	TaskName  string    `json:"taskName" bson:"taskName"`
	Completed bool      `json:"completed" bson:"completed"`
	Category  string    `json:"category" bson:"category"`
	DayOfWeek string    `json:"dayOfWeek" bson:"dayOfWeek"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

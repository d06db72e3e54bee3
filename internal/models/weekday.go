package models

import (
	"fmt"
	"strings"
	"time"
)

// WeekdayLabels lists the short weekday labels in Sunday-first order.
var WeekdayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var labelIndex = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// AllWeekdays returns a fresh copy of every weekday label.
func AllWeekdays() []string {
	out := make([]string, len(WeekdayLabels))
	copy(out, WeekdayLabels)
	return out
}

// DayOfWeek returns the full English weekday name of t ("Thursday").
func DayOfWeek(t time.Time) string {
	return t.Weekday().String()
}

// ShortDayName returns the three-letter label of t ("Thu").
func ShortDayName(t time.Time) string {
	return WeekdayLabels[t.Weekday()]
}

// NormalizeTargetDays validates weekday labels, drops duplicates and returns
// them in Sunday-first order. An empty input selects every day.
func NormalizeTargetDays(labels []string) ([]string, error) {
	if len(labels) == 0 {
		return AllWeekdays(), nil
	}

	var seen [7]bool
	for _, label := range labels {
		wd, ok := labelIndex[strings.ToLower(strings.TrimSpace(label))]
		if !ok {
			return nil, fmt.Errorf("invalid target day %q", label)
		}
		seen[wd] = true
	}

	out := make([]string, 0, 7)
	for i, ok := range seen {
		if ok {
			out = append(out, WeekdayLabels[i])
		}
	}
	return out, nil
}

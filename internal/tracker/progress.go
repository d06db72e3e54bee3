package tracker

import (
	"context"

	"habitd/internal/models"
	"habitd/internal/progress"
	"habitd/internal/storage"
)

// ProgressService builds weekly dashboards from stored habits and tasks.
type ProgressService struct {
	store storage.Store
}

// NewProgressService builds a ProgressService.
func NewProgressService(store storage.Store) *ProgressService {
	return &ProgressService{store: store}
}

// Week summarizes the Sunday-based week containing anchor.
func (s *ProgressService) Week(ctx context.Context, owner, anchor string) (progress.WeekSummary, error) {
	day, err := models.ParseDay(anchor)
	if err != nil {
		return progress.WeekSummary{}, invalid("%v", err)
	}
	start := progress.WeekStart(day)

	habits, err := s.store.ListHabits(ctx, owner)
	if err != nil {
		return progress.WeekSummary{}, err
	}
	tasks, err := s.store.ListTasks(ctx, owner, start, start.AddDate(0, 0, progress.DaysPerWeek))
	if err != nil {
		return progress.WeekSummary{}, err
	}
	return progress.Summarize(start, habits, tasks), nil
}

package tracker

import (
	"context"
	"log/slog"
	"strings"

	"habitd/internal/models"
	"habitd/internal/progress"
	"habitd/internal/storage"
)

// NewTask is the input of TaskService.Create.
type NewTask struct {
	Date     string
	TaskName string
	Category string
}

// TaskService lists, creates, completes and deletes tasks.
type TaskService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewTaskService builds a TaskService.
func NewTaskService(store storage.Store, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{store: store, logger: logger}
}

// ListByWeek returns the owner's tasks dated in [start, start+7 days), ordered
// by date. start is reduced to its calendar day but not moved to a Sunday.
func (s *TaskService) ListByWeek(ctx context.Context, owner, start string) ([]models.Task, error) {
	from, err := models.ParseDay(start)
	if err != nil {
		return nil, invalid("%v", err)
	}
	return s.store.ListTasks(ctx, owner, from, from.AddDate(0, 0, progress.DaysPerWeek))
}

// Create validates in and stores a task. The weekday label is derived from
// the date once, here.
func (s *TaskService) Create(ctx context.Context, owner string, in NewTask) (models.Task, error) {
	if strings.TrimSpace(in.Date) == "" {
		return models.Task{}, invalid("date is required")
	}
	day, err := models.ParseDay(in.Date)
	if err != nil {
		return models.Task{}, invalid("%v", err)
	}
	name := strings.TrimSpace(in.TaskName)
	if name == "" {
		return models.Task{}, invalid("taskName is required")
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = models.DefaultCategory
	}

	task, err := s.store.CreateTask(ctx, models.Task{
		Owner:     owner,
		Date:      day,
		TaskName:  name,
		Category:  category,
		DayOfWeek: models.DayOfWeek(day),
	})
	if err != nil {
		return models.Task{}, err
	}
	s.logger.Debug("task created", slog.String("user", owner), slog.String("task", task.ID))
	return task, nil
}

// UpdateCompletion sets the task's completed flag. A nil flag is rejected.
func (s *TaskService) UpdateCompletion(ctx context.Context, owner, id string, completed *bool) (models.Task, error) {
	if completed == nil {
		return models.Task{}, invalid("completed is required")
	}
	return s.store.SetTaskCompleted(ctx, owner, id, *completed)
}

// Delete removes one of the owner's tasks.
func (s *TaskService) Delete(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteTask(ctx, owner, id); err != nil {
		return err
	}
	s.logger.Debug("task deleted", slog.String("user", owner), slog.String("task", id))
	return nil
}

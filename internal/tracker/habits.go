// Package tracker implements the habit and task operations on top of a
// storage.Store. Every call is scoped to the authenticated owner.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"habitd/internal/models"
	"habitd/internal/storage"
)

// ErrValidation marks input that is missing or malformed.
var ErrValidation = errors.New("invalid input")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NewHabit is the input of HabitService.Create.
type NewHabit struct {
	Name       string
	TargetDays []string
}

// HabitService lists, creates, toggles and deletes habits.
type HabitService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewHabitService builds a HabitService.
func NewHabitService(store storage.Store, logger *slog.Logger) *HabitService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HabitService{store: store, logger: logger}
}

// List returns the owner's habits, newest first.
func (s *HabitService) List(ctx context.Context, owner string) ([]models.Habit, error) {
	return s.store.ListHabits(ctx, owner)
}

// Create validates in and stores a new habit. Omitted target days select the
// whole week.
func (s *HabitService) Create(ctx context.Context, owner string, in NewHabit) (models.Habit, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Habit{}, invalid("name is required")
	}
	days, err := models.NormalizeTargetDays(in.TargetDays)
	if err != nil {
		return models.Habit{}, invalid("%v", err)
	}

	habit, err := s.store.CreateHabit(ctx, models.Habit{
		Owner:      owner,
		Name:       name,
		TargetDays: days,
	})
	if err != nil {
		return models.Habit{}, err
	}
	s.logger.Debug("habit created", slog.String("user", owner), slog.String("habit", habit.ID))
	return habit, nil
}

// Toggle flips the habit's completion mark on the calendar day named by date.
// Calling it twice with the same day restores the original state.
func (s *HabitService) Toggle(ctx context.Context, owner, id, date string) (models.Habit, error) {
	day, err := models.ParseDay(date)
	if err != nil {
		return models.Habit{}, invalid("%v", err)
	}
	return s.store.ToggleHabitDay(ctx, owner, id, day)
}

// Delete removes one of the owner's habits.
func (s *HabitService) Delete(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteHabit(ctx, owner, id); err != nil {
		return err
	}
	s.logger.Debug("habit deleted", slog.String("user", owner), slog.String("habit", id))
	return nil
}

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"habitd/internal/models"
	"habitd/internal/storage"
)

// ListHabits returns the owner's habits, newest first.
func (s *Store) ListHabits(ctx context.Context, owner string) ([]models.Habit, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.habits.Find(ctx, bson.M{"user": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	habits := []models.Habit{}
	if err := cur.All(ctx, &habits); err != nil {
		return nil, fmt.Errorf("decode habits: %w", err)
	}
	for i := range habits {
		normalizeHabit(&habits[i])
	}
	return habits, nil
}

// CreateHabit persists a new habit document for h.Owner.
func (s *Store) CreateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	normalizeHabit(&h)

	if _, err := s.habits.InsertOne(ctx, h); err != nil {
		return models.Habit{}, fmt.Errorf("insert habit: %w", err)
	}
	return s.GetHabit(ctx, h.Owner, h.ID)
}

// GetHabit fetches one of the owner's habits.
func (s *Store) GetHabit(ctx context.Context, owner, id string) (models.Habit, error) {
	var h models.Habit
	err := s.habits.FindOne(ctx, owned(owner, id)).Decode(&h)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Habit{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Habit{}, fmt.Errorf("get habit: %w", err)
	}
	normalizeHabit(&h)
	return h, nil
}

// ToggleHabitDay reads the habit, flips day through models.Habit.Toggle and
// writes the array back. Concurrent toggles on one habit resolve as last
// write wins.
func (s *Store) ToggleHabitDay(ctx context.Context, owner, id string, day time.Time) (models.Habit, error) {
	h, err := s.GetHabit(ctx, owner, id)
	if err != nil {
		return models.Habit{}, err
	}
	h.Toggle(day)

	res, err := s.habits.UpdateOne(ctx, owned(owner, id), bson.M{"$set": bson.M{"completedDates": h.CompletedDates}})
	if err != nil {
		return models.Habit{}, fmt.Errorf("update habit: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.Habit{}, storage.ErrNotFound
	}
	return h, nil
}

// DeleteHabit removes the habit document.
func (s *Store) DeleteHabit(ctx context.Context, owner, id string) error {
	res, err := s.habits.DeleteOne(ctx, owned(owner, id))
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func normalizeHabit(h *models.Habit) {
	if h.TargetDays == nil {
		h.TargetDays = []string{}
	}
	dates := make([]time.Time, 0, len(h.CompletedDates))
	for _, d := range h.CompletedDates {
		dates = append(dates, models.Day(d))
	}
	h.CompletedDates = dates
}

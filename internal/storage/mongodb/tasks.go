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

// ListTasks returns the owner's tasks dated in [from, to), ordered by date.
func (s *Store) ListTasks(ctx context.Context, owner string, from, to time.Time) ([]models.Task, error) {
	filter := bson.M{
		"user": owner,
		"date": bson.M{"$gte": models.Day(from), "$lt": models.Day(to)},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "createdAt", Value: 1}})

	cur, err := s.tasks.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := []models.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	for i := range tasks {
		tasks[i].Date = models.Day(tasks[i].Date)
	}
	return tasks, nil
}

// CreateTask inserts a new task document for t.Owner.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	t.Date = models.Day(t.Date)

	if _, err := s.tasks.InsertOne(ctx, t); err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(ctx, t.Owner, t.ID)
}

// GetTask retrieves one of the owner's tasks.
func (s *Store) GetTask(ctx context.Context, owner, id string) (models.Task, error) {
	var t models.Task
	err := s.tasks.FindOne(ctx, owned(owner, id)).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Task{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	t.Date = models.Day(t.Date)
	return t, nil
}

// SetTaskCompleted updates only the completion flag.
func (s *Store) SetTaskCompleted(ctx context.Context, owner, id string, completed bool) (models.Task, error) {
	res, err := s.tasks.UpdateOne(ctx, owned(owner, id), bson.M{"$set": bson.M{"completed": completed}})
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.Task{}, storage.ErrNotFound
	}
	return s.GetTask(ctx, owner, id)
}

// DeleteTask removes a task document.
func (s *Store) DeleteTask(ctx context.Context, owner, id string) error {
	res, err := s.tasks.DeleteOne(ctx, owned(owner, id))
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

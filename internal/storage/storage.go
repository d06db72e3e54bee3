// Package storage defines the persistence contract shared by every backend.
//
// Every habit and task method takes the owner id and applies it as a query
// predicate. A record owned by somebody else is reported as ErrNotFound, the
// same as a record that does not exist.
package storage

import (
	"context"
	"errors"
	"time"

	"habitd/internal/models"
)

var (
	// ErrNotFound reports a missing record or one owned by another user.
	ErrNotFound = errors.New("storage: not found")
	// ErrConflict reports a unique constraint violation, such as a reused email.
	ErrConflict = errors.New("storage: conflict")
)

// Store is implemented by the sqlite, postgres and mongo backends.
type Store interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	ListHabits(ctx context.Context, owner string) ([]models.Habit, error)
	CreateHabit(ctx context.Context, h models.Habit) (models.Habit, error)
	GetHabit(ctx context.Context, owner, id string) (models.Habit, error)
	ToggleHabitDay(ctx context.Context, owner, id string, day time.Time) (models.Habit, error)
	DeleteHabit(ctx context.Context, owner, id string) error

	// ListTasks returns the owner's tasks dated in [from, to), ordered by date.
	ListTasks(ctx context.Context, owner string, from, to time.Time) ([]models.Task, error)
	CreateTask(ctx context.Context, t models.Task) (models.Task, error)
	GetTask(ctx context.Context, owner, id string) (models.Task, error)
	SetTaskCompleted(ctx context.Context, owner, id string, completed bool) (models.Task, error)
	DeleteTask(ctx context.Context, owner, id string) error

	Ping(ctx context.Context) error
	Close() error
}

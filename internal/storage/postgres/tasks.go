package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"habitd/internal/models"
	"habitd/internal/storage"
)

const taskColumns = `id, user_id, date, task_name, completed, category, day_of_week, created_at`

// ListTasks returns the owner's tasks dated in [from, to), ordered by date.
func (s *Store) ListTasks(ctx context.Context, owner string, from, to time.Time) ([]models.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE user_id = $1 AND date >= $2 AND date < $3
		ORDER BY date, created_at`, owner, models.Day(from), models.Day(to))
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateTask inserts a new task for t.Owner.
func (s *Store) CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Owner, models.Day(t.Date), t.TaskName, t.Completed, t.Category, t.DayOfWeek, t.CreatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(ctx, t.Owner, t.ID)
}

// GetTask retrieves one of the owner's tasks.
func (s *Store) GetTask(ctx context.Context, owner, id string) (models.Task, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, owner)
	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, storage.ErrNotFound
	}
	return t, err
}

// SetTaskCompleted updates only the completion flag.
func (s *Store) SetTaskCompleted(ctx context.Context, owner, id string, completed bool) (models.Task, error) {
	if err := s.exec(ctx, "update task", `UPDATE tasks SET completed = $1 WHERE id = $2 AND user_id = $3`, completed, id, owner); err != nil {
		return models.Task{}, err
	}
	return s.GetTask(ctx, owner, id)
}

// DeleteTask removes a task by id.
func (s *Store) DeleteTask(ctx context.Context, owner, id string) error {
	return s.exec(ctx, "delete task", `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, owner)
}

func scanTask(row pgx.Row) (models.Task, error) {
	var t models.Task
	err := row.Scan(&t.ID, &t.Owner, &t.Date, &t.TaskName, &t.Completed, &t.Category, &t.DayOfWeek, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, err
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("scan task: %w", err)
	}
	t.Date = models.Day(t.Date)
	return t, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"habitd/internal/models"
	"habitd/internal/storage"
)

const taskColumns = `id, user_id, date, task_name, completed, category, day_of_week, created_at`

// ListTasks returns the owner's tasks dated in [from, to), ordered by date.
func (s *Store) ListTasks(ctx context.Context, owner string, from, to time.Time) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks
        WHERE user_id = ? AND date >= ? AND date < ?
        ORDER BY date, created_at, rowid`, owner, models.DayKey(from), models.DayKey(to))
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

	_, err := s.db.ExecContext(ctx, `INSERT INTO tasks(`+taskColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Owner, models.DayKey(t.Date), t.TaskName, t.Completed, t.Category, t.DayOfWeek, t.CreatedAt)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(ctx, t.Owner, t.ID)
}

// GetTask retrieves one of the owner's tasks.
func (s *Store) GetTask(ctx context.Context, owner, id string) (models.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, id, owner)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, storage.ErrNotFound
	}
	return t, err
}

// SetTaskCompleted updates the completion flag and leaves every other column alone.
func (s *Store) SetTaskCompleted(ctx context.Context, owner, id string, completed bool) (models.Task, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET completed = ? WHERE id = ? AND user_id = ?`, completed, id, owner)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Task{}, err
	}
	if affected == 0 {
		return models.Task{}, storage.ErrNotFound
	}
	return s.GetTask(ctx, owner, id)
}

// DeleteTask removes a task by id.
func (s *Store) DeleteTask(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanTask(row scanner) (models.Task, error) {
	var (
		t    models.Task
		date string
	)
	if err := row.Scan(&t.ID, &t.Owner, &date, &t.TaskName, &t.Completed, &t.Category, &t.DayOfWeek, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, err
		}
		return models.Task{}, fmt.Errorf("scan task: %w", err)
	}
	day, err := time.Parse(models.DayLayout, date)
	if err != nil {
		return models.Task{}, fmt.Errorf("parse task date: %w", err)
	}
	t.Date = day
	return t, nil
}

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

// ListHabits returns the owner's habits, newest first.
func (s *Store) ListHabits(ctx context.Context, owner string) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, name, target_days, created_at
        FROM habits WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}

	habits := []models.Habit{}
	index := map[string]int{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[h.ID] = len(habits)
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	days, err := s.db.QueryContext(ctx, `SELECT c.habit_id, c.day FROM habit_completions c
        JOIN habits h ON h.id = c.habit_id WHERE h.user_id = ? ORDER BY c.day`, owner)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer days.Close()

	for days.Next() {
		var habitID, raw string
		if err := days.Scan(&habitID, &raw); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		day, err := time.Parse(models.DayLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("parse completion day: %w", err)
		}
		if i, ok := index[habitID]; ok {
			habits[i].CompletedDates = append(habits[i].CompletedDates, day)
		}
	}
	return habits, days.Err()
}

// CreateHabit persists a new habit for h.Owner.
func (s *Store) CreateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO habits(id, user_id, name, target_days, created_at) VALUES(?, ?, ?, ?, ?)`,
		h.ID, h.Owner, h.Name, joinDays(h.TargetDays), h.CreatedAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("insert habit: %w", err)
	}
	return s.GetHabit(ctx, h.Owner, h.ID)
}

// GetHabit fetches one of the owner's habits with its completion days.
func (s *Store) GetHabit(ctx context.Context, owner, id string) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, user_id, name, target_days, created_at
        FROM habits WHERE id = ? AND user_id = ?`, id, owner)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Habit{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT day FROM habit_completions WHERE habit_id = ? ORDER BY day`, id)
	if err != nil {
		return models.Habit{}, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return models.Habit{}, fmt.Errorf("scan completion: %w", err)
		}
		day, err := time.Parse(models.DayLayout, raw)
		if err != nil {
			return models.Habit{}, fmt.Errorf("parse completion day: %w", err)
		}
		h.CompletedDates = append(h.CompletedDates, day)
	}
	return h, rows.Err()
}

// ToggleHabitDay removes the completion mark for day when present and adds it
// otherwise. The (habit_id, day) key keeps one row per calendar day.
func (s *Store) ToggleHabitDay(ctx context.Context, owner, id string, day time.Time) (models.Habit, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Habit{}, fmt.Errorf("begin toggle: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM habits WHERE id = ? AND user_id = ?`, id, owner).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Habit{}, fmt.Errorf("get habit: %w", err)
	}

	key := models.DayKey(day)
	res, err := tx.ExecContext(ctx, `DELETE FROM habit_completions WHERE habit_id = ? AND day = ?`, id, key)
	if err != nil {
		return models.Habit{}, fmt.Errorf("delete completion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Habit{}, err
	}
	if affected == 0 {
		if _, err := tx.ExecContext(ctx, `INSERT INTO habit_completions(habit_id, day) VALUES(?, ?)`, id, key); err != nil {
			return models.Habit{}, fmt.Errorf("insert completion: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Habit{}, fmt.Errorf("commit toggle: %w", err)
	}
	return s.GetHabit(ctx, owner, id)
}

// DeleteHabit removes a habit and, through the cascade, its completion days.
func (s *Store) DeleteHabit(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
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

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (models.Habit, error) {
	var (
		h    models.Habit
		days string
	)
	if err := row.Scan(&h.ID, &h.Owner, &h.Name, &days, &h.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, err
		}
		return models.Habit{}, fmt.Errorf("scan habit: %w", err)
	}
	h.TargetDays = splitDays(days)
	h.CompletedDates = []time.Time{}
	return h, nil
}

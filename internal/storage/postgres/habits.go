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

// ListHabits returns the owner's habits, newest first. Completion days are
// aggregated into an ordered array by the query.
func (s *Store) ListHabits(ctx context.Context, owner string) ([]models.Habit, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT h.id, h.user_id, h.name, h.target_days, h.created_at,
			COALESCE(array_agg(c.day ORDER BY c.day) FILTER (WHERE c.day IS NOT NULL), '{}')
		FROM habits h
		LEFT JOIN habit_completions c ON c.habit_id = h.id
		WHERE h.user_id = $1
		GROUP BY h.id
		ORDER BY h.created_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// CreateHabit persists a new habit for h.Owner.
func (s *Store) CreateHabit(ctx context.Context, h models.Habit) (models.Habit, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO habits (id, user_id, name, target_days, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		h.ID, h.Owner, h.Name, h.TargetDays, h.CreatedAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("insert habit: %w", err)
	}
	return s.GetHabit(ctx, h.Owner, h.ID)
}

// GetHabit fetches one of the owner's habits with its completion days.
func (s *Store) GetHabit(ctx context.Context, owner, id string) (models.Habit, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT h.id, h.user_id, h.name, h.target_days, h.created_at,
			COALESCE(array_agg(c.day ORDER BY c.day) FILTER (WHERE c.day IS NOT NULL), '{}')
		FROM habits h
		LEFT JOIN habit_completions c ON c.habit_id = h.id
		WHERE h.id = $1 AND h.user_id = $2
		GROUP BY h.id`, id, owner)
	h, err := scanHabit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Habit{}, storage.ErrNotFound
	}
	return h, err
}

// ToggleHabitDay flips the completion mark for day inside one transaction.
func (s *Store) ToggleHabitDay(ctx context.Context, owner, id string, day time.Time) (models.Habit, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Habit{}, fmt.Errorf("begin toggle: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var found string
	err = tx.QueryRow(ctx, `SELECT id FROM habits WHERE id = $1 AND user_id = $2 FOR UPDATE`, id, owner).Scan(&found)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Habit{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Habit{}, fmt.Errorf("get habit: %w", err)
	}

	day = models.Day(day)
	tag, err := tx.Exec(ctx, `DELETE FROM habit_completions WHERE habit_id = $1 AND day = $2`, id, day)
	if err != nil {
		return models.Habit{}, fmt.Errorf("delete completion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := tx.Exec(ctx, `INSERT INTO habit_completions (habit_id, day) VALUES ($1, $2)`, id, day); err != nil {
			return models.Habit{}, fmt.Errorf("insert completion: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Habit{}, fmt.Errorf("commit toggle: %w", err)
	}
	return s.GetHabit(ctx, owner, id)
}

// DeleteHabit removes a habit and its completion days.
func (s *Store) DeleteHabit(ctx context.Context, owner, id string) error {
	return s.exec(ctx, "delete habit", `DELETE FROM habits WHERE id = $1 AND user_id = $2`, id, owner)
}

func scanHabit(row pgx.Row) (models.Habit, error) {
	var h models.Habit
	err := row.Scan(&h.ID, &h.Owner, &h.Name, &h.TargetDays, &h.CreatedAt, &h.CompletedDates)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Habit{}, err
	}
	if err != nil {
		return models.Habit{}, fmt.Errorf("scan habit: %w", err)
	}
	for i, d := range h.CompletedDates {
		h.CompletedDates[i] = models.Day(d)
	}
	return h, nil
}

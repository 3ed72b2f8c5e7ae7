package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

const keyTargetCalories = "target_calories"

// DefaultTargetCalories is the daily target used until the user sets one.
const DefaultTargetCalories = 2000

// Settings holds user preferences shared by every front end.
type Settings struct {
	db *sql.DB
}

// TargetCalories returns the daily calorie target.
func (s *Settings) TargetCalories(ctx context.Context) (int, error) {
	value, err := s.read(ctx, keyTargetCalories)
	if errors.Is(err, ErrNotFound) {
		return DefaultTargetCalories, nil
	} else if err != nil {
		return 0, err
	}
	target, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("malformed %s setting %q: %w", keyTargetCalories, value, err)
	}
	return target, nil
}

// SetTargetCalories changes the daily calorie target.
func (s *Settings) SetTargetCalories(ctx context.Context, target int) error {
	if err := ValidateCalories(target); err != nil {
		return err
	}
	return s.write(ctx, keyTargetCalories, strconv.Itoa(target))
}

func (s *Settings) read(ctx context.Context, key string) (string, error) {
	query := `
		SELECT value
		FROM settings
		WHERE key = ?1`
	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %s: %w", key, ErrNotFound)
	} else if err != nil {
		return "", fmt.Errorf("failed reading setting %s: %w", key, err)
	}
	return value, nil
}

func (s *Settings) write(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value)
		VALUES (?1, ?2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed saving setting %s: %w", key, err)
	}
	return nil
}

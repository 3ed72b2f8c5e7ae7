package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sqlite "github.com/mattn/go-sqlite3"
)

// Weight is the body weight measured on one day.
type Weight struct {
	Day    time.Time
	Weight float32
}

// Weights is the repository of daily body weight measurements. Days are
// stored as YYYY-MM-DD text, so only the calendar date of a time.Time is
// significant.
type Weights struct {
	db *sql.DB
}

func dayKey(day time.Time) string {
	return day.Format(time.DateOnly)
}

func parseDay(key string) (time.Time, error) {
	day, err := time.Parse(time.DateOnly, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed day %q in database: %w", key, err)
	}
	return day, nil
}

// Create records a new measurement. It returns ErrAlreadyExists if the day
// already has one.
func (w *Weights) Create(ctx context.Context, weight Weight) error {
	if err := ValidateWeight(float64(weight.Weight)); err != nil {
		return err
	}
	query := `
		INSERT INTO weights (day, weight)
		VALUES (?1, ?2)`
	_, err := w.db.ExecContext(ctx, query, dayKey(weight.Day), weight.Weight)
	if isConstraintErr(err) {
		return fmt.Errorf("%s: %w", dayKey(weight.Day), ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed creating weight: %w", err)
	}
	return nil
}

func isConstraintErr(err error) bool {
	var sqliteErr sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite.ErrConstraint
}

// Upsert records a measurement, replacing any existing one for the day.
func (w *Weights) Upsert(ctx context.Context, weight Weight) error {
	if err := ValidateWeight(float64(weight.Weight)); err != nil {
		return err
	}
	return upsertWeight(ctx, w.db, weight)
}

func upsertWeight(ctx context.Context, db execer, weight Weight) error {
	query := `
		INSERT INTO weights (day, weight)
		VALUES (?1, ?2)
		ON CONFLICT (day) DO UPDATE SET weight = excluded.weight`
	if _, err := db.ExecContext(ctx, query, dayKey(weight.Day), weight.Weight); err != nil {
		return fmt.Errorf("failed saving weight: %w", err)
	}
	return nil
}

// Read returns the measurement of day, or ErrNotFound.
func (w *Weights) Read(ctx context.Context, day time.Time) (Weight, error) {
	query := `
		SELECT day, weight
		FROM weights
		WHERE day = ?1`
	var (
		key    string
		result Weight
	)
	err := w.db.QueryRowContext(ctx, query, dayKey(day)).Scan(&key, &result.Weight)
	if errors.Is(err, sql.ErrNoRows) {
		return Weight{}, fmt.Errorf("%s: %w", dayKey(day), ErrNotFound)
	} else if err != nil {
		return Weight{}, fmt.Errorf("failed reading weight: %w", err)
	}
	result.Day, err = parseDay(key)
	return result, err
}

// Update changes an existing measurement. It returns ErrNotFound if the day
// has none.
func (w *Weights) Update(ctx context.Context, weight Weight) error {
	if err := ValidateWeight(float64(weight.Weight)); err != nil {
		return err
	}
	query := `
		UPDATE weights
		SET weight = ?1
		WHERE day = ?2`
	res, err := w.db.ExecContext(ctx, query, weight.Weight, dayKey(weight.Day))
	if err != nil {
		return fmt.Errorf("failed updating weight: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed updating weight: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", dayKey(weight.Day), ErrNotFound)
	}
	return nil
}

// Delete removes the measurement of day. Deleting a day without a
// measurement is not an error.
func (w *Weights) Delete(ctx context.Context, day time.Time) error {
	query := `
		DELETE FROM weights
		WHERE day = ?1`
	if _, err := w.db.ExecContext(ctx, query, dayKey(day)); err != nil {
		return fmt.Errorf("failed deleting weight: %w", err)
	}
	return nil
}

// List returns every measurement, newest first.
func (w *Weights) List(ctx context.Context) ([]Weight, error) {
	query := `
		SELECT day, weight
		FROM weights
		ORDER BY day DESC`
	return w.query(ctx, query)
}

// ListBetween returns the measurements from start to end inclusive, newest
// first.
func (w *Weights) ListBetween(ctx context.Context, start, end time.Time) ([]Weight, error) {
	query := `
		SELECT day, weight
		FROM weights
		WHERE day BETWEEN ?1 AND ?2
		ORDER BY day DESC`
	return w.query(ctx, query, dayKey(start), dayKey(end))
}

func (w *Weights) query(ctx context.Context, query string, args ...any) ([]Weight, error) {
	rows, err := w.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed listing weights: %w", err)
	}
	defer rows.Close()

	var weights []Weight
	for rows.Next() {
		var (
			key    string
			weight Weight
		)
		if err := rows.Scan(&key, &weight.Weight); err != nil {
			return nil, fmt.Errorf("failed listing weights: %w", err)
		}
		if weight.Day, err = parseDay(key); err != nil {
			return nil, err
		}
		weights = append(weights, weight)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed listing weights: %w", err)
	}
	return weights, nil
}

// AverageBetween returns the mean of the measurements from start to end
// inclusive. It returns ErrNotFound if there are none.
func (w *Weights) AverageBetween(ctx context.Context, start, end time.Time) (float32, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("invalid range, %s is before %s", dayKey(end), dayKey(start))
	}
	query := `
		SELECT AVG(weight)
		FROM weights
		WHERE day BETWEEN ?1 AND ?2`
	var avg sql.NullFloat64
	if err := w.db.QueryRowContext(ctx, query, dayKey(start), dayKey(end)).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed averaging weights: %w", err)
	}
	if !avg.Valid {
		return 0, fmt.Errorf("%s to %s: %w", dayKey(start), dayKey(end), ErrNotFound)
	}
	return float32(avg.Float64), nil
}

// WeeklyChange compares the average weight over the eight days ending the
// day before `before` with the average over the eight days a week earlier.
// It returns ErrNotFound when either range has no measurements.
func (w *Weights) WeeklyChange(ctx context.Context, before time.Time) (float32, error) {
	lastWeekStart := before.AddDate(0, 0, -8)
	lastWeekEnd := before.AddDate(0, 0, -1)
	priorWeekStart := before.AddDate(0, 0, -16)
	priorWeekEnd := before.AddDate(0, 0, -9)

	lastWeek, err := w.AverageBetween(ctx, lastWeekStart, lastWeekEnd)
	if err != nil {
		return 0, err
	}
	priorWeek, err := w.AverageBetween(ctx, priorWeekStart, priorWeekEnd)
	if err != nil {
		return 0, err
	}
	return lastWeek - priorWeek, nil
}

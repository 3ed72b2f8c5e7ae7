package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrOverTarget is returned by Fill when the day's entries already exceed
// the requested total.
var ErrOverTarget = errors.New("eaten calories already exceed the requested total")

// CalorieDay is everything eaten on one day, in the order it was entered.
type CalorieDay struct {
	Day     time.Time
	Entries []int
}

func (c CalorieDay) Sum() int {
	sum := 0
	for _, e := range c.Entries {
		sum += e
	}
	return sum
}

// CalorieStats compares a day's intake with the daily target.
type CalorieStats struct {
	CalorieDay
	Target int
}

// Left is how many calories remain before the target is reached. It is
// negative once the target is exceeded.
func (s CalorieStats) Left() int {
	return s.Target - s.Sum()
}

// Calories is the repository of calorie entries. A day may hold any number
// of entries.
type Calories struct {
	db *sql.DB
}

func validateEntries(entries []int) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: no calories given", ErrInvalidValue)
	}
	for _, e := range entries {
		if err := ValidateCalories(e); err != nil {
			return err
		}
	}
	return nil
}

func insertCalories(ctx context.Context, db execer, day time.Time, entries []int) error {
	query := `
		INSERT INTO calories (day, calories)
		VALUES (?1, ?2)`
	for _, e := range entries {
		if _, err := db.ExecContext(ctx, query, dayKey(day), e); err != nil {
			return fmt.Errorf("failed saving calories: %w", err)
		}
	}
	return nil
}

func sumCalories(ctx context.Context, db execer, day time.Time) (sum int, count int, err error) {
	query := `
		SELECT COALESCE(SUM(calories), 0), COUNT(*)
		FROM calories
		WHERE day = ?1`
	rows, err := db.QueryContext(ctx, query, dayKey(day))
	if err != nil {
		return 0, 0, fmt.Errorf("failed summing calories: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		err = rows.Scan(&sum, &count)
	}
	if err == nil {
		err = rows.Err()
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed summing calories: %w", err)
	}
	return sum, count, nil
}

func replaceCalories(ctx context.Context, db execer, day time.Time, entries []int) error {
	query := `
		DELETE FROM calories
		WHERE day = ?1`
	if _, err := db.ExecContext(ctx, query, dayKey(day)); err != nil {
		return fmt.Errorf("failed replacing calories: %w", err)
	}
	return insertCalories(ctx, db, day, entries)
}

// Create records the first entries of a day. It returns ErrAlreadyExists if
// the day already has entries.
func (c *Calories) Create(ctx context.Context, day time.Time, entries ...int) error {
	if err := validateEntries(entries); err != nil {
		return err
	}
	return inTx(ctx, c.db, func(tx *sql.Tx) error {
		_, count, err := sumCalories(ctx, tx, day)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%s: %w", dayKey(day), ErrAlreadyExists)
		}
		return insertCalories(ctx, tx, day, entries)
	})
}

// Add appends entries to a day, creating it if necessary.
func (c *Calories) Add(ctx context.Context, day time.Time, entries ...int) error {
	if err := validateEntries(entries); err != nil {
		return err
	}
	return inTx(ctx, c.db, func(tx *sql.Tx) error {
		return insertCalories(ctx, tx, day, entries)
	})
}

// Fill adds a single entry bringing the day's total up to total. It does
// nothing if the total is already reached, and returns ErrOverTarget if it
// is exceeded.
func (c *Calories) Fill(ctx context.Context, day time.Time, total int) error {
	if err := ValidateCalories(total); err != nil {
		return err
	}
	return inTx(ctx, c.db, func(tx *sql.Tx) error {
		sum, _, err := sumCalories(ctx, tx, day)
		if err != nil {
			return err
		}
		switch {
		case sum == total:
			return nil
		case sum > total:
			return fmt.Errorf("%s: %d > %d: %w", dayKey(day), sum, total, ErrOverTarget)
		}
		return insertCalories(ctx, tx, day, []int{total - sum})
	})
}

// Read returns the entries of day, or ErrNotFound.
func (c *Calories) Read(ctx context.Context, day time.Time) (CalorieDay, error) {
	days, err := c.Between(ctx, day, day)
	if err != nil {
		return CalorieDay{}, err
	}
	if len(days) == 0 {
		return CalorieDay{}, fmt.Errorf("%s: %w", dayKey(day), ErrNotFound)
	}
	return days[0], nil
}

// Sum returns the total eaten on day, or ErrNotFound.
func (c *Calories) Sum(ctx context.Context, day time.Time) (int, error) {
	d, err := c.Read(ctx, day)
	if err != nil {
		return 0, err
	}
	return d.Sum(), nil
}

// DeleteLast removes the most recent entry of day. A day without entries is
// not an error.
func (c *Calories) DeleteLast(ctx context.Context, day time.Time) error {
	query := `
		DELETE FROM calories
		WHERE id = (SELECT MAX(id) FROM calories WHERE day = ?1)`
	if _, err := c.db.ExecContext(ctx, query, dayKey(day)); err != nil {
		return fmt.Errorf("failed deleting calories: %w", err)
	}
	return nil
}

// Delete removes every entry of day.
func (c *Calories) Delete(ctx context.Context, day time.Time) error {
	query := `
		DELETE FROM calories
		WHERE day = ?1`
	if _, err := c.db.ExecContext(ctx, query, dayKey(day)); err != nil {
		return fmt.Errorf("failed deleting calories: %w", err)
	}
	return nil
}

// Stats reports day's intake against target. A day without entries has an
// empty intake.
func (c *Calories) Stats(ctx context.Context, day time.Time, target int) (CalorieStats, error) {
	d, err := c.Read(ctx, day)
	if errors.Is(err, ErrNotFound) {
		d = CalorieDay{Day: day}
	} else if err != nil {
		return CalorieStats{}, err
	}
	return CalorieStats{CalorieDay: d, Target: target}, nil
}

// Between returns the days from start to end inclusive that have entries,
// newest first.
func (c *Calories) Between(ctx context.Context, start, end time.Time) ([]CalorieDay, error) {
	query := `
		SELECT day, calories
		FROM calories
		WHERE day BETWEEN ?1 AND ?2
		ORDER BY day DESC, id ASC`
	rows, err := c.db.QueryContext(ctx, query, dayKey(start), dayKey(end))
	if err != nil {
		return nil, fmt.Errorf("failed listing calories: %w", err)
	}
	defer rows.Close()

	var days []CalorieDay
	for rows.Next() {
		var (
			key   string
			entry int
		)
		if err := rows.Scan(&key, &entry); err != nil {
			return nil, fmt.Errorf("failed listing calories: %w", err)
		}
		if n := len(days); n > 0 && dayKey(days[n-1].Day) == key {
			days[n-1].Entries = append(days[n-1].Entries, entry)
			continue
		}
		day, err := parseDay(key)
		if err != nil {
			return nil, err
		}
		days = append(days, CalorieDay{Day: day, Entries: []int{entry}})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed listing calories: %w", err)
	}
	return days, nil
}

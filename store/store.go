// Package store persists body weight measurements, eaten calories and
// settings in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrations embed.FS

var (
	// ErrNotFound is returned when nothing is recorded for the requested day
	// or range.
	ErrNotFound = errors.New("nothing recorded")
	// ErrAlreadyExists is returned by Create when the day already has a
	// record.
	ErrAlreadyExists = errors.New("already recorded for this day")
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// DB is an open, migrated database.
type DB struct {
	db   *sql.DB
	path string

	Weights  *Weights
	Calories *Calories
	Settings *Settings
}

// Open opens the database at path, creating it and its parent directory if
// necessary, and applies any pending migrations.
func Open(ctx context.Context, path string, log logrus.FieldLogger) (*DB, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed creating database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed opening database %q: %w", path, err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, errors.Join(fmt.Errorf("failed connecting to database %q: %w", path, err), db.Close())
	}
	if err := migrateUp(db); err != nil {
		return nil, errors.Join(err, db.Close())
	}
	log.WithField("path", path).Debug("database ready")
	d := &DB{
		db:   db,
		path: path,
	}
	d.Weights = &Weights{db: db}
	d.Calories = &Calories{db: db}
	d.Settings = &Settings{db: db}
	return d, nil
}

func migrateUp(db *sql.DB) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed loading migrations: %w", err)
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed preparing migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed preparing migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed applying migrations: %w", err)
	}
	return nil
}

// inTx runs fn in a transaction, committing only if fn succeeds.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed starting transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		return errors.Join(err, tx.Rollback())
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed committing transaction: %w", err)
	}
	return nil
}

// Import saves weights and calories in a single transaction, so either all
// of them are stored or none. Weights replace any recorded for the same
// day. Each CalorieDay replaces the entries of its day.
func (d *DB) Import(ctx context.Context, weights []Weight, calories []CalorieDay) error {
	for _, w := range weights {
		if err := ValidateWeight(float64(w.Weight)); err != nil {
			return fmt.Errorf("%s: %w", dayKey(w.Day), err)
		}
	}
	for _, c := range calories {
		for _, e := range c.Entries {
			if err := ValidateCalories(e); err != nil {
				return fmt.Errorf("%s: %w", dayKey(c.Day), err)
			}
		}
	}
	return inTx(ctx, d.db, func(tx *sql.Tx) error {
		for _, w := range weights {
			if err := upsertWeight(ctx, tx, w); err != nil {
				return err
			}
		}
		for _, c := range calories {
			if err := replaceCalories(ctx, tx, c.Day, c.Entries); err != nil {
				return err
			}
		}
		return nil
	})
}

// Path returns the file backing the database.
func (d *DB) Path() string {
	return d.path
}

func (d *DB) Close() error {
	return d.db.Close()
}

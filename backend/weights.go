package backend

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"git.sr.ht/~whereswaldon/chomp/chart"
	"git.sr.ht/~whereswaldon/chomp/store"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Stats summarizes recent progress for the dashboard header.
type Stats struct {
	Latest    store.Weight
	HasLatest bool
	// WeeklyChange is only meaningful when HasChange is set.
	WeeklyChange float32
	HasChange    bool
	// Calories is today's intake against the daily target.
	Calories store.CalorieStats
	Err      error
}

// WeightSource serves the weight and calorie tables as streams of query results that
// refresh whenever the database changes, whether the change is made through
// the WeightSource or by another process.
type WeightSource struct {
	db          *store.DB
	historyDays int
	log         logrus.FieldLogger
	now         func() time.Time

	watcher *fsnotify.Watcher
	dbFile  string

	lock        sync.Mutex
	subscribers map[chan struct{}]struct{}
}

// NewWeightSource watches the file backing db and serves queries from it.
// The returned source stops watching when ctx is cancelled.
func NewWeightSource(ctx context.Context, db *store.DB, historyDays int, log logrus.FieldLogger) (*WeightSource, error) {
	dbPath := db.Path()
	if log == nil {
		log = logrus.StandardLogger()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed creating file watcher: %w", err)
	}
	// Watch the directory, since SQLite creates and removes its journal
	// files next to the database.
	if err := watcher.Add(filepath.Dir(dbPath)); err != nil {
		return nil, errors.Join(fmt.Errorf("failed watching %q: %w", dbPath, err), watcher.Close())
	}
	ws := &WeightSource{
		db:          db,
		historyDays: max(historyDays, 1),
		log:         log.WithField("component", "weights"),
		now:         time.Now,
		watcher:     watcher,
		dbFile:      filepath.Base(dbPath),
		subscribers: map[chan struct{}]struct{}{},
	}
	go ws.watch(ctx)
	return ws, nil
}

func (ws *WeightSource) watch(ctx context.Context) {
	defer ws.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ws.watcher.Events:
			if !ok {
				return
			}
			if ws.concernsDatabase(ev) {
				ws.notify()
			}
		case err, ok := <-ws.watcher.Errors:
			if !ok {
				return
			}
			ws.log.WithError(err).Warn("file watcher failed")
		}
	}
}

// concernsDatabase reports whether ev modified the database or one of its
// -wal/-journal/-shm companions.
func (ws *WeightSource) concernsDatabase(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) {
		return false
	}
	return strings.HasPrefix(filepath.Base(ev.Name), ws.dbFile)
}

// notify wakes every subscriber without blocking. Each subscriber channel
// holds at most one pending notification.
func (ws *WeightSource) notify() {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	for sub := range ws.subscribers {
		select {
		case sub <- struct{}{}:
		default:
		}
	}
}

func (ws *WeightSource) subscribe(ctx context.Context) <-chan struct{} {
	sub := make(chan struct{}, 1)
	ws.lock.Lock()
	ws.subscribers[sub] = struct{}{}
	ws.lock.Unlock()
	go func() {
		<-ctx.Done()
		ws.lock.Lock()
		delete(ws.subscribers, sub)
		ws.lock.Unlock()
	}()
	return sub
}

// serve runs query once immediately and again after every change,
// emitting each result until ctx is cancelled.
func serve[T any](ctx context.Context, ws *WeightSource, query func(context.Context) T) <-chan T {
	changes := ws.subscribe(ctx)
	out := make(chan T)
	go func() {
		defer close(out)
		for {
			select {
			case out <- query(ctx):
			case <-ctx.Done():
				return
			}
			select {
			case <-changes:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func (ws *WeightSource) today() time.Time {
	return chart.Day(ws.now())
}

// History streams the measurements of the last historyDays days, today
// included.
func (ws *WeightSource) History(ctx context.Context) <-chan chart.DataSeries {
	return serve(ctx, ws, func(ctx context.Context) chart.DataSeries {
		end := ws.today()
		start := end.AddDate(0, 0, 1-ws.historyDays)
		weights, err := ws.db.Weights.ListBetween(ctx, start, end)
		if err != nil {
			ws.log.WithError(err).Error("failed loading weight history")
		}
		return store.SeriesOf(weights)
	})
}

// Recent streams every measurement, newest first.
func (ws *WeightSource) Recent(ctx context.Context) <-chan []store.Weight {
	return serve(ctx, ws, func(ctx context.Context) []store.Weight {
		weights, err := ws.db.Weights.List(ctx)
		if err != nil {
			ws.log.WithError(err).Error("failed listing weights")
		}
		return weights
	})
}

// Stats streams the latest measurement, the weekly change and today's
// calories.
func (ws *WeightSource) Stats(ctx context.Context) <-chan Stats {
	return serve(ctx, ws, ws.stats)
}

func (ws *WeightSource) stats(ctx context.Context) Stats {
	var s Stats
	weights, err := ws.db.Weights.ListBetween(ctx, time.Time{}, ws.today())
	if err != nil {
		s.Err = err
		return s
	}
	if len(weights) > 0 {
		s.Latest, s.HasLatest = weights[0], true
	}
	change, err := ws.db.Weights.WeeklyChange(ctx, ws.today())
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		s.Err = err
	default:
		s.WeeklyChange, s.HasChange = change, true
	}
	target, err := ws.db.Settings.TargetCalories(ctx)
	if err != nil {
		s.Err = err
		return s
	}
	if s.Calories, err = ws.db.Calories.Stats(ctx, ws.today(), target); err != nil {
		s.Err = err
	}
	return s
}

// Save records w, replacing any measurement already recorded that day.
func (ws *WeightSource) Save(ctx context.Context, w store.Weight) error {
	if err := ws.db.Weights.Upsert(ctx, w); err != nil {
		return err
	}
	ws.log.WithFields(logrus.Fields{
		"day":    w.Day.Format(time.DateOnly),
		"weight": w.Weight,
	}).Info("weight saved")
	ws.notify()
	return nil
}

// Delete removes the measurement of day.
func (ws *WeightSource) Delete(ctx context.Context, day time.Time) error {
	if err := ws.db.Weights.Delete(ctx, day); err != nil {
		return err
	}
	ws.log.WithField("day", day.Format(time.DateOnly)).Info("weight deleted")
	ws.notify()
	return nil
}

// AddCalories appends entries to today's calories.
func (ws *WeightSource) AddCalories(ctx context.Context, entries ...int) error {
	if err := ws.db.Calories.Add(ctx, ws.today(), entries...); err != nil {
		return err
	}
	ws.log.WithField("entries", entries).Info("calories added")
	ws.notify()
	return nil
}

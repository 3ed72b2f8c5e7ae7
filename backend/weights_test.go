package backend

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"git.sr.ht/~whereswaldon/chomp/chart"
	"git.sr.ht/~whereswaldon/chomp/store"
	"github.com/sirupsen/logrus/hooks/test"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestSource(t *testing.T, ctx context.Context, today time.Time) *WeightSource {
	t.Helper()
	log, _ := test.NewNullLogger()
	path := filepath.Join(t.TempDir(), "data.db")
	db, err := store.Open(ctx, path, log)
	if err != nil {
		t.Fatalf("failed opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ws, err := NewWeightSource(ctx, db, 7, log)
	if err != nil {
		t.Fatalf("failed creating weight source: %v", err)
	}
	ws.now = func() time.Time { return today.Add(15 * time.Hour) }
	return ws
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for stream value")
	}
	var zero T
	return zero
}

func TestHistoryFollowsSaves(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	today := date(2025, time.February, 10)
	ws := newTestSource(t, ctx, today)

	history := ws.History(ctx)
	if s := receive(t, history); !s.Empty() {
		t.Fatalf("expected an empty initial history, got %d points", s.Len())
	}

	for _, w := range []store.Weight{
		{Day: today.AddDate(0, 0, -10), Weight: 90}, // outside the window
		{Day: today.AddDate(0, 0, -6), Weight: 82},
		{Day: today, Weight: 81},
	} {
		if err := ws.Save(ctx, w); err != nil {
			t.Fatalf("failed saving weight: %v", err)
		}
	}

	var s chart.DataSeries
	for s.Len() < 2 {
		s = receive(t, history)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 points in the window, got %d", s.Len())
	}
	if !s.First().Day.Equal(today.AddDate(0, 0, -6)) || s.Last().Value != 81 {
		t.Errorf("expected oldest-first points ending today, got %+v", s.Points())
	}
}

func TestStats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	today := date(2025, time.February, 20)
	ws := newTestSource(t, ctx, today)

	if s := receive(t, ws.Stats(ctx)); s.HasLatest || s.HasChange || s.Err != nil {
		t.Errorf("expected empty stats, got %+v", s)
	}

	for _, w := range []store.Weight{
		{Day: today.AddDate(0, 0, -12), Weight: 84},
		{Day: today.AddDate(0, 0, -3), Weight: 83},
		{Day: today.AddDate(0, 0, 2), Weight: 70}, // future entries are ignored
	} {
		if err := ws.Save(ctx, w); err != nil {
			t.Fatalf("failed saving weight: %v", err)
		}
	}
	s := receive(t, ws.Stats(ctx))
	if s.Err != nil {
		t.Fatalf("expected no error, got: %v", s.Err)
	}
	if !s.HasLatest || s.Latest.Weight != 83 {
		t.Errorf("expected latest weight 83, got %+v", s.Latest)
	}
	if !s.HasChange || s.WeeklyChange != -1 {
		t.Errorf("expected weekly change -1, got %v (ok=%v)", s.WeeklyChange, s.HasChange)
	}
}

func TestImportAndDelete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	today := date(2025, time.March, 5)
	ws := newTestSource(t, ctx, today)

	summary, err := ws.Import(ctx, strings.NewReader("Date,Time,Measurement,Value\n"+
		"2025-03-01,08:00:00,Bodyweight,80.5\n"+
		"2025-03-02,08:00:00,Bodyweight,80.0\n"+
		"2025-03-05,08:00:00,Calories,1800\n"))
	if err != nil {
		t.Fatalf("expected import to succeed, got: %v", err)
	}
	if summary.Weights != 2 || summary.CalorieDays != 1 {
		t.Errorf("expected 2 weights and 1 day of calories, got %+v", summary)
	}
	if s := receive(t, ws.Stats(ctx)); s.Calories.Sum() != 1800 {
		t.Errorf("expected today's imported calories in the stats, got %+v", s.Calories)
	}

	if err := ws.Delete(ctx, date(2025, time.March, 1)); err != nil {
		t.Fatalf("expected delete to succeed, got: %v", err)
	}
	recent := receive(t, ws.Recent(ctx))
	if len(recent) != 1 || recent[0].Weight != 80 {
		t.Errorf("expected only the 2025-03-02 weight to remain, got %+v", recent)
	}
}

func TestCaloriesInStats(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	today := date(2025, time.April, 2)
	ws := newTestSource(t, ctx, today)

	stats := ws.Stats(ctx)
	if s := receive(t, stats); s.Calories.Target != store.DefaultTargetCalories || s.Calories.Sum() != 0 {
		t.Errorf("expected an empty day against the default target, got %+v", s.Calories)
	}
	if err := ws.AddCalories(ctx, 600, 450); err != nil {
		t.Fatalf("expected adding calories to succeed, got: %v", err)
	}
	var s Stats
	for s.Calories.Sum() == 0 {
		s = receive(t, stats)
	}
	if s.Calories.Sum() != 1050 || s.Calories.Left() != store.DefaultTargetCalories-1050 {
		t.Errorf("expected 1050 eaten, got %+v", s.Calories)
	}
	if !s.Calories.Day.Equal(today) {
		t.Errorf("expected calories for %v, got %v", today, s.Calories.Day)
	}
	if err := ws.AddCalories(ctx, -5); !errors.Is(err, store.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got: %v", err)
	}
}

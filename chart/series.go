package chart

import (
	"slices"
	"time"
)

// DataPoint is a single sample of a daily series.
type DataPoint struct {
	Day   time.Time
	Value float32
}

// Day truncates t to the calendar day it falls on (in t's location) and
// returns that day as UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// epochUnix is the Unix time of 0001-01-01T00:00:00Z, the day with ordinal 1.
var epochUnix = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()

const secondsPerDay = 24 * 60 * 60

// Ordinal returns the number of days between 0001-01-01 and day, counting
// 0001-01-01 itself as day 1. Days before that epoch yield zero or a
// negative ordinal.
func Ordinal(day time.Time) int {
	secs := Day(day).Unix() - epochUnix
	return int(secs/secondsPerDay) + 1
}

// DayFromOrdinal is the inverse of Ordinal.
func DayFromOrdinal(ordinal int) time.Time {
	return time.Unix(epochUnix+int64(ordinal-1)*secondsPerDay, 0).UTC()
}

// DataSeries is an immutable snapshot of samples sorted by day. A refreshed
// series is a new value; nothing mutates a DataSeries after construction.
type DataSeries struct {
	points []DataPoint
}

// FromSamples builds a series from points given in any order. Samples are
// stable-sorted by day, so duplicate days keep their relative order.
func FromSamples(points []DataPoint) DataSeries {
	sorted := make([]DataPoint, len(points))
	for i, p := range points {
		sorted[i] = DataPoint{Day: Day(p.Day), Value: p.Value}
	}
	slices.SortStableFunc(sorted, func(a, b DataPoint) int {
		return a.Day.Compare(b.Day)
	})
	return DataSeries{points: sorted}
}

func (s DataSeries) Len() int {
	return len(s.points)
}

func (s DataSeries) Empty() bool {
	return len(s.points) == 0
}

// At returns the i'th sample in day order.
func (s DataSeries) At(i int) DataPoint {
	return s.points[i]
}

// First returns the earliest sample. The series must not be empty.
func (s DataSeries) First() DataPoint {
	return s.points[0]
}

// Last returns the latest sample. The series must not be empty.
func (s DataSeries) Last() DataPoint {
	return s.points[len(s.points)-1]
}

// Points returns a copy of the samples in day order.
func (s DataSeries) Points() []DataPoint {
	return slices.Clone(s.points)
}

// ValueRange returns the smallest and largest sample values. Both are zero
// for an empty series.
func (s DataSeries) ValueRange() (minimum, maximum float32) {
	for i, p := range s.points {
		if i == 0 {
			minimum, maximum = p.Value, p.Value
			continue
		}
		minimum = min(minimum, p.Value)
		maximum = max(maximum, p.Value)
	}
	return minimum, maximum
}

// Package fitnotes imports the body tracker export of the FitNotes app.
package fitnotes

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"git.sr.ht/~whereswaldon/chomp/store"
)

const (
	measurementBodyweight = "Bodyweight"
	measurementCalories   = "Calories"
)

// ErrNotFitNotes is returned when a file lacks the FitNotes measurement
// export header.
var ErrNotFitNotes = errors.New("invalid csv format, expected columns: Date Time Measurement Value")

// Export holds the measurements chomp understands. Calories are grouped by
// day, in file order.
type Export struct {
	Weights  []store.Weight
	Calories []store.CalorieDay
}

// Parse reads a FitNotes export, keeping its Bodyweight and Calories
// measurements. Other measurements are skipped.
func Parse(r io.Reader) (Export, error) {
	csvReader := csv.NewReader(r)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1
	headings, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return Export{}, fmt.Errorf("empty file: %w", ErrNotFitNotes)
	} else if err != nil {
		return Export{}, fmt.Errorf("failed reading CSV data: %w", err)
	}
	if len(headings) < 4 ||
		strings.TrimPrefix(headings[0], "\ufeff") != "Date" ||
		headings[2] != "Measurement" ||
		headings[3] != "Value" {
		return Export{}, ErrNotFitNotes
	}

	var (
		export Export
		dayIdx = map[string]int{}
	)
	for line := 2; ; line++ {
		rec, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return Export{}, fmt.Errorf("failed reading CSV data: %w", err)
		}
		if len(rec) < 4 || (rec[2] != measurementBodyweight && rec[2] != measurementCalories) {
			continue
		}
		key := strings.TrimSpace(rec[0])
		day, err := time.Parse(time.DateOnly, key)
		if err != nil {
			return Export{}, fmt.Errorf("line %d: failed parsing date: %w", line, err)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(rec[3]), 64)
		if err != nil {
			return Export{}, fmt.Errorf("line %d: failed parsing value: %w", line, err)
		}

		if rec[2] == measurementBodyweight {
			if err := store.ValidateWeight(value); err != nil {
				return Export{}, fmt.Errorf("line %d: %w", line, err)
			}
			export.Weights = append(export.Weights, store.Weight{Day: day, Weight: float32(value)})
			continue
		}
		cals := int(math.Round(value))
		if err := store.ValidateCalories(cals); err != nil {
			return Export{}, fmt.Errorf("line %d: %w", line, err)
		}
		i, ok := dayIdx[key]
		if !ok {
			i = len(export.Calories)
			dayIdx[key] = i
			export.Calories = append(export.Calories, store.CalorieDay{Day: day})
		}
		export.Calories[i].Entries = append(export.Calories[i].Entries, cals)
	}
	return export, nil
}

// Summary counts what an import saved.
type Summary struct {
	Weights     int
	CalorieDays int
}

func (s Summary) String() string {
	return fmt.Sprintf("imported %d weights and %d days of calories", s.Weights, s.CalorieDays)
}

// Import parses the export r and saves it in a single transaction.
// Imported weights replace those recorded for the same day, and imported
// calories replace the entries of their day.
func Import(ctx context.Context, db *store.DB, r io.Reader) (Summary, error) {
	export, err := Parse(r)
	if err != nil {
		return Summary{}, err
	}
	if err := db.Import(ctx, export.Weights, export.Calories); err != nil {
		return Summary{}, err
	}
	return Summary{Weights: len(export.Weights), CalorieDays: len(export.Calories)}, nil
}

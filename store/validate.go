package store

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MaxWeight bounds accepted weights to catch typos such as a missing
	// decimal point.
	MaxWeight = 1000
	// MaxCalories bounds a single calorie entry.
	MaxCalories = 20000
)

// ErrInvalidValue is wrapped by every validation failure.
var ErrInvalidValue = errors.New("invalid value")

// ValidateWeight accepts finite weights strictly between 0 and MaxWeight.
func ValidateWeight(weight float64) error {
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 || weight >= MaxWeight {
		return fmt.Errorf("%w: weight must be between 0 and %d, got %v", ErrInvalidValue, MaxWeight, weight)
	}
	return nil
}

// ValidateCalories accepts entries from 1 to MaxCalories.
func ValidateCalories(calories int) error {
	if calories <= 0 || calories > MaxCalories {
		return fmt.Errorf("%w: calories must be between 1 and %d, got %d", ErrInvalidValue, MaxCalories, calories)
	}
	return nil
}

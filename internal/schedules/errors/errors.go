package errors

import "errors"

var (
	ErrRuleNotFound     = errors.New("availability rule not found")
	ErrIntervalNotFound = errors.New("blocked interval not found")
	ErrInvalidID        = errors.New("invalid ID format")
	ErrRuleOverlap      = errors.New("availability rule overlaps an existing rule on the same weekday")
)

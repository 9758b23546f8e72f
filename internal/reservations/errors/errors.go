package errors

import "errors"

var (
	ErrNotFound  = errors.New("reservation not found")
	ErrInvalidID = errors.New("invalid ID format")

	// ErrRangeContended means another admission in flight holds at least one
	// slot lock bucket for the requested range. Transient by definition.
	ErrRangeContended = errors.New("slot range is locked by a concurrent admission")

	// ErrAlreadyBooked means a confirmed reservation occupies the requested
	// range. Definitive, as opposed to ErrRangeContended.
	ErrAlreadyBooked = errors.New("slot is already booked")

	// ErrStatusConflict means the reservation left the expected status before
	// the transition was applied.
	ErrStatusConflict = errors.New("reservation status changed concurrently")
)

package errors

import "errors"

var (
	ErrProviderNotFound = errors.New("provider not found")

	ErrServiceNotFound = errors.New("service not found")

	ErrInvalidID = errors.New("invalid provider ID format")

	ErrServiceInUse = errors.New("service is referenced by reservations")
)

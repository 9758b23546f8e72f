package kafka

import "errors"

var (
	ErrProducerClosed = errors.New("kafka producer is closed")

	ErrConsumerClosed = errors.New("kafka consumer is closed")

	ErrEmptyKey = errors.New("message key cannot be empty")

	ErrEmptyValue = errors.New("message value cannot be empty")
)

// ShouldRetry reports whether a failed delivery attempt should be retried
// before falling through to the DLQ.
func ShouldRetry(err error, retries, maxRetries int) bool {
	if err == nil {
		return false
	}
	return retries < maxRetries
}

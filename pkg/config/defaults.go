package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "slotbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Admission retries only the contended outcome: the competitor holding
	// the range lock resolves within a round trip, so a short jittered
	// backoff is enough.
	DefaultAdmissionMaxAttempts  = 3
	DefaultAdmissionRetryBackoff = 50 * time.Millisecond
	DefaultAdmissionTxTimeout    = 5 * time.Second

	// Lock buckets tile the timeline in fixed steps; the TTL index reaps
	// locks leaked by a crashed process.
	DefaultSlotLockBucket = 5 * time.Minute
	DefaultSlotLockTTL    = 10 * time.Second

	DefaultPaginationLimit = 100
)

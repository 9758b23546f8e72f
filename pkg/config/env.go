package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvAdmissionMaxAttempts  = "ADMISSION_MAX_ATTEMPTS"
	EnvAdmissionRetryBackoff = "ADMISSION_RETRY_BACKOFF"
	EnvAdmissionTxTimeout    = "ADMISSION_TX_TIMEOUT"

	EnvSlotLockBucket = "SLOT_LOCK_BUCKET"
	EnvSlotLockTTL    = "SLOT_LOCK_TTL"
)

package testutil

import (
	"os"
	"testing"
	"time"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "slotbook_test"

	ProvidersCollection         = "Providers"
	ServicesCollection          = "Services"
	AvailabilityRulesCollection = "AvailabilityRules"
	BlockedIntervalsCollection  = "BlockedIntervals"
	ReservationsCollection      = "Reservations"
	SlotLocksCollection         = "SlotLocks"

	healthCheckTimeout = 30 * time.Second
)

// TestEnv describes the running deployment the suite talks to. The three
// services are separate binaries; each gets its own base URL.
type TestEnv struct {
	MongoURI        string
	DatabaseName    string
	ProvidersURL    string
	SlotsURL        string
	ReservationsURL string
}

// NewTestEnv skips the calling test unless RUN_INTEGRATION_TESTS=1, so the
// suite stays inert under a plain `go test ./...`.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "1" {
		t.Skip("integration tests disabled, set RUN_INTEGRATION_TESTS=1")
	}

	return &TestEnv{
		MongoURI:        getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName:    getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ProvidersURL:    getEnv("TEST_PROVIDERS_URL", "http://localhost:8081"),
		SlotsURL:        getEnv("TEST_SLOTS_URL", "http://localhost:8082"),
		ReservationsURL: getEnv("TEST_RESERVATIONS_URL", "http://localhost:8083"),
	}
}

// Setup cleans the test database and waits for every service to report
// healthy.
func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Clients) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanDatabase(t)

	clients := &Clients{
		Providers:    NewClient(e.ProvidersURL),
		Slots:        NewClient(e.SlotsURL),
		Reservations: NewClient(e.ReservationsURL),
	}
	clients.Providers.WaitForHealthy(t, healthCheckTimeout)
	clients.Slots.WaitForHealthy(t, healthCheckTimeout)
	clients.Reservations.WaitForHealthy(t, healthCheckTimeout)

	return mongo, clients
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()

	if mongo != nil {
		mongo.CleanDatabase(t)
		mongo.Close(t)
	}
}

// Clients groups the per-service HTTP clients.
type Clients struct {
	Providers    *Client
	Slots        *Client
	Reservations *Client
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

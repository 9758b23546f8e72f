package integration

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"slotbook/pkg/model"
	"slotbook/test/integration/testutil"

	"go.mongodb.org/mongo-driver/bson"
)

func TestAdmission_SingleWinnerUnderConcurrency(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, clients := env.Setup(t)
	defer env.Cleanup(t, mongo)

	providerID, serviceID := testutil.SeedProvider(t, clients.Providers)
	start, end := testutil.NextOpenSlot()

	const workers = 10
	statuses := make(chan int, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			phone := fmt.Sprintf("+1415555%04d", n)
			body := testutil.AdmissionRequest(providerID, serviceID, start, end, phone)
			resp := clients.Reservations.POST(t, "/api/v1/reservations", body)
			statuses <- resp.StatusCode
		}(i)
	}
	wg.Wait()
	close(statuses)

	var created, conflicted int
	for code := range statuses {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicted++
		default:
			t.Errorf("unexpected status code %d", code)
		}
	}
	if created != 1 {
		t.Errorf("expected exactly 1 admission, got %d", created)
	}
	if conflicted != workers-1 {
		t.Errorf("expected %d conflicts, got %d", workers-1, conflicted)
	}

	busy := mongo.CountDocuments(t, testutil.ReservationsCollection, bson.D{
		{Key: "provider_id", Value: providerID},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: model.StatusCancelled}}},
	})
	if busy != 1 {
		t.Errorf("expected 1 busy reservation in storage, got %d", busy)
	}

	locks := mongo.CountDocuments(t, testutil.SlotLocksCollection, bson.D{})
	if locks != 0 {
		t.Errorf("expected all slot locks released, %d remain", locks)
	}
}

func TestAdmission_CancelFreesRange(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, clients := env.Setup(t)
	defer env.Cleanup(t, mongo)

	providerID, serviceID := testutil.SeedProvider(t, clients.Providers)
	start, end := testutil.NextOpenSlot()

	body := testutil.AdmissionRequest(providerID, serviceID, start, end, "+14155550100")
	resp := clients.Reservations.POST(t, "/api/v1/reservations", body)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var first model.Reservation
	resp.Data(t, &first)

	// Same range again: definitive conflict, not contention.
	resp = clients.Reservations.POST(t, "/api/v1/reservations", body)
	testutil.AssertStatusCode(t, resp, http.StatusConflict)
	if code := resp.ErrorCode(t); code != "SLOT_UNAVAILABLE" {
		t.Errorf("expected SLOT_UNAVAILABLE, got %s", code)
	}

	resp = clients.Reservations.PATCH(t,
		fmt.Sprintf("/api/v1/reservations/id/%s/status", first.ID),
		map[string]any{"status": "cancelled", "provider_id": providerID})
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	// The cancelled range admits again.
	resp = clients.Reservations.POST(t, "/api/v1/reservations", body)
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var second model.Reservation
	resp.Data(t, &second)
	if second.ID == first.ID {
		t.Error("expected a new reservation document")
	}
}

func TestAdmission_BackToBackRangesBothSucceed(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, clients := env.Setup(t)
	defer env.Cleanup(t, mongo)

	providerID, serviceID := testutil.SeedProvider(t, clients.Providers)
	start, end := testutil.NextOpenSlot()

	resp := clients.Reservations.POST(t, "/api/v1/reservations",
		testutil.AdmissionRequest(providerID, serviceID, start, end, "+14155550100"))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	resp = clients.Reservations.POST(t, "/api/v1/reservations",
		testutil.AdmissionRequest(providerID, serviceID, end, end.Add(end.Sub(start)), "+14155550101"))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
}

func TestStatusTransitions(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, clients := env.Setup(t)
	defer env.Cleanup(t, mongo)

	providerID, serviceID := testutil.SeedProvider(t, clients.Providers)
	start, end := testutil.NextOpenSlot()

	resp := clients.Reservations.POST(t, "/api/v1/reservations",
		testutil.AdmissionRequest(providerID, serviceID, start, end, "+14155550100"))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)
	var reservation model.Reservation
	resp.Data(t, &reservation)

	statusPath := fmt.Sprintf("/api/v1/reservations/id/%s/status", reservation.ID)

	// A customer with the wrong phone cannot cancel.
	resp = clients.Reservations.PATCH(t, statusPath,
		map[string]any{"status": "cancelled", "customer_phone": "+14155559999"})
	testutil.AssertStatusCode(t, resp, http.StatusForbidden)

	// The provider completes the reservation.
	resp = clients.Reservations.PATCH(t, statusPath,
		map[string]any{"status": "completed", "provider_id": providerID})
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	// Completed is terminal.
	resp = clients.Reservations.PATCH(t, statusPath,
		map[string]any{"status": "cancelled", "provider_id": providerID})
	testutil.AssertStatusCode(t, resp, http.StatusUnprocessableEntity)
	if code := resp.ErrorCode(t); code != "INVALID_TRANSITION" {
		t.Errorf("expected INVALID_TRANSITION, got %s", code)
	}
}

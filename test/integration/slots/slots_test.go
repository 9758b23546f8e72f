package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"slotbook/pkg/model"
	"slotbook/test/integration/testutil"
)

type daySchedule struct {
	ProviderID string       `json:"provider_id"`
	ServiceID  string       `json:"service_id"`
	Date       string       `json:"date"`
	TimeZone   string       `json:"timezone"`
	Slots      []model.Slot `json:"slots"`
}

func slotsPath(providerID, serviceID, date, timezone string) string {
	path := fmt.Sprintf("/api/v1/slots?provider_id=%s&service_id=%s&date=%s", providerID, serviceID, date)
	if timezone != "" {
		path += "&timezone=" + timezone
	}
	return path
}

func TestSlots_GenerationAndAdmissionRoundTrip(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, clients := env.Setup(t)
	defer env.Cleanup(t, mongo)

	providerID, serviceID := testutil.SeedProvider(t, clients.Providers)
	date := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")

	resp := clients.Slots.GET(t, slotsPath(providerID, serviceID, date, ""))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var schedule daySchedule
	resp.Data(t, &schedule)

	if len(schedule.Slots) == 0 {
		t.Fatal("expected generated slots for an open day")
	}
	for _, slot := range schedule.Slots {
		if !slot.Available {
			t.Errorf("expected all slots available on an empty day, %s is not", slot.StartTime)
		}
	}

	// Admit the first slot, then regenerate: exactly that slot flips.
	first := schedule.Slots[0]
	resp = clients.Reservations.POST(t, "/api/v1/reservations",
		testutil.AdmissionRequest(providerID, serviceID, first.StartTime, first.EndTime, "+14155550100"))
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	resp = clients.Slots.GET(t, slotsPath(providerID, serviceID, date, ""))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var after daySchedule
	resp.Data(t, &after)

	if len(after.Slots) != len(schedule.Slots) {
		t.Fatalf("slot count changed from %d to %d", len(schedule.Slots), len(after.Slots))
	}
	for i, slot := range after.Slots {
		wantAvailable := i != 0
		if slot.Available != wantAvailable {
			t.Errorf("slot %d at %s: available=%v, want %v", i, slot.StartTime, slot.Available, wantAvailable)
		}
	}
}

func TestSlots_ViewerTimezoneConversion(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, clients := env.Setup(t)
	defer env.Cleanup(t, mongo)

	providerID, serviceID := testutil.SeedProvider(t, clients.Providers)
	date := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")

	resp := clients.Slots.GET(t, slotsPath(providerID, serviceID, date, ""))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var home daySchedule
	resp.Data(t, &home)

	resp = clients.Slots.GET(t, slotsPath(providerID, serviceID, date, "Asia/Tokyo"))
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	var tokyo daySchedule
	resp.Data(t, &tokyo)

	if tokyo.TimeZone != "Asia/Tokyo" {
		t.Errorf("expected viewer timezone echoed back, got %s", tokyo.TimeZone)
	}
	if len(home.Slots) != len(tokyo.Slots) {
		t.Fatalf("viewer timezone changed slot count: %d vs %d", len(home.Slots), len(tokyo.Slots))
	}
	for i := range home.Slots {
		if !home.Slots[i].StartTime.Equal(tokyo.Slots[i].StartTime) {
			t.Errorf("slot %d instant changed under timezone conversion", i)
		}
	}
}

func TestSlots_UnknownServiceRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, clients := env.Setup(t)
	defer env.Cleanup(t, mongo)

	providerID, _ := testutil.SeedProvider(t, clients.Providers)
	date := time.Now().UTC().AddDate(0, 0, 7).Format("2006-01-02")

	resp := clients.Slots.GET(t, slotsPath(providerID, "64f0000000000000000000ff", date, ""))
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)
}

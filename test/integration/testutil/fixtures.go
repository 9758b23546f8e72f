package testutil

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

// CreatedEntity is the part of a creation response every fixture needs.
type CreatedEntity struct {
	ID string `json:"id"`
}

func ValidProvider() map[string]any {
	return map[string]any{
		"name":      "Dr. Kim",
		"time_zone": "America/New_York",
		"phone":     "+14155550123",
	}
}

func ValidService() map[string]any {
	return map[string]any{
		"name":         "Consultation",
		"duration_min": 30,
		"buffer_min":   5,
		"active":       true,
	}
}

func WeekdayRule(weekday int) map[string]any {
	return map[string]any{
		"weekday":     weekday,
		"start_local": "09:00",
		"end_local":   "17:00",
		"enabled":     true,
	}
}

func AdmissionRequest(providerID, serviceID string, start, end time.Time, phone string) map[string]any {
	return map[string]any{
		"provider_id":    providerID,
		"service_id":     serviceID,
		"start_time":     start.Format(time.RFC3339),
		"end_time":       end.Format(time.RFC3339),
		"customer_name":  "Dana",
		"customer_phone": phone,
	}
}

// SeedProvider creates a provider with one service and an all-week opening
// rule, returning both IDs.
func SeedProvider(t *testing.T, providers *Client) (providerID, serviceID string) {
	t.Helper()

	resp := providers.POST(t, "/api/v1/providers", ValidProvider())
	AssertStatusCode(t, resp, http.StatusCreated)
	var provider CreatedEntity
	resp.Data(t, &provider)

	resp = providers.POST(t, fmt.Sprintf("/api/v1/providers/%s/services", provider.ID), ValidService())
	AssertStatusCode(t, resp, http.StatusCreated)
	var service CreatedEntity
	resp.Data(t, &service)

	for weekday := 0; weekday < 7; weekday++ {
		resp = providers.POST(t,
			fmt.Sprintf("/api/v1/providers/%s/availability-rules", provider.ID),
			WeekdayRule(weekday))
		AssertStatusCode(t, resp, http.StatusCreated)
	}

	return provider.ID, service.ID
}

// NextOpenSlot returns a weekday-safe 30 minute range far enough in the
// future to survive clock skew between test host and services. The seeded
// rules open every weekday, so tomorrow at 14:00 UTC is always inside an
// opening window in America/New_York.
func NextOpenSlot() (time.Time, time.Time) {
	start := time.Now().UTC().AddDate(0, 0, 1).Truncate(time.Hour)
	start = time.Date(start.Year(), start.Month(), start.Day(), 14, 0, 0, 0, time.UTC)
	return start, start.Add(30 * time.Minute)
}

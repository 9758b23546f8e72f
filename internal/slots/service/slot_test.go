package service

import (
	"context"
	"testing"
	"time"

	reservationsrepo "slotbook/internal/reservations/repository"
	"slotbook/pkg/clock"
	mongotx "slotbook/pkg/db/mongo"
	"slotbook/pkg/config"
	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

// Mock repositories for testing

type mockProviderRepo struct {
	getProviderFunc func(ctx context.Context, id string) (*model.Provider, error)
	getServiceFunc  func(ctx context.Context, id, providerID string) (*model.Service, error)
}

func (m *mockProviderRepo) CreateProvider(ctx context.Context, p *model.Provider) error { return nil }
func (m *mockProviderRepo) GetProvider(ctx context.Context, id string) (*model.Provider, error) {
	if m.getProviderFunc != nil {
		return m.getProviderFunc(ctx, id)
	}
	return &model.Provider{ID: id, TimeZone: "UTC"}, nil
}
func (m *mockProviderRepo) UpdateProvider(ctx context.Context, id string, u *model.ProviderUpdate) error {
	return nil
}
func (m *mockProviderRepo) ListProviders(ctx context.Context, limit int, offset int64) ([]*model.Provider, error) {
	return nil, nil
}
func (m *mockProviderRepo) CountProviders(ctx context.Context) (int64, error) { return 0, nil }
func (m *mockProviderRepo) CreateService(ctx context.Context, s *model.Service) error { return nil }
func (m *mockProviderRepo) GetService(ctx context.Context, id, providerID string) (*model.Service, error) {
	if m.getServiceFunc != nil {
		return m.getServiceFunc(ctx, id, providerID)
	}
	return &model.Service{ID: id, ProviderID: providerID, DurationMin: 30, BufferMin: 5, Active: true}, nil
}
func (m *mockProviderRepo) UpdateService(ctx context.Context, id, providerID string, u *model.ServiceUpdate) error {
	return nil
}
func (m *mockProviderRepo) ListServices(ctx context.Context, providerID string) ([]*model.Service, error) {
	return nil, nil
}
func (m *mockProviderRepo) ServiceHasReservations(ctx context.Context, serviceID string) (bool, error) {
	return false, nil
}

type mockScheduleRepo struct {
	rulesForWeekdayFunc   func(ctx context.Context, providerID string, weekday int) ([]*model.AvailabilityRule, error)
	intervalsInWindowFunc func(ctx context.Context, providerID string, windowStart, windowEnd time.Time) ([]*model.BlockedInterval, error)
}

func (m *mockScheduleRepo) CreateRule(ctx context.Context, r *model.AvailabilityRule) error {
	return nil
}
func (m *mockScheduleRepo) GetRule(ctx context.Context, id, providerID string) (*model.AvailabilityRule, error) {
	return nil, nil
}
func (m *mockScheduleRepo) ListRules(ctx context.Context, providerID string) ([]*model.AvailabilityRule, error) {
	return nil, nil
}
func (m *mockScheduleRepo) RulesForWeekday(ctx context.Context, providerID string, weekday int) ([]*model.AvailabilityRule, error) {
	if m.rulesForWeekdayFunc != nil {
		return m.rulesForWeekdayFunc(ctx, providerID, weekday)
	}
	return nil, nil
}
func (m *mockScheduleRepo) UpdateRule(ctx context.Context, id, providerID string, u *model.AvailabilityRuleUpdate) error {
	return nil
}
func (m *mockScheduleRepo) DeleteRule(ctx context.Context, id, providerID string) error { return nil }
func (m *mockScheduleRepo) CreateInterval(ctx context.Context, i *model.BlockedInterval) error {
	return nil
}
func (m *mockScheduleRepo) ListIntervals(ctx context.Context, providerID string) ([]*model.BlockedInterval, error) {
	return nil, nil
}
func (m *mockScheduleRepo) IntervalsInWindow(ctx context.Context, providerID string, windowStart, windowEnd time.Time) ([]*model.BlockedInterval, error) {
	if m.intervalsInWindowFunc != nil {
		return m.intervalsInWindowFunc(ctx, providerID, windowStart, windowEnd)
	}
	return nil, nil
}
func (m *mockScheduleRepo) DeleteInterval(ctx context.Context, id, providerID string) error {
	return nil
}

type mockReservationRepo struct {
	findOverlappingFunc func(ctx context.Context, providerID string, start, end time.Time) ([]*model.Reservation, error)
}

func (m *mockReservationRepo) Create(ctx context.Context, r *model.Reservation) error { return nil }
func (m *mockReservationRepo) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	return nil, nil
}
func (m *mockReservationRepo) FindOverlapping(ctx context.Context, providerID string, start, end time.Time) ([]*model.Reservation, error) {
	if m.findOverlappingFunc != nil {
		return m.findOverlappingFunc(ctx, providerID, start, end)
	}
	return nil, nil
}
func (m *mockReservationRepo) UpdateStatus(ctx context.Context, id, from, to string) error {
	return nil
}
func (m *mockReservationRepo) FindByProvider(ctx context.Context, providerID string, filter reservationsrepo.SearchFilter, limit int, offset int64) ([]*model.Reservation, error) {
	return nil, nil
}
func (m *mockReservationRepo) CountByProvider(ctx context.Context, providerID string, filter reservationsrepo.SearchFilter) (int64, error) {
	return 0, nil
}
func (m *mockReservationRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log: logger.New(logger.Config{
			Level:   "error",
			Format:  logger.JSON,
			Service: "test",
		}),
	}
}

const (
	testProviderID = "64f000000000000000000001"
	testServiceID  = "64f000000000000000000002"
	// 2025-06-02 is a Monday.
	testDate = "2025-06-02"
)

func nyTime(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	if err != nil {
		t.Fatalf("failed to parse time %q: %v", value, err)
	}
	return parsed
}

func newTestService(t *testing.T, reservations []*model.Reservation, blocked []*model.BlockedInterval) *slotService {
	t.Helper()
	return &slotService{
		providers: &mockProviderRepo{
			getProviderFunc: func(ctx context.Context, id string) (*model.Provider, error) {
				return &model.Provider{ID: id, TimeZone: "America/New_York"}, nil
			},
		},
		schedules: &mockScheduleRepo{
			rulesForWeekdayFunc: func(ctx context.Context, providerID string, weekday int) ([]*model.AvailabilityRule, error) {
				if weekday != 1 {
					return nil, nil
				}
				return []*model.AvailabilityRule{
					{ID: "rule1", ProviderID: providerID, Weekday: 1, StartLocal: "09:00", EndLocal: "17:00", Enabled: true},
				}, nil
			},
			intervalsInWindowFunc: func(ctx context.Context, providerID string, windowStart, windowEnd time.Time) ([]*model.BlockedInterval, error) {
				return blocked, nil
			},
		},
		reservations: &mockReservationRepo{
			findOverlappingFunc: func(ctx context.Context, providerID string, start, end time.Time) ([]*model.Reservation, error) {
				return reservations, nil
			},
		},
		clock: clock.NewFixed(nyTime(t, "2025-06-01 12:00")),
		cfg:   testConfig(),
	}
}

func TestGenerateSlots_TilesRuleWithGranularity(t *testing.T) {
	svc := newTestService(t, nil, nil)

	schedule, err := svc.GenerateSlots(context.Background(), testProviderID, testServiceID, testDate, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 09:00-17:00 tiled with duration 30, step 35: starts 09:00, 09:35, ...
	// last start 16:00 (ends 16:30).
	if len(schedule.Slots) != 13 {
		t.Fatalf("expected 13 slots, got %d", len(schedule.Slots))
	}

	wantStarts := []string{"2025-06-02 09:00", "2025-06-02 09:35", "2025-06-02 10:10"}
	for i, want := range wantStarts {
		if !schedule.Slots[i].StartTime.Equal(nyTime(t, want)) {
			t.Errorf("slot %d: expected start %s, got %v", i, want, schedule.Slots[i].StartTime)
		}
	}

	last := schedule.Slots[len(schedule.Slots)-1]
	if !last.StartTime.Equal(nyTime(t, "2025-06-02 16:00")) {
		t.Errorf("expected last slot to start 16:00, got %v", last.StartTime)
	}
	if !last.EndTime.Equal(nyTime(t, "2025-06-02 16:30")) {
		t.Errorf("expected last slot to end 16:30, got %v", last.EndTime)
	}

	for i, slot := range schedule.Slots {
		if !slot.Available {
			t.Errorf("slot %d: expected available on an empty schedule", i)
		}
	}
}

func TestGenerateSlots_BusyReservationMarksOverlaps(t *testing.T) {
	// Reservation [09:30, 10:00): the 09:00 slot ends exactly at its start
	// (touching, not overlapping) and stays available; the 09:35 slot
	// overlaps and must not.
	svc := newTestService(t, []*model.Reservation{
		{
			ID:         "res1",
			ProviderID: testProviderID,
			StartTime:  nyTime(t, "2025-06-02 09:30"),
			EndTime:    nyTime(t, "2025-06-02 10:00"),
			Status:     model.StatusConfirmed,
		},
	}, nil)

	schedule, err := svc.GenerateSlots(context.Background(), testProviderID, testServiceID, testDate, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !schedule.Slots[0].Available {
		t.Error("09:00 slot touches the reservation boundary and must stay available")
	}
	if schedule.Slots[1].Available {
		t.Error("09:35 slot overlaps the reservation and must be unavailable")
	}
	if !schedule.Slots[2].Available {
		t.Error("10:10 slot is clear of the reservation and must be available")
	}
}

func TestGenerateSlots_BlockedIntervalWins(t *testing.T) {
	svc := newTestService(t, nil, []*model.BlockedInterval{
		{
			ID:         "block1",
			ProviderID: testProviderID,
			StartTime:  nyTime(t, "2025-06-02 12:00"),
			EndTime:    nyTime(t, "2025-06-02 13:00"),
		},
	})

	schedule, err := svc.GenerateSlots(context.Background(), testProviderID, testServiceID, testDate, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	blockStart := nyTime(t, "2025-06-02 12:00")
	blockEnd := nyTime(t, "2025-06-02 13:00")
	for i, slot := range schedule.Slots {
		overlapsBlock := slot.StartTime.Before(blockEnd) && slot.EndTime.After(blockStart)
		if overlapsBlock && slot.Available {
			t.Errorf("slot %d (%v) overlaps the blocked interval and must be unavailable", i, slot.StartTime)
		}
		if !overlapsBlock && !slot.Available {
			t.Errorf("slot %d (%v) is clear of the blocked interval and must be available", i, slot.StartTime)
		}
	}
}

func TestGenerateSlots_PastSlotsFlaggedUnavailable(t *testing.T) {
	svc := newTestService(t, nil, nil)
	// Same day, 10:00 local: everything that already started is flagged.
	svc.clock = clock.NewFixed(nyTime(t, "2025-06-02 10:00"))

	schedule, err := svc.GenerateSlots(context.Background(), testProviderID, testServiceID, testDate, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(schedule.Slots) != 13 {
		t.Fatalf("past slots must stay in the output, expected 13 slots, got %d", len(schedule.Slots))
	}
	if schedule.Slots[0].Available || schedule.Slots[1].Available {
		t.Error("slots starting before now must be unavailable")
	}
	if !schedule.Slots[2].Available {
		t.Error("10:10 slot starts after now and must be available")
	}
}

func TestGenerateSlots_ViewerTimezoneRoundTrip(t *testing.T) {
	svc := newTestService(t, nil, nil)

	providerView, err := svc.GenerateSlots(context.Background(), testProviderID, testServiceID, testDate, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tokyoView, err := svc.GenerateSlots(context.Background(), testProviderID, testServiceID, testDate, "Asia/Tokyo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(providerView.Slots) != len(tokyoView.Slots) {
		t.Fatalf("slot counts differ across viewer zones: %d vs %d", len(providerView.Slots), len(tokyoView.Slots))
	}
	for i := range providerView.Slots {
		if !providerView.Slots[i].StartTime.Equal(tokyoView.Slots[i].StartTime) {
			t.Errorf("slot %d refers to different instants across viewer zones", i)
		}
		if providerView.Slots[i].Available != tokyoView.Slots[i].Available {
			t.Errorf("slot %d availability differs across viewer zones", i)
		}
	}
	if tokyoView.TimeZone != "Asia/Tokyo" {
		t.Errorf("expected reported timezone Asia/Tokyo, got %s", tokyoView.TimeZone)
	}
}

func TestGenerateSlots_ReadIsIdempotent(t *testing.T) {
	svc := newTestService(t, nil, nil)

	first, err := svc.GenerateSlots(context.Background(), testProviderID, testServiceID, testDate, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.GenerateSlots(context.Background(), testProviderID, testServiceID, testDate, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(first.Slots) != len(second.Slots) {
		t.Fatalf("repeated reads differ: %d vs %d slots", len(first.Slots), len(second.Slots))
	}
	for i := range first.Slots {
		if !first.Slots[i].StartTime.Equal(second.Slots[i].StartTime) ||
			first.Slots[i].Available != second.Slots[i].Available {
			t.Errorf("slot %d differs between repeated reads", i)
		}
	}
}

func TestGenerateSlots_ClosedDayYieldsNoSlots(t *testing.T) {
	svc := newTestService(t, nil, nil)

	// 2025-06-03 is a Tuesday; the only rule is for Monday.
	schedule, err := svc.GenerateSlots(context.Background(), testProviderID, testServiceID, "2025-06-03", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schedule.Slots) != 0 {
		t.Errorf("expected no slots on a closed day, got %d", len(schedule.Slots))
	}
}

func TestGenerateSlots_RuleShorterThanDurationYieldsNothing(t *testing.T) {
	svc := newTestService(t, nil, nil)
	svc.schedules = &mockScheduleRepo{
		rulesForWeekdayFunc: func(ctx context.Context, providerID string, weekday int) ([]*model.AvailabilityRule, error) {
			return []*model.AvailabilityRule{
				{ID: "tiny", ProviderID: providerID, Weekday: 1, StartLocal: "09:00", EndLocal: "09:15", Enabled: true},
			}, nil
		},
	}

	schedule, err := svc.GenerateSlots(context.Background(), testProviderID, testServiceID, testDate, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schedule.Slots) != 0 {
		t.Errorf("a 15 minute window cannot hold a 30 minute slot, got %d slots", len(schedule.Slots))
	}
}

func TestGenerateSlots_InactiveServiceRejected(t *testing.T) {
	svc := newTestService(t, nil, nil)
	svc.providers = &mockProviderRepo{
		getServiceFunc: func(ctx context.Context, id, providerID string) (*model.Service, error) {
			return &model.Service{ID: id, ProviderID: providerID, DurationMin: 30, Active: false}, nil
		},
	}

	if _, err := svc.GenerateSlots(context.Background(), testProviderID, testServiceID, testDate, ""); err == nil {
		t.Fatal("expected an error for an inactive service")
	}
}

func TestGenerateSlots_InvalidDateRejected(t *testing.T) {
	svc := newTestService(t, nil, nil)

	if _, err := svc.GenerateSlots(context.Background(), testProviderID, testServiceID, "06/02/2025", ""); err == nil {
		t.Fatal("expected an error for a malformed date")
	}
}

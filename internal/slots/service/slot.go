package service

import (
	"context"
	"errors"
	"time"

	providerserrors "slotbook/internal/providers/errors"
	providersrepo "slotbook/internal/providers/repository"
	reservationsrepo "slotbook/internal/reservations/repository"
	schedulesrepo "slotbook/internal/schedules/repository"
	"slotbook/pkg/clock"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
)

// DaySchedule is the generator's output: every candidate slot of one
// calendar day, in the viewer's zone, flagged available or not.
type DaySchedule struct {
	ProviderID string       `json:"provider_id"`
	ServiceID  string       `json:"service_id"`
	Date       string       `json:"date"`
	TimeZone   string       `json:"timezone"`
	Slots      []model.Slot `json:"slots"`
}

type SlotService interface {
	GenerateSlots(ctx context.Context, providerID, serviceID, date, viewerTZ string) (*DaySchedule, error)
}

type slotService struct {
	providers    providersrepo.ProviderRepository
	schedules    schedulesrepo.ScheduleRepository
	reservations reservationsrepo.ReservationRepository
	clock        clock.Clock
	cfg          *config.Config
}

func NewSlotService(
	providers providersrepo.ProviderRepository,
	schedules schedulesrepo.ScheduleRepository,
	reservations reservationsrepo.ReservationRepository,
	clk clock.Clock,
	cfg *config.Config,
) SlotService {
	return &slotService{
		providers:    providers,
		schedules:    schedules,
		reservations: reservations,
		clock:        clk,
		cfg:          cfg,
	}
}

// GenerateSlots tiles the provider's availability rules for one calendar day
// into candidate slots of the service's duration, stepping by duration plus
// buffer. A slot is unavailable when it already started, overlaps a busy
// reservation, or overlaps a blocked interval. The output is a point-in-time
// snapshot: it never raises conflict errors and availability may be stale by
// the time a caller acts on it.
//
// Rules are walked independently and never merged. Two rules a provider
// misconfigured to overlap will produce overlapping candidate slots; the
// admission controller rejects the loser anyway.
func (s *slotService) GenerateSlots(ctx context.Context, providerID, serviceID, date, viewerTZ string) (*DaySchedule, error) {
	if providerID == "" || serviceID == "" || date == "" {
		return nil, apperrors.InvalidInput("provider_id, service_id and date are required")
	}

	provider, err := s.providers.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, providerserrors.ErrProviderNotFound) || errors.Is(err, providerserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Provider", providerID)
		}
		s.cfg.Log.Error("Failed to resolve provider", "provider_id", providerID, "error", err)
		return nil, apperrors.Internal("Failed to resolve provider", err)
	}

	svc, err := s.providers.GetService(ctx, serviceID, providerID)
	if err != nil {
		if errors.Is(err, providerserrors.ErrServiceNotFound) || errors.Is(err, providerserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Service", serviceID)
		}
		s.cfg.Log.Error("Failed to resolve service", "service_id", serviceID, "error", err)
		return nil, apperrors.Internal("Failed to resolve service", err)
	}
	if !svc.Active {
		return nil, apperrors.InvalidInput("Service is not active")
	}

	providerLoc, err := clock.LoadLocation(provider.TimeZone)
	if err != nil {
		s.cfg.Log.Error("Provider has an unresolvable time zone",
			"provider_id", providerID,
			"timezone", provider.TimeZone,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to resolve provider time zone", err)
	}

	viewerLoc := providerLoc
	if viewerTZ != "" {
		viewerLoc, err = clock.LoadLocation(viewerTZ)
		if err != nil {
			return nil, apperrors.InvalidInput("Invalid viewer time zone: " + viewerTZ)
		}
	}

	// The day is bounded in the provider's zone. On DST transition days the
	// window is 23 or 25 hours; rule walks below use absolute instants, so
	// slot boundaries stay correct either way.
	dayStart, dayEnd, err := clock.DayBounds(date, providerLoc)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid date, expected YYYY-MM-DD")
	}

	rules, err := s.schedules.RulesForWeekday(ctx, providerID, int(dayStart.Weekday()))
	if err != nil {
		s.cfg.Log.Error("Failed to load availability rules", "provider_id", providerID, "error", err)
		return nil, apperrors.Internal("Failed to load availability rules", err)
	}

	schedule := &DaySchedule{
		ProviderID: providerID,
		ServiceID:  serviceID,
		Date:       date,
		TimeZone:   viewerLoc.String(),
		Slots:      []model.Slot{},
	}
	if len(rules) == 0 {
		return schedule, nil
	}

	busy, err := s.reservations.FindOverlapping(ctx, providerID, dayStart, dayEnd)
	if err != nil {
		s.cfg.Log.Error("Failed to load reservations for day", "provider_id", providerID, "error", err)
		return nil, apperrors.Internal("Failed to load reservations", err)
	}

	blocked, err := s.schedules.IntervalsInWindow(ctx, providerID, dayStart, dayEnd)
	if err != nil {
		s.cfg.Log.Error("Failed to load blocked intervals for day", "provider_id", providerID, "error", err)
		return nil, apperrors.Internal("Failed to load blocked intervals", err)
	}

	duration := time.Duration(svc.DurationMin) * time.Minute
	step := time.Duration(svc.GranularityMin()) * time.Minute
	now := s.clock.Now()

	for _, rule := range rules {
		windowStart, err := clock.At(dayStart, rule.StartLocal)
		if err != nil {
			s.cfg.Log.Warn("Skipping rule with malformed start clock", "rule_id", rule.ID, "error", err)
			continue
		}
		windowEnd, err := clock.At(dayStart, rule.EndLocal)
		if err != nil {
			s.cfg.Log.Warn("Skipping rule with malformed end clock", "rule_id", rule.ID, "error", err)
			continue
		}

		// The slot itself occupies only the service duration; the buffer
		// widens the step, not the slot. The last slot must end inside the
		// rule window, buffer overhang past the window is fine.
		for start := windowStart; !start.Add(duration).After(windowEnd); start = start.Add(step) {
			end := start.Add(duration)
			schedule.Slots = append(schedule.Slots, model.Slot{
				StartTime: start.In(viewerLoc),
				EndTime:   end.In(viewerLoc),
				Available: s.isAvailable(start, end, now, busy, blocked),
			})
		}
	}

	return schedule, nil
}

func (s *slotService) isAvailable(start, end, now time.Time, busy []*model.Reservation, blocked []*model.BlockedInterval) bool {
	// Past slots stay in the output for calendar completeness but are never
	// offered.
	if start.Before(now) {
		return false
	}
	for _, interval := range blocked {
		if clock.Overlaps(start, end, interval.StartTime, interval.EndTime) {
			return false
		}
	}
	for _, reservation := range busy {
		if clock.Overlaps(start, end, reservation.StartTime, reservation.EndTime) {
			return false
		}
	}
	return true
}

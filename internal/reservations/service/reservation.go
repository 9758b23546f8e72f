package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	providerserrors "slotbook/internal/providers/errors"
	providersrepo "slotbook/internal/providers/repository"
	"slotbook/internal/reservations/events"
	reservationserrors "slotbook/internal/reservations/errors"
	"slotbook/internal/reservations/repository"
	"slotbook/internal/reservations/validator"
	schedulesrepo "slotbook/internal/schedules/repository"
	"slotbook/pkg/clock"
	"slotbook/pkg/config"
	mongotx "slotbook/pkg/db/mongo"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type ReservationService interface {
	Admit(ctx context.Context, req *model.AdmissionRequest) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	SetStatus(ctx context.Context, id string, transition *model.StatusTransition) (*model.Reservation, error)
	Search(ctx context.Context, providerID string, filter repository.SearchFilter, limit int, offset int64) ([]*model.Reservation, int64, error)
}

type reservationService struct {
	repo      repository.ReservationRepository
	locks     repository.SlotLockRepository
	schedules schedulesrepo.ScheduleRepository
	providers providersrepo.ProviderRepository
	validator *validator.ReservationValidator
	publisher *events.Publisher
	clock     clock.Clock
	cfg       *config.Config
}

func NewReservationService(
	repo repository.ReservationRepository,
	locks repository.SlotLockRepository,
	schedules schedulesrepo.ScheduleRepository,
	providers providersrepo.ProviderRepository,
	v *validator.ReservationValidator,
	publisher *events.Publisher,
	clk clock.Clock,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		locks:     locks,
		schedules: schedules,
		providers: providers,
		validator: v,
		publisher: publisher,
		clock:     clk,
		cfg:       cfg,
	}
}

// Admit commits a confirmed reservation on [req.StartTime, req.EndTime) if
// and only if no busy reservation of the same provider overlaps the range.
// Contention (another admission evaluating an overlapping range right now)
// is retried internally with jittered backoff; losing the race to a
// committed competitor is definitive and returned as SLOT_UNAVAILABLE
// immediately.
func (s *reservationService) Admit(ctx context.Context, req *model.AdmissionRequest) (*model.Reservation, error) {
	req.CustomerName = sanitizer.SanitizeName(req.CustomerName)
	req.CustomerPhone = sanitizer.SanitizePhone(req.CustomerPhone)
	req.StartTime = req.StartTime.UTC()
	req.EndTime = req.EndTime.UTC()

	if err := s.validator.ValidateAdmission(req); err != nil {
		s.cfg.Log.Warn("Admission request validation failed",
			"provider_id", req.ProviderID,
			"error", err,
		)
		return nil, apperrors.Validation("Admission request validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	now := s.clock.Now()
	if req.StartTime.Before(now) {
		return nil, apperrors.InvalidInput("Reservation start is in the past")
	}

	if err := s.resolveProviderAndService(ctx, req); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.AdmissionMaxAttempts; attempt++ {
		reservation, err := s.admitOnce(ctx, req)
		if err == nil {
			s.cfg.Log.Info("Reservation admitted",
				"id", reservation.ID,
				"provider_id", reservation.ProviderID,
				"start_time", reservation.StartTime,
				"end_time", reservation.EndTime,
				"attempt", attempt,
			)
			s.publisher.ReservationChanged(ctx, reservation)
			return reservation, nil
		}

		lastErr = err
		if !apperrors.IsCode(err, apperrors.CodeSlotContended) {
			return nil, err
		}

		s.cfg.Log.Debug("Admission contended, retrying",
			"provider_id", req.ProviderID,
			"start_time", req.StartTime,
			"attempt", attempt,
		)
		if attempt < s.cfg.AdmissionMaxAttempts {
			select {
			case <-ctx.Done():
				return nil, apperrors.Timeout("Admission cancelled while waiting to retry")
			case <-time.After(jitteredBackoff(s.cfg.AdmissionRetryBackoff, attempt)):
			}
		}
	}

	s.cfg.Log.Warn("Admission contention not resolved within retry budget",
		"provider_id", req.ProviderID,
		"start_time", req.StartTime,
		"attempts", s.cfg.AdmissionMaxAttempts,
	)
	return nil, lastErr
}

// admitOnce runs one full admission attempt: range lock, transactional
// overlap check, insert, commit, lock release.
func (s *reservationService) admitOnce(ctx context.Context, req *model.AdmissionRequest) (*model.Reservation, error) {
	lockIDs, err := s.locks.AcquireRange(ctx, req.ProviderID, req.StartTime, req.EndTime)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrRangeContended) {
			return nil, apperrors.SlotContended("Another admission for an overlapping range is in flight")
		}
		s.cfg.Log.Error("Failed to acquire slot locks",
			"provider_id", req.ProviderID,
			"error", err,
		)
		return nil, apperrors.Unavailable("slot lock storage")
	}
	// Locks are released even when the surrounding context is already done;
	// the TTL index is the backstop for a crashed process, not for this path.
	defer func() {
		if releaseErr := s.locks.ReleaseRange(context.WithoutCancel(ctx), lockIDs); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot locks",
				"provider_id", req.ProviderID,
				"error", releaseErr,
			)
		}
	}()

	txCtx, cancel := context.WithTimeout(ctx, s.cfg.AdmissionTxTimeout)
	defer cancel()

	reservation := req.Reservation()
	err = s.repo.ExecuteTransaction(txCtx, func(sessCtx mongo.SessionContext) error {
		blocked, err := s.schedules.IntervalsInWindow(sessCtx, req.ProviderID, req.StartTime, req.EndTime)
		if err != nil {
			return fmt.Errorf("failed to check blocked intervals: %w", err)
		}
		if len(blocked) > 0 {
			return apperrors.SlotUnavailable("Requested range falls in a blocked interval")
		}

		overlapping, err := s.repo.FindOverlapping(sessCtx, req.ProviderID, req.StartTime, req.EndTime)
		if err != nil {
			return fmt.Errorf("failed to check overlapping reservations: %w", err)
		}
		if len(overlapping) > 0 {
			return apperrors.SlotUnavailable("Requested range overlaps an existing reservation")
		}

		return s.repo.Create(sessCtx, reservation)
	})
	if err != nil {
		return nil, s.mapAdmissionError(err)
	}

	return reservation, nil
}

// mapAdmissionError folds transaction failures into the admission taxonomy.
// Transient transaction states and timeouts are contention: the data may
// well admit the request on a fresh attempt. The backstop unique index
// firing is not: a competitor committed the same start.
func (s *reservationService) mapAdmissionError(err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, reservationserrors.ErrAlreadyBooked) {
		return apperrors.SlotUnavailable("Requested start is already booked")
	}
	if mongotx.IsTransientTxError(err) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.SlotContended("Admission transaction did not complete cleanly")
	}
	s.cfg.Log.Error("Admission transaction failed", "error", err)
	return apperrors.Unavailable("reservation storage")
}

func (s *reservationService) resolveProviderAndService(ctx context.Context, req *model.AdmissionRequest) error {
	if _, err := s.providers.GetProvider(ctx, req.ProviderID); err != nil {
		if errors.Is(err, providerserrors.ErrProviderNotFound) || errors.Is(err, providerserrors.ErrInvalidID) {
			return apperrors.NotFoundWithID("Provider", req.ProviderID)
		}
		s.cfg.Log.Error("Failed to resolve provider", "provider_id", req.ProviderID, "error", err)
		return apperrors.Internal("Failed to resolve provider", err)
	}

	svc, err := s.providers.GetService(ctx, req.ServiceID, req.ProviderID)
	if err != nil {
		if errors.Is(err, providerserrors.ErrServiceNotFound) || errors.Is(err, providerserrors.ErrInvalidID) {
			return apperrors.NotFoundWithID("Service", req.ServiceID)
		}
		s.cfg.Log.Error("Failed to resolve service", "service_id", req.ServiceID, "error", err)
		return apperrors.Internal("Failed to resolve service", err)
	}
	if !svc.Active {
		return apperrors.InvalidInput("Service is not active")
	}
	return nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reservationserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		s.cfg.Log.Error("Failed to get reservation", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	return reservation, nil
}

// SetStatus applies a lifecycle transition. It takes no range lock: a status
// change never moves the time range, and the status-filtered update makes
// concurrent transitions race-safe on its own.
func (s *reservationService) SetStatus(ctx context.Context, id string, transition *model.StatusTransition) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	if transition.CustomerPhone != "" {
		transition.CustomerPhone = sanitizer.SanitizePhone(transition.CustomerPhone)
	}

	if err := s.validator.ValidateTransition(transition); err != nil {
		return nil, apperrors.Validation("Status transition validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	reservation, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeTransition(reservation, transition); err != nil {
		return nil, err
	}

	if !model.CanTransition(reservation.Status, transition.Status) {
		return nil, apperrors.InvalidTransition(fmt.Sprintf(
			"Cannot transition reservation from %s to %s",
			reservation.Status, transition.Status,
		))
	}

	if err := s.repo.UpdateStatus(ctx, id, reservation.Status, transition.Status); err != nil {
		if errors.Is(err, reservationserrors.ErrStatusConflict) {
			// A concurrent transition won; the expected status is gone.
			return nil, apperrors.InvalidTransition(fmt.Sprintf(
				"Reservation left status %s before the transition applied",
				reservation.Status,
			))
		}
		s.cfg.Log.Error("Failed to update reservation status", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update reservation status", err)
	}

	reservation.Status = transition.Status
	reservation.Version++

	s.cfg.Log.Info("Reservation status updated",
		"id", id,
		"status", transition.Status,
	)
	s.publisher.ReservationChanged(ctx, reservation)

	return reservation, nil
}

// authorizeTransition enforces the actor rules: customers may only cancel
// their own reservations, providers may apply any allowed transition on
// reservations they own.
func (s *reservationService) authorizeTransition(reservation *model.Reservation, transition *model.StatusTransition) error {
	if transition.ProviderID != "" {
		if transition.ProviderID != reservation.ProviderID {
			return apperrors.Forbidden("Reservation belongs to a different provider")
		}
		return nil
	}

	if transition.Status != model.StatusCancelled {
		return apperrors.Forbidden("Customers may only cancel reservations")
	}
	if transition.CustomerPhone != reservation.CustomerPhone {
		return apperrors.Forbidden("Reservation belongs to a different customer")
	}
	return nil
}

func (s *reservationService) Search(ctx context.Context, providerID string, filter repository.SearchFilter, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if providerID == "" {
		return nil, 0, apperrors.InvalidInput("Provider ID cannot be empty")
	}
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	reservations, err := s.repo.FindByProvider(ctx, providerID, filter, limit, offset)
	if err != nil {
		s.cfg.Log.Error("Failed to search reservations", "provider_id", providerID, "error", err)
		return nil, 0, apperrors.Internal("Failed to search reservations", err)
	}

	count, err := s.repo.CountByProvider(ctx, providerID, filter)
	if err != nil {
		s.cfg.Log.Error("Failed to count reservations", "provider_id", providerID, "error", err)
		return nil, 0, apperrors.Internal("Failed to count reservations", err)
	}

	return reservations, count, nil
}

// jitteredBackoff grows linearly with the attempt number and randomizes
// within [0.5, 1.5) of the base delay so colliding retries spread out.
func jitteredBackoff(base time.Duration, attempt int) time.Duration {
	scaled := base * time.Duration(attempt)
	half := scaled / 2
	return half + time.Duration(rand.Int63n(int64(scaled)))
}

package service

import (
	"context"
	"errors"
	"fmt"

	scheduleserrors "slotbook/internal/schedules/errors"
	"slotbook/internal/schedules/repository"
	"slotbook/internal/schedules/validator"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"
)

type ScheduleService interface {
	CreateRule(ctx context.Context, rule *model.AvailabilityRule) error
	ListRules(ctx context.Context, providerID string) ([]*model.AvailabilityRule, error)
	UpdateRule(ctx context.Context, id, providerID string, update *model.AvailabilityRuleUpdate) error
	DeleteRule(ctx context.Context, id, providerID string) error

	CreateInterval(ctx context.Context, interval *model.BlockedInterval) error
	ListIntervals(ctx context.Context, providerID string) ([]*model.BlockedInterval, error)
	DeleteInterval(ctx context.Context, id, providerID string) error
}

type scheduleService struct {
	repo      repository.ScheduleRepository
	validator *validator.ScheduleValidator
	cfg       *config.Config
}

func NewScheduleService(
	repo repository.ScheduleRepository,
	v *validator.ScheduleValidator,
	cfg *config.Config,
) ScheduleService {
	return &scheduleService{
		repo:      repo,
		validator: v,
		cfg:       cfg,
	}
}

func (s *scheduleService) CreateRule(ctx context.Context, rule *model.AvailabilityRule) error {
	if err := s.validator.ValidateRule(rule); err != nil {
		s.cfg.Log.Warn("Availability rule validation failed",
			"provider_id", rule.ProviderID,
			"weekday", rule.Weekday,
			"error", err,
		)
		return apperrors.Validation("Availability rule validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.checkRuleOverlap(ctx, rule, ""); err != nil {
		return err
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		s.cfg.Log.Error("Failed to create availability rule",
			"provider_id", rule.ProviderID,
			"weekday", rule.Weekday,
			"error", err,
		)
		return apperrors.Internal("Failed to create availability rule", err)
	}

	s.cfg.Log.Info("Availability rule created",
		"id", rule.ID,
		"provider_id", rule.ProviderID,
		"weekday", rule.Weekday,
		"start_local", rule.StartLocal,
		"end_local", rule.EndLocal,
	)
	return nil
}

func (s *scheduleService) ListRules(ctx context.Context, providerID string) ([]*model.AvailabilityRule, error) {
	if providerID == "" {
		return nil, apperrors.InvalidInput("Provider ID cannot be empty")
	}

	rules, err := s.repo.ListRules(ctx, providerID)
	if err != nil {
		s.cfg.Log.Error("Failed to list availability rules", "provider_id", providerID, "error", err)
		return nil, apperrors.Internal("Failed to list availability rules", err)
	}

	return rules, nil
}

func (s *scheduleService) UpdateRule(ctx context.Context, id, providerID string, update *model.AvailabilityRuleUpdate) error {
	if id == "" || providerID == "" {
		return apperrors.InvalidInput("Rule and provider IDs cannot be empty")
	}

	if err := s.validator.ValidateRuleUpdate(update); err != nil {
		return apperrors.Validation("Availability rule update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	current, err := s.repo.GetRule(ctx, id, providerID)
	if err != nil {
		if errors.Is(err, scheduleserrors.ErrRuleNotFound) {
			return apperrors.NotFoundWithID("Availability rule", id)
		}
		if errors.Is(err, scheduleserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid rule ID format")
		}
		s.cfg.Log.Error("Failed to load availability rule", "id", id, "error", err)
		return apperrors.Internal("Failed to load availability rule", err)
	}

	// Overlap is checked against the rule as it would read after the update.
	merged := *current
	if update.StartLocal != "" {
		merged.StartLocal = update.StartLocal
	}
	if update.EndLocal != "" {
		merged.EndLocal = update.EndLocal
	}
	if merged.StartLocal >= merged.EndLocal {
		return apperrors.Validation("Availability rule update validation failed", map[string]any{
			"error": "end_local must be after start_local",
		})
	}
	if err := s.checkRuleOverlap(ctx, &merged, id); err != nil {
		return err
	}

	if err := s.repo.UpdateRule(ctx, id, providerID, update); err != nil {
		if errors.Is(err, scheduleserrors.ErrRuleNotFound) {
			return apperrors.NotFoundWithID("Availability rule", id)
		}
		s.cfg.Log.Error("Failed to update availability rule", "id", id, "error", err)
		return apperrors.Internal("Failed to update availability rule", err)
	}

	s.cfg.Log.Info("Availability rule updated", "id", id, "provider_id", providerID)
	return nil
}

func (s *scheduleService) DeleteRule(ctx context.Context, id, providerID string) error {
	if id == "" || providerID == "" {
		return apperrors.InvalidInput("Rule and provider IDs cannot be empty")
	}

	if err := s.repo.DeleteRule(ctx, id, providerID); err != nil {
		if errors.Is(err, scheduleserrors.ErrRuleNotFound) {
			return apperrors.NotFoundWithID("Availability rule", id)
		}
		if errors.Is(err, scheduleserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid rule ID format")
		}
		s.cfg.Log.Error("Failed to delete availability rule", "id", id, "error", err)
		return apperrors.Internal("Failed to delete availability rule", err)
	}

	s.cfg.Log.Info("Availability rule deleted", "id", id, "provider_id", providerID)
	return nil
}

func (s *scheduleService) CreateInterval(ctx context.Context, interval *model.BlockedInterval) error {
	interval.Reason = sanitizer.SanitizeReason(interval.Reason)
	interval.StartTime = interval.StartTime.UTC()
	interval.EndTime = interval.EndTime.UTC()

	if err := s.validator.ValidateInterval(interval); err != nil {
		s.cfg.Log.Warn("Blocked interval validation failed",
			"provider_id", interval.ProviderID,
			"error", err,
		)
		return apperrors.Validation("Blocked interval validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.CreateInterval(ctx, interval); err != nil {
		s.cfg.Log.Error("Failed to create blocked interval",
			"provider_id", interval.ProviderID,
			"error", err,
		)
		return apperrors.Internal("Failed to create blocked interval", err)
	}

	s.cfg.Log.Info("Blocked interval created",
		"id", interval.ID,
		"provider_id", interval.ProviderID,
		"start_time", interval.StartTime,
		"end_time", interval.EndTime,
	)
	return nil
}

func (s *scheduleService) ListIntervals(ctx context.Context, providerID string) ([]*model.BlockedInterval, error) {
	if providerID == "" {
		return nil, apperrors.InvalidInput("Provider ID cannot be empty")
	}

	intervals, err := s.repo.ListIntervals(ctx, providerID)
	if err != nil {
		s.cfg.Log.Error("Failed to list blocked intervals", "provider_id", providerID, "error", err)
		return nil, apperrors.Internal("Failed to list blocked intervals", err)
	}

	return intervals, nil
}

func (s *scheduleService) DeleteInterval(ctx context.Context, id, providerID string) error {
	if id == "" || providerID == "" {
		return apperrors.InvalidInput("Interval and provider IDs cannot be empty")
	}

	if err := s.repo.DeleteInterval(ctx, id, providerID); err != nil {
		if errors.Is(err, scheduleserrors.ErrIntervalNotFound) {
			return apperrors.NotFoundWithID("Blocked interval", id)
		}
		if errors.Is(err, scheduleserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid interval ID format")
		}
		s.cfg.Log.Error("Failed to delete blocked interval", "id", id, "error", err)
		return apperrors.Internal("Failed to delete blocked interval", err)
	}

	s.cfg.Log.Info("Blocked interval deleted", "id", id, "provider_id", providerID)
	return nil
}

// checkRuleOverlap rejects a rule that shares any wall clock minute with
// another enabled rule on the same weekday. Zero-padded clock strings make
// the string comparison equivalent to a time comparison.
func (s *scheduleService) checkRuleOverlap(ctx context.Context, rule *model.AvailabilityRule, excludeID string) error {
	existing, err := s.repo.RulesForWeekday(ctx, rule.ProviderID, rule.Weekday)
	if err != nil {
		s.cfg.Log.Error("Failed to load rules for overlap check",
			"provider_id", rule.ProviderID,
			"weekday", rule.Weekday,
			"error", err,
		)
		return apperrors.Internal("Failed to check availability rule overlap", err)
	}

	for _, other := range existing {
		if other.ID == excludeID {
			continue
		}
		if rule.StartLocal < other.EndLocal && rule.EndLocal > other.StartLocal {
			return apperrors.Validation(scheduleserrors.ErrRuleOverlap.Error(), map[string]any{
				"conflicting_rule_id": other.ID,
				"detail": fmt.Sprintf("existing rule covers %s-%s",
					other.StartLocal, other.EndLocal),
			})
		}
	}
	return nil
}

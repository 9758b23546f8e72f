package validator

import (
	"testing"
	"time"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"
)

const testProviderID = "64f000000000000000000001"

func newTestValidator() *ScheduleValidator {
	return NewScheduleValidator(logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	}))
}

func validRule() *model.AvailabilityRule {
	return &model.AvailabilityRule{
		ProviderID: testProviderID,
		Weekday:    1,
		StartLocal: "09:00",
		EndLocal:   "17:00",
		Enabled:    true,
	}
}

func TestValidateRule(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateRule(validRule()); err != nil {
		t.Errorf("expected valid rule to pass, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*model.AvailabilityRule)
	}{
		{"missing provider", func(r *model.AvailabilityRule) { r.ProviderID = "" }},
		{"malformed provider ID", func(r *model.AvailabilityRule) { r.ProviderID = "not-an-oid" }},
		{"weekday too large", func(r *model.AvailabilityRule) { r.Weekday = 7 }},
		{"unpadded hour", func(r *model.AvailabilityRule) { r.StartLocal = "9:00" }},
		{"out of range hour", func(r *model.AvailabilityRule) { r.StartLocal = "25:00" }},
		{"out of range minute", func(r *model.AvailabilityRule) { r.EndLocal = "17:60" }},
		{"missing colon", func(r *model.AvailabilityRule) { r.EndLocal = "17.00" }},
		{"end equals start", func(r *model.AvailabilityRule) { r.EndLocal = r.StartLocal }},
		{"end before start", func(r *model.AvailabilityRule) { r.StartLocal = "17:00"; r.EndLocal = "09:00" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := validRule()
			tt.mutate(rule)
			if err := v.ValidateRule(rule); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestValidateRule_WeekdayZeroIsSunday(t *testing.T) {
	v := newTestValidator()
	rule := validRule()
	rule.Weekday = 0
	if err := v.ValidateRule(rule); err != nil {
		t.Errorf("weekday 0 must be accepted, got %v", err)
	}
}

func TestValidateRuleUpdate(t *testing.T) {
	v := newTestValidator()
	enabled := false

	if err := v.ValidateRuleUpdate(&model.AvailabilityRuleUpdate{Enabled: &enabled}); err != nil {
		t.Errorf("enabled-only update must pass, got %v", err)
	}
	if err := v.ValidateRuleUpdate(&model.AvailabilityRuleUpdate{StartLocal: "10:00"}); err != nil {
		t.Errorf("partial clock update must pass, got %v", err)
	}
	if err := v.ValidateRuleUpdate(&model.AvailabilityRuleUpdate{StartLocal: "18:00", EndLocal: "09:00"}); err == nil {
		t.Error("inverted clock pair must fail")
	}
	if err := v.ValidateRuleUpdate(&model.AvailabilityRuleUpdate{StartLocal: "930"}); err == nil {
		t.Error("malformed clock must fail")
	}
}

func TestValidateInterval(t *testing.T) {
	v := newTestValidator()
	start := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	valid := &model.BlockedInterval{
		ProviderID: testProviderID,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Reason:     "lunch",
	}
	if err := v.ValidateInterval(valid); err != nil {
		t.Errorf("expected valid interval to pass, got %v", err)
	}

	inverted := &model.BlockedInterval{
		ProviderID: testProviderID,
		StartTime:  start,
		EndTime:    start.Add(-time.Hour),
	}
	if err := v.ValidateInterval(inverted); err == nil {
		t.Error("expected inverted interval to fail")
	}
}

package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"slotbook/pkg/logger"
	"slotbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ScheduleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewScheduleValidator(log *logger.Logger) *ScheduleValidator {
	v := validator.New()

	if err := v.RegisterValidation("local_clock", validateLocalClock); err != nil {
		log.Fatal("Failed to register 'local_clock' validator", "error", err)
	}

	return &ScheduleValidator{
		validate: v,
		logger:   log,
	}
}

// validateLocalClock accepts zero-padded 24h wall clock values ("09:00",
// "17:30"). The zero padding matters: it keeps lexicographic and
// chronological ordering identical for stored clock strings.
func validateLocalClock(fl validator.FieldLevel) bool {
	clock := fl.Field().String()
	if len(clock) != 5 || clock[2] != ':' {
		return false
	}
	_, err := time.Parse("15:04", clock)
	return err == nil
}

func (v *ScheduleValidator) ValidateRule(rule *model.AvailabilityRule) error {
	if err := v.translate(v.validate.Struct(rule)); err != nil {
		return err
	}
	if rule.StartLocal >= rule.EndLocal {
		return ValidationErrors{{
			Field:   "EndLocal",
			Message: "end_local must be after start_local",
		}}
	}
	return nil
}

func (v *ScheduleValidator) ValidateRuleUpdate(update *model.AvailabilityRuleUpdate) error {
	if err := v.translate(v.validate.Struct(update)); err != nil {
		return err
	}
	if update.StartLocal != "" && update.EndLocal != "" && update.StartLocal >= update.EndLocal {
		return ValidationErrors{{
			Field:   "EndLocal",
			Message: "end_local must be after start_local",
		}}
	}
	return nil
}

func (v *ScheduleValidator) ValidateInterval(interval *model.BlockedInterval) error {
	return v.translate(v.validate.Struct(interval))
}

func (v *ScheduleValidator) translate(err error) error {
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return v.translateValidationErrors(validationErrs)
	}
	return err
}

func (v *ScheduleValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "local_clock":
			message = fmt.Sprintf("%s must be a zero-padded HH:MM wall clock value", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

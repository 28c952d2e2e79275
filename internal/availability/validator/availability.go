package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sanchez188/serviProf/pkg/logger"
	"github.com/sanchez188/serviProf/pkg/model"
	"github.com/sanchez188/serviProf/pkg/timerange"

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

type AvailabilityValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAvailabilityValidator(log *logger.Logger) *AvailabilityValidator {
	v := validator.New()

	log.Info("Availability validator initialized successfully")

	return &AvailabilityValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateRule checks one weekly rule. Unavailable days carry no window.
func (v *AvailabilityValidator) ValidateRule(rule *model.AvailabilityRule) error {
	if err := v.validate.Struct(rule); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !rule.IsAvailable {
		return nil
	}

	return validateWindow(rule.StartTime, rule.EndTime)
}

func (v *AvailabilityValidator) ValidateRules(rules []*model.AvailabilityRule) error {
	seen := map[int]bool{}
	for _, rule := range rules {
		if err := v.ValidateRule(rule); err != nil {
			return err
		}
		if seen[rule.DayOfWeek] {
			return ValidationErrors{
				ValidationError{
					Field:   "DayOfWeek",
					Message: fmt.Sprintf("duplicate rule for day %d", rule.DayOfWeek),
				},
			}
		}
		seen[rule.DayOfWeek] = true
	}
	return nil
}

func (v *AvailabilityValidator) ValidateBlockRequest(req *model.BlockSlotRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return validateWindow(req.StartTime, req.EndTime)
}

func validateWindow(start, end string) error {
	startMin, err := timerange.Parse(start)
	if err != nil {
		return ValidationErrors{
			ValidationError{Field: "StartTime", Message: "start_time must be in HH:MM format"},
		}
	}
	endMin, err := timerange.Parse(end)
	if err != nil {
		return ValidationErrors{
			ValidationError{Field: "EndTime", Message: "end_time must be in HH:MM format"},
		}
	}
	if endMin <= startMin {
		return ValidationErrors{
			ValidationError{Field: "EndTime", Message: "end_time must be after start_time"},
		}
	}
	return nil
}

func (v *AvailabilityValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "datetime":
			message = fmt.Sprintf("%s must match format %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

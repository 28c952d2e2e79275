package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

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

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger

	maxHours   int
	windowDays int
	now        func() time.Time
}

func NewBookingValidator(log *logger.Logger, maxHours, windowDays int) *BookingValidator {
	v := validator.New()

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate:   v,
		logger:     log,
		maxHours:   maxHours,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// ValidateRequest checks a creation payload: struct tags first, then the
// date/time semantics the tags cannot express. The booking must start in
// the future, stay inside the scheduling window, fit within the same day
// and not exceed the per-booking hour cap.
func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if req.Hours > v.maxHours {
		return ValidationErrors{
			ValidationError{
				Field:   "Hours",
				Message: fmt.Sprintf("bookings cannot exceed %d hours", v.maxHours),
			},
		}
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return ValidationErrors{
			ValidationError{Field: "Date", Message: "date must be in YYYY-MM-DD format"},
		}
	}

	start, err := timerange.Parse(req.StartTime)
	if err != nil {
		return ValidationErrors{
			ValidationError{Field: "StartTime", Message: "start_time must be in HH:MM format"},
		}
	}

	startAt := date.Add(time.Duration(start) * time.Minute)
	now := v.now()
	if !startAt.After(now) {
		return ValidationErrors{
			ValidationError{Field: "Date", Message: "booking must start in the future"},
		}
	}
	if startAt.After(now.AddDate(0, 0, v.windowDays)) {
		return ValidationErrors{
			ValidationError{
				Field:   "Date",
				Message: fmt.Sprintf("booking must start within %d days", v.windowDays),
			},
		}
	}

	if _, err := timerange.ComputeEnd(start, req.Hours); err != nil {
		return ValidationErrors{
			ValidationError{Field: "Hours", Message: "booking cannot extend past midnight"},
		}
	}

	return nil
}

func (v *BookingValidator) ValidateReview(req *model.ReviewRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object ID", err.Field())
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

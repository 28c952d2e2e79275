package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sanchez188/serviProf/pkg/logger"
	"github.com/sanchez188/serviProf/pkg/model"

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

type ServiceValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewServiceValidator(log *logger.Logger) *ServiceValidator {
	v := validator.New()

	log.Info("Service validator initialized successfully")

	return &ServiceValidator{
		validate: v,
		logger:   log,
	}
}

func (v *ServiceValidator) Validate(svc *model.Service) error {
	if err := v.validate.Struct(svc); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return validatePricing(svc.PriceType, svc.Price, svc.HourlyRate)
}

func (v *ServiceValidator) ValidateUpdate(update *model.ServiceUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return nil
}

// validatePricing enforces the field each price type requires: fixed needs
// a price, hourly needs a rate, negotiable carries neither.
func validatePricing(priceType model.PriceType, price, hourlyRate *float64) error {
	switch priceType {
	case model.PriceFixed:
		if price == nil {
			return ValidationErrors{
				ValidationError{Field: "Price", Message: "price is required for fixed pricing"},
			}
		}
	case model.PriceHourly:
		if hourlyRate == nil {
			return ValidationErrors{
				ValidationError{Field: "HourlyRate", Message: "hourly_rate is required for hourly pricing"},
			}
		}
	case model.PriceNegotiable:
		if price != nil || hourlyRate != nil {
			return ValidationErrors{
				ValidationError{Field: "PriceType", Message: "negotiable services cannot carry a price or hourly_rate"},
			}
		}
	}
	return nil
}

func (v *ServiceValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}

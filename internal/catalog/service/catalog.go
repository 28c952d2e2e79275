package service

import (
	"context"
	"errors"
	"sync"

	catalogerrors "github.com/sanchez188/serviProf/internal/catalog/errors"
	"github.com/sanchez188/serviProf/internal/catalog/repository"
	"github.com/sanchez188/serviProf/internal/catalog/validator"
	"github.com/sanchez188/serviProf/pkg/config"
	apperrors "github.com/sanchez188/serviProf/pkg/errors"
	"github.com/sanchez188/serviProf/pkg/model"
	"github.com/sanchez188/serviProf/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type CatalogService interface {
	Create(ctx context.Context, actor model.Actor, svc *model.Service) error
	GetByID(ctx context.Context, id string) (*model.Service, error)
	List(ctx context.Context, filter repository.ServiceFilter, limit int, offset int64) ([]*model.Service, int64, error)
	ListByProfessional(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Service, int64, error)
	Update(ctx context.Context, actor model.Actor, id string, updates *model.ServiceUpdate) (*model.Service, error)
	Delete(ctx context.Context, actor model.Actor, id string) error

	// Quote resolves the price a booking of the given length would pay.
	// The bookings domain calls this once at creation; the result is
	// frozen on the booking afterwards.
	Quote(ctx context.Context, serviceID string, hours int) (*model.Service, float64, error)

	// ApplyReview folds one new rating into the service's running average.
	ApplyReview(ctx context.Context, serviceID string, rating int) error
}

type catalogService struct {
	repo      repository.ServiceRepository
	validator *validator.ServiceValidator
	cfg       *config.Config
}

func NewCatalogService(
	repo repository.ServiceRepository,
	validator *validator.ServiceValidator,
	cfg *config.Config,
) CatalogService {
	return &catalogService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *catalogService) Create(ctx context.Context, actor model.Actor, svc *model.Service) error {
	if actor.Role != model.RoleProfessional {
		return apperrors.Forbidden("Only professionals can publish services")
	}

	svc.ProfessionalID = actor.ID
	svc.IsActive = true
	svc.Rating = 0
	svc.ReviewCount = 0
	s.sanitize(svc)

	if err := s.validator.Validate(svc); err != nil {
		s.cfg.Log.Warn("Service validation failed", "professional_id", actor.ID, "error", err)
		return apperrors.Validation("Service validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, svc); err != nil {
		s.cfg.Log.Error("Failed to create service", "professional_id", actor.ID, "error", err)
		return apperrors.Internal("Failed to create service", err)
	}

	s.cfg.Log.Info("Service created",
		"id", svc.ID,
		"professional_id", svc.ProfessionalID,
		"price_type", svc.PriceType,
	)
	return nil
}

func (s *catalogService) GetByID(ctx context.Context, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve service", err)
	}

	return svc, nil
}

func (s *catalogService) List(ctx context.Context, filter repository.ServiceFilter, limit int, offset int64) ([]*model.Service, int64, error) {
	var count int64
	var services []*model.Service
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count services", "error", errCount)
			errCount = apperrors.Internal("Failed to count services", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		services, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list services", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve services", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return services, count, nil
}

func (s *catalogService) ListByProfessional(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Service, int64, error) {
	if professionalID == "" {
		return nil, 0, apperrors.InvalidInput("Professional ID cannot be empty")
	}

	var count int64
	var services []*model.Service
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByProfessional(ctx, professionalID)
		if errCount != nil {
			errCount = apperrors.Internal("Failed to count services", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		services, errFind = s.repo.FindByProfessional(ctx, professionalID, limit, offset)
		if errFind != nil {
			errFind = apperrors.Internal("Failed to retrieve services", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return services, count, nil
}

func (s *catalogService) Update(ctx context.Context, actor model.Actor, id string, updates *model.ServiceUpdate) (*model.Service, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role != model.RoleProfessional || existing.ProfessionalID != actor.ID {
		return nil, apperrors.Forbidden("Only the owning professional can modify this service")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Service update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeServiceUpdates(existing, updates)
	s.sanitize(merged)

	if err := s.validator.Validate(merged); err != nil {
		return nil, apperrors.Validation("Service validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		s.cfg.Log.Error("Failed to update service", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update service", err)
	}

	s.cfg.Log.Info("Service updated", "id", id)
	return merged, nil
}

func (s *catalogService) Delete(ctx context.Context, actor model.Actor, id string) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if actor.Role != model.RoleProfessional || existing.ProfessionalID != actor.ID {
		return apperrors.Forbidden("Only the owning professional can delete this service")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Service", id)
		}
		return apperrors.Internal("Failed to delete service", err)
	}

	s.cfg.Log.Info("Service deleted", "id", id)
	return nil
}

func (s *catalogService) Quote(ctx context.Context, serviceID string, hours int) (*model.Service, float64, error) {
	svc, err := s.GetByID(ctx, serviceID)
	if err != nil {
		return nil, 0, err
	}

	if !svc.IsActive {
		return nil, 0, apperrors.Validation("Service is not accepting bookings", map[string]any{
			"service_id": serviceID,
		})
	}

	switch svc.PriceType {
	case model.PriceFixed:
		if svc.Price == nil {
			return nil, 0, apperrors.Internal("Fixed-price service has no price", nil)
		}
		return svc, *svc.Price, nil
	case model.PriceHourly:
		if svc.HourlyRate == nil {
			return nil, 0, apperrors.Internal("Hourly service has no hourly_rate", nil)
		}
		return svc, *svc.HourlyRate * float64(hours), nil
	default:
		// Negotiable services settle price off-platform and cannot be
		// booked through the automated flow.
		return nil, 0, apperrors.Validation("Negotiable services cannot be booked online", map[string]any{
			"service_id": serviceID,
			"price_type": svc.PriceType,
		})
	}
}

func (s *catalogService) ApplyReview(ctx context.Context, serviceID string, rating int) error {
	if rating < 1 || rating > 5 {
		return apperrors.InvalidInput("Rating must be between 1 and 5")
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		svc, err := s.repo.FindByID(sessCtx, serviceID)
		if err != nil {
			if errors.Is(err, catalogerrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Service", serviceID)
			}
			return apperrors.Internal("Failed to retrieve service", err)
		}

		newCount := svc.ReviewCount + 1
		newRating := (svc.Rating*float64(svc.ReviewCount) + float64(rating)) / float64(newCount)

		if err := s.repo.UpdateRating(sessCtx, serviceID, newRating, newCount); err != nil {
			return apperrors.Internal("Failed to update service rating", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to apply review to service", "service_id", serviceID, "error", err)
		return err
	}

	s.cfg.Log.Info("Service rating updated", "service_id", serviceID, "rating", rating)
	return nil
}

// --- Helpers ---

func (s *catalogService) sanitize(svc *model.Service) {
	svc.Title = sanitizer.NormalizeTitle(svc.Title)
	svc.Description = sanitizer.NormalizeDescription(svc.Description)
	svc.Location = sanitizer.NormalizeLocation(svc.Location)
	svc.Tags = sanitizer.NormalizeTags(svc.Tags)
}

func (s *catalogService) mergeServiceUpdates(existing *model.Service, updates *model.ServiceUpdate) *model.Service {
	merged := *existing

	if updates.CategoryID != "" {
		merged.CategoryID = updates.CategoryID
	}
	if updates.Title != "" {
		merged.Title = updates.Title
	}
	if updates.Description != "" {
		merged.Description = updates.Description
	}
	if updates.PriceType != "" {
		merged.PriceType = updates.PriceType
		// Changing the price model invalidates the old amounts unless the
		// patch also carries replacements.
		merged.Price = nil
		merged.HourlyRate = nil
	}
	if updates.Price != nil {
		merged.Price = updates.Price
	}
	if updates.HourlyRate != nil {
		merged.HourlyRate = updates.HourlyRate
	}
	if updates.Location != "" {
		merged.Location = updates.Location
	}
	if updates.IsActive != nil {
		merged.IsActive = *updates.IsActive
	}
	if updates.Tags != nil {
		merged.Tags = *updates.Tags
	}

	return &merged
}

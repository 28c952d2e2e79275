package service

import (
	"context"
	"testing"
	"time"

	catalogerrors "github.com/sanchez188/serviProf/internal/catalog/errors"
	"github.com/sanchez188/serviProf/internal/catalog/repository"
	"github.com/sanchez188/serviProf/internal/catalog/validator"
	"github.com/sanchez188/serviProf/pkg/config"
	mongotx "github.com/sanchez188/serviProf/pkg/db/mongo"
	apperrors "github.com/sanchez188/serviProf/pkg/errors"
	"github.com/sanchez188/serviProf/pkg/logger"
	"github.com/sanchez188/serviProf/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ────────────────────────────────────────────────
// Mock repository for testing
// ────────────────────────────────────────────────

type mockServiceRepository struct {
	createFunc             func(ctx context.Context, svc *model.Service) error
	findByIDFunc           func(ctx context.Context, id string) (*model.Service, error)
	findAllFunc            func(ctx context.Context, filter repository.ServiceFilter, limit int, offset int64) ([]*model.Service, error)
	findByProfessionalFunc func(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Service, error)
	updateFunc             func(ctx context.Context, id string, svc *model.Service) (*mongo.UpdateResult, error)
	updateRatingFunc       func(ctx context.Context, id string, rating float64, reviewCount int) error
	deleteFunc             func(ctx context.Context, id string) error
	countFunc              func(ctx context.Context, filter repository.ServiceFilter) (int64, error)
}

func (m *mockServiceRepository) Create(ctx context.Context, svc *model.Service) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, svc)
	}
	return nil
}

func (m *mockServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, catalogerrors.ErrNotFound
}

func (m *mockServiceRepository) FindAll(ctx context.Context, filter repository.ServiceFilter, limit int, offset int64) ([]*model.Service, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, filter, limit, offset)
	}
	return []*model.Service{}, nil
}

func (m *mockServiceRepository) FindByProfessional(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Service, error) {
	if m.findByProfessionalFunc != nil {
		return m.findByProfessionalFunc(ctx, professionalID, limit, offset)
	}
	return []*model.Service{}, nil
}

func (m *mockServiceRepository) Update(ctx context.Context, id string, svc *model.Service) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, svc)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockServiceRepository) UpdateRating(ctx context.Context, id string, rating float64, reviewCount int) error {
	if m.updateRatingFunc != nil {
		return m.updateRatingFunc(ctx, id, rating, reviewCount)
	}
	return nil
}

func (m *mockServiceRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockServiceRepository) Count(ctx context.Context, filter repository.ServiceFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockServiceRepository) CountByProfessional(ctx context.Context, professionalID string) (int64, error) {
	return 0, nil
}

func (m *mockServiceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func newTestCatalog(repo *mockServiceRepository) CatalogService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{
		Log:          log,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return NewCatalogService(repo, validator.NewServiceValidator(log), cfg)
}

func floatPtr(v float64) *float64 { return &v }

func professional(id string) model.Actor {
	return model.Actor{ID: id, Role: model.RoleProfessional}
}

func fixedService(id, professionalID string) *model.Service {
	return &model.Service{
		ID:             id,
		ProfessionalID: professionalID,
		CategoryID:     "cat-1",
		Title:          "Deep house cleaning",
		Description:    "Full apartment cleaning with supplies included",
		PriceType:      model.PriceFixed,
		Price:          floatPtr(120),
		Location:       "San Jose",
		IsActive:       true,
	}
}

func TestCreate_SanitizesAndOwns(t *testing.T) {
	var created *model.Service
	repo := &mockServiceRepository{
		createFunc: func(ctx context.Context, svc *model.Service) error {
			created = svc
			return nil
		},
	}
	svc := newTestCatalog(repo)

	in := &model.Service{
		CategoryID:  "cat-1",
		Title:       "  Deep   house cleaning  ",
		Description: "Full apartment cleaning",
		PriceType:   model.PriceFixed,
		Price:       floatPtr(120),
		Location:    "  San Jose ",
		Tags:        []string{"Cleaning", " cleaning ", ""},
	}

	if err := svc.Create(context.Background(), professional("pro-1"), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected service to be created")
	}
	if created.ProfessionalID != "pro-1" {
		t.Errorf("expected owner pro-1, got %s", created.ProfessionalID)
	}
	if created.Title != "Deep house cleaning" {
		t.Errorf("expected normalized title, got %q", created.Title)
	}
	if !created.IsActive {
		t.Error("expected new service to be active")
	}
	if len(created.Tags) != 1 || created.Tags[0] != "cleaning" {
		t.Errorf("expected deduplicated lowercase tags, got %v", created.Tags)
	}
}

func TestCreate_ClientForbidden(t *testing.T) {
	svc := newTestCatalog(&mockServiceRepository{})

	err := svc.Create(context.Background(), model.Actor{ID: "client-1", Role: model.RoleClient}, fixedService("", ""))
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected forbidden error, got %v", err)
	}
}

func TestCreate_FixedWithoutPrice(t *testing.T) {
	svc := newTestCatalog(&mockServiceRepository{})

	in := fixedService("", "")
	in.Price = nil

	err := svc.Create(context.Background(), professional("pro-1"), in)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpdate_WrongOwnerForbidden(t *testing.T) {
	repo := &mockServiceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
			return fixedService(id, "pro-1"), nil
		},
	}
	svc := newTestCatalog(repo)

	_, err := svc.Update(context.Background(), professional("pro-2"), "svc-1", &model.ServiceUpdate{Title: "New title"})
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected forbidden error, got %v", err)
	}
}

func TestUpdate_MergesPatch(t *testing.T) {
	var updated *model.Service
	repo := &mockServiceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
			return fixedService(id, "pro-1"), nil
		},
		updateFunc: func(ctx context.Context, id string, svc *model.Service) (*mongo.UpdateResult, error) {
			updated = svc
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := newTestCatalog(repo)

	inactive := false
	result, err := svc.Update(context.Background(), professional("pro-1"), "svc-1", &model.ServiceUpdate{
		Title:    "Premium deep cleaning",
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated == nil {
		t.Fatal("expected repository update to be called")
	}
	if result.Title != "Premium deep cleaning" {
		t.Errorf("expected patched title, got %q", result.Title)
	}
	if result.IsActive {
		t.Error("expected service to be deactivated")
	}
	if result.Description != "Full apartment cleaning with supplies included" {
		t.Errorf("expected untouched description, got %q", result.Description)
	}
}

func TestUpdate_PriceTypeChangeRequiresNewAmount(t *testing.T) {
	repo := &mockServiceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
			return fixedService(id, "pro-1"), nil
		},
	}
	svc := newTestCatalog(repo)

	// switching to hourly without an hourly_rate leaves the service unpriced
	_, err := svc.Update(context.Background(), professional("pro-1"), "svc-1", &model.ServiceUpdate{
		PriceType: model.PriceHourly,
	})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}

	_, err = svc.Update(context.Background(), professional("pro-1"), "svc-1", &model.ServiceUpdate{
		PriceType:  model.PriceHourly,
		HourlyRate: floatPtr(40),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name      string
		svc       *model.Service
		hours     int
		wantPrice float64
		wantCode  string
	}{
		{
			name:      "fixed price ignores hours",
			svc:       fixedService("svc-1", "pro-1"),
			hours:     3,
			wantPrice: 120,
		},
		{
			name: "hourly multiplies",
			svc: &model.Service{
				ID: "svc-2", ProfessionalID: "pro-1", CategoryID: "cat-1",
				Title: "Gardening", Description: "Lawn and hedge care",
				PriceType: model.PriceHourly, HourlyRate: floatPtr(25),
				Location: "Heredia", IsActive: true,
			},
			hours:     4,
			wantPrice: 100,
		},
		{
			name: "negotiable not bookable",
			svc: &model.Service{
				ID: "svc-3", ProfessionalID: "pro-1", CategoryID: "cat-1",
				Title: "Remodeling", Description: "Custom quotes only",
				PriceType: model.PriceNegotiable,
				Location:  "Cartago", IsActive: true,
			},
			hours:    2,
			wantCode: apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockServiceRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
					return tt.svc, nil
				},
			}
			svc := newTestCatalog(repo)

			_, price, err := svc.Quote(context.Background(), tt.svc.ID, tt.hours)
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Errorf("expected code %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if price != tt.wantPrice {
				t.Errorf("expected price %.2f, got %.2f", tt.wantPrice, price)
			}
		})
	}
}

func TestQuote_InactiveService(t *testing.T) {
	inactive := fixedService("svc-1", "pro-1")
	inactive.IsActive = false
	repo := &mockServiceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
			return inactive, nil
		},
	}
	svc := newTestCatalog(repo)

	_, _, err := svc.Quote(context.Background(), "svc-1", 1)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestApplyReview_RunningAverage(t *testing.T) {
	existing := fixedService("svc-1", "pro-1")
	existing.Rating = 4.0
	existing.ReviewCount = 3

	var gotRating float64
	var gotCount int
	repo := &mockServiceRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Service, error) {
			return existing, nil
		},
		updateRatingFunc: func(ctx context.Context, id string, rating float64, reviewCount int) error {
			gotRating = rating
			gotCount = reviewCount
			return nil
		},
	}
	svc := newTestCatalog(repo)

	if err := svc.ApplyReview(context.Background(), "svc-1", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCount != 4 {
		t.Errorf("expected review count 4, got %d", gotCount)
	}
	// (4.0*3 + 5) / 4 = 4.25
	if gotRating != 4.25 {
		t.Errorf("expected rating 4.25, got %.2f", gotRating)
	}
}

func TestApplyReview_InvalidRating(t *testing.T) {
	svc := newTestCatalog(&mockServiceRepository{})

	if err := svc.ApplyReview(context.Background(), "svc-1", 0); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input error, got %v", err)
	}
	if err := svc.ApplyReview(context.Background(), "svc-1", 6); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input error, got %v", err)
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogerrors "github.com/sanchez188/serviProf/internal/catalog/errors"
	"github.com/sanchez188/serviProf/pkg/config"
	mongotx "github.com/sanchez188/serviProf/pkg/db/mongo"
	"github.com/sanchez188/serviProf/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "services"
)

// ServiceFilter narrows List results. Zero values mean "any".
type ServiceFilter struct {
	CategoryID string
	Location   string
	Tag        string
	ActiveOnly bool
}

type ServiceRepository interface {
	Create(ctx context.Context, svc *model.Service) error
	FindByID(ctx context.Context, id string) (*model.Service, error)
	FindAll(ctx context.Context, filter ServiceFilter, limit int, offset int64) ([]*model.Service, error)
	FindByProfessional(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Service, error)
	Update(ctx context.Context, id string, svc *model.Service) (*mongo.UpdateResult, error)
	UpdateRating(ctx context.Context, id string, rating float64, reviewCount int) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, filter ServiceFilter) (int64, error)
	CountByProfessional(ctx context.Context, professionalID string) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoServiceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoServiceRepository(cfg *config.Config) ServiceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoServiceRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoServiceRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoServiceRepository) Create(ctx context.Context, svc *model.Service) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	svc.ID = primitive.NewObjectID().Hex()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, svc); err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	return nil
}

func (r *mongoServiceRepository) FindByID(ctx context.Context, id string) (*model.Service, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	var svc model.Service
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&svc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalogerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &svc, nil
}

func (r *mongoServiceRepository) FindAll(ctx context.Context, filter ServiceFilter, limit int, offset int64) ([]*model.Service, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []*model.Service
	if err = cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}

	return services, nil
}

func (r *mongoServiceRepository) FindByProfessional(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Service, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"professional_id": professionalID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find services by professional: %w", err)
	}
	defer cursor.Close(ctx)

	var services []*model.Service
	if err = cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}

	return services, nil
}

func (r *mongoServiceRepository) Update(ctx context.Context, id string, svc *model.Service) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"category_id": svc.CategoryID,
			"title":       svc.Title,
			"description": svc.Description,
			"price_type":  svc.PriceType,
			"price":       svc.Price,
			"hourly_rate": svc.HourlyRate,
			"location":    svc.Location,
			"is_active":   svc.IsActive,
			"tags":        svc.Tags,
			"updated_at":  time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, catalogerrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoServiceRepository) UpdateRating(ctx context.Context, id string, rating float64, reviewCount int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"rating":       rating,
			"review_count": reviewCount,
			"updated_at":   time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update service rating: %w", err)
	}

	if result.MatchedCount == 0 {
		return catalogerrors.ErrNotFound
	}

	return nil
}

func (r *mongoServiceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}

	if result.DeletedCount == 0 {
		return catalogerrors.ErrNotFound
	}

	return nil
}

func (r *mongoServiceRepository) Count(ctx context.Context, filter ServiceFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count services: %w", err)
	}

	return count, nil
}

func (r *mongoServiceRepository) CountByProfessional(ctx context.Context, professionalID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"professional_id": professionalID})
	if err != nil {
		return 0, fmt.Errorf("failed to count services by professional: %w", err)
	}

	return count, nil
}

func buildFilter(filter ServiceFilter) bson.M {
	query := bson.M{}

	if filter.CategoryID != "" {
		query["category_id"] = filter.CategoryID
	}
	if filter.Location != "" {
		query["location"] = filter.Location
	}
	if filter.Tag != "" {
		query["tags"] = filter.Tag
	}
	if filter.ActiveOnly {
		query["is_active"] = true
	}

	return query
}

func (r *mongoServiceRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

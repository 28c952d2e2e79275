package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingerrors "github.com/sanchez188/serviProf/internal/bookings/errors"
	"github.com/sanchez188/serviProf/pkg/config"
	mongotx "github.com/sanchez188/serviProf/pkg/db/mongo"
	"github.com/sanchez188/serviProf/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ReviewsCollectionName = "reviews"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	FindByBookingID(ctx context.Context, bookingID string) (*model.Review, error)
	FindByProfessional(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Review, error)
	CountByProfessional(ctx context.Context, professionalID string) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoReviewRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewReviewRepository(cfg *config.Config) ReviewRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReviewRepository{
		cfg:        cfg,
		collection: db.Collection(ReviewsCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoReviewRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

// Create inserts the review. The unique index on booking_id is the
// backstop: a duplicate key surfaces as ErrReviewExists.
func (r *mongoReviewRepository) Create(ctx context.Context, review *model.Review) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if review.ID == "" {
		review.ID = primitive.NewObjectID().Hex()
	}
	review.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingerrors.ErrReviewExists
		}
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

func (r *mongoReviewRepository) FindByBookingID(ctx context.Context, bookingID string) (*model.Review, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var review model.Review
	err := r.collection.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&review)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}

	return &review, nil
}

func (r *mongoReviewRepository) FindByProfessional(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Review, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"professional_id": professionalID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	var reviews []*model.Review
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	return reviews, nil
}

func (r *mongoReviewRepository) CountByProfessional(ctx context.Context, professionalID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"professional_id": professionalID})
	if err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	return count, nil
}

func (r *mongoReviewRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

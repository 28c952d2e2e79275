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
	BookingsCollectionName = "bookings"
)

// StatusUpdate carries the extra fields a transition writes alongside the
// new status. Nil pointers are left untouched.
type StatusUpdate struct {
	AcceptedAt      *time.Time
	RejectedAt      *time.Time
	CompletedAt     *time.Time
	RejectionReason string
	ReviewID        string
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByClient(ctx context.Context, clientID string, limit int, offset int64) ([]*model.Booking, error)
	FindByProfessional(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Booking, error)
	FindActiveOverlapping(ctx context.Context, professionalID, date, startTime, endTime string) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, from model.BookingStatus, to model.BookingStatus, update StatusUpdate) error
	CountByClient(ctx context.Context, clientID string) (int64, error)
	CountByProfessional(ctx context.Context, professionalID string) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(BookingsCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if booking.ID == "" {
		booking.ID = primitive.NewObjectID().Hex()
	}
	booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, bookingerrors.ErrInvalidID
	}

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByClient(ctx context.Context, clientID string, limit int, offset int64) ([]*model.Booking, error) {
	return r.findAll(ctx, bson.M{"client_id": clientID}, limit, offset)
}

func (r *mongoBookingRepository) FindByProfessional(ctx context.Context, professionalID string, limit int, offset int64) ([]*model.Booking, error) {
	return r.findAll(ctx, bson.M{"professional_id": professionalID}, limit, offset)
}

func (r *mongoBookingRepository) findAll(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// FindActiveOverlapping returns bookings still occupying any part of the
// range. Zero-padded HH:MM strings compare in time order, so the overlap
// condition goes straight into the filter.
func (r *mongoBookingRepository) FindActiveOverlapping(ctx context.Context, professionalID, date, startTime, endTime string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"professional_id": professionalID,
		"date":            date,
		"start_time":      bson.M{"$lt": endTime},
		"end_time":        bson.M{"$gt": startTime},
		"status":          bson.M{"$in": model.ActiveStatuses()},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// UpdateStatus writes the transition conditionally: the filter pins the
// status the caller read, so a concurrent transition that commits first
// makes this write match nothing instead of overwriting it.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, from model.BookingStatus, to model.BookingStatus, update StatusUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	set := bson.M{"status": to}
	if update.AcceptedAt != nil {
		set["accepted_at"] = update.AcceptedAt
	}
	if update.RejectedAt != nil {
		set["rejected_at"] = update.RejectedAt
	}
	if update.CompletedAt != nil {
		set["completed_at"] = update.CompletedAt
	}
	if update.RejectionReason != "" {
		set["rejection_reason"] = update.RejectionReason
	}
	if update.ReviewID != "" {
		set["review_id"] = update.ReviewID
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingerrors.ErrStatusChanged
	}

	return nil
}

func (r *mongoBookingRepository) CountByClient(ctx context.Context, clientID string) (int64, error) {
	return r.count(ctx, bson.M{"client_id": clientID})
}

func (r *mongoBookingRepository) CountByProfessional(ctx context.Context, professionalID string) (int64, error) {
	return r.count(ctx, bson.M{"professional_id": professionalID})
}

func (r *mongoBookingRepository) count(ctx context.Context, filter bson.M) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	return count, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	availerrors "github.com/sanchez188/serviProf/internal/availability/errors"
	"github.com/sanchez188/serviProf/pkg/config"
	mongotx "github.com/sanchez188/serviProf/pkg/db/mongo"
	"github.com/sanchez188/serviProf/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	BlockedCollectionName = "blocked_slots"
)

type BlockedSlotRepository interface {
	Create(ctx context.Context, slot *model.BlockedSlot) error
	FindByID(ctx context.Context, id string) (*model.BlockedSlot, error)
	FindByProfessional(ctx context.Context, professionalID string) ([]*model.BlockedSlot, error)
	FindByProfessionalAndDate(ctx context.Context, professionalID string, date string) ([]*model.BlockedSlot, error)
	FindOverlapping(ctx context.Context, professionalID string, date string, startTime string, endTime string) ([]*model.BlockedSlot, error)
	Delete(ctx context.Context, id string) error
	DeleteByBookingID(ctx context.Context, bookingID string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBlockedSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewBlockedSlotRepository(cfg *config.Config) BlockedSlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBlockedSlotRepository{
		cfg:        cfg,
		collection: db.Collection(BlockedCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBlockedSlotRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoBlockedSlotRepository) Create(ctx context.Context, slot *model.BlockedSlot) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if slot.ID == "" {
		slot.ID = primitive.NewObjectID().Hex()
	}
	slot.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, slot); err != nil {
		return fmt.Errorf("failed to create blocked slot: %w", err)
	}

	return nil
}

func (r *mongoBlockedSlotRepository) FindByID(ctx context.Context, id string) (*model.BlockedSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var slot model.BlockedSlot
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, availerrors.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to find blocked slot: %w", err)
	}

	return &slot, nil
}

func (r *mongoBlockedSlotRepository) FindByProfessional(ctx context.Context, professionalID string) ([]*model.BlockedSlot, error) {
	return r.find(ctx, bson.M{"professional_id": professionalID})
}

func (r *mongoBlockedSlotRepository) FindByProfessionalAndDate(ctx context.Context, professionalID string, date string) ([]*model.BlockedSlot, error) {
	return r.find(ctx, bson.M{
		"professional_id": professionalID,
		"date":            date,
	})
}

func (r *mongoBlockedSlotRepository) find(ctx context.Context, filter bson.M) ([]*model.BlockedSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find blocked slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.BlockedSlot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode blocked slots: %w", err)
	}

	return slots, nil
}

// FindOverlapping relies on zero-padded HH:MM strings comparing in time
// order, so range overlap is expressible directly in the filter.
func (r *mongoBlockedSlotRepository) FindOverlapping(ctx context.Context, professionalID string, date string, startTime string, endTime string) ([]*model.BlockedSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"professional_id": professionalID,
		"date":            date,
		"start_time":      bson.M{"$lt": endTime},
		"end_time":        bson.M{"$gt": startTime},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping blocked slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.BlockedSlot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode blocked slots: %w", err)
	}

	return slots, nil
}

func (r *mongoBlockedSlotRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete blocked slot: %w", err)
	}

	if result.DeletedCount == 0 {
		return availerrors.ErrSlotNotFound
	}

	return nil
}

func (r *mongoBlockedSlotRepository) DeleteByBookingID(ctx context.Context, bookingID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteMany(ctx, bson.M{"booking_id": bookingID}); err != nil {
		return fmt.Errorf("failed to delete booking blocked slots: %w", err)
	}

	return nil
}

func (r *mongoBlockedSlotRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

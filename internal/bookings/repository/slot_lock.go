package repository

import (
	"context"
	"fmt"
	"time"

	bookingerrors "github.com/sanchez188/serviProf/internal/bookings/errors"
	"github.com/sanchez188/serviProf/pkg/config"
	"github.com/sanchez188/serviProf/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	SlotLocksCollectionName = "slot_locks"
)

// SlotLockRepository hands out short-lived advisory locks keyed by slot
// coordinates. A TTL index on expires_at reaps locks abandoned by crashed
// requests; the happy path releases explicitly.
type SlotLockRepository interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(SlotLocksCollectionName),
	}
}

// LockKey builds the _id a booking attempt contends on.
func LockKey(professionalID, date, startTime string) string {
	return fmt.Sprintf("slot_lock_%s_%s_%s", professionalID, date, startTime)
}

func (r *mongoSlotLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := model.SlotLock{
		ID:        key,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	if _, err := r.collection.InsertOne(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingerrors.ErrSlotLocked
		}
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}

	return nil
}

func (r *mongoSlotLockRepository) Release(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}

	return nil
}

package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	availabilityrepo "github.com/sanchez188/serviProf/internal/availability/repository"
	bookingsrepo "github.com/sanchez188/serviProf/internal/bookings/repository"
	catalogrepo "github.com/sanchez188/serviProf/internal/catalog/repository"
	"github.com/sanchez188/serviProf/internal/migrations/mongo/validators"
)

var (
	ServicesIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "professional_id", Value: 1}}},
		{Keys: bson.D{
			{Key: "category_id", Value: 1},
			{Key: "is_active", Value: 1},
			{Key: "rating", Value: -1},
		}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
	}

	AvailabilityRulesIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "professional_id", Value: 1}, {Key: "day_of_week", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	// the unique backstop catches identical-range double creates that slip
	// past the transactional overlap check
	BlockedSlotsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "professional_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "start_time", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "booking_id", Value: 1}}},
	}

	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "professional_id", Value: 1},
			{Key: "date", Value: 1},
			{Key: "status", Value: 1},
		}},
		{Keys: bson.D{
			{Key: "client_id", Value: 1},
			{Key: "created_at", Value: -1},
		}},
	}

	ReviewsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "booking_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{
			{Key: "professional_id", Value: 1},
			{Key: "created_at", Value: -1},
		}},
	}

	// expired locks are reaped by the server; expireAfterSeconds 0 means
	// "at the expires_at timestamp"
	SlotLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("🚀 Running Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		catalogrepo.CollectionName: {
			Indexes:   ServicesIndexes,
			Validator: validators.ServiceValidator,
		},
		availabilityrepo.RulesCollectionName: {
			Indexes:   AvailabilityRulesIndexes,
			Validator: validators.AvailabilityRuleValidator,
		},
		availabilityrepo.BlockedCollectionName: {
			Indexes:   BlockedSlotsIndexes,
			Validator: validators.BlockedSlotValidator,
		},
		bookingsrepo.BookingsCollectionName: {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
		bookingsrepo.ReviewsCollectionName: {
			Indexes:   ReviewsIndexes,
			Validator: validators.ReviewValidator,
		},
		bookingsrepo.SlotLocksCollectionName: {
			Indexes: SlotLocksIndexes,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}

	fmt.Printf("ℹ️ Collection %s already exists — updating validator if needed\n", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}

	coll := db.Collection(name)
	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)

	return nil
}

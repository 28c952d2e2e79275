package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sanchez188/serviProf/pkg/config"
	mongotx "github.com/sanchez188/serviProf/pkg/db/mongo"
	"github.com/sanchez188/serviProf/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RulesCollectionName = "availability_rules"
)

type AvailabilityRuleRepository interface {
	ReplaceForProfessional(ctx context.Context, professionalID string, rules []*model.AvailabilityRule) error
	FindByProfessional(ctx context.Context, professionalID string) ([]*model.AvailabilityRule, error)
	FindByProfessionalAndDay(ctx context.Context, professionalID string, dayOfWeek int) (*model.AvailabilityRule, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoRuleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewAvailabilityRuleRepository(cfg *config.Config) AvailabilityRuleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRuleRepository{
		cfg:        cfg,
		collection: db.Collection(RulesCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// SessionContext cannot be wrapped without breaking transaction semantics.
func (r *mongoRuleRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

// ReplaceForProfessional swaps the whole weekly schedule in one shot.
// Callers run this inside a transaction so readers never see a half week.
func (r *mongoRuleRepository) ReplaceForProfessional(ctx context.Context, professionalID string, rules []*model.AvailabilityRule) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteMany(ctx, bson.M{"professional_id": professionalID}); err != nil {
		return fmt.Errorf("failed to clear availability rules: %w", err)
	}

	if len(rules) == 0 {
		return nil
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	docs := make([]any, 0, len(rules))
	for _, rule := range rules {
		rule.ID = primitive.NewObjectID().Hex()
		rule.ProfessionalID = professionalID
		rule.CreatedAt = now
		rule.UpdatedAt = now
		docs = append(docs, rule)
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert availability rules: %w", err)
	}

	return nil
}

func (r *mongoRuleRepository) FindByProfessional(ctx context.Context, professionalID string) ([]*model.AvailabilityRule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "day_of_week", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"professional_id": professionalID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find availability rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []*model.AvailabilityRule
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode availability rules: %w", err)
	}

	return rules, nil
}

func (r *mongoRuleRepository) FindByProfessionalAndDay(ctx context.Context, professionalID string, dayOfWeek int) (*model.AvailabilityRule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"professional_id": professionalID,
		"day_of_week":     dayOfWeek,
	}

	var rule model.AvailabilityRule
	err := r.collection.FindOne(ctx, filter).Decode(&rule)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find availability rule: %w", err)
	}

	return &rule, nil
}

func (r *mongoRuleRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	scheduleserrors "slotbook/internal/schedules/errors"
	"slotbook/pkg/config"
	"slotbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RuleCollection     = "AvailabilityRules"
	IntervalCollection = "BlockedIntervals"
)

// ScheduleRepository serves the slot generator's two read paths: the weekly
// rules for one weekday and the blocked intervals crossing a UTC window.
type ScheduleRepository interface {
	CreateRule(ctx context.Context, rule *model.AvailabilityRule) error
	GetRule(ctx context.Context, id, providerID string) (*model.AvailabilityRule, error)
	ListRules(ctx context.Context, providerID string) ([]*model.AvailabilityRule, error)
	RulesForWeekday(ctx context.Context, providerID string, weekday int) ([]*model.AvailabilityRule, error)
	UpdateRule(ctx context.Context, id, providerID string, update *model.AvailabilityRuleUpdate) error
	DeleteRule(ctx context.Context, id, providerID string) error

	CreateInterval(ctx context.Context, interval *model.BlockedInterval) error
	ListIntervals(ctx context.Context, providerID string) ([]*model.BlockedInterval, error)
	IntervalsInWindow(ctx context.Context, providerID string, windowStart, windowEnd time.Time) ([]*model.BlockedInterval, error)
	DeleteInterval(ctx context.Context, id, providerID string) error
}

type mongoScheduleRepository struct {
	cfg       *config.Config
	rules     *mongo.Collection
	intervals *mongo.Collection
}

func NewMongoScheduleRepository(cfg *config.Config) ScheduleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScheduleRepository{
		cfg:       cfg,
		rules:     db.Collection(RuleCollection),
		intervals: db.Collection(IntervalCollection),
	}
}

func (r *mongoScheduleRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoScheduleRepository) CreateRule(ctx context.Context, rule *model.AvailabilityRule) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	rule.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.rules.InsertOne(ctx, rule)
	if err != nil {
		return fmt.Errorf("failed to create availability rule: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		rule.ID = oid.Hex()
	}
	return nil
}

func (r *mongoScheduleRepository) GetRule(ctx context.Context, id, providerID string) (*model.AvailabilityRule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", scheduleserrors.ErrInvalidID, id)
	}

	var rule model.AvailabilityRule
	err = r.rules.FindOne(ctx, bson.M{"_id": objectID, "provider_id": providerID}).Decode(&rule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, scheduleserrors.ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to find availability rule: %w", err)
	}

	return &rule, nil
}

func (r *mongoScheduleRepository) ListRules(ctx context.Context, providerID string) ([]*model.AvailabilityRule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "weekday", Value: 1},
		{Key: "start_local", Value: 1},
	})
	cursor, err := r.rules.Find(ctx, bson.M{"provider_id": providerID}, opts)
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

// RulesForWeekday returns only enabled rules, sorted by start clock so the
// generator emits slots in chronological order without re-sorting.
func (r *mongoScheduleRepository) RulesForWeekday(ctx context.Context, providerID string, weekday int) ([]*model.AvailabilityRule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"provider_id": providerID,
		"weekday":     weekday,
		"enabled":     true,
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_local", Value: 1}})

	cursor, err := r.rules.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find rules for weekday: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []*model.AvailabilityRule
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode rules for weekday: %w", err)
	}

	return rules, nil
}

func (r *mongoScheduleRepository) UpdateRule(ctx context.Context, id, providerID string, update *model.AvailabilityRuleUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", scheduleserrors.ErrInvalidID, id)
	}

	set := bson.M{}
	if update.StartLocal != "" {
		set["start_local"] = update.StartLocal
	}
	if update.EndLocal != "" {
		set["end_local"] = update.EndLocal
	}
	if update.Enabled != nil {
		set["enabled"] = *update.Enabled
	}
	if len(set) == 0 {
		return nil
	}

	result, err := r.rules.UpdateOne(ctx, bson.M{"_id": objectID, "provider_id": providerID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update availability rule: %w", err)
	}
	if result.MatchedCount == 0 {
		return scheduleserrors.ErrRuleNotFound
	}
	return nil
}

func (r *mongoScheduleRepository) DeleteRule(ctx context.Context, id, providerID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", scheduleserrors.ErrInvalidID, id)
	}

	result, err := r.rules.DeleteOne(ctx, bson.M{"_id": objectID, "provider_id": providerID})
	if err != nil {
		return fmt.Errorf("failed to delete availability rule: %w", err)
	}
	if result.DeletedCount == 0 {
		return scheduleserrors.ErrRuleNotFound
	}
	return nil
}

func (r *mongoScheduleRepository) CreateInterval(ctx context.Context, interval *model.BlockedInterval) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	interval.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.intervals.InsertOne(ctx, interval)
	if err != nil {
		return fmt.Errorf("failed to create blocked interval: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		interval.ID = oid.Hex()
	}
	return nil
}

func (r *mongoScheduleRepository) ListIntervals(ctx context.Context, providerID string) ([]*model.BlockedInterval, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := r.intervals.Find(ctx, bson.M{"provider_id": providerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find blocked intervals: %w", err)
	}
	defer cursor.Close(ctx)

	var intervals []*model.BlockedInterval
	if err = cursor.All(ctx, &intervals); err != nil {
		return nil, fmt.Errorf("failed to decode blocked intervals: %w", err)
	}

	return intervals, nil
}

// IntervalsInWindow uses half-open overlap: an interval crosses the window
// when it starts before the window ends and ends after the window starts.
func (r *mongoScheduleRepository) IntervalsInWindow(ctx context.Context, providerID string, windowStart, windowEnd time.Time) ([]*model.BlockedInterval, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"provider_id": providerID,
		"start_time":  bson.M{"$lt": windowEnd},
		"end_time":    bson.M{"$gt": windowStart},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	cursor, err := r.intervals.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find blocked intervals in window: %w", err)
	}
	defer cursor.Close(ctx)

	var intervals []*model.BlockedInterval
	if err = cursor.All(ctx, &intervals); err != nil {
		return nil, fmt.Errorf("failed to decode blocked intervals in window: %w", err)
	}

	return intervals, nil
}

func (r *mongoScheduleRepository) DeleteInterval(ctx context.Context, id, providerID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", scheduleserrors.ErrInvalidID, id)
	}

	result, err := r.intervals.DeleteOne(ctx, bson.M{"_id": objectID, "provider_id": providerID})
	if err != nil {
		return fmt.Errorf("failed to delete blocked interval: %w", err)
	}
	if result.DeletedCount == 0 {
		return scheduleserrors.ErrIntervalNotFound
	}
	return nil
}

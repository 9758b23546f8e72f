package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	reservationserrors "slotbook/internal/reservations/errors"
	"slotbook/pkg/config"
	"slotbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const LockCollection = "SlotLocks"

// SlotLockRepository guards a [start, end) range with advisory bucket locks.
// AcquireRange claims every bucket the range intersects in one ordered
// insert; a duplicate key on any bucket means another admission is in flight
// and surfaces as ErrRangeContended without blocking.
type SlotLockRepository interface {
	AcquireRange(ctx context.Context, providerID string, start, end time.Time) ([]string, error)
	ReleaseRange(ctx context.Context, lockIDs []string) error
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollection),
	}
}

// BucketIDs decomposes [start, end) into the epoch-aligned buckets of the
// given width it intersects, one lock ID per bucket. Alignment to the epoch
// rather than to the range start is what guarantees that two overlapping
// ranges share at least one ID.
func BucketIDs(providerID string, start, end time.Time, bucket time.Duration) []string {
	bucketSec := int64(bucket / time.Second)
	first := start.Unix() - (start.Unix() % bucketSec)

	var ids []string
	for b := first; b < end.Unix(); b += bucketSec {
		ids = append(ids, fmt.Sprintf("slot_%s_%d", providerID, b))
	}
	return ids
}

func (r *mongoSlotLockRepository) AcquireRange(ctx context.Context, providerID string, start, end time.Time) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	ids := BucketIDs(providerID, start, end, r.cfg.SlotLockBucket)
	now := time.Now().UTC()

	docs := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, model.SlotLock{
			ID:        id,
			ExpiresAt: now.Add(r.cfg.SlotLockTTL),
			CreatedAt: now,
		})
	}

	// Ordered insert stops at the first duplicate, so on failure exactly the
	// documents before the failing index were written and must be rolled back.
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err == nil {
		return ids, nil
	}

	inserted := 0
	var bulkErr mongo.BulkWriteException
	if errors.As(err, &bulkErr) && len(bulkErr.WriteErrors) > 0 {
		inserted = bulkErr.WriteErrors[0].Index
	}
	if inserted > 0 {
		if releaseErr := r.ReleaseRange(ctx, ids[:inserted]); releaseErr != nil {
			// The TTL index reclaims the orphaned buckets.
			r.cfg.Log.Warn("Failed to roll back partial lock acquisition",
				"provider_id", providerID,
				"orphaned_buckets", inserted,
				"error", releaseErr,
			)
		}
	}

	if mongo.IsDuplicateKeyError(err) {
		return nil, reservationserrors.ErrRangeContended
	}
	return nil, fmt.Errorf("failed to acquire slot locks: %w", err)
}

func (r *mongoSlotLockRepository) ReleaseRange(ctx context.Context, lockIDs []string) error {
	if len(lockIDs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": lockIDs}})
	if err != nil {
		return fmt.Errorf("failed to release slot locks: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	providerserrors "slotbook/internal/providers/errors"
	"slotbook/pkg/config"
	"slotbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ProviderCollection = "Providers"
	ServiceCollection  = "Services"

	// Read-only view into the reservations collection. Writes go through
	// the reservations repository exclusively.
	reservationCollection = "Reservations"
)

// ProviderRepository is the lookup contract the slot generator and the
// admission controller resolve providers and services through.
type ProviderRepository interface {
	CreateProvider(ctx context.Context, provider *model.Provider) error
	GetProvider(ctx context.Context, id string) (*model.Provider, error)
	UpdateProvider(ctx context.Context, id string, update *model.ProviderUpdate) error
	ListProviders(ctx context.Context, limit int, offset int64) ([]*model.Provider, error)
	CountProviders(ctx context.Context) (int64, error)

	CreateService(ctx context.Context, service *model.Service) error
	GetService(ctx context.Context, id, providerID string) (*model.Service, error)
	UpdateService(ctx context.Context, id, providerID string, update *model.ServiceUpdate) error
	ListServices(ctx context.Context, providerID string) ([]*model.Service, error)
	ServiceHasReservations(ctx context.Context, serviceID string) (bool, error)
}

type mongoProviderRepository struct {
	cfg          *config.Config
	providers    *mongo.Collection
	services     *mongo.Collection
	reservations *mongo.Collection
}

func NewMongoProviderRepository(cfg *config.Config) ProviderRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoProviderRepository{
		cfg:          cfg,
		providers:    db.Collection(ProviderCollection),
		services:     db.Collection(ServiceCollection),
		reservations: db.Collection(reservationCollection),
	}
}

func (r *mongoProviderRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoProviderRepository) CreateProvider(ctx context.Context, provider *model.Provider) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	provider.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.providers.InsertOne(ctx, provider)
	if err != nil {
		return fmt.Errorf("failed to create provider: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		provider.ID = oid.Hex()
	}
	return nil
}

func (r *mongoProviderRepository) GetProvider(ctx context.Context, id string) (*model.Provider, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", providerserrors.ErrInvalidID, id)
	}

	var provider model.Provider
	err = r.providers.FindOne(ctx, bson.M{"_id": objectID}).Decode(&provider)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, providerserrors.ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to find provider: %w", err)
	}

	return &provider, nil
}

func (r *mongoProviderRepository) UpdateProvider(ctx context.Context, id string, update *model.ProviderUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", providerserrors.ErrInvalidID, id)
	}

	// TimeZone is deliberately absent: the zone is the reference frame for
	// every availability rule and is immutable after signup.
	set := bson.M{}
	if update.Name != "" {
		set["name"] = update.Name
	}
	if update.Phone != "" {
		set["phone"] = update.Phone
	}
	if len(set) == 0 {
		return nil
	}

	result, err := r.providers.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update provider: %w", err)
	}
	if result.MatchedCount == 0 {
		return providerserrors.ErrProviderNotFound
	}
	return nil
}

func (r *mongoProviderRepository) ListProviders(ctx context.Context, limit int, offset int64) ([]*model.Provider, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.providers.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find providers: %w", err)
	}
	defer cursor.Close(ctx)

	var providers []*model.Provider
	if err = cursor.All(ctx, &providers); err != nil {
		return nil, fmt.Errorf("failed to decode providers: %w", err)
	}

	return providers, nil
}

func (r *mongoProviderRepository) CountProviders(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.providers.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count providers: %w", err)
	}
	return count, nil
}

func (r *mongoProviderRepository) CreateService(ctx context.Context, service *model.Service) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	service.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.services.InsertOne(ctx, service)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		service.ID = oid.Hex()
	}
	return nil
}

// GetService resolves a service and enforces the provider linkage: a service
// ID paired with the wrong provider is indistinguishable from a missing one.
func (r *mongoProviderRepository) GetService(ctx context.Context, id, providerID string) (*model.Service, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", providerserrors.ErrInvalidID, id)
	}

	var service model.Service
	err = r.services.FindOne(ctx, bson.M{"_id": objectID, "provider_id": providerID}).Decode(&service)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, providerserrors.ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to find service: %w", err)
	}

	return &service, nil
}

func (r *mongoProviderRepository) UpdateService(ctx context.Context, id, providerID string, update *model.ServiceUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", providerserrors.ErrInvalidID, id)
	}

	set := bson.M{}
	if update.Name != "" {
		set["name"] = update.Name
	}
	if update.DurationMin != nil {
		set["duration_min"] = *update.DurationMin
	}
	if update.BufferMin != nil {
		set["buffer_min"] = *update.BufferMin
	}
	if update.Active != nil {
		set["active"] = *update.Active
	}
	if len(set) == 0 {
		return nil
	}

	result, err := r.services.UpdateOne(ctx, bson.M{"_id": objectID, "provider_id": providerID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	if result.MatchedCount == 0 {
		return providerserrors.ErrServiceNotFound
	}
	return nil
}

// ServiceHasReservations reports whether any reservation, in any status,
// references the service. Duration and buffer become immutable at that point
// because historical reservations were admitted against them.
func (r *mongoProviderRepository) ServiceHasReservations(ctx context.Context, serviceID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Count().SetLimit(1)
	count, err := r.reservations.CountDocuments(ctx, bson.M{"service_id": serviceID}, opts)
	if err != nil {
		return false, fmt.Errorf("failed to count reservations for service: %w", err)
	}
	return count > 0, nil
}

func (r *mongoProviderRepository) ListServices(ctx context.Context, providerID string) ([]*model.Service, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.services.Find(ctx, bson.M{"provider_id": providerID}, opts)
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

package service

import (
	"context"
	"errors"
	"sync"

	providerserrors "slotbook/internal/providers/errors"
	"slotbook/internal/providers/repository"
	"slotbook/internal/providers/validator"
	"slotbook/pkg/config"
	apperrors "slotbook/pkg/errors"
	"slotbook/pkg/model"
	"slotbook/pkg/sanitizer"
)

type ProviderService interface {
	Create(ctx context.Context, provider *model.Provider) error
	GetByID(ctx context.Context, id string) (*model.Provider, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Provider, int64, error)
	Update(ctx context.Context, id string, update *model.ProviderUpdate) error

	CreateService(ctx context.Context, svc *model.Service) error
	GetService(ctx context.Context, id, providerID string) (*model.Service, error)
	ListServices(ctx context.Context, providerID string) ([]*model.Service, error)
	UpdateService(ctx context.Context, id, providerID string, update *model.ServiceUpdate) error
}

type providerService struct {
	repo      repository.ProviderRepository
	validator *validator.ProviderValidator
	cfg       *config.Config
}

func NewProviderService(
	repo repository.ProviderRepository,
	v *validator.ProviderValidator,
	cfg *config.Config,
) ProviderService {
	return &providerService{
		repo:      repo,
		validator: v,
		cfg:       cfg,
	}
}

func (s *providerService) Create(ctx context.Context, provider *model.Provider) error {
	provider.Name = sanitizer.SanitizeName(provider.Name)
	provider.Phone = sanitizer.SanitizePhone(provider.Phone)

	if err := s.validator.ValidateProvider(provider); err != nil {
		s.cfg.Log.Warn("Provider validation failed",
			"name", provider.Name,
			"error", err,
		)
		return apperrors.Validation("Provider validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.CreateProvider(ctx, provider); err != nil {
		s.cfg.Log.Error("Failed to create provider",
			"name", provider.Name,
			"error", err,
		)
		return apperrors.Internal("Failed to create provider", err)
	}

	s.cfg.Log.Info("Provider created",
		"id", provider.ID,
		"name", provider.Name,
		"timezone", provider.TimeZone,
	)
	return nil
}

func (s *providerService) GetByID(ctx context.Context, id string) (*model.Provider, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Provider ID cannot be empty")
	}

	provider, err := s.repo.GetProvider(ctx, id)
	if err != nil {
		if errors.Is(err, providerserrors.ErrProviderNotFound) {
			return nil, apperrors.NotFoundWithID("Provider", id)
		}
		if errors.Is(err, providerserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid provider ID format")
		}
		s.cfg.Log.Error("Failed to get provider", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve provider", err)
	}

	return provider, nil
}

func (s *providerService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Provider, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		count     int64
		providers []*model.Provider
		errCount  error
		errFind   error
		wg        sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountProviders(ctx)
	}()
	go func() {
		defer wg.Done()
		providers, errFind = s.repo.ListProviders(ctx, limit, offset)
	}()
	wg.Wait()

	if errCount != nil {
		s.cfg.Log.Error("Failed to count providers", "error", errCount)
		return nil, 0, apperrors.Internal("Failed to count providers", errCount)
	}
	if errFind != nil {
		s.cfg.Log.Error("Failed to list providers", "error", errFind)
		return nil, 0, apperrors.Internal("Failed to list providers", errFind)
	}

	return providers, count, nil
}

func (s *providerService) Update(ctx context.Context, id string, update *model.ProviderUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Provider ID cannot be empty")
	}

	update.Name = sanitizer.SanitizeName(update.Name)
	if update.Phone != "" {
		update.Phone = sanitizer.SanitizePhone(update.Phone)
	}

	if err := s.validator.ValidateProviderUpdate(update); err != nil {
		return apperrors.Validation("Provider update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if err := s.repo.UpdateProvider(ctx, id, update); err != nil {
		if errors.Is(err, providerserrors.ErrProviderNotFound) {
			return apperrors.NotFoundWithID("Provider", id)
		}
		if errors.Is(err, providerserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid provider ID format")
		}
		s.cfg.Log.Error("Failed to update provider", "id", id, "error", err)
		return apperrors.Internal("Failed to update provider", err)
	}

	s.cfg.Log.Info("Provider updated", "id", id)
	return nil
}

func (s *providerService) CreateService(ctx context.Context, svc *model.Service) error {
	svc.Name = sanitizer.SanitizeName(svc.Name)

	if err := s.validator.ValidateService(svc); err != nil {
		s.cfg.Log.Warn("Service validation failed",
			"provider_id", svc.ProviderID,
			"name", svc.Name,
			"error", err,
		)
		return apperrors.Validation("Service validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.GetByID(ctx, svc.ProviderID); err != nil {
		return err
	}

	if err := s.repo.CreateService(ctx, svc); err != nil {
		s.cfg.Log.Error("Failed to create service",
			"provider_id", svc.ProviderID,
			"name", svc.Name,
			"error", err,
		)
		return apperrors.Internal("Failed to create service", err)
	}

	s.cfg.Log.Info("Service created",
		"id", svc.ID,
		"provider_id", svc.ProviderID,
		"duration_min", svc.DurationMin,
		"buffer_min", svc.BufferMin,
	)
	return nil
}

func (s *providerService) GetService(ctx context.Context, id, providerID string) (*model.Service, error) {
	if id == "" || providerID == "" {
		return nil, apperrors.InvalidInput("Service and provider IDs cannot be empty")
	}

	svc, err := s.repo.GetService(ctx, id, providerID)
	if err != nil {
		if errors.Is(err, providerserrors.ErrServiceNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		if errors.Is(err, providerserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid service ID format")
		}
		s.cfg.Log.Error("Failed to get service", "id", id, "provider_id", providerID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve service", err)
	}

	return svc, nil
}

func (s *providerService) ListServices(ctx context.Context, providerID string) ([]*model.Service, error) {
	if providerID == "" {
		return nil, apperrors.InvalidInput("Provider ID cannot be empty")
	}

	services, err := s.repo.ListServices(ctx, providerID)
	if err != nil {
		s.cfg.Log.Error("Failed to list services", "provider_id", providerID, "error", err)
		return nil, apperrors.Internal("Failed to list services", err)
	}

	return services, nil
}

// UpdateService refuses duration and buffer changes once any reservation was
// admitted against the service. Admitted reservations embed the old slot
// geometry, so changing it would silently invalidate history.
func (s *providerService) UpdateService(ctx context.Context, id, providerID string, update *model.ServiceUpdate) error {
	if id == "" || providerID == "" {
		return apperrors.InvalidInput("Service and provider IDs cannot be empty")
	}

	if update.Name != "" {
		update.Name = sanitizer.SanitizeName(update.Name)
	}

	if err := s.validator.ValidateServiceUpdate(update); err != nil {
		return apperrors.Validation("Service update validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if update.DurationMin != nil || update.BufferMin != nil {
		inUse, err := s.repo.ServiceHasReservations(ctx, id)
		if err != nil {
			s.cfg.Log.Error("Failed to check service reservations", "id", id, "error", err)
			return apperrors.Internal("Failed to check service usage", err)
		}
		if inUse {
			return apperrors.InvalidInput(providerserrors.ErrServiceInUse.Error())
		}
	}

	if err := s.repo.UpdateService(ctx, id, providerID, update); err != nil {
		if errors.Is(err, providerserrors.ErrServiceNotFound) {
			return apperrors.NotFoundWithID("Service", id)
		}
		if errors.Is(err, providerserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid service ID format")
		}
		s.cfg.Log.Error("Failed to update service", "id", id, "error", err)
		return apperrors.Internal("Failed to update service", err)
	}

	s.cfg.Log.Info("Service updated", "id", id, "provider_id", providerID)
	return nil
}

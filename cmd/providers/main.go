package main

import (
	providershandler "slotbook/internal/providers/handler"
	providersrepo "slotbook/internal/providers/repository"
	providersservice "slotbook/internal/providers/service"
	providersvalidator "slotbook/internal/providers/validator"
	scheduleshandler "slotbook/internal/schedules/handler"
	schedulesrepo "slotbook/internal/schedules/repository"
	schedulesservice "slotbook/internal/schedules/service"
	schedulesvalidator "slotbook/internal/schedules/validator"
	"slotbook/pkg/app"
	"slotbook/pkg/config"
	"slotbook/pkg/contracts"
)

const ServiceName = "providers"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Providers service")
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(contracts.Compose(
		initProviders(cfg),
		initSchedules(cfg),
	))
	serverApp.Run()
}

func initProviders(cfg *config.Config) contracts.Handler {
	repo := providersrepo.NewMongoProviderRepository(cfg)
	svc := providersservice.NewProviderService(
		repo,
		providersvalidator.NewProviderValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Provider service initialized", "database", cfg.MongoDatabaseName)
	return providershandler.NewProviderHandler(svc, cfg.Log)
}

func initSchedules(cfg *config.Config) contracts.Handler {
	repo := schedulesrepo.NewMongoScheduleRepository(cfg)
	svc := schedulesservice.NewScheduleService(
		repo,
		schedulesvalidator.NewScheduleValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Schedule service initialized", "database", cfg.MongoDatabaseName)
	return scheduleshandler.NewScheduleHandler(svc, cfg.Log)
}

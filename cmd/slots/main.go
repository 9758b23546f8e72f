package main

import (
	providersrepo "slotbook/internal/providers/repository"
	reservationsrepo "slotbook/internal/reservations/repository"
	schedulesrepo "slotbook/internal/schedules/repository"
	"slotbook/internal/slots/handler"
	"slotbook/internal/slots/service"
	"slotbook/pkg/app"
	"slotbook/pkg/clock"
	"slotbook/pkg/config"
)

const ServiceName = "slots"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Slots service")
	slotService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewSlotHandler(slotService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.SlotService {
	slotService := service.NewSlotService(
		providersrepo.NewMongoProviderRepository(cfg),
		schedulesrepo.NewMongoScheduleRepository(cfg),
		reservationsrepo.NewMongoReservationRepository(cfg),
		clock.NewSystem(),
		cfg,
	)

	cfg.Log.Info("Slot service initialized", "database", cfg.MongoDatabaseName)
	return slotService
}

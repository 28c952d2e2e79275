package main

import (
	"github.com/sanchez188/serviProf/internal/availability/handler"
	"github.com/sanchez188/serviProf/internal/availability/repository"
	"github.com/sanchez188/serviProf/internal/availability/service"
	"github.com/sanchez188/serviProf/internal/availability/validator"
	"github.com/sanchez188/serviProf/pkg/app"
	"github.com/sanchez188/serviProf/pkg/config"
)

const ServiceName = "availability"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()
	cfg.SetMongo()

	cfg.Log.Info("Starting Availability service")
	availabilityService := initServices(cfg)
	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewAvailabilityHandler(availabilityService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.AvailabilityService {
	availabilityValidator := validator.NewAvailabilityValidator(cfg.Log)
	ruleRepo := repository.NewAvailabilityRuleRepository(cfg)
	blockedRepo := repository.NewBlockedSlotRepository(cfg)
	availabilityService := service.NewAvailabilityService(
		ruleRepo,
		blockedRepo,
		availabilityValidator,
		cfg,
	)

	cfg.Log.Info("Availability service initialized", "database", cfg.MongoDatabaseName)
	return availabilityService
}

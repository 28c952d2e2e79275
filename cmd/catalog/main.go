package main

import (
	"github.com/sanchez188/serviProf/internal/catalog/handler"
	"github.com/sanchez188/serviProf/internal/catalog/repository"
	"github.com/sanchez188/serviProf/internal/catalog/service"
	"github.com/sanchez188/serviProf/internal/catalog/validator"
	"github.com/sanchez188/serviProf/pkg/app"
	"github.com/sanchez188/serviProf/pkg/config"
)

const ServiceName = "catalog"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()
	cfg.SetMongo()

	cfg.Log.Info("Starting Catalog service")
	catalogService := initServices(cfg)
	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewServiceHandler(catalogService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.CatalogService {
	serviceValidator := validator.NewServiceValidator(cfg.Log)
	serviceRepo := repository.NewMongoServiceRepository(cfg)
	catalogService := service.NewCatalogService(
		serviceRepo,
		serviceValidator,
		cfg,
	)

	cfg.Log.Info("Catalog service initialized", "database", cfg.MongoDatabaseName)
	return catalogService
}

package main

import (
	availabilityrepo "github.com/sanchez188/serviProf/internal/availability/repository"
	availabilityservice "github.com/sanchez188/serviProf/internal/availability/service"
	availabilityvalidator "github.com/sanchez188/serviProf/internal/availability/validator"
	"github.com/sanchez188/serviProf/internal/bookings/handler"
	"github.com/sanchez188/serviProf/internal/bookings/repository"
	"github.com/sanchez188/serviProf/internal/bookings/service"
	"github.com/sanchez188/serviProf/internal/bookings/validator"
	catalogrepo "github.com/sanchez188/serviProf/internal/catalog/repository"
	catalogservice "github.com/sanchez188/serviProf/internal/catalog/service"
	catalogvalidator "github.com/sanchez188/serviProf/internal/catalog/validator"
	"github.com/sanchez188/serviProf/pkg/app"
	"github.com/sanchez188/serviProf/pkg/config"
	"github.com/sanchez188/serviProf/pkg/events"
	events_config "github.com/sanchez188/serviProf/pkg/events/config"
	events_middleware "github.com/sanchez188/serviProf/pkg/events/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")

	producer := initProducer(cfg)
	defer func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close event producer", "error", err)
		}
	}()

	bookingService := initServices(cfg, producer)
	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handler.NewBookingHandler(bookingService, cfg.Log))
	serverApp.Run()
}

func initProducer(cfg *config.Config) *events.Producer {
	kafkaCfg := events_config.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := events.NewProducer(kafkaCfg, events.TopicBookingEvents, events.TopicBookingEventsDLQ)
	if err != nil {
		cfg.Log.Fatal("Failed to create event producer", "error", err)
	}
	producer.Use(events_middleware.LoggingProducerMiddleware(cfg.Log))

	return producer
}

// initServices wires the booking core together with the catalog and
// availability domains it depends on. All three share one Mongo client,
// so the cross-domain writes at booking creation run in one transaction.
func initServices(cfg *config.Config, producer *events.Producer) service.BookingService {
	catalogService := catalogservice.NewCatalogService(
		catalogrepo.NewMongoServiceRepository(cfg),
		catalogvalidator.NewServiceValidator(cfg.Log),
		cfg,
	)

	availabilityService := availabilityservice.NewAvailabilityService(
		availabilityrepo.NewAvailabilityRuleRepository(cfg),
		availabilityrepo.NewBlockedSlotRepository(cfg),
		availabilityvalidator.NewAvailabilityValidator(cfg.Log),
		cfg,
	)

	bookingValidator := validator.NewBookingValidator(cfg.Log, cfg.MaxBookingHours, cfg.BookingWindowDays)
	bookingService := service.NewBookingService(
		repository.NewBookingRepository(cfg),
		repository.NewReviewRepository(cfg),
		repository.NewSlotLockRepository(cfg),
		availabilityService,
		catalogService,
		producer,
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

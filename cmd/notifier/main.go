package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sanchez188/serviProf/internal/notifier"
	"github.com/sanchez188/serviProf/pkg/events"
	events_config "github.com/sanchez188/serviProf/pkg/events/config"
	events_middleware "github.com/sanchez188/serviProf/pkg/events/middleware"
	"github.com/sanchez188/serviProf/pkg/logger"
)

const ServiceName = "notifier"

func main() {
	log := logger.New(logger.Config{
		Level:   os.Getenv("LOG_LEVEL"),
		Format:  logger.JSON,
		Service: ServiceName,
	})

	kafkaCfg := events_config.Load()
	if err := kafkaCfg.Validate(); err != nil {
		log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(log.Info)

	n := notifier.NewNotifier(notifier.NewLogSender(log), log)

	consumer, err := events.NewConsumer(
		kafkaCfg,
		events.TopicBookingEvents,
		ServiceName,
		events.TopicBookingEventsDLQ,
		n.Handle,
	)
	if err != nil {
		log.Fatal("Failed to create event consumer", "error", err)
	}
	consumer.Use(events_middleware.LoggingConsumerMiddleware(log))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-shutdown
		log.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	log.Info("Starting Notifier service", "topic", events.TopicBookingEvents)

	if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
		log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		log.Error("Failed to close consumer", "error", err)
	}

	log.Info("Notifier service stopped")
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/797Events/797Eventsapp-sub000/config"
	"github.com/797Events/797Eventsapp-sub000/internal/bootstrap"
	"github.com/797Events/797Eventsapp-sub000/internal/cache"
	"github.com/797Events/797Eventsapp-sub000/internal/checkin"
	"github.com/797Events/797Eventsapp-sub000/internal/discount"
	"github.com/797Events/797Eventsapp-sub000/internal/kafka"
	"github.com/797Events/797Eventsapp-sub000/internal/monitoring"
	"github.com/797Events/797Eventsapp-sub000/internal/service/booking"
	"github.com/797Events/797Eventsapp-sub000/internal/service/events"
	"github.com/joho/godotenv"
)

func main() {
	// a missing .env is fine outside local development
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := bootstrap.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := bootstrap.OpenStores(ctx, cfg)
	if err != nil {
		logger.Error("open stores", "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	signer, err := bootstrap.NewSigner(cfg.Ticket)
	if err != nil {
		logger.Error("ticket signer", "error", err)
		os.Exit(1)
	}
	if cfg.Ticket.Signer == config.SignerChecksum {
		logger.Warn("legacy checksum ticket signer enabled; tickets can be forged by anyone who knows the scheme")
	}

	monitor := monitoring.NewMonitor()

	var producer booking.Producer
	var auditor checkin.Auditor
	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewProducer(cfg.Kafka.Brokers)
		defer p.Close()
		if err := p.CheckConnection(ctx); err != nil {
			logger.Warn("kafka unreachable at startup, booking events are best effort until it recovers", "error", err)
		}
		producer = p
		auditor = kafka.NewScanAuditor(p, cfg.Kafka.AuditTopic)
	}

	var eventCache events.EventCache
	bookingOpts := []booking.BookingServiceOption{
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithMetrics(monitor),
		booking.WithLogger(logger),
	}
	if stores.Redis != nil {
		redisCache := cache.NewRedisCache(stores.Redis, time.Duration(cfg.Booking.EventsCacheTTL)*time.Second)
		eventCache = redisCache
		bookingOpts = append(bookingOpts, booking.WithPassCache(redisCache))
	}

	resolver := discount.NewResolver(stores.Discounts, stores.Events, stores.Students)
	bookingService := booking.NewBookingService(
		stores.Bookings,
		stores.Events,
		resolver,
		signer,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
		bookingOpts...,
	)
	eventService := events.NewEventService(stores.Events, eventCache, logger)

	verifierOpts := []checkin.Option{
		checkin.WithMetrics(monitor),
		checkin.WithLogger(logger),
		checkin.WithStoreTimeout(cfg.Checkin.StoreTimeout()),
		checkin.WithAuditTimeout(cfg.Checkin.AuditTimeout()),
		checkin.WithManualEntry(cfg.Checkin.AllowManualEntry),
	}
	if auditor != nil {
		verifierOpts = append(verifierOpts, checkin.WithAuditor(auditor))
	}
	verifier := checkin.NewVerifier(stores.Bookings, stores.Events, stores.Attendance, signer, verifierOpts...)

	if err := bootstrap.Run(ctx, cfg, bootstrap.Services{
		Events:   eventService,
		Bookings: bookingService,
		Checkin:  verifier,
		Ready:    stores.Ready,
	}, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

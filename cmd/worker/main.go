package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/797Events/797Eventsapp-sub000/config"
	"github.com/797Events/797Eventsapp-sub000/internal/bootstrap"
	"github.com/797Events/797Eventsapp-sub000/internal/discount"
	"github.com/797Events/797Eventsapp-sub000/internal/email"
	"github.com/797Events/797Eventsapp-sub000/internal/kafka"
	"github.com/797Events/797Eventsapp-sub000/internal/service/booking"
	"github.com/joho/godotenv"
	kafkaGo "github.com/segmentio/kafka-go"
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

	var producer booking.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewProducer(cfg.Kafka.Brokers)
		defer p.Close()
		producer = p
	}

	bookingService := booking.NewBookingService(
		stores.Bookings,
		stores.Events,
		discount.NewResolver(stores.Discounts, stores.Events, stores.Students),
		signer,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithLogger(logger),
	)

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.NotificationsTopic != "" {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
		defer consumer.Close()
		sender := email.NewSender(nil, logger)

		go func() {
			if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
				var event kafka.BookingEvent
				if err := json.Unmarshal(msg.Value, &event); err != nil {
					logger.Warn("decode booking event", "offset", msg.Offset, "error", err)
					return nil
				}
				// notifications are best effort; a bad message must not stall the partition
				if err := sender.Send(ctx, event); err != nil {
					logger.Warn("send notification", "booking_id", event.BookingID, "type", event.Type, "error", err)
				}
				return nil
			}); err != nil && ctx.Err() == nil {
				logger.Error("consumer stopped", "error", err)
			}
		}()
	}

	sweep := time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute
	if sweep <= 0 {
		sweep = time.Minute
	}
	expireTicker := time.NewTicker(sweep)
	defer expireTicker.Stop()

	for {
		select {
		case <-expireTicker.C:
			expired, err := bookingService.ExpirePendingBookings(ctx)
			if err != nil {
				logger.Error("expire bookings", "error", err)
				continue
			}
			if len(expired) > 0 {
				logger.Info("expired pending bookings", "count", len(expired))
			}
		case <-ctx.Done():
			logger.Info("shutting down worker")
			return
		}
	}
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/797Events/797Eventsapp-sub000/config"
	"github.com/797Events/797Eventsapp-sub000/internal/cache"
	"github.com/797Events/797Eventsapp-sub000/internal/repository"
	"github.com/797Events/797Eventsapp-sub000/internal/ticket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Stores bundles the repositories selected by the storage config.
type Stores struct {
	Events     repository.EventRepository
	Bookings   repository.BookingRepository
	Discounts  repository.DiscountRepository
	Students   repository.StudentVerificationRepository
	Attendance repository.AttendanceRepository

	// Memory is set when storage.driver is memory so callers can seed it.
	Memory *repository.MemoryStore
	Redis  *redis.Client

	checks  []func(ctx context.Context) error
	closers []func()
}

func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	s := &Stores{}

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		s.checks = append(s.checks, pool.Ping)

		discounts := repository.NewDiscountRepository(pool)
		s.Events = repository.NewEventRepository(pool)
		s.Bookings = repository.NewBookingRepository(pool)
		s.Discounts = discounts
		s.Students = discounts
		if cfg.Storage.Attendance == config.DriverPostgres {
			s.Attendance = repository.NewAttendanceRepository(pool)
		}
	case config.DriverMemory:
		s.Memory = repository.NewMemoryStore()
		s.Events = s.Memory
		s.Bookings = s.Memory
		s.Discounts = s.Memory
		s.Students = s.Memory
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Redis.Addr != "" {
		s.Redis = cache.NewRedisClient(cfg.Redis)
		client := s.Redis
		s.closers = append(s.closers, func() { _ = client.Close() })
		s.checks = append(s.checks, func(ctx context.Context) error { return client.Ping(ctx).Err() })
	}

	switch cfg.Storage.Attendance {
	case config.DriverRedis:
		if s.Redis == nil {
			s.Close()
			return nil, errors.New("redis attendance store needs redis.addr")
		}
		s.Attendance = cache.NewAttendanceStore(s.Redis)
	case config.DriverMemory:
		if s.Memory != nil {
			s.Attendance = s.Memory
		} else {
			s.Attendance = repository.NewMemoryStore()
		}
	}
	if s.Attendance == nil {
		s.Close()
		return nil, fmt.Errorf("unsupported attendance store %q for driver %q", cfg.Storage.Attendance, cfg.Storage.Driver)
	}
	return s, nil
}

// Ready pings every backing store.
func (s *Stores) Ready(ctx context.Context) error {
	var errs []error
	for _, check := range s.checks {
		if err := check(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func NewSigner(cfg config.TicketConfig) (ticket.Signer, error) {
	switch cfg.Signer {
	case config.SignerHMAC, "":
		signer, err := ticket.NewHMACSigner(cfg.SigningSecret)
		if err != nil {
			return nil, err
		}
		return signer, nil
	case config.SignerChecksum:
		return ticket.ChecksumSigner{}, nil
	default:
		return nil, fmt.Errorf("unsupported ticket signer %q", cfg.Signer)
	}
}

func NewLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

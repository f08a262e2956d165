package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Ticket   TicketConfig   `yaml:"ticket"`
	Checkin  CheckinConfig  `yaml:"checkin"`
	Staff    StaffConfig    `yaml:"staff"`
	Log      LogConfig      `yaml:"log"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address        string `yaml:"address"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
)

type StorageConfig struct {
	// Driver is postgres or memory.
	Driver string `yaml:"driver"`
	// Attendance is postgres, redis or memory.
	Attendance string `yaml:"attendance"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingTopic       string   `yaml:"booking_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	AuditTopic         string   `yaml:"audit_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	HoldTTLMinutes int `yaml:"hold_ttl_minutes"`
	EventsCacheTTL int `yaml:"events_cache_ttl_seconds"`
}

const (
	SignerHMAC     = "hmac"
	SignerChecksum = "checksum"
)

type TicketConfig struct {
	Signer        string `yaml:"signer"`
	SigningSecret string `yaml:"signing_secret"`
}

type CheckinConfig struct {
	StoreTimeoutMS   int  `yaml:"store_timeout_ms"`
	// AuditTimeoutMS caps how long a gate response waits on the scan audit.
	AuditTimeoutMS   int  `yaml:"audit_timeout_ms"`
	AllowManualEntry bool `yaml:"allow_manual_entry"`
}

func (c CheckinConfig) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutMS) * time.Millisecond
}

func (c CheckinConfig) AuditTimeout() time.Duration {
	return time.Duration(c.AuditTimeoutMS) * time.Millisecond
}

type StaffConfig struct {
	APIKey    string `yaml:"api_key"`
	JWTSecret string `yaml:"jwt_secret"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type WorkerConfig struct {
	ExpirationSweepMinutes int `yaml:"expiration_sweep_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Ticket.SigningSecret = getEnv("TICKET_SIGNING_SECRET", cfg.Ticket.SigningSecret)
	cfg.Staff.APIKey = getEnv("STAFF_API_KEY", cfg.Staff.APIKey)
	cfg.Staff.JWTSecret = getEnv("STAFF_JWT_SECRET", cfg.Staff.JWTSecret)
	cfg.Database.Password = getEnv("DATABASE_PASSWORD", cfg.Database.Password)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		HTTP:    HTTPConfig{Address: ":8080", MetricsEnabled: true},
		Storage: StorageConfig{Driver: DriverPostgres, Attendance: DriverPostgres},
		Booking: BookingConfig{HoldTTLMinutes: 15, EventsCacheTTL: 60},
		Ticket:  TicketConfig{Signer: SignerHMAC},
		Checkin: CheckinConfig{StoreTimeoutMS: 3000, AuditTimeoutMS: 500},
		Log:     LogConfig{Level: "info", Format: "json"},
		Worker:  WorkerConfig{ExpirationSweepMinutes: 1},
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver))
	}
	switch c.Storage.Attendance {
	case DriverPostgres, DriverRedis, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.attendance %q is not supported", c.Storage.Attendance))
	}
	if c.Storage.Attendance == DriverPostgres && c.Storage.Driver != DriverPostgres {
		errs = append(errs, errors.New("storage.attendance postgres requires storage.driver postgres"))
	}
	if c.Storage.Attendance == DriverRedis && c.Redis.Addr == "" {
		errs = append(errs, errors.New("storage.attendance redis requires redis.addr"))
	}
	switch c.Ticket.Signer {
	case SignerHMAC:
		if c.Ticket.SigningSecret == "" {
			errs = append(errs, errors.New("ticket.signing_secret is required for the hmac signer"))
		}
	case SignerChecksum:
	default:
		errs = append(errs, fmt.Errorf("ticket.signer %q is not supported", c.Ticket.Signer))
	}
	if c.Checkin.StoreTimeoutMS <= 0 {
		errs = append(errs, errors.New("checkin.store_timeout_ms must be positive"))
	}
	if c.Checkin.AuditTimeoutMS <= 0 {
		errs = append(errs, errors.New("checkin.audit_timeout_ms must be positive"))
	}
	if c.Booking.HoldTTLMinutes <= 0 {
		errs = append(errs, errors.New("booking.hold_ttl_minutes must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

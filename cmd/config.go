package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	HTTPPort string
	LogLevel slog.Level

	Storage    string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	JWTSecret string

	DispatchWorkers   int
	DispatchQueueSize int
	WSSendBuffer      int

	CheckoutTTL           time.Duration
	CheckoutSweepSchedule string
	CheckoutSweepBatch    int

	RelayEnabled bool
	RelayChannel string

	RabbitMQURL      string
	RabbitMQExchange string

	TracingEnabled bool
}

// LoadConfig reads the environment, optionally seeded from a .env file in the
// working directory. A missing .env file is not an error.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE", StoragePostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "foodmarket")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DISPATCH_WORKERS", 4)
	v.SetDefault("DISPATCH_QUEUE_SIZE", 1024)
	v.SetDefault("WS_SEND_BUFFER", 32)
	v.SetDefault("CHECKOUT_TTL", 24*time.Hour)
	v.SetDefault("CHECKOUT_SWEEP_SCHEDULE", "0 */5 * * * *")
	v.SetDefault("CHECKOUT_SWEEP_BATCH", 500)
	v.SetDefault("RELAY_ENABLED", false)
	v.SetDefault("RELAY_CHANNEL", "order_events")
	v.SetDefault("RABBITMQ_EXCHANGE", "order-events")
	v.SetDefault("TRACING_ENABLED", false)

	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg := Config{
		HTTPPort:              v.GetString("HTTP_PORT"),
		LogLevel:              level,
		Storage:               v.GetString("STORAGE"),
		DBHost:                v.GetString("DB_HOST"),
		DBPort:                v.GetString("DB_PORT"),
		DBUser:                v.GetString("DB_USER"),
		DBPassword:            v.GetString("DB_PASSWORD"),
		DBName:                v.GetString("DB_NAME"),
		DBSslMode:             v.GetString("DB_SSLMODE"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		DispatchWorkers:       v.GetInt("DISPATCH_WORKERS"),
		DispatchQueueSize:     v.GetInt("DISPATCH_QUEUE_SIZE"),
		WSSendBuffer:          v.GetInt("WS_SEND_BUFFER"),
		CheckoutTTL:           v.GetDuration("CHECKOUT_TTL"),
		CheckoutSweepSchedule: v.GetString("CHECKOUT_SWEEP_SCHEDULE"),
		CheckoutSweepBatch:    v.GetInt("CHECKOUT_SWEEP_BATCH"),
		RelayEnabled:          v.GetBool("RELAY_ENABLED"),
		RelayChannel:          v.GetString("RELAY_CHANNEL"),
		RabbitMQURL:           v.GetString("RABBITMQ_URL"),
		RabbitMQExchange:      v.GetString("RABBITMQ_EXCHANGE"),
		TracingEnabled:        v.GetBool("TRACING_ENABLED"),
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	var err error
	if c.JWTSecret == "" {
		err = errors.Join(err, errors.New("JWT_SECRET is required"))
	}
	if c.Storage != StorageMemory && c.Storage != StoragePostgres {
		err = errors.Join(err, fmt.Errorf("STORAGE must be %q or %q, got %q", StorageMemory, StoragePostgres, c.Storage))
	}
	if c.RelayEnabled && c.Storage != StoragePostgres {
		err = errors.Join(err, errors.New("RELAY_ENABLED needs postgres storage"))
	}
	if c.CheckoutTTL <= 0 {
		err = errors.Join(err, errors.New("CHECKOUT_TTL must be positive"))
	}
	return err
}

// DSN is the libpq connection string for the configured database.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

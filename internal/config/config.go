package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/campground-booking/service-campground/internal/common/config"
	"github.com/campground-booking/service-campground/internal/common/domain"
	bookingDomain "github.com/campground-booking/service-campground/internal/domain/booking"
)

// Store drivers selectable with STORE_DRIVER.
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

// PaymentConfig holds the payment processor settings.
type PaymentConfig struct {
	StripeSecretKey string
	SuccessURL      string
	CancelURL       string
	Currency        string
	Timeout         time.Duration
}

// BookingConfig holds the per-user booking cap.
type BookingConfig struct {
	Limit int
	Scope bookingDomain.LimitScope
}

// RateLimitConfig holds the per-client request budget.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// ServiceConfig holds all configuration for the campground service.
type ServiceConfig struct {
	Port                  string
	AppEnv                string
	StoreDriver           string
	DBConfig              config.DatabaseConfig
	MongoConfig           config.MongoConfig
	JWTConfig             config.JWTConfig
	KafkaConfig           config.KafkaConfig
	PaymentConfig         PaymentConfig
	BookingConfig         BookingConfig
	RateLimitConfig       RateLimitConfig
	ReviewRequiresBooking bool
}

// Load reads configuration from environment variables prefixed CAMPGROUND_.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("CAMPGROUND")
	if err != nil {
		return nil, err
	}
	setDefaults(v)
	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("STORE_DRIVER", StorePostgres)
	v.SetDefault("DB_NAME", "campground")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "campground")
	v.SetDefault("PAYMENT_CURRENCY", domain.CurrencyTHB)
	v.SetDefault("BOOKING_LIMIT", 3)
	v.SetDefault("BOOKING_LIMIT_SCOPE", string(bookingDomain.LimitScopeAll))
	v.SetDefault("REVIEW_REQUIRES_BOOKING", true)
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
}

func fromViper(v *viper.Viper) (*ServiceConfig, error) {
	driver := strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER")))
	switch driver {
	case StorePostgres, StoreMongo, StoreMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", driver)
	}

	scope, err := bookingDomain.ParseLimitScope(v.GetString("BOOKING_LIMIT_SCOPE"))
	if err != nil {
		return nil, err
	}
	limit := v.GetInt("BOOKING_LIMIT")
	if limit < 1 {
		return nil, fmt.Errorf("BOOKING_LIMIT must be positive, got %d", limit)
	}

	cfg := &ServiceConfig{
		Port:        config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:      config.GetAppEnv(v),
		StoreDriver: driver,
		DBConfig:    config.LoadDatabaseConfig(v, "DB_NAME"),
		MongoConfig: config.LoadMongoConfig(v),
		JWTConfig:   config.LoadJWTConfig(v),
		KafkaConfig: config.LoadKafkaConfig(v),
		PaymentConfig: PaymentConfig{
			StripeSecretKey: v.GetString("STRIPE_SECRET_KEY"),
			SuccessURL:      v.GetString("STRIPE_SUCCESS_URL"),
			CancelURL:       v.GetString("STRIPE_CANCEL_URL"),
			Currency:        strings.ToLower(v.GetString("PAYMENT_CURRENCY")),
			Timeout:         config.GetDuration(v, "PAYMENT_TIMEOUT", 10*time.Second),
		},
		BookingConfig: BookingConfig{Limit: limit, Scope: scope},
		RateLimitConfig: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   config.GetDuration(v, "RATE_LIMIT_WINDOW", 10*time.Minute),
		},
		ReviewRequiresBooking: v.GetBool("REVIEW_REQUIRES_BOOKING"),
	}

	if cfg.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campground-booking/service-campground/internal/application"
	"github.com/campground-booking/service-campground/internal/common/auth"
	"github.com/campground-booking/service-campground/internal/common/database"
	"github.com/campground-booking/service-campground/internal/common/health"
	"github.com/campground-booking/service-campground/internal/common/kafka"
	"github.com/campground-booking/service-campground/internal/common/logger"
	"github.com/campground-booking/service-campground/internal/common/middleware"
	"github.com/campground-booking/service-campground/internal/common/ratelimit"
	"github.com/campground-booking/service-campground/internal/config"
	bookingDomain "github.com/campground-booking/service-campground/internal/domain/booking"
	campgroundDomain "github.com/campground-booking/service-campground/internal/domain/campground"
	"github.com/campground-booking/service-campground/internal/domain/payment"
	reviewDomain "github.com/campground-booking/service-campground/internal/domain/review"
	campgroundEvents "github.com/campground-booking/service-campground/internal/events"
	"github.com/campground-booking/service-campground/internal/handler"
	"github.com/campground-booking/service-campground/internal/payments"
	"github.com/campground-booking/service-campground/internal/repository"
	"github.com/campground-booking/service-campground/internal/repository/memstore"
	"github.com/campground-booking/service-campground/internal/repository/mongostore"
)

const serviceName = "service-campground"

// stores bundles the repositories of whichever backend STORE_DRIVER selects.
type stores struct {
	campgrounds campgroundDomain.CampgroundRepository
	bookings    bookingDomain.BookingRepository
	reviews     reviewDomain.ReviewRepository
	pinger      health.Pinger
	close       func()
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("store", cfg.StoreDriver),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open store", zap.Error(err))
	}
	defer st.close()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, 15*time.Minute)

	// Initialize Kafka producer
	var publisher application.EventPublisher = application.NoopPublisher()
	if cfg.KafkaConfig.Enabled() {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		publisher = kafkaProducer
	} else {
		log.Warn("KAFKA_BROKERS not set, booking events will not be published")
	}

	// Initialize payment gateway
	var gateway payment.Gateway = payments.DisabledGateway{}
	if cfg.PaymentConfig.StripeSecretKey != "" {
		gateway, err = payments.NewStripeGateway(cfg.PaymentConfig.StripeSecretKey, log)
		if err != nil {
			log.Fatal("failed to create payment gateway", zap.Error(err))
		}
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, checkout is disabled")
	}

	// Initialize application services
	locks := application.NewUserLocks()
	bookingService := application.NewBookingService(
		st.bookings,
		st.campgrounds,
		bookingDomain.NewLimitPolicy(cfg.BookingConfig.Limit, cfg.BookingConfig.Scope),
		locks,
		publisher,
		log,
	)
	paymentService := application.NewPaymentService(
		gateway,
		st.bookings,
		st.campgrounds,
		locks,
		publisher,
		application.PaymentConfig{
			Currency:   cfg.PaymentConfig.Currency,
			SuccessURL: cfg.PaymentConfig.SuccessURL,
			CancelURL:  cfg.PaymentConfig.CancelURL,
			Timeout:    cfg.PaymentConfig.Timeout,
		},
		log,
	)
	aggregator := application.NewRatingAggregator(st.reviews, st.campgrounds, log)
	reviewService := application.NewReviewService(
		st.reviews,
		st.campgrounds,
		st.bookings,
		aggregator,
		cfg.ReviewRequiresBooking,
		log,
	)
	campgroundService := application.NewCampgroundService(st.campgrounds, st.bookings, st.reviews, log)

	// Start payment event consumer in a goroutine
	if cfg.KafkaConfig.Enabled() {
		groupID := cfg.KafkaConfig.GroupPrefix + serviceName
		paymentConsumer := campgroundEvents.NewPaymentEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			paymentService,
			log,
		)
		defer func() { _ = paymentConsumer.Close() }()

		go func() {
			log.Info("starting payment event consumer")
			if err := paymentConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("payment event consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	limiter := ratelimit.NewFixedWindowLimiter(cfg.RateLimitConfig.Requests, cfg.RateLimitConfig.Window)
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware(limiter))

	// Register health check routes
	health.NewHandler(st.pinger, serviceName).RegisterRoutes(router)

	// Register routes
	api := &router.RouterGroup
	handler.NewCampgroundHandler(campgroundService).RegisterRoutes(api, jwtManager)
	handler.NewBookingHandler(bookingService).RegisterRoutes(api, jwtManager)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(api, jwtManager)
	handler.NewPaymentHandler(paymentService).RegisterRoutes(api, jwtManager)
	handler.NewReviewHandler(reviewService).RegisterRoutes(api, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

func openStores(ctx context.Context, cfg *config.ServiceConfig, log *zap.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		db, err := database.ConnectMongo(ctx, cfg.MongoConfig.URI, cfg.MongoConfig.Database, log)
		if err != nil {
			return nil, err
		}
		store := mongostore.New(db, log)
		if err := store.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return &stores{
			campgrounds: store.Campgrounds(),
			bookings:    store.Bookings(),
			reviews:     store.Reviews(),
			pinger:      store,
			close:       func() { _ = db.Client().Disconnect(context.Background()) },
		}, nil

	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		store := memstore.New()
		return &stores{
			campgrounds: store.Campgrounds(),
			bookings:    store.Bookings(),
			reviews:     store.Reviews(),
			pinger:      store,
			close:       func() {},
		}, nil

	default:
		dbConfig := database.PostgresConfig{
			Host:     cfg.DBConfig.Host,
			Port:     cfg.DBConfig.Port,
			User:     cfg.DBConfig.User,
			Password: cfg.DBConfig.Password,
			DBName:   cfg.DBConfig.DBName,
			SSLMode:  cfg.DBConfig.SSLMode,
		}
		db, err := database.Connect(dbConfig, log)
		if err != nil {
			return nil, err
		}

		// Run database migrations
		if cfg.AppEnv == "development" {
			if err := db.AutoMigrate(&repository.CampgroundModel{}, &repository.BookingModel{}, &repository.ReviewModel{}); err != nil {
				return nil, fmt.Errorf("failed to run auto-migration: %w", err)
			}
			log.Info("database migration completed (dev auto-migrate)")
		} else if err := database.RunMigrations(dbConfig.DatabaseURL(), "migrations", log); err != nil {
			return nil, err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		return &stores{
			campgrounds: repository.NewGormCampgroundRepository(db),
			bookings:    repository.NewGormBookingRepository(db),
			reviews:     repository.NewGormReviewRepository(db),
			pinger:      health.PingFunc(sqlDB.PingContext),
			close:       func() { _ = sqlDB.Close() },
		}, nil
	}
}

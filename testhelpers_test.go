//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/campground-booking/service-campground/internal/application"
	"github.com/campground-booking/service-campground/internal/common/database"
	"github.com/campground-booking/service-campground/internal/common/kafka"
	bookingDomain "github.com/campground-booking/service-campground/internal/domain/booking"
	campgroundDomain "github.com/campground-booking/service-campground/internal/domain/campground"
	"github.com/campground-booking/service-campground/internal/domain/payment"
	reviewDomain "github.com/campground-booking/service-campground/internal/domain/review"
	campgroundEvents "github.com/campground-booking/service-campground/internal/events"
	"github.com/campground-booking/service-campground/internal/repository"
	"github.com/campground-booking/service-campground/internal/repository/mongostore"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// repos is one backend's set of repositories.
type repos struct {
	campgrounds campgroundDomain.CampgroundRepository
	bookings    bookingDomain.BookingRepository
	reviews     reviewDomain.ReviewRepository
}

// campgroundStack holds wired-up service components.
type campgroundStack struct {
	Bookings        *application.BookingService
	Payments        *application.PaymentService
	Reviews         *application.ReviewService
	Gateway         *paidGateway
	Consumer        *campgroundEvents.PaymentEventConsumer
	CleanupProducer func()
}

// paidGateway hands out sessions that are already settled.
type paidGateway struct {
	mu       sync.Mutex
	sessions map[string]payment.SessionStatus
}

func (g *paidGateway) CreateCheckoutSession(_ context.Context, req payment.CheckoutRequest) (payment.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := "cs_test_" + uuid.NewString()[:8]
	g.sessions[id] = payment.SessionStatus{ID: id, PaymentStatus: "paid", Status: "complete", Metadata: req.Metadata}
	return payment.CheckoutSession{ID: id, URL: "https://checkout.example.com/pay/" + id}, nil
}

func (g *paidGateway) RetrieveSession(_ context.Context, sessionID string) (payment.SessionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[sessionID]
	if !ok {
		return payment.SessionStatus{}, fmt.Errorf("no such checkout.session: %s", sessionID)
	}
	return s, nil
}

// setupPostgres starts a PostgreSQL testcontainer and applies the SQL migrations.
func setupPostgres(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_campground",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := database.PostgresConfig{
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_campground",
		SSLMode:  "disable",
	}

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(cfg, logger)
		return err == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(cfg.DatabaseURL(), "migrations", logger))

	return db, func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}
}

// setupMongo starts a MongoDB testcontainer and ensures the store's indexes.
func setupMongo(t *testing.T) (*mongostore.Store, func()) {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	mongoContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start MongoDB container")

	endpoint, err := mongoContainer.PortEndpoint(ctx, "27017/tcp", "mongodb")
	require.NoError(t, err)

	var db *mongo.Database
	require.Eventually(t, func() bool {
		var err error
		db, err = database.ConnectMongo(ctx, endpoint, "test_campground", logger)
		return err == nil
	}, 30*time.Second, 1*time.Second, "MongoDB not ready for connections")

	store := mongostore.New(db, logger)
	require.NoError(t, store.EnsureIndexes(ctx))

	return store, func() {
		_ = db.Client().Disconnect(ctx)
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate MongoDB container: %v", err)
		}
	}
}

// setupContainers starts PostgreSQL and Kafka testcontainers.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	db, cleanupPostgres := setupPostgres(t)

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers, application.TopicBookingEvents, campgroundEvents.TopicPaymentEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		cleanupPostgres()
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

func gormRepos(db *gorm.DB) repos {
	return repos{
		campgrounds: repository.NewGormCampgroundRepository(db),
		bookings:    repository.NewGormBookingRepository(db),
		reviews:     repository.NewGormReviewRepository(db),
	}
}

func mongoRepos(store *mongostore.Store) repos {
	return repos{
		campgrounds: store.Campgrounds(),
		bookings:    store.Bookings(),
		reviews:     store.Reviews(),
	}
}

// setupStack wires the services over r. With brokers it publishes to Kafka
// and builds a payment event consumer.
func setupStack(t *testing.T, r repos, brokers []string) *campgroundStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	var publisher application.EventPublisher = application.NoopPublisher()
	cleanup := func() {}
	if len(brokers) > 0 {
		producer := kafka.NewProducer(brokers, logger)
		publisher = producer
		cleanup = func() { _ = producer.Close() }
	}

	gateway := &paidGateway{sessions: make(map[string]payment.SessionStatus)}
	locks := application.NewUserLocks()
	bookingSvc := application.NewBookingService(r.bookings, r.campgrounds,
		bookingDomain.NewLimitPolicy(bookingDomain.DefaultMaxBookings, bookingDomain.LimitScopeAll),
		locks, publisher, logger)
	paymentSvc := application.NewPaymentService(gateway, r.bookings, r.campgrounds, locks, publisher,
		application.PaymentConfig{}, logger)
	aggregator := application.NewRatingAggregator(r.reviews, r.campgrounds, logger)
	reviewSvc := application.NewReviewService(r.reviews, r.campgrounds, r.bookings, aggregator, true, logger)

	stack := &campgroundStack{
		Bookings:        bookingSvc,
		Payments:        paymentSvc,
		Reviews:         reviewSvc,
		Gateway:         gateway,
		CleanupProducer: cleanup,
	}
	if len(brokers) > 0 {
		groupID := fmt.Sprintf("test-campground-%s", uuid.New().String()[:8])
		stack.Consumer = campgroundEvents.NewPaymentEventConsumer(brokers, groupID, paymentSvc, logger)
	}
	return stack
}

// seedCampground inserts a priced campground.
func seedCampground(t *testing.T, r repos, name string) *campgroundDomain.Campground {
	t.Helper()
	price := 788.0
	camp, err := campgroundDomain.NewCampground(campgroundDomain.Details{
		Name:       name,
		Address:    "119 Moo 3",
		District:   "Chom Thong",
		Province:   "Chiang Mai",
		PostalCode: "50160",
		Region:     "North",
		Price:      &price,
	})
	require.NoError(t, err)
	require.NoError(t, r.campgrounds.Save(context.Background(), camp))
	return camp
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForPaidBooking polls the bookings table until the user's booking is paid.
func waitForPaidBooking(t *testing.T, db *gorm.DB, userID uuid.UUID, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var result repository.BookingModel
	require.Eventually(t, func() bool {
		var model repository.BookingModel
		err := db.Where("user_id = ?", userID).First(&model).Error
		if err != nil {
			return false
		}
		if model.PaymentStatus == string(bookingDomain.PaymentPaid) {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking for user %s was not paid", userID)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}

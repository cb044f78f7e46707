//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/wayfarer-maps/service-routing/internal/application"
	routingEvents "github.com/wayfarer-maps/service-routing/internal/events"
	"github.com/wayfarer-maps/service-routing/internal/platform/auth"
	"github.com/wayfarer-maps/service-routing/internal/platform/events"
	"github.com/wayfarer-maps/service-routing/internal/prices"
	"github.com/wayfarer-maps/service-routing/internal/provider"
	"github.com/wayfarer-maps/service-routing/internal/repository"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// routingStack holds wired-up routing service components.
type routingStack struct {
	Service         *application.RouteService
	Gateway         *prices.Gateway
	Consumer        *routingEvents.UserEventConsumer
	FuelFeedHits    *int32
	CleanupProducer func()
	CleanupServers  func()
}

// setupContainers starts PostgreSQL and Kafka testcontainers and returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_routing",
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

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_routing sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.SavedRouteModel{},
		&repository.PreferencesModel{},
		&repository.VehicleModel{},
		&repository.PlaceModel{},
	))

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicRouteEvents, events.TopicUserEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupRoutingStack wires up the full routing service stack against stub
// HTTP feeds and a stub directions provider.
func setupRoutingStack(t *testing.T, db *gorm.DB, brokers []string) *routingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	var fuelHits int32
	fuelServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fuelHits, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ListaEESSPrecio":[
			{"Precio Gasoleo A":"1,45","Precio Gasolina 95 E5":"1,62"},
			{"Precio Gasoleo A":"1,47","Precio Gasolina 95 E5":"1,64"}
		]}`)
	}))
	powerServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"indicator":{"values":[{"value":100.0},{"value":200.0}]}}`)
	}))
	directionsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"routes":[{
			"distance": 73219,
			"duration": 3060,
			"steps": [{"instruction": "Head north"}, {"instruction": "Turn left"}],
			"geometry": [[40.4168, -3.7038], [41.3874, 2.1686]]
		}]}`)
	}))

	fuelFeed := prices.NewHTTPFuelFeed(fuelServer.URL, nil)
	powerFeed := prices.NewHTTPPowerFeed(powerServer.URL, "", nil)
	gateway := prices.NewGateway(fuelFeed, powerFeed, time.Hour, logger)

	directions := provider.NewHTTPDirectionsProvider(directionsServer.URL, "", nil)

	routeRepo := repository.NewGormSavedRouteRepository(db)
	prefsRepo := repository.NewGormPreferencesRepository(db)
	vehicleRepo := repository.NewGormVehicleRepository(db)

	producer := events.NewProducer(brokers, logger)
	routeSvc := application.NewRouteService(
		directions,
		gateway,
		auth.NewContextSessionProvider(),
		prefsRepo,
		routeRepo,
		vehicleRepo,
		producer,
		logger,
	)

	groupID := fmt.Sprintf("test-routing-%s", uuid.New().String()[:8])
	consumer := routingEvents.NewUserEventConsumer(brokers, groupID, gateway, logger)

	return &routingStack{
		Service:         routeSvc,
		Gateway:         gateway,
		Consumer:        consumer,
		FuelFeedHits:    &fuelHits,
		CleanupProducer: func() { _ = producer.Close() },
		CleanupServers: func() {
			fuelServer.Close()
			powerServer.Close()
			directionsServer.Close()
		},
	}
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := events.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := events.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) events.CloudEvent {
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
		ce, err := events.ParseCloudEvent(msg.Value)
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

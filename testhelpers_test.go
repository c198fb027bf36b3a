//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/application"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/directions"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/mapview"
	routeEvents "github.com/Kilat-Pet-Delivery/service-routeplanner/internal/events"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/presenter"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/repository"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// plannerStack holds wired-up route planner components.
type plannerStack struct {
	Service         *application.PlannerService
	Consumer        *routeEvents.RouteRequestConsumer
	CleanupProducer func()
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
			"POSTGRES_DB":       "test_routeplanner",
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

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_routeplanner sslmode=disable", pgHost, pgPort.Port())

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

	require.NoError(t, db.AutoMigrate(&repository.RouteHistoryModel{}))

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, "route.events", "route.requests")

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

// knownPlaces is the gazetteer served by the fake Nominatim endpoint.
var knownPlaces = map[string][2]float64{
	"New York":   {40.7128, -74.0060},
	"Hartford":   {41.7658, -72.6734},
	"Providence": {41.8240, -71.4128},
	"Boston":     {42.3601, -71.0589},
}

// startRoutingServer serves Nominatim /search and OSRM /route/v1 from one
// httptest server. Every leg is 100 km and 1 hour.
func startRoutingServer(t *testing.T) string {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		place, ok := knownPlaces[r.URL.Query().Get("q")]
		if !ok {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{{
			"lat": strconv.FormatFloat(place[0], 'f', -1, 64),
			"lon": strconv.FormatFloat(place[1], 'f', -1, 64),
		}})
	})
	mux.HandleFunc("/route/v1/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		pairs := strings.Split(parts[len(parts)-1], ";")

		coords := make([][2]float64, 0, len(pairs))
		for _, p := range pairs {
			lonLat := strings.Split(p, ",")
			lon, _ := strconv.ParseFloat(lonLat[0], 64)
			lat, _ := strconv.ParseFloat(lonLat[1], 64)
			coords = append(coords, [2]float64{lon, lat})
		}
		legs := make([]map[string]float64, len(coords)-1)
		for i := range legs {
			legs[i] = map[string]float64{"distance": 100000, "duration": 3600}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code": "Ok",
			"routes": []map[string]interface{}{{
				"geometry": map[string]interface{}{"type": "LineString", "coordinates": coords},
				"legs":     legs,
			}},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

// setupPlannerStack wires up the full planner stack against the fake routing server.
func setupPlannerStack(t *testing.T, db *gorm.DB, brokers []string, routingURL string) *plannerStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	opts := directions.Options{
		Backend:            directions.BackendOSRM,
		NominatimURL:       routingURL,
		NominatimUserAgent: "routeplanner-integration-test",
		OSRMURL:            routingURL,
	}
	client, err := directions.New(opts, logger)
	require.NoError(t, err)
	places, err := directions.NewPlaces(opts, logger)
	require.NoError(t, err)

	producer := kafka.NewProducer(brokers, logger)
	svc := application.NewPlannerService(
		repository.NewMemorySessionRepository(),
		repository.NewGormHistoryRepository(db),
		client,
		places,
		presenter.New(presenter.DefaultOptions()),
		mapview.DefaultOptions(),
		producer,
		logger,
	)

	groupID := fmt.Sprintf("test-routeplanner-%s", uuid.New().String()[:8])
	consumer := routeEvents.NewRouteRequestConsumer(brokers, groupID, svc, logger)

	return &plannerStack{
		Service:         svc,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
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

// waitForHistoryRows polls route_history until it holds at least n rows.
func waitForHistoryRows(t *testing.T, db *gorm.DB, n int64, timeout time.Duration) []repository.RouteHistoryModel {
	t.Helper()
	var rows []repository.RouteHistoryModel
	require.Eventually(t, func() bool {
		rows = nil
		if err := db.Order("created_at ASC").Find(&rows).Error; err != nil {
			return false
		}
		return int64(len(rows)) >= n
	}, timeout, 200*time.Millisecond, "route_history did not reach %d rows", n)
	return rows
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

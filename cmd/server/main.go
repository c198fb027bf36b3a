package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/application"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/config"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/directions"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/mapview"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/domain/route"
	routeEvents "github.com/Kilat-Pet-Delivery/service-routeplanner/internal/events"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/handler"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/database"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/health"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/kafka"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/logger"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/middleware"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/platform/response"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/presenter"
	"github.com/Kilat-Pet-Delivery/service-routeplanner/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "service-routeplanner"

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
		zap.String("routing_backend", cfg.Routing.Backend),
	)

	// Connect to database
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
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(&repository.RouteHistoryModel{}); err != nil {
		log.Fatal("failed to run auto-migration", zap.Error(err))
	}
	log.Info("database migration completed")

	// Initialize Kafka producer; without brokers events are dropped
	var producer application.EventPublisher = kafka.NopProducer{}
	if len(cfg.KafkaConfig.Brokers) > 0 {
		kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
		defer func() { _ = kafkaProducer.Close() }()
		producer = kafkaProducer
	} else {
		log.Warn("no kafka brokers configured, route events disabled")
	}

	// Initialize routing backend and place suggestions
	routingOpts := directions.Options{
		Backend:            cfg.Routing.Backend,
		GoogleAPIKey:       cfg.Routing.GoogleAPIKey,
		NominatimURL:       cfg.Routing.NominatimURL,
		NominatimUserAgent: cfg.Routing.NominatimUserAgent,
		OSRMURL:            cfg.Routing.OSRMURL,
	}
	client, err := directions.New(routingOpts, log)
	if err != nil {
		log.Fatal("failed to create routing client", zap.Error(err))
	}
	places, err := directions.NewPlaces(routingOpts, log)
	if err != nil {
		log.Fatal("failed to create places client", zap.Error(err))
	}

	// Initialize repositories
	sessionRepo := repository.NewMemorySessionRepository()
	historyRepo := repository.NewGormHistoryRepository(db)

	mapOpts := mapview.DefaultOptions()
	mapOpts.DefaultCenter = route.Coordinate{Lat: cfg.Map.DefaultLat, Lng: cfg.Map.DefaultLng}
	mapOpts.DefaultZoom = cfg.Map.DefaultZoom
	mapOpts.FitPadding = cfg.Map.FitPadding
	mapOpts.MaxZoom = cfg.Map.MaxZoom

	response.SetDismissAfter(cfg.ErrorDismissAfter)

	// Initialize application service
	plannerService := application.NewPlannerService(
		sessionRepo,
		historyRepo,
		client,
		places,
		presenter.New(presenter.DefaultOptions()),
		mapOpts,
		producer,
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start route request consumer in a goroutine
	if len(cfg.KafkaConfig.Brokers) > 0 {
		groupID := cfg.KafkaConfig.GroupPrefix + "routeplanner-service"
		requestConsumer := routeEvents.NewRouteRequestConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			plannerService,
			log,
		)
		defer func() { _ = requestConsumer.Close() }()

		go func() {
			log.Info("starting route request consumer")
			if err := requestConsumer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("route request consumer error", zap.Error(err))
			}
		}()
	}

	// Expire abandoned planner sessions
	go runSessionJanitor(ctx, plannerService, cfg.SessionTTL, log)

	// Initialize HTTP handlers
	plannerHandler := handler.NewPlannerHandler(plannerService)
	historyHandler := handler.NewHistoryHandler(plannerService)
	placesHandler := handler.NewPlacesHandler(plannerService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, serviceName)
	healthHandler.RegisterRoutes(router)

	// Register routes
	plannerHandler.RegisterRoutes(&router.RouterGroup)
	historyHandler.RegisterRoutes(&router.RouterGroup)
	placesHandler.RegisterRoutes(&router.RouterGroup)

	// Create HTTP server. Route calculation waits on the backend with no
	// timeout of its own, so the write timeout is generous.
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer and janitor context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}

func runSessionJanitor(ctx context.Context, svc *application.PlannerService, ttl time.Duration, log *zap.Logger) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.ExpireSessions(ctx, ttl); err != nil {
				log.Error("session expiry failed", zap.Error(err))
			}
		}
	}
}

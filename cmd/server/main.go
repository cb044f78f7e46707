package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wayfarer-maps/service-routing/internal/application"
	"github.com/wayfarer-maps/service-routing/internal/config"
	routingEvents "github.com/wayfarer-maps/service-routing/internal/events"
	"github.com/wayfarer-maps/service-routing/internal/handler"
	"github.com/wayfarer-maps/service-routing/internal/platform/auth"
	"github.com/wayfarer-maps/service-routing/internal/platform/database"
	"github.com/wayfarer-maps/service-routing/internal/platform/events"
	"github.com/wayfarer-maps/service-routing/internal/platform/health"
	"github.com/wayfarer-maps/service-routing/internal/platform/logger"
	"github.com/wayfarer-maps/service-routing/internal/platform/middleware"
	"github.com/wayfarer-maps/service-routing/internal/prices"
	"github.com/wayfarer-maps/service-routing/internal/provider"
	"github.com/wayfarer-maps/service-routing/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-routing")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-routing",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run schema migration
	if err := db.AutoMigrate(
		&repository.SavedRouteModel{},
		&repository.PreferencesModel{},
		&repository.VehicleModel{},
		&repository.PlaceModel{},
	); err != nil {
		log.Fatal("failed to run auto-migration", zap.Error(err))
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWT.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := events.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize external feeds and price gateway
	httpClient := &http.Client{Timeout: 30 * time.Second}
	fuelFeed := prices.NewHTTPFuelFeed(cfg.Prices.FuelFeedURL, httpClient)
	powerFeed := prices.NewHTTPPowerFeed(cfg.Prices.PowerFeedURL, cfg.Prices.PowerToken, httpClient)
	priceGateway := prices.NewGateway(fuelFeed, powerFeed, cfg.Prices.CacheTTL, log)

	// Initialize directions provider
	directions := provider.NewHTTPDirectionsProvider(cfg.Provider.BaseURL, cfg.Provider.APIKey, httpClient)

	// Initialize repositories
	routeRepo := repository.NewGormSavedRouteRepository(db)
	prefsRepo := repository.NewGormPreferencesRepository(db)
	vehicleRepo := repository.NewGormVehicleRepository(db)
	placeRepo := repository.NewGormPlaceRepository(db)

	// Initialize application services
	routeService := application.NewRouteService(
		directions,
		priceGateway,
		auth.NewContextSessionProvider(),
		prefsRepo,
		routeRepo,
		vehicleRepo,
		kafkaProducer,
		log,
	)
	placeService := application.NewPlaceService(placeRepo, log)
	vehicleService := application.NewVehicleService(vehicleRepo, log)

	// Initialize and start user event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.Kafka.GroupPrefix + "routing-service"
	userConsumer := routingEvents.NewUserEventConsumer(
		cfg.Kafka.Brokers,
		groupID,
		priceGateway,
		log,
	)
	defer func() { _ = userConsumer.Close() }()

	go func() {
		log.Info("starting user event consumer")
		if err := userConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("user event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	routeHandler := handler.NewRouteHandler(routeService)
	placeHandler := handler.NewPlaceHandler(placeService)
	vehicleHandler := handler.NewVehicleHandler(vehicleService)

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
	healthHandler := health.NewHandler(db, "service-routing")
	healthHandler.RegisterRoutes(router)

	// Register routes
	routeHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	placeHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	vehicleHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

	log.Info("shutting down service-routing...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-routing stopped")
}

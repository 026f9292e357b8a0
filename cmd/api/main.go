package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/lotscout/lotscout-go-api/internal/config"
	"github.com/lotscout/lotscout-go-api/internal/database"
	"github.com/lotscout/lotscout-go-api/internal/handler"
	"github.com/lotscout/lotscout-go-api/internal/middleware"
	"github.com/lotscout/lotscout-go-api/internal/models"
	"github.com/lotscout/lotscout-go-api/internal/repository"
	"github.com/lotscout/lotscout-go-api/internal/router"
	"github.com/lotscout/lotscout-go-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.VehicleListing{},
		&models.AIClassification{},
		&models.Dealer{},
		&models.DealerPreferences{},
		&models.VehicleMatch{},
		&models.HotDealAlert{},
		&models.MarketIntelligence{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	validate := validator.New(validator.WithRequiredStructEnabled())

	listingRepo := repository.NewListingRepository(db)
	dealerRepo := repository.NewDealerRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	marketRepo := repository.NewMarketRepository(db)

	listingService := service.NewListingService(listingRepo, logger)
	dealerService := service.NewDealerService(dealerRepo, validate, logger)
	matchFeedService := service.NewMatchFeedService(matchRepo, alertRepo, redisClient, cfg.MatchFeedCacheTTL, logger)
	marketFitService := service.NewMarketFitService(marketRepo, redisClient, cfg.MarketCacheTTL, logger)

	listingHandler := handler.NewListingHandler(listingService, logger)
	dealerHandler := handler.NewDealerHandler(dealerService, logger)
	matchHandler := handler.NewMatchHandler(matchFeedService, logger)
	predictionHandler := handler.NewPredictionHandler(marketFitService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ListingHandler:    listingHandler,
		DealerHandler:     dealerHandler,
		MatchHandler:      matchHandler,
		PredictionHandler: predictionHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}

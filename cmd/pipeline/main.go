package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/lotscout/lotscout-go-api/internal/config"
	"github.com/lotscout/lotscout-go-api/internal/database"
	"github.com/lotscout/lotscout-go-api/internal/models"
	"github.com/lotscout/lotscout-go-api/internal/repository"
	"github.com/lotscout/lotscout-go-api/internal/scraper"
	"github.com/lotscout/lotscout-go-api/internal/service"
	"github.com/lotscout/lotscout-go-api/pkg/ai"
	"github.com/lotscout/lotscout-go-api/pkg/mailer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("app", "pipeline").Logger()

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

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	ctx := context.Background()

	classifier, err := ai.NewOpenAIClassifier(ai.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to create classifier: %v", err)
	}

	var mail mailer.Mailer
	if cfg.EmailFrom != "" {
		sesMailer, err := mailer.NewSESMailer(ctx, mailer.SESConfig{
			Region: cfg.SESRegion,
			From:   cfg.EmailFrom,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create mailer: %v", err)
		}
		mail = sesMailer
	} else {
		logger.Warn().Msg("no sender address configured, email delivery disabled")
	}

	var sources []scraper.Source
	if cfg.ScraperSourceURL != "" {
		sources = append(sources, scraper.NewAuctionPageSource(scraper.AuctionPageConfig{
			SiteName: "auctionpage",
			StartURL: cfg.ScraperSourceURL,
			Pages:    cfg.ScraperPages,
		}, logger))
	} else {
		logger.Warn().Msg("no scraper source configured, run will only process stored listings")
	}

	listingRepo := repository.NewListingRepository(db)
	dealerRepo := repository.NewDealerRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	classificationService := service.NewClassificationService(
		listingRepo,
		classifier,
		ai.NewHeuristicClassifier(),
		logger,
		service.ClassificationConfig{
			BatchSize:  cfg.ClassifyBatchSize,
			BatchDelay: cfg.ClassifyBatchDelay,
		},
	)
	matcherService := service.NewMatcherService(logger)
	hotDealService := service.NewHotDealService(logger)
	alertService := service.NewAlertService(alertRepo, mail, natsConn, logger)
	digestService := service.NewDigestService(mail, cfg.DigestSize, logger)

	pipeline := service.NewPipelineService(
		sources,
		listingRepo,
		dealerRepo,
		matchRepo,
		classificationService,
		matcherService,
		hotDealService,
		alertService,
		digestService,
		logger,
	)

	runCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	summary, err := pipeline.Run(runCtx)
	if err != nil {
		logger.Error().Err(err).Str("run_id", summary.RunID).Msg("sourcing run failed")
		os.Exit(1)
	}

	logger.Info().
		Str("run_id", summary.RunID).
		Int("listings_fetched", summary.ListingsFetched).
		Int("listings_new", summary.ListingsNew).
		Int("classified", summary.Classified).
		Int("dealers_matched", summary.DealersMatched).
		Int("matches_saved", summary.MatchesSaved).
		Int("alerts_sent", summary.AlertsSent).
		Int("digests_sent", summary.DigestsSent).
		Dur("duration", summary.Duration).
		Msg("sourcing run complete")
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/lotscout/lotscout-go-api/internal/models"
	"github.com/lotscout/lotscout-go-api/internal/observability"
	"github.com/lotscout/lotscout-go-api/internal/repository"
	"github.com/lotscout/lotscout-go-api/internal/scraper"
)

// PipelineSummary reports what one sourcing run did.
type PipelineSummary struct {
	RunID           string
	ListingsFetched int
	ListingsNew     int
	Classified      int
	DealersMatched  int
	MatchesSaved    int
	AlertsSent      int
	DigestsSent     int
	Duration        time.Duration
}

// PipelineService drives one full sourcing run: scrape, classify, match,
// detect hot deals, alert, digest.
type PipelineService interface {
	Run(ctx context.Context) (PipelineSummary, error)
}

type pipelineService struct {
	sources        []scraper.Source
	listings       repository.ListingRepository
	dealers        repository.DealerRepository
	matches        repository.MatchRepository
	classification ClassificationService
	matcher        MatcherService
	hotDeals       HotDealService
	alerts         AlertService
	digests        DigestService
	logger         zerolog.Logger
}

// NewPipelineService wires the sourcing pipeline.
func NewPipelineService(
	sources []scraper.Source,
	listings repository.ListingRepository,
	dealers repository.DealerRepository,
	matches repository.MatchRepository,
	classification ClassificationService,
	matcher MatcherService,
	hotDeals HotDealService,
	alerts AlertService,
	digests DigestService,
	logger zerolog.Logger,
) PipelineService {
	return &pipelineService{
		sources:        sources,
		listings:       listings,
		dealers:        dealers,
		matches:        matches,
		classification: classification,
		matcher:        matcher,
		hotDeals:       hotDeals,
		alerts:         alerts,
		digests:        digests,
		logger:         logger.With().Str("component", "pipeline_service").Logger(),
	}
}

// Run executes the stages in order. Scrape and send failures degrade to a
// logged skip; a missing classifier configuration aborts the run before any
// matching or alerting happens.
func (s *pipelineService) Run(ctx context.Context) (PipelineSummary, error) {
	started := time.Now()
	summary := PipelineSummary{RunID: uuid.NewString()}
	logger := s.logger.With().Str("run_id", summary.RunID).Logger()

	fetched, created := s.runScrapeStage(ctx, logger)
	summary.ListingsFetched = fetched
	summary.ListingsNew = created

	classified, err := s.runClassifyStage(ctx, logger)
	if err != nil {
		return summary, err
	}
	summary.Classified = classified

	matchesByDealer, dealerByID, err := s.runMatchStage(ctx, logger, summary.RunID)
	if err != nil {
		return summary, err
	}
	summary.DealersMatched = len(matchesByDealer)
	for _, matches := range matchesByDealer {
		summary.MatchesSaved += len(matches)
	}

	summary.AlertsSent = s.runAlertStage(ctx, logger, matchesByDealer, dealerByID, summary.RunID)
	summary.DigestsSent = s.runDigestStage(ctx, logger, matchesByDealer, dealerByID)

	summary.Duration = time.Since(started)
	logger.Info().
		Int("fetched", summary.ListingsFetched).
		Int("new", summary.ListingsNew).
		Int("classified", summary.Classified).
		Int("matches", summary.MatchesSaved).
		Int("alerts", summary.AlertsSent).
		Int("digests", summary.DigestsSent).
		Dur("duration", summary.Duration).
		Msg("pipeline run complete")

	return summary, nil
}

func (s *pipelineService) runScrapeStage(ctx context.Context, logger zerolog.Logger) (fetched, created int) {
	defer observeStage("scrape")()

	for _, source := range s.sources {
		listings, err := source.Fetch(ctx)
		if err != nil {
			logger.Error().Err(err).Str("source", source.Name()).Msg("source fetch failed, skipping")
			continue
		}

		fetched += len(listings)
		observability.ListingsScraped().Add(float64(len(listings)))

		for i := range listings {
			isNew, err := s.listings.Upsert(ctx, &listings[i])
			if err != nil {
				logger.Error().Err(err).Str("lot", listings[i].LotNumber).Msg("failed to store listing")
				continue
			}
			if isNew {
				created++
			}
		}
	}

	return fetched, created
}

func (s *pipelineService) runClassifyStage(ctx context.Context, logger zerolog.Logger) (int, error) {
	defer observeStage("classify")()

	unclassified, err := s.listings.ListUnclassified(ctx)
	if err != nil {
		return 0, fmt.Errorf("list unclassified listings: %w", err)
	}
	if len(unclassified) == 0 {
		return 0, nil
	}

	classifications, err := s.classification.ClassifyListings(ctx, unclassified)
	if err != nil {
		return 0, fmt.Errorf("classify listings: %w", err)
	}

	logger.Info().Int("count", len(classifications)).Msg("listings classified")
	return len(classifications), nil
}

func (s *pipelineService) runMatchStage(ctx context.Context, logger zerolog.Logger, runID string) (map[uint][]ScoredMatch, map[uint]models.Dealer, error) {
	defer observeStage("match")()

	listings, err := s.listings.ListClassified(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list classified listings: %w", err)
	}

	dealers, err := s.dealers.ListActive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list active dealers: %w", err)
	}

	dealerByID := make(map[uint]models.Dealer, len(dealers))
	for _, dealer := range dealers {
		dealerByID[dealer.ID] = dealer
	}

	matchesByDealer := s.matcher.MatchForDealers(ctx, listings, dealers)

	var rows []models.VehicleMatch
	for dealerID, matches := range matchesByDealer {
		for _, match := range matches {
			rows = append(rows, models.VehicleMatch{
				DealerID:         dealerID,
				ListingID:        match.Listing.ID,
				ClassificationID: match.Classification.ID,
				MatchScore:       match.Score,
				Reasons:          datatypes.NewJSONSlice(match.Reasons),
				RunID:            runID,
			})
		}
	}

	if err := s.matches.SaveBatch(ctx, rows); err != nil {
		logger.Error().Err(err).Msg("failed to persist matches")
	}

	return matchesByDealer, dealerByID, nil
}

// runAlertStage flags hot deals and alerts the top one per dealer. Limiting
// to one alert per dealer per run is deliberate spam control.
func (s *pipelineService) runAlertStage(ctx context.Context, logger zerolog.Logger, matchesByDealer map[uint][]ScoredMatch, dealerByID map[uint]models.Dealer, runID string) int {
	defer observeStage("alert")()

	criteria := DefaultHotDealCriteria()
	sent := 0

	for dealerID, matches := range matchesByDealer {
		dealer, ok := dealerByID[dealerID]
		if !ok {
			continue
		}

		inputs := make([]HotDealInput, 0, len(matches))
		for _, match := range matches {
			inputs = append(inputs, HotDealInput{
				DealerID:             dealerID,
				Listing:              match.Listing,
				ProfitGBP:            match.Classification.ProfitPotentialGBP,
				RiskScore:            match.Classification.RiskScore,
				FinalScore:           match.Score,
				PersonalizationBoost: match.Classification.PreferenceMatchScore,
			})
		}

		deals := s.hotDeals.DetectBatch(inputs, criteria)
		if len(deals) == 0 {
			continue
		}

		observability.HotDealsDetected().Inc()
		if err := s.alerts.SendHotDealAlert(ctx, dealer, deals[0], runID); err != nil {
			logger.Error().Err(err).Uint("dealer_id", dealerID).Msg("failed to send hot deal alert")
			continue
		}
		sent++
	}

	return sent
}

func (s *pipelineService) runDigestStage(ctx context.Context, logger zerolog.Logger, matchesByDealer map[uint][]ScoredMatch, dealerByID map[uint]models.Dealer) int {
	defer observeStage("digest")()

	sent := 0
	for dealerID, matches := range matchesByDealer {
		dealer, ok := dealerByID[dealerID]
		if !ok || len(matches) == 0 {
			continue
		}

		if err := s.digests.SendDigest(ctx, dealer, matches); err != nil {
			logger.Error().Err(err).Uint("dealer_id", dealerID).Msg("failed to send digest")
			continue
		}
		sent++
	}

	return sent
}

func observeStage(stage string) func() {
	start := time.Now()
	return func() {
		observability.StageDuration().WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

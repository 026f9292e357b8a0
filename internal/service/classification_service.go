package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/lotscout/lotscout-go-api/internal/models"
	"github.com/lotscout/lotscout-go-api/internal/repository"
	"github.com/lotscout/lotscout-go-api/pkg/ai"
)

// ErrClassifierUnavailable indicates no model backend is configured. This is
// a configuration error surfaced before any work starts; it is never raised
// per listing.
var ErrClassifierUnavailable = errors.New("classifier unavailable")

// ClassificationConfig tunes batch processing. Batches throttle the external
// model API; failures inside a batch degrade to the heuristic rather than
// aborting the run.
type ClassificationConfig struct {
	BatchSize  int
	BatchDelay time.Duration
}

// ClassificationService classifies scraped listings in rate-limited batches.
type ClassificationService interface {
	ClassifyListings(ctx context.Context, listings []models.VehicleListing) ([]models.AIClassification, error)
}

type classificationService struct {
	listings   repository.ListingRepository
	classifier ai.Classifier
	fallback   ai.Classifier
	logger     zerolog.Logger
	config     ClassificationConfig
	sleep      func(time.Duration)
}

// NewClassificationService constructs the batch classifier. classifier may
// be nil when no API key is configured; fallback must never be nil.
func NewClassificationService(listings repository.ListingRepository, classifier ai.Classifier, fallback ai.Classifier, logger zerolog.Logger, cfg ClassificationConfig) ClassificationService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = time.Second
	}

	return &classificationService{
		listings:   listings,
		classifier: classifier,
		fallback:   fallback,
		logger:     logger.With().Str("component", "classification_service").Logger(),
		config:     cfg,
		sleep:      time.Sleep,
	}
}

// ClassifyListings produces exactly one classification per input listing.
// The model backend is tried first; a per-listing failure falls back to the
// heuristic for that listing only. A missing backend is a configuration
// error and aborts before any listing is touched.
func (s *classificationService) ClassifyListings(ctx context.Context, listings []models.VehicleListing) ([]models.AIClassification, error) {
	if s.classifier == nil || s.fallback == nil {
		return nil, ErrClassifierUnavailable
	}

	results := make([]models.AIClassification, len(listings))

	for start := 0; start < len(listings); start += s.config.BatchSize {
		end := start + s.config.BatchSize
		if end > len(listings) {
			end = len(listings)
		}

		s.classifyBatch(ctx, listings[start:end], results[start:end])

		if end < len(listings) {
			s.sleep(s.config.BatchDelay)
		}
	}

	for i := range results {
		if err := s.listings.SaveClassification(ctx, &results[i]); err != nil {
			s.logger.Error().Err(err).Uint("listing_id", results[i].ListingID).Msg("failed to persist classification")
		}
	}

	return results, nil
}

// classifyBatch fires every call in the batch concurrently and waits for all
// of them. Individual failures are routed to the heuristic so the batch
// always fills its slice.
func (s *classificationService) classifyBatch(ctx context.Context, listings []models.VehicleListing, out []models.AIClassification) {
	var wg sync.WaitGroup
	for i := range listings {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out[i] = s.classifyOne(ctx, listings[i])
		}(i)
	}
	wg.Wait()
}

func (s *classificationService) classifyOne(ctx context.Context, listing models.VehicleListing) models.AIClassification {
	input := ai.ClassificationInput{
		Make:      listing.Make,
		Model:     listing.Model,
		Year:      listing.Year,
		PriceGBP:  listing.PriceGBP,
		Mileage:   listing.Mileage,
		Condition: listing.Condition,
	}

	provider := "openai"
	result, err := s.classifier.Classify(ctx, input)
	if err != nil {
		s.logger.Warn().Err(err).Uint("listing_id", listing.ID).Msg("model classification failed, using heuristic")
		provider = "heuristic"
		result, err = s.fallback.Classify(ctx, input)
		if err != nil {
			// The heuristic cannot fail, but guard the invariant anyway:
			// one classification per listing, always.
			s.logger.Error().Err(err).Uint("listing_id", listing.ID).Msg("heuristic classification failed")
			result = ai.Classification{Verdict: "AVOID", Reason: "classification unavailable", FaultType: ai.FaultLabelUnknown}
		}
	}

	result = ai.ApplyGuardrails(result)

	return models.AIClassification{
		ListingID:            listing.ID,
		Verdict:              result.Verdict,
		FaultType:            result.FaultType,
		Reason:               result.Reason,
		RiskScore:            result.RiskScore,
		Confidence:           result.Confidence,
		RepairCostGBP:        result.RepairCostGBP,
		ProfitPotentialGBP:   result.ProfitPotentialGBP,
		CheckpointPassed:     result.CheckpointPassed,
		PreferenceMatchScore: result.PreferenceMatchScore,
		QualityFlags:         datatypes.NewJSONSlice(result.QualityFlags),
		Provider:             provider,
	}
}

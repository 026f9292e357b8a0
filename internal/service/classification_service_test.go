package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lotscout/lotscout-go-api/internal/models"
	"github.com/lotscout/lotscout-go-api/internal/repository"
	"github.com/lotscout/lotscout-go-api/pkg/ai"
)

type stubListingRepo struct {
	mu    sync.Mutex
	saved []models.AIClassification
}

func (r *stubListingRepo) Upsert(_ context.Context, _ *models.VehicleListing) (bool, error) {
	return false, nil
}

func (r *stubListingRepo) List(_ context.Context, _ repository.ListingQuery) ([]models.VehicleListing, int64, error) {
	return nil, 0, nil
}

func (r *stubListingRepo) GetByID(_ context.Context, _ uint) (models.VehicleListing, error) {
	return models.VehicleListing{}, nil
}

func (r *stubListingRepo) ListUnclassified(_ context.Context) ([]models.VehicleListing, error) {
	return nil, nil
}

func (r *stubListingRepo) ListClassified(_ context.Context) ([]models.VehicleListing, error) {
	return nil, nil
}

func (r *stubListingRepo) SaveClassification(_ context.Context, c *models.AIClassification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, *c)
	return nil
}

type stubClassifier struct {
	result  ai.Classification
	err     error
	failFor map[string]bool
}

func (c *stubClassifier) Classify(_ context.Context, input ai.ClassificationInput) (ai.Classification, error) {
	if c.err != nil {
		return ai.Classification{}, c.err
	}
	if c.failFor[input.Make] {
		return ai.Classification{}, errors.New("model timeout")
	}
	return c.result, nil
}

func newClassificationTestService(repo repository.ListingRepository, classifier, fallback ai.Classifier, batchSize int, sleep func(time.Duration)) *classificationService {
	return &classificationService{
		listings:   repo,
		classifier: classifier,
		fallback:   fallback,
		logger:     zerolog.Nop(),
		config:     ClassificationConfig{BatchSize: batchSize, BatchDelay: time.Second},
		sleep:      sleep,
	}
}

func TestClassifyListingsRequiresClassifier(t *testing.T) {
	repo := &stubListingRepo{}
	svc := newClassificationTestService(repo, nil, ai.NewHeuristicClassifier(), 10, func(time.Duration) {})

	_, err := svc.ClassifyListings(context.Background(), []models.VehicleListing{{ID: 1}})
	require.ErrorIs(t, err, ErrClassifierUnavailable)
	require.Empty(t, repo.saved)
}

func TestClassifyListingsFallsBackPerListing(t *testing.T) {
	repo := &stubListingRepo{}
	classifier := &stubClassifier{
		result: ai.Classification{
			Verdict:          "healthy",
			FaultType:        ai.FaultLabelNone,
			RiskScore:        20,
			Confidence:       90,
			CheckpointPassed: true,
		},
		failFor: map[string]bool{"Rover": true},
	}

	svc := newClassificationTestService(repo, classifier, ai.NewHeuristicClassifier(), 10, func(time.Duration) {})

	listings := []models.VehicleListing{
		{ID: 1, Make: "BMW", Model: "320d", Year: 2020, PriceGBP: 15000, Mileage: intPointer(40000)},
		{ID: 2, Make: "Rover", Model: "75", Year: 2004, PriceGBP: 900, Mileage: intPointer(140000)},
	}

	results, err := svc.ClassifyListings(context.Background(), listings)
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.Equal(t, uint(1), results[0].ListingID)
	require.Equal(t, "openai", results[0].Provider)
	require.Equal(t, models.VerdictHealthy, results[0].Verdict)

	require.Equal(t, uint(2), results[1].ListingID)
	require.Equal(t, "heuristic", results[1].Provider)
	require.Equal(t, models.VerdictAvoid, results[1].Verdict)

	require.Len(t, repo.saved, 2)
}

func TestClassifyListingsAppliesGuardrails(t *testing.T) {
	repo := &stubListingRepo{}
	classifier := &stubClassifier{
		result: ai.Classification{
			Verdict:          "HEALTHY",
			FaultType:        ai.FaultLabelNone,
			RiskScore:        10,
			Confidence:       40,
			CheckpointPassed: true,
		},
	}

	svc := newClassificationTestService(repo, classifier, ai.NewHeuristicClassifier(), 10, func(time.Duration) {})

	results, err := svc.ClassifyListings(context.Background(), []models.VehicleListing{{ID: 7, Make: "BMW", Year: 2020, PriceGBP: 9000}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, models.VerdictAvoid, results[0].Verdict)
	require.Contains(t, []string(results[0].QualityFlags), "low confidence")
}

func TestClassifyListingsBatchesWithDelay(t *testing.T) {
	repo := &stubListingRepo{}
	classifier := &stubClassifier{
		result: ai.Classification{Verdict: "HEALTHY", FaultType: ai.FaultLabelNone, Confidence: 80, CheckpointPassed: true},
	}

	sleeps := 0
	svc := newClassificationTestService(repo, classifier, ai.NewHeuristicClassifier(), 2, func(time.Duration) { sleeps++ })

	listings := make([]models.VehicleListing, 5)
	for i := range listings {
		listings[i] = models.VehicleListing{ID: uint(i + 1), Make: "BMW", Year: 2020, PriceGBP: 9000}
	}

	results, err := svc.ClassifyListings(context.Background(), listings)
	require.NoError(t, err)
	require.Len(t, results, 5)
	require.Equal(t, 2, sleeps)
	require.Len(t, repo.saved, 5)
}

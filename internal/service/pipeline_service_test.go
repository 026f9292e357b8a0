package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lotscout/lotscout-go-api/internal/models"
	"github.com/lotscout/lotscout-go-api/internal/repository"
	"github.com/lotscout/lotscout-go-api/internal/scraper"
	"github.com/lotscout/lotscout-go-api/pkg/ai"
)

// routingClassifier returns a canned classification per vehicle make.
type routingClassifier struct {
	byMake map[string]ai.Classification
}

func (c *routingClassifier) Classify(_ context.Context, input ai.ClassificationInput) (ai.Classification, error) {
	return c.byMake[input.Make], nil
}

func TestPipelineRunEndToEnd(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:pipeline_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.VehicleListing{},
		&models.AIClassification{},
		&models.Dealer{},
		&models.DealerPreferences{},
		&models.VehicleMatch{},
		&models.HotDealAlert{},
	))

	dealer := models.Dealer{
		Name:   "Kingsway Motors",
		Email:  "buyer@kingsway.example",
		Active: true,
		Preferences: &models.DealerPreferences{
			MaxBidGBP: 20000,
		},
	}
	require.NoError(t, db.Create(&dealer).Error)

	source := scraper.NewStaticSource("copart", []scraper.RawListing{
		{
			LotNumber: "A1",
			Make:      "BMW",
			Model:     "320d",
			Year:      "2022",
			Price:     "£12,000",
			Mileage:   "30,000 miles",
			URL:       "https://copart.example.com/lot/A1",
		},
		{
			LotNumber: "A2",
			Make:      "Rover",
			Model:     "75",
			Year:      "2003",
			Price:     "£700",
			Mileage:   "150,000 miles",
		},
	})

	classifier := &routingClassifier{byMake: map[string]ai.Classification{
		"BMW": {
			Verdict:              "HEALTHY",
			FaultType:            ai.FaultLabelNone,
			RiskScore:            10,
			Confidence:           92,
			ProfitPotentialGBP:   4000,
			CheckpointPassed:     true,
			PreferenceMatchScore: 12,
		},
		"Rover": {
			Verdict:          "AVOID",
			FaultType:        ai.FaultLabelMechanical,
			RiskScore:        85,
			Confidence:       80,
			CheckpointPassed: false,
		},
	}}

	listingRepo := repository.NewListingRepository(db)
	dealerRepo := repository.NewDealerRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	mail := &stubMailer{}
	classification := newClassificationTestService(listingRepo, classifier, ai.NewHeuristicClassifier(), 10, func(time.Duration) {})

	pipeline := NewPipelineService(
		[]scraper.Source{source},
		listingRepo,
		dealerRepo,
		matchRepo,
		classification,
		NewMatcherService(zerolog.Nop()),
		NewHotDealService(zerolog.Nop()),
		NewAlertService(alertRepo, mail, nil, zerolog.Nop()),
		NewDigestService(mail, 10, zerolog.Nop()),
		zerolog.Nop(),
	)

	summary, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, summary.RunID)
	require.Equal(t, 2, summary.ListingsFetched)
	require.Equal(t, 2, summary.ListingsNew)
	require.Equal(t, 2, summary.Classified)
	require.Equal(t, 1, summary.DealersMatched)
	require.Equal(t, 1, summary.MatchesSaved)
	require.Equal(t, 1, summary.AlertsSent)
	require.Equal(t, 1, summary.DigestsSent)

	var matchRows []models.VehicleMatch
	require.NoError(t, db.Find(&matchRows).Error)
	require.Len(t, matchRows, 1)
	require.Equal(t, dealer.ID, matchRows[0].DealerID)
	require.Equal(t, summary.RunID, matchRows[0].RunID)

	var alertRows []models.HotDealAlert
	require.NoError(t, db.Find(&alertRows).Error)
	require.Len(t, alertRows, 1)
	require.Equal(t, summary.RunID, alertRows[0].RunID)

	// One instant alert plus one digest.
	require.Len(t, mail.sent, 2)

	// A second run scrapes the same lots but creates nothing new and, with no
	// unclassified listings left, classifies nothing.
	second, err := pipeline.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, second.ListingsFetched)
	require.Equal(t, 0, second.ListingsNew)
	require.Equal(t, 0, second.Classified)
}

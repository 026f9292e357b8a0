package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lotscout/lotscout-go-api/internal/models"
	"github.com/lotscout/lotscout-go-api/internal/repository"
)

func TestMatchFeedOrderingAndCaching(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db, err := gorm.Open(sqlite.Open("file:matchfeed_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.VehicleListing{},
		&models.AIClassification{},
		&models.VehicleMatch{},
		&models.HotDealAlert{},
	))

	listing := models.VehicleListing{
		SourceSite: "copart",
		LotNumber:  "L1",
		Make:       "BMW",
		Model:      "320d",
		Year:       2021,
		PriceGBP:   13000,
		ScrapedAt:  time.Now(),
	}
	require.NoError(t, db.Create(&listing).Error)

	classification := models.AIClassification{
		ListingID:  listing.ID,
		Verdict:    models.VerdictHealthy,
		FaultType:  models.FaultNone,
		RiskScore:  15,
		Confidence: 90,
	}
	require.NoError(t, db.Create(&classification).Error)

	matches := []models.VehicleMatch{
		{DealerID: 1, ListingID: listing.ID, ClassificationID: classification.ID, MatchScore: 70, RunID: "run-1",
			Reasons: datatypes.NewJSONSlice([]string{"Low risk"})},
		{DealerID: 1, ListingID: listing.ID, ClassificationID: classification.ID, MatchScore: 95, RunID: "run-1",
			Reasons: datatypes.NewJSONSlice([]string{"Very low risk"})},
		{DealerID: 2, ListingID: listing.ID, ClassificationID: classification.ID, MatchScore: 80, RunID: "run-1"},
	}
	require.NoError(t, db.Create(&matches).Error)

	svc := NewMatchFeedService(
		repository.NewMatchRepository(db),
		repository.NewAlertRepository(db),
		redisClient,
		time.Minute,
		zerolog.Nop(),
	)

	ctx := context.Background()
	feed, err := svc.GetFeed(ctx, 1, 25)
	require.NoError(t, err)
	require.Equal(t, uint(1), feed.DealerID)
	require.Len(t, feed.Matches, 2)
	require.Equal(t, 95, feed.Matches[0].MatchScore)
	require.Equal(t, 70, feed.Matches[1].MatchScore)
	require.Equal(t, "BMW", feed.Matches[0].Listing.Make)

	require.True(t, mini.Exists("matchfeed:dealer:1:25"))

	// Cached responses survive the backing rows changing.
	require.NoError(t, db.Where("dealer_id = ?", 1).Delete(&models.VehicleMatch{}).Error)
	cached, err := svc.GetFeed(ctx, 1, 25)
	require.NoError(t, err)
	require.Len(t, cached.Matches, 2)
}

func TestMatchFeedAlerts(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:matchfeed_alerts_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.VehicleMatch{}, &models.HotDealAlert{}))

	alerts := []models.HotDealAlert{
		{DealerID: 1, ListingID: 5, Score: 88, Urgency: models.UrgencyCritical, RunID: "run-1", SentAt: time.Now()},
		{DealerID: 2, ListingID: 6, Score: 72, Urgency: models.UrgencyHigh, RunID: "run-1", SentAt: time.Now()},
	}
	require.NoError(t, db.Create(&alerts).Error)

	svc := NewMatchFeedService(
		repository.NewMatchRepository(db),
		repository.NewAlertRepository(db),
		nil,
		time.Minute,
		zerolog.Nop(),
	)

	result, err := svc.GetAlerts(context.Background(), 1, 25)
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, 88, result[0].Score)
	require.Equal(t, models.UrgencyCritical, result[0].Urgency)
}

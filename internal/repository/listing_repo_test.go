package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lotscout/lotscout-go-api/internal/models"
)

func newListingTestRepo(t *testing.T) (ListingRepository, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:listing_repo_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.VehicleListing{}, &models.AIClassification{}))
	require.NoError(t, db.Where("1 = 1").Delete(&models.AIClassification{}).Error)
	require.NoError(t, db.Where("1 = 1").Delete(&models.VehicleListing{}).Error)

	return NewListingRepository(db), db
}

func TestListingUpsertDeduplicatesBySourceAndLot(t *testing.T) {
	repo, _ := newListingTestRepo(t)
	ctx := context.Background()

	first := models.VehicleListing{
		SourceSite: "copart",
		LotNumber:  "L100",
		Make:       "BMW",
		Model:      "320d",
		Year:       2020,
		PriceGBP:   14000,
		ScrapedAt:  time.Now(),
	}
	created, err := repo.Upsert(ctx, &first)
	require.NoError(t, err)
	require.True(t, created)

	duplicate := first
	duplicate.ID = 0
	duplicate.PriceGBP = 13500
	created, err = repo.Upsert(ctx, &duplicate)
	require.NoError(t, err)
	require.False(t, created)

	otherSite := first
	otherSite.ID = 0
	otherSite.SourceSite = "manheim"
	created, err = repo.Upsert(ctx, &otherSite)
	require.NoError(t, err)
	require.True(t, created)

	listings, total, err := repo.List(ctx, ListingQuery{})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, listings, 2)
}

func TestListingClassificationSplit(t *testing.T) {
	repo, _ := newListingTestRepo(t)
	ctx := context.Background()

	classifiedListing := models.VehicleListing{SourceSite: "copart", LotNumber: "C1", Make: "Audi", Year: 2019, PriceGBP: 9000, ScrapedAt: time.Now()}
	pendingListing := models.VehicleListing{SourceSite: "copart", LotNumber: "C2", Make: "Ford", Year: 2018, PriceGBP: 7000, ScrapedAt: time.Now()}

	_, err := repo.Upsert(ctx, &classifiedListing)
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, &pendingListing)
	require.NoError(t, err)

	require.NoError(t, repo.SaveClassification(ctx, &models.AIClassification{
		ListingID:  classifiedListing.ID,
		Verdict:    models.VerdictHealthy,
		FaultType:  models.FaultNone,
		RiskScore:  20,
		Confidence: 85,
		Provider:   "openai",
	}))

	unclassified, err := repo.ListUnclassified(ctx)
	require.NoError(t, err)
	require.Len(t, unclassified, 1)
	require.Equal(t, "C2", unclassified[0].LotNumber)

	classified, err := repo.ListClassified(ctx)
	require.NoError(t, err)
	require.Len(t, classified, 1)
	require.Equal(t, "C1", classified[0].LotNumber)
	require.Len(t, classified[0].Classifications, 1)

	byVerdict, _, err := repo.List(ctx, ListingQuery{Verdict: models.VerdictHealthy})
	require.NoError(t, err)
	require.Len(t, byVerdict, 1)
	require.Equal(t, "C1", byVerdict[0].LotNumber)

	byVerdict, _, err = repo.List(ctx, ListingQuery{Verdict: models.VerdictAvoid})
	require.NoError(t, err)
	require.Empty(t, byVerdict)
}

func TestSaveClassificationRequiresListing(t *testing.T) {
	repo, _ := newListingTestRepo(t)

	err := repo.SaveClassification(context.Background(), &models.AIClassification{Verdict: models.VerdictAvoid})
	require.Error(t, err)
}

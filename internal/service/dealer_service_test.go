package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lotscout/lotscout-go-api/internal/dto"
	"github.com/lotscout/lotscout-go-api/internal/models"
	"github.com/lotscout/lotscout-go-api/internal/repository"
)

func newDealerTestService(t *testing.T) (DealerService, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:dealer_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Dealer{}, &models.DealerPreferences{}))
	require.NoError(t, db.Where("1 = 1").Delete(&models.DealerPreferences{}).Error)
	require.NoError(t, db.Where("1 = 1").Delete(&models.Dealer{}).Error)

	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewDealerService(repository.NewDealerRepository(db), validate, zerolog.Nop()), db
}

func TestGetPreferencesReturnsDefaultsWhenUnset(t *testing.T) {
	svc, db := newDealerTestService(t)

	dealer := models.Dealer{Name: "Kingsway Motors", Email: "buyer@kingsway.example", Active: true}
	require.NoError(t, db.Create(&dealer).Error)

	prefs, err := svc.GetPreferences(context.Background(), dealer.ID)
	require.NoError(t, err)
	require.Equal(t, dealer.ID, prefs.DealerID)
	require.Empty(t, prefs.Makes)
	require.Zero(t, prefs.MaxBidGBP)
}

func TestUpdatePreferencesRoundTrip(t *testing.T) {
	svc, db := newDealerTestService(t)

	dealer := models.Dealer{Name: "Kingsway Motors", Email: "buyer2@kingsway.example", Active: true}
	require.NoError(t, db.Create(&dealer).Error)

	payload := dto.PreferencesRequest{
		Makes:      []string{"BMW", "Audi"},
		MinYear:    2016,
		MaxMileage: 80000,
		MaxBidGBP:  25000,
		Locations:  []string{"london"},
	}

	updated, err := svc.UpdatePreferences(context.Background(), dealer.ID, payload)
	require.NoError(t, err)
	require.Equal(t, []string{"BMW", "Audi"}, updated.Makes)
	require.Equal(t, 2016, updated.MinYear)

	// Second update replaces rather than duplicates the row.
	payload.MaxBidGBP = 30000
	updated, err = svc.UpdatePreferences(context.Background(), dealer.ID, payload)
	require.NoError(t, err)
	require.Equal(t, float64(30000), updated.MaxBidGBP)

	var count int64
	require.NoError(t, db.Model(&models.DealerPreferences{}).Where("dealer_id = ?", dealer.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	fetched, err := svc.GetPreferences(context.Background(), dealer.ID)
	require.NoError(t, err)
	require.Equal(t, float64(30000), fetched.MaxBidGBP)
}

func TestUpdatePreferencesUnknownDealer(t *testing.T) {
	svc, _ := newDealerTestService(t)

	_, err := svc.UpdatePreferences(context.Background(), 9999, dto.PreferencesRequest{MaxBidGBP: 10000})
	require.ErrorIs(t, err, ErrDealerNotFound)
}

func TestUpdatePreferencesRejectsInvalidPayload(t *testing.T) {
	svc, db := newDealerTestService(t)

	dealer := models.Dealer{Name: "Kingsway Motors", Email: "buyer3@kingsway.example", Active: true}
	require.NoError(t, db.Create(&dealer).Error)

	_, err := svc.UpdatePreferences(context.Background(), dealer.ID, dto.PreferencesRequest{MinYear: 1200})
	require.Error(t, err)
}

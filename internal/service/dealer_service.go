package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lotscout/lotscout-go-api/internal/dto"
	"github.com/lotscout/lotscout-go-api/internal/models"
	"github.com/lotscout/lotscout-go-api/internal/repository"
)

// ErrDealerNotFound indicates the dealer cannot be located.
var ErrDealerNotFound = errors.New("dealer not found")

// DealerService exposes dealer preference management.
type DealerService interface {
	GetPreferences(ctx context.Context, dealerID uint) (dto.PreferencesResponse, error)
	UpdatePreferences(ctx context.Context, dealerID uint, payload dto.PreferencesRequest) (dto.PreferencesResponse, error)
}

type dealerService struct {
	dealers   repository.DealerRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewDealerService constructs the dealer service.
func NewDealerService(dealers repository.DealerRepository, validate *validator.Validate, logger zerolog.Logger) DealerService {
	return &dealerService{
		dealers:   dealers,
		validator: validate,
		logger:    logger.With().Str("component", "dealer_service").Logger(),
	}
}

func (s *dealerService) GetPreferences(ctx context.Context, dealerID uint) (dto.PreferencesResponse, error) {
	prefs, err := s.dealers.GetPreferences(ctx, dealerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No preferences saved yet: return the permissive defaults.
			return dto.PreferencesResponse{DealerID: dealerID, Makes: []string{}, Locations: []string{}}, nil
		}
		return dto.PreferencesResponse{}, err
	}
	return dto.NewPreferencesResponse(prefs), nil
}

func (s *dealerService) UpdatePreferences(ctx context.Context, dealerID uint, payload dto.PreferencesRequest) (dto.PreferencesResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PreferencesResponse{}, err
	}

	if _, err := s.dealers.GetByID(ctx, dealerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PreferencesResponse{}, ErrDealerNotFound
		}
		return dto.PreferencesResponse{}, err
	}

	prefs := models.DealerPreferences{
		DealerID:   dealerID,
		Makes:      datatypes.NewJSONSlice(payload.Makes),
		MinYear:    payload.MinYear,
		MaxMileage: payload.MaxMileage,
		MaxBidGBP:  payload.MaxBidGBP,
		Locations:  datatypes.NewJSONSlice(payload.Locations),
	}

	if err := s.dealers.SavePreferences(ctx, &prefs); err != nil {
		return dto.PreferencesResponse{}, err
	}

	s.logger.Info().Uint("dealer_id", dealerID).Msg("preferences updated")
	return dto.NewPreferencesResponse(prefs), nil
}

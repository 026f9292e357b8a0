package dto

import (
	"github.com/lotscout/lotscout-go-api/internal/models"
)

// PreferencesRequest is the payload for updating dealer matching preferences.
type PreferencesRequest struct {
	Makes      []string `json:"makes" validate:"dive,min=1"`
	MinYear    int      `json:"min_year" validate:"omitempty,gte=1950,lte=2100"`
	MaxMileage int      `json:"max_mileage" validate:"gte=0"`
	MaxBidGBP  float64  `json:"max_bid_gbp" validate:"gte=0"`
	Locations  []string `json:"locations" validate:"dive,min=1"`
}

// PreferencesResponse is the API shape for dealer preferences.
type PreferencesResponse struct {
	DealerID   uint     `json:"dealer_id"`
	Makes      []string `json:"makes"`
	MinYear    int      `json:"min_year"`
	MaxMileage int      `json:"max_mileage"`
	MaxBidGBP  float64  `json:"max_bid_gbp"`
	Locations  []string `json:"locations"`
}

// NewPreferencesResponse maps the preferences model to its API shape.
func NewPreferencesResponse(prefs models.DealerPreferences) PreferencesResponse {
	return PreferencesResponse{
		DealerID:   prefs.DealerID,
		Makes:      prefs.Makes,
		MinYear:    prefs.MinYear,
		MaxMileage: prefs.MaxMileage,
		MaxBidGBP:  prefs.MaxBidGBP,
		Locations:  prefs.Locations,
	}
}

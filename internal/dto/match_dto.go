package dto

import (
	"time"

	"github.com/lotscout/lotscout-go-api/internal/models"
)

// MatchResponse is one scored listing in a dealer's feed.
type MatchResponse struct {
	ListingID  uint            `json:"listing_id"`
	MatchScore int             `json:"match_score"`
	Reasons    []string        `json:"reasons"`
	MatchedAt  time.Time       `json:"matched_at"`
	Listing    ListingResponse `json:"listing"`
}

// MatchFeedResponse is the dealer's ranked match feed.
type MatchFeedResponse struct {
	DealerID uint            `json:"dealer_id"`
	Matches  []MatchResponse `json:"matches"`
}

// HotDealAlertResponse is one logged hot-deal alert.
type HotDealAlertResponse struct {
	ListingID uint      `json:"listing_id"`
	Score     int       `json:"score"`
	Urgency   string    `json:"urgency"`
	Reasons   []string  `json:"reasons"`
	SentAt    time.Time `json:"sent_at"`
}

// NewMatchResponse maps a persisted match row to its API shape.
func NewMatchResponse(match models.VehicleMatch) MatchResponse {
	listing := match.Listing
	listing.Classifications = []models.AIClassification{match.Classification}

	return MatchResponse{
		ListingID:  match.ListingID,
		MatchScore: match.MatchScore,
		Reasons:    match.Reasons,
		MatchedAt:  match.CreatedAt,
		Listing:    NewListingResponse(listing),
	}
}

// NewHotDealAlertResponse maps an alert log row to its API shape.
func NewHotDealAlertResponse(alert models.HotDealAlert) HotDealAlertResponse {
	return HotDealAlertResponse{
		ListingID: alert.ListingID,
		Score:     alert.Score,
		Urgency:   alert.Urgency,
		Reasons:   alert.Reasons,
		SentAt:    alert.SentAt,
	}
}

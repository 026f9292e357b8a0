package dto

import (
	"time"

	"github.com/lotscout/lotscout-go-api/internal/models"
)

// ClassificationResponse is the API shape for one classification pass.
type ClassificationResponse struct {
	Verdict            string    `json:"verdict"`
	FaultType          string    `json:"fault_type"`
	Reason             string    `json:"reason"`
	RiskScore          int       `json:"risk_score"`
	Confidence         int       `json:"confidence"`
	RepairCostGBP      float64   `json:"repair_cost_gbp"`
	ProfitPotentialGBP float64   `json:"profit_potential_gbp"`
	QualityFlags       []string  `json:"quality_flags,omitempty"`
	Provider           string    `json:"provider"`
	CreatedAt          time.Time `json:"created_at"`
}

// ListingResponse is the API shape for one vehicle listing.
type ListingResponse struct {
	ID             uint                    `json:"id"`
	SourceSite     string                  `json:"source_site"`
	LotNumber      string                  `json:"lot_number"`
	URL            string                  `json:"url,omitempty"`
	Make           string                  `json:"make"`
	Model          string                  `json:"model"`
	Year           int                     `json:"year"`
	PriceGBP       float64                 `json:"price_gbp"`
	Mileage        *int                    `json:"mileage,omitempty"`
	Condition      string                  `json:"condition"`
	ImageURLs      []string                `json:"image_urls,omitempty"`
	AuctionDate    *time.Time              `json:"auction_date,omitempty"`
	ScrapedAt      time.Time               `json:"scraped_at"`
	Classification *ClassificationResponse `json:"classification,omitempty"`
}

// ListingListResponse wraps a paginated listing result.
type ListingListResponse struct {
	Listings []ListingResponse `json:"listings"`
	Total    int64             `json:"total"`
}

// NewClassificationResponse maps a classification model to its API shape.
func NewClassificationResponse(c models.AIClassification) ClassificationResponse {
	return ClassificationResponse{
		Verdict:            c.Verdict,
		FaultType:          c.FaultType,
		Reason:             c.Reason,
		RiskScore:          c.RiskScore,
		Confidence:         c.Confidence,
		RepairCostGBP:      c.RepairCostGBP,
		ProfitPotentialGBP: c.ProfitPotentialGBP,
		QualityFlags:       c.QualityFlags,
		Provider:           c.Provider,
		CreatedAt:          c.CreatedAt,
	}
}

// NewListingResponse maps a listing model, with its latest classification
// when one exists.
func NewListingResponse(listing models.VehicleListing) ListingResponse {
	response := ListingResponse{
		ID:          listing.ID,
		SourceSite:  listing.SourceSite,
		LotNumber:   listing.LotNumber,
		URL:         listing.URL,
		Make:        listing.Make,
		Model:       listing.Model,
		Year:        listing.Year,
		PriceGBP:    listing.PriceGBP,
		Mileage:     listing.Mileage,
		Condition:   listing.Condition,
		ImageURLs:   listing.ImageURLs,
		AuctionDate: listing.AuctionDate,
		ScrapedAt:   listing.ScrapedAt,
	}

	if latest := listing.LatestClassification(); latest != nil {
		mapped := NewClassificationResponse(*latest)
		response.Classification = &mapped
	}

	return response
}

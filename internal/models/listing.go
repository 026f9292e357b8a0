package models

import (
	"time"

	"gorm.io/datatypes"
)

// Classification verdicts. Anything that is not HEALTHY is treated as AVOID.
const (
	VerdictHealthy = "HEALTHY"
	VerdictAvoid   = "AVOID"
)

// Fault type labels attached to a classification.
const (
	FaultNone       = "None"
	FaultBattery    = "Battery"
	FaultTyre       = "Tyre"
	FaultKeys       = "Keys"
	FaultMechanical = "Mechanical"
	FaultElectrical = "Electrical"
	FaultUnknown    = "Unknown"
)

// VehicleListing is an auction-sourced vehicle record. Listings are immutable
// once scraped; a reclassification produces a new AIClassification row rather
// than mutating an existing one.
type VehicleListing struct {
	ID          uint                           `gorm:"primaryKey" json:"id"`
	SourceSite  string                         `gorm:"size:64;not null;uniqueIndex:idx_listings_source_lot" json:"source_site"`
	LotNumber   string                         `gorm:"size:64;not null;uniqueIndex:idx_listings_source_lot" json:"lot_number"`
	URL         string                         `gorm:"size:512" json:"url"`
	Make        string                         `gorm:"size:64;index" json:"make"`
	Model       string                         `gorm:"size:128" json:"model"`
	Year        int                            `gorm:"not null" json:"year"`
	PriceGBP    float64                        `gorm:"not null" json:"price_gbp"`
	Mileage     *int                           `json:"mileage,omitempty"`
	Condition   string                         `gorm:"type:text" json:"condition"`
	ImageURLs   datatypes.JSONSlice[string]    `json:"image_urls"`
	AuctionDate *time.Time                     `json:"auction_date,omitempty"`
	ScrapedAt   time.Time                      `json:"scraped_at"`
	CreatedAt   time.Time                      `json:"created_at"`
	UpdatedAt   time.Time                      `json:"updated_at"`

	Classifications []AIClassification `gorm:"foreignKey:ListingID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"classifications,omitempty"`
}

// LatestClassification returns the most recent classification pass, if any.
func (l VehicleListing) LatestClassification() *AIClassification {
	if len(l.Classifications) == 0 {
		return nil
	}

	latest := l.Classifications[0]
	for _, c := range l.Classifications[1:] {
		if c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	return &latest
}

// AIClassification captures the outcome of one classification pass over a
// listing, whether it came from the model or from the heuristic fallback.
type AIClassification struct {
	ID                   uint                        `gorm:"primaryKey" json:"id"`
	ListingID            uint                        `gorm:"not null;index" json:"listing_id"`
	Verdict              string                      `gorm:"size:16;not null" json:"verdict"`
	FaultType            string                      `gorm:"size:32" json:"fault_type"`
	Reason               string                      `gorm:"type:text" json:"reason"`
	RiskScore            int                         `gorm:"not null" json:"risk_score"`
	Confidence           int                         `gorm:"not null" json:"confidence"`
	RepairCostGBP        float64                     `json:"repair_cost_gbp"`
	ProfitPotentialGBP   float64                     `json:"profit_potential_gbp"`
	CheckpointPassed     bool                        `json:"checkpoint_passed"`
	PreferenceMatchScore int                         `json:"preference_match_score"`
	QualityFlags         datatypes.JSONSlice[string] `json:"quality_flags"`
	Provider             string                      `gorm:"size:32" json:"provider"`
	CreatedAt            time.Time                   `json:"created_at"`
}

// IsHealthy reports whether the classification cleared every guardrail.
func (c AIClassification) IsHealthy() bool {
	return c.Verdict == VerdictHealthy
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// VehicleMatch records one listing matched against one dealer's preferences.
// Matches are recomputed every scoring run; rows are kept for analytics, not
// read back into the pipeline.
type VehicleMatch struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	DealerID         uint                        `gorm:"not null;index" json:"dealer_id"`
	ListingID        uint                        `gorm:"not null;index" json:"listing_id"`
	ClassificationID uint                        `gorm:"not null" json:"classification_id"`
	MatchScore       int                         `gorm:"not null" json:"match_score"`
	Reasons          datatypes.JSONSlice[string] `json:"reasons"`
	RunID            string                      `gorm:"size:36;index" json:"run_id"`
	CreatedAt        time.Time                   `json:"created_at"`

	Listing        VehicleListing   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"listing"`
	Classification AIClassification `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"classification"`
}

// Hot-deal urgency buckets.
const (
	UrgencyCritical = "CRITICAL"
	UrgencyHigh     = "HIGH"
	UrgencyMedium   = "MEDIUM"
)

// HotDealAlert logs an instant alert dispatched for a flagged deal.
type HotDealAlert struct {
	ID        uint                        `gorm:"primaryKey" json:"id"`
	DealerID  uint                        `gorm:"not null;index" json:"dealer_id"`
	ListingID uint                        `gorm:"not null" json:"listing_id"`
	Score     int                         `gorm:"not null" json:"score"`
	Urgency   string                      `gorm:"size:16" json:"urgency"`
	Reasons   datatypes.JSONSlice[string] `json:"reasons"`
	RunID     string                      `gorm:"size:36;index" json:"run_id"`
	SentAt    time.Time                   `json:"sent_at"`
	CreatedAt time.Time                   `json:"created_at"`
}

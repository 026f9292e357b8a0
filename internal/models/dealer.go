package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Dealer is an account on the platform. Email is the digest destination.
type Dealer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Region    string    `gorm:"size:64" json:"region"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Preferences *DealerPreferences `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"preferences,omitempty"`
}

// DealerPreferences is the per-dealer constraint set used by the matcher.
// An empty makes list means any make is acceptable.
type DealerPreferences struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	DealerID    uint                        `gorm:"not null;uniqueIndex" json:"dealer_id"`
	Makes       datatypes.JSONSlice[string] `json:"makes"`
	MinYear     int                         `json:"min_year"`
	MaxMileage  int                         `json:"max_mileage"`
	MaxBidGBP   float64                     `json:"max_bid_gbp"`
	Locations   datatypes.JSONSlice[string] `json:"locations"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// AllowsMake reports whether the given make passes the allow-list. An empty
// list allows everything.
func (p DealerPreferences) AllowsMake(make string) bool {
	if len(p.Makes) == 0 {
		return true
	}
	for _, m := range p.Makes {
		if strings.EqualFold(strings.TrimSpace(m), strings.TrimSpace(make)) {
			return true
		}
	}
	return false
}

package models

import "time"

// MarketIntelligence is the aggregated market view for one make/model in one
// region, refreshed by an external data feed. The predictor falls back to
// conservative defaults when no row exists.
type MarketIntelligence struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Make              string    `gorm:"size:64;not null;uniqueIndex:idx_market_make_model_region" json:"make"`
	Model             string    `gorm:"size:128;not null;uniqueIndex:idx_market_make_model_region" json:"model"`
	Region            string    `gorm:"size:64;not null;uniqueIndex:idx_market_make_model_region" json:"region"`
	AvgDaysToSell     float64   `json:"avg_days_to_sell"`
	MedianDaysToSell  float64   `json:"median_days_to_sell"`
	ActiveListings    int       `json:"active_listings"`
	SalesLast30Days   int       `json:"sales_last_30_days"`
	AvgRetailPriceGBP float64   `json:"avg_retail_price_gbp"`
	SearchVolume      int       `json:"search_volume"`
	DemandScore       int       `json:"demand_score"`
	SeasonalityFactor float64   `json:"seasonality_factor"`
	ConfidenceScore   int       `json:"confidence_score"`
	UpdatedAt         time.Time `json:"updated_at"`
	CreatedAt         time.Time `json:"created_at"`
}

// DefaultMarketIntelligence returns the conservative stand-in used when no
// market data is available for a vehicle.
func DefaultMarketIntelligence(make, model, region string) MarketIntelligence {
	return MarketIntelligence{
		Make:              make,
		Model:             model,
		Region:            region,
		AvgDaysToSell:     35,
		MedianDaysToSell:  35,
		DemandScore:       50,
		SeasonalityFactor: 1.0,
		ConfidenceScore:   40,
	}
}

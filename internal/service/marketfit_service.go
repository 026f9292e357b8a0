package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/lotscout/lotscout-go-api/internal/models"
	"github.com/lotscout/lotscout-go-api/internal/repository"
	"github.com/lotscout/lotscout-go-api/pkg/ai"
)

// Predictor recommendation ladder.
const (
	RecommendStrongBuy = "strong_buy"
	RecommendBuy       = "buy"
	RecommendConsider  = "consider"
	RecommendPass      = "pass"
)

// PredictionInput describes the vehicle and dealer location to evaluate.
type PredictionInput struct {
	Make      string
	Model     string
	Year      int
	PriceGBP  float64
	Mileage   *int
	Condition string
	Region    string
}

// MarketFitPrediction is the full scoring output for one vehicle.
type MarketFitPrediction struct {
	FitScore              int      `json:"fit_score"`
	DemandScore           int      `json:"demand_score"`
	CompetitionScore      int      `json:"competition_score"`
	PricePositionScore    int      `json:"price_position_score"`
	SeasonalityScore      int      `json:"seasonality_score"`
	ConditionScore        int      `json:"condition_score"`
	PredictedDaysMin      int      `json:"predicted_days_to_sell_min"`
	PredictedDaysMax      int      `json:"predicted_days_to_sell_max"`
	IsFastMover           bool     `json:"is_fast_mover"`
	IsSlowMover           bool     `json:"is_slow_mover"`
	Confidence            string   `json:"confidence"`
	RetailEstimateGBP     float64  `json:"retail_estimate_gbp"`
	ReconCostGBP          float64  `json:"recon_cost_gbp"`
	HoldingCostPerDayGBP  float64  `json:"holding_cost_per_day_gbp"`
	TrueProfitGBP         float64  `json:"true_profit_gbp"`
	MonthlyROIPercent     float64  `json:"monthly_roi_percent"`
	Recommendation        string   `json:"recommendation"`
	RiskFlags             []string `json:"risk_flags"`
	OpportunityFlags      []string `json:"opportunity_flags"`
}

// MarketFitService estimates days-to-sell and profit projections for a
// vehicle in a dealer's local market.
type MarketFitService interface {
	Predict(ctx context.Context, input PredictionInput) (MarketFitPrediction, error)
}

type marketFitService struct {
	market   repository.MarketRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
}

// NewMarketFitService constructs the predictor.
func NewMarketFitService(market repository.MarketRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) MarketFitService {
	return &marketFitService{
		market:   market,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.With().Str("component", "marketfit_service").Logger(),
	}
}

// Predict never fails on missing market data: lookup misses and lookup
// errors both fall back to conservative defaults.
func (s *marketFitService) Predict(ctx context.Context, input PredictionInput) (MarketFitPrediction, error) {
	intel := s.lookupIntelligence(ctx, input.Make, input.Model, input.Region)

	demand := demandScore(intel)
	competition := competitionScore(intel.ActiveListings)
	pricePosition := pricePositionScore(input.PriceGBP, retailEstimate(input.PriceGBP, intel))
	seasonality := seasonalityScore(intel.SeasonalityFactor)
	condition := conditionScore(input.Mileage)

	fit := int(math.Round(0.35*float64(demand) +
		0.25*float64(competition) +
		0.20*float64(pricePosition) +
		0.10*float64(seasonality) +
		0.10*float64(condition)))
	fit = ai.ClampScore(fit)

	baseline := intel.AvgDaysToSell
	if baseline <= 0 {
		baseline = 35
	}
	predicted := baseline * daysMultiplier(fit)

	daysMin := int(math.Round(predicted * 0.75))
	if daysMin < 7 {
		daysMin = 7
	}
	daysMax := int(math.Round(predicted * 1.25))
	if daysMax < daysMin {
		daysMax = daysMin
	}

	retail := retailEstimate(input.PriceGBP, intel)
	recon := 800.0
	if input.Mileage != nil && *input.Mileage > 75_000 {
		recon += 1200
	}
	holdingPerDay := input.PriceGBP * 0.08 / 365
	avgDays := float64(daysMin+daysMax) / 2
	profit := retail - input.PriceGBP - recon - holdingPerDay*avgDays

	monthlyROI := 0.0
	if avgDays > 0 && input.PriceGBP+recon > 0 {
		monthlyROI = (profit / avgDays * 30) / (input.PriceGBP + recon) * 100
	}

	riskFlags := collectRiskFlags(intel, input.Mileage, profit)
	opportunityFlags := collectOpportunityFlags(intel, daysMax)

	recommendation := RecommendPass
	switch {
	case fit >= 85 && profit >= 3000 && daysMax <= 21:
		recommendation = RecommendStrongBuy
	case fit >= 70 && profit >= 2000:
		recommendation = RecommendBuy
	case fit >= 55 && len(riskFlags) <= 2:
		recommendation = RecommendConsider
	}

	return MarketFitPrediction{
		FitScore:             fit,
		DemandScore:          demand,
		CompetitionScore:     competition,
		PricePositionScore:   pricePosition,
		SeasonalityScore:     seasonality,
		ConditionScore:       condition,
		PredictedDaysMin:     daysMin,
		PredictedDaysMax:     daysMax,
		IsFastMover:          daysMax <= 21,
		IsSlowMover:          daysMin >= 60,
		Confidence:           confidenceBucket(intel.ConfidenceScore),
		RetailEstimateGBP:    math.Round(retail),
		ReconCostGBP:         recon,
		HoldingCostPerDayGBP: math.Round(holdingPerDay*100) / 100,
		TrueProfitGBP:        math.Round(profit),
		MonthlyROIPercent:    math.Round(monthlyROI*10) / 10,
		Recommendation:       recommendation,
		RiskFlags:            riskFlags,
		OpportunityFlags:     opportunityFlags,
	}, nil
}

// lookupIntelligence consults the redis cache, then the repository, then
// falls back to conservative defaults.
func (s *marketFitService) lookupIntelligence(ctx context.Context, make, model, region string) models.MarketIntelligence {
	cacheKey := fmt.Sprintf("market:%s:%s:%s", strings.ToLower(make), strings.ToLower(model), strings.ToLower(region))

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var intel models.MarketIntelligence
			if unmarshalErr := json.Unmarshal([]byte(cached), &intel); unmarshalErr == nil {
				return intel
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read market cache")
		}
	}

	intel, err := s.market.Lookup(ctx, make, model, region)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Err(err).Str("make", make).Str("model", model).Msg("market lookup failed, using defaults")
		}
		return models.DefaultMarketIntelligence(make, model, region)
	}

	if s.cache != nil {
		if payload, err := json.Marshal(intel); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store market cache")
			}
		}
	}

	return intel
}

// demandScore blends normalised search volume (40%) with normalised sales
// velocity (60%). 2000 monthly searches and 25 sales in 30 days both map to
// a full component.
func demandScore(intel models.MarketIntelligence) int {
	searchNorm := math.Min(100, float64(intel.SearchVolume)/20)
	velocityNorm := math.Min(100, float64(intel.SalesLast30Days)*4)

	if intel.SearchVolume == 0 && intel.SalesLast30Days == 0 {
		// No signal at all: use the feed's own demand score.
		return ai.ClampScore(intel.DemandScore)
	}

	return ai.ClampScore(int(math.Round(0.4*searchNorm + 0.6*velocityNorm)))
}

// competitionScore scales inversely with the number of active local listings.
func competitionScore(activeListings int) int {
	switch {
	case activeListings == 0:
		return 100
	case activeListings <= 3:
		return 90
	case activeListings <= 7:
		return 75
	case activeListings <= 12:
		return 60
	case activeListings <= 20:
		return 40
	default:
		return 25
	}
}

// pricePositionScore rewards acquisition prices further below the market
// retail estimate.
func pricePositionScore(price, retail float64) int {
	if retail <= 0 {
		return 50
	}

	ratio := price / retail
	switch {
	case ratio <= 0.5:
		return 100
	case ratio <= 0.6:
		return 90
	case ratio <= 0.7:
		return 80
	case ratio <= 0.8:
		return 65
	case ratio <= 0.9:
		return 50
	case ratio <= 1.0:
		return 35
	default:
		return 20
	}
}

// seasonalityScore linearly buckets the seasonality multiplier.
func seasonalityScore(factor float64) int {
	if factor == 0 {
		factor = 1.0
	}
	switch {
	case factor >= 1.3:
		return 100
	case factor >= 1.15:
		return 85
	case factor >= 1.0:
		return 70
	case factor >= 0.9:
		return 55
	case factor >= 0.8:
		return 40
	default:
		return 25
	}
}

// conditionScore is mileage-bucketed; no direct health signal exists at this
// layer.
func conditionScore(mileage *int) int {
	if mileage == nil {
		return 50
	}
	switch {
	case *mileage < 30_000:
		return 95
	case *mileage < 60_000:
		return 80
	case *mileage < 90_000:
		return 65
	case *mileage < 120_000:
		return 50
	default:
		return 35
	}
}

func daysMultiplier(fitScore int) float64 {
	switch {
	case fitScore >= 90:
		return 0.5
	case fitScore >= 80:
		return 0.65
	case fitScore >= 70:
		return 0.8
	case fitScore >= 60:
		return 1.0
	case fitScore >= 50:
		return 1.3
	default:
		return 1.8
	}
}

func retailEstimate(price float64, intel models.MarketIntelligence) float64 {
	if intel.AvgRetailPriceGBP > 0 {
		return intel.AvgRetailPriceGBP
	}
	return price * 1.35
}

func confidenceBucket(score int) string {
	switch {
	case score >= 75:
		return "high"
	case score >= 50:
		return "medium"
	default:
		return "low"
	}
}

func collectRiskFlags(intel models.MarketIntelligence, mileage *int, profit float64) []string {
	flags := make([]string, 0, 4)
	if intel.ActiveListings > 20 {
		flags = append(flags, "heavy local competition")
	}
	if intel.SeasonalityFactor > 0 && intel.SeasonalityFactor < 0.9 {
		flags = append(flags, "out of season")
	}
	if mileage != nil && *mileage > 100_000 {
		flags = append(flags, "high mileage")
	}
	if intel.DemandScore > 0 && intel.DemandScore < 40 {
		flags = append(flags, "weak demand")
	}
	if profit < 1000 {
		flags = append(flags, "thin margin")
	}
	return flags
}

func collectOpportunityFlags(intel models.MarketIntelligence, daysMax int) []string {
	flags := make([]string, 0, 4)
	if intel.ActiveListings <= 3 {
		flags = append(flags, "little local competition")
	}
	if intel.SeasonalityFactor >= 1.15 {
		flags = append(flags, "in season")
	}
	if intel.DemandScore >= 70 {
		flags = append(flags, "strong demand")
	}
	if daysMax <= 21 {
		flags = append(flags, "fast mover")
	}
	return flags
}

package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/lotscout/lotscout-go-api/internal/models"
	"github.com/lotscout/lotscout-go-api/pkg/ai"
)

// HotDealCriteria are the thresholds a matched deal must clear to be flagged
// for instant alerting.
type HotDealCriteria struct {
	MinProfitGBP       float64
	MaxRiskScore       int
	MinMatchScore      int
	MinPersonalization int
}

// DefaultHotDealCriteria returns the production thresholds.
func DefaultHotDealCriteria() HotDealCriteria {
	return HotDealCriteria{
		MinProfitGBP:       2000,
		MaxRiskScore:       30,
		MinMatchScore:      80,
		MinPersonalization: 10,
	}
}

// HotDealInput is one already-matched deal, post-matcher and post any
// personalization boost.
type HotDealInput struct {
	DealerID             uint
	Listing              models.VehicleListing
	ProfitGBP            float64
	RiskScore            int
	FinalScore           int
	PersonalizationBoost int
}

// HotDealResult is the urgency verdict for one deal.
type HotDealResult struct {
	Score        int
	Urgency      string
	ShouldNotify bool
	Reasons      []string
}

// ScoredHotDeal pairs a deal with its detection result, for the batch form.
type ScoredHotDeal struct {
	Input  HotDealInput
	Result HotDealResult
}

// HotDealService re-scores matched deals against urgency thresholds. Which
// deals actually trigger an alert is caller policy; this component only
// scores and gates.
type HotDealService interface {
	Detect(input HotDealInput, criteria HotDealCriteria) HotDealResult
	DetectBatch(inputs []HotDealInput, criteria HotDealCriteria) []ScoredHotDeal
}

type hotDealService struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewHotDealService constructs the detector.
func NewHotDealService(logger zerolog.Logger) HotDealService {
	return &hotDealService{
		logger: logger.With().Str("component", "hotdeal_service").Logger(),
		now:    time.Now,
	}
}

// Detect computes the additive urgency score out of 100. shouldNotify holds
// only when the score, profit and risk gates ALL pass; the urgency bucket by
// itself is never enough.
func (s *hotDealService) Detect(input HotDealInput, criteria HotDealCriteria) HotDealResult {
	score := 0
	reasons := make([]string, 0, 5)

	if input.ProfitGBP >= criteria.MinProfitGBP {
		points := int(input.ProfitGBP / 200)
		if points > 30 {
			points = 30
		}
		score += points
		reasons = append(reasons, fmt.Sprintf("£%.0f profit potential", input.ProfitGBP))
	}

	if input.RiskScore <= criteria.MaxRiskScore {
		score += int(float64(criteria.MaxRiskScore-input.RiskScore) / 1.2)
		reasons = append(reasons, fmt.Sprintf("low risk (%d)", input.RiskScore))
	}

	if input.FinalScore >= criteria.MinMatchScore {
		points := input.FinalScore - criteria.MinMatchScore
		if points > 20 {
			points = 20
		}
		score += points
		reasons = append(reasons, fmt.Sprintf("strong preference match (%d)", input.FinalScore))
	}

	if input.PersonalizationBoost >= criteria.MinPersonalization {
		points := input.PersonalizationBoost
		if points > 15 {
			points = 15
		}
		score += points
		reasons = append(reasons, "personalised fit")
	}

	listingAge := s.now().Sub(input.Listing.ScrapedAt)
	switch {
	case listingAge < time.Hour:
		score += 10
		reasons = append(reasons, "just listed")
	case listingAge < 6*time.Hour:
		score += 5
		reasons = append(reasons, "listed recently")
	}

	score = ai.ClampScore(score)

	urgency := models.UrgencyMedium
	switch {
	case score >= 85:
		urgency = models.UrgencyCritical
	case score >= 70:
		urgency = models.UrgencyHigh
	}

	shouldNotify := score >= 70 &&
		input.ProfitGBP >= criteria.MinProfitGBP &&
		input.RiskScore <= criteria.MaxRiskScore

	return HotDealResult{
		Score:        score,
		Urgency:      urgency,
		ShouldNotify: shouldNotify,
		Reasons:      reasons,
	}
}

// DetectBatch scores every deal and returns the notifiable ones sorted by
// descending score. Callers typically act on the top deal per dealer to
// avoid alert spam.
func (s *hotDealService) DetectBatch(inputs []HotDealInput, criteria HotDealCriteria) []ScoredHotDeal {
	qualifying := make([]ScoredHotDeal, 0, len(inputs))
	for _, input := range inputs {
		result := s.Detect(input, criteria)
		if !result.ShouldNotify {
			continue
		}
		qualifying = append(qualifying, ScoredHotDeal{Input: input, Result: result})
	}

	sort.SliceStable(qualifying, func(i, j int) bool {
		return qualifying[i].Result.Score > qualifying[j].Result.Score
	})

	return qualifying
}

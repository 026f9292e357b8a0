package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lotscout/lotscout-go-api/internal/models"
	"github.com/lotscout/lotscout-go-api/pkg/ai"
)

// MatchResult is the outcome of matching one listing against one dealer.
type MatchResult struct {
	Matches bool
	Score   int
	Reasons []string
}

// ScoredMatch pairs a listing and its classification with the computed match
// score for one dealer.
type ScoredMatch struct {
	Listing        models.VehicleListing
	Classification models.AIClassification
	Score          int
	Reasons        []string
}

// MatcherService filters classified listings against dealer hard constraints
// and scores the survivors.
type MatcherService interface {
	Match(listing models.VehicleListing, classification models.AIClassification, prefs models.DealerPreferences) MatchResult
	MatchForDealers(ctx context.Context, listings []models.VehicleListing, dealers []models.Dealer) map[uint][]ScoredMatch
}

type matcherService struct {
	logger zerolog.Logger
	now    func() time.Time
}

// NewMatcherService constructs the preference matcher.
func NewMatcherService(logger zerolog.Logger) MatcherService {
	return &matcherService{
		logger: logger.With().Str("component", "matcher_service").Logger(),
		now:    time.Now,
	}
}

// Match applies hard constraints first; any failure rejects the listing with
// score 0 and a single explanatory reason. Survivors are scored from a base
// of 50. Data problems never error; an unknown mileage simply skips the
// mileage rules.
func (s *matcherService) Match(listing models.VehicleListing, classification models.AIClassification, prefs models.DealerPreferences) MatchResult {
	currentYear := s.now().Year()

	if prefs.MinYear > 0 && listing.Year < prefs.MinYear {
		return rejected(fmt.Sprintf("Year %d below minimum %d", listing.Year, prefs.MinYear))
	}
	if listing.Year > currentYear {
		return rejected(fmt.Sprintf("Year %d is in the future", listing.Year))
	}
	if prefs.MaxBidGBP > 0 && listing.PriceGBP > prefs.MaxBidGBP {
		return rejected(fmt.Sprintf("Price £%.0f exceeds budget £%.0f", listing.PriceGBP, prefs.MaxBidGBP))
	}
	if prefs.MaxMileage > 0 && listing.Mileage != nil && *listing.Mileage > prefs.MaxMileage {
		return rejected(fmt.Sprintf("Mileage %d exceeds limit %d", *listing.Mileage, prefs.MaxMileage))
	}
	if !prefs.AllowsMake(listing.Make) {
		return rejected(fmt.Sprintf("Make %s not in allowed list", listing.Make))
	}

	score := 50
	reasons := make([]string, 0, 8)

	switch {
	case classification.RiskScore < 20:
		score += 20
		reasons = append(reasons, "Very low risk")
	case classification.RiskScore < 40:
		score += 10
		reasons = append(reasons, "Low risk")
	case classification.RiskScore > 60:
		score -= 10
		reasons = append(reasons, "Elevated risk")
	}

	switch {
	case classification.Confidence > 90:
		score += 10
		reasons = append(reasons, "High classification confidence")
	case classification.Confidence < 70:
		score -= 5
	}

	switch {
	case classification.ProfitPotentialGBP > 2000:
		score += 15
		reasons = append(reasons, "Strong profit potential")
	case classification.ProfitPotentialGBP > 1000:
		score += 8
		reasons = append(reasons, "Good profit potential")
	}

	if prefs.MaxBidGBP > 0 {
		ratio := listing.PriceGBP / prefs.MaxBidGBP
		switch {
		case ratio < 0.5:
			score += 10
			reasons = append(reasons, "Well under budget")
		case ratio < 0.7:
			score += 5
			reasons = append(reasons, "Under budget")
		}
	}

	age := currentYear - listing.Year
	if listing.Mileage != nil && age > 0 {
		expected := float64(age) * 10_000
		if float64(*listing.Mileage) < expected*0.6 {
			score += 8
			reasons = append(reasons, "Below-average mileage for age")
		}
	}

	// The preferred-make bonus stacks on top of the allow-list hard filter;
	// the filter already guarantees membership when the list is non-empty.
	if len(prefs.Makes) > 0 && prefs.AllowsMake(listing.Make) {
		score += 5
		reasons = append(reasons, "Preferred make")
	}

	if age < 3 {
		score += 5
		reasons = append(reasons, "Nearly new")
	}

	switch classification.FaultType {
	case models.FaultNone:
		score += 10
		reasons = append(reasons, "No reported faults")
	case models.FaultBattery, models.FaultTyre, models.FaultKeys:
		score += 5
		reasons = append(reasons, "Minor fault only")
	case models.FaultMechanical, models.FaultElectrical:
		score -= 5
		reasons = append(reasons, fmt.Sprintf("%s fault reported", strings.ToLower(classification.FaultType)))
	}

	return MatchResult{Matches: true, Score: ai.ClampScore(score), Reasons: reasons}
}

// MatchForDealers matches every dealer independently against the full
// classified set. AVOID listings are filtered out before any matching;
// each dealer's matches come back sorted by descending score.
func (s *matcherService) MatchForDealers(_ context.Context, listings []models.VehicleListing, dealers []models.Dealer) map[uint][]ScoredMatch {
	type classified struct {
		listing        models.VehicleListing
		classification models.AIClassification
	}

	healthy := make([]classified, 0, len(listings))
	for _, listing := range listings {
		c := listing.LatestClassification()
		if c == nil || !c.IsHealthy() {
			continue
		}
		healthy = append(healthy, classified{listing: listing, classification: *c})
	}

	results := make(map[uint][]ScoredMatch, len(dealers))
	for _, dealer := range dealers {
		if dealer.Preferences == nil {
			s.logger.Debug().Uint("dealer_id", dealer.ID).Msg("dealer has no preferences, skipping")
			continue
		}

		matches := make([]ScoredMatch, 0, len(healthy))
		for _, item := range healthy {
			result := s.Match(item.listing, item.classification, *dealer.Preferences)
			if !result.Matches {
				continue
			}
			matches = append(matches, ScoredMatch{
				Listing:        item.listing,
				Classification: item.classification,
				Score:          result.Score,
				Reasons:        result.Reasons,
			})
		}

		sort.SliceStable(matches, func(i, j int) bool {
			return matches[i].Score > matches[j].Score
		})

		results[dealer.ID] = matches
	}

	return results
}

func rejected(reason string) MatchResult {
	return MatchResult{Matches: false, Score: 0, Reasons: []string{reason}}
}

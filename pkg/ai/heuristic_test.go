package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
}

func newFixedHeuristic() *HeuristicClassifier {
	h := NewHeuristicClassifier()
	h.now = fixedClock
	return h
}

func intPtr(v int) *int { return &v }

func TestHeuristicClassifierIsDeterministic(t *testing.T) {
	h := newFixedHeuristic()
	input := ClassificationInput{
		Make:      "BMW",
		Model:     "3 Series",
		Year:      2019,
		PriceGBP:  18500,
		Mileage:   intPtr(42000),
		Condition: "Good",
	}

	first, err := h.Classify(context.Background(), input)
	require.NoError(t, err)

	second, err := h.Classify(context.Background(), input)
	require.NoError(t, err)

	require.Equal(t, first.RiskScore, second.RiskScore)
	require.Equal(t, first.Verdict, second.Verdict)
	require.Equal(t, first.ProfitPotentialGBP, second.ProfitPotentialGBP)
}

func TestHeuristicClassifierClampsAtExtremes(t *testing.T) {
	h := newFixedHeuristic()

	result, err := h.Classify(context.Background(), ClassificationInput{
		Make:      "Rover",
		Model:     "Metro",
		Year:      1995,
		PriceGBP:  500,
		Mileage:   intPtr(10_000_000),
		Condition: "salvage, accident damaged",
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, result.RiskScore, 0)
	require.LessOrEqual(t, result.RiskScore, 100)
	require.GreaterOrEqual(t, result.Confidence, 0)
	require.LessOrEqual(t, result.Confidence, 100)
	require.Equal(t, "AVOID", result.Verdict)
	require.Contains(t, result.QualityFlags, "too cheap")
}

func TestHeuristicClassifierDamageForcesAvoid(t *testing.T) {
	h := newFixedHeuristic()

	result, err := h.Classify(context.Background(), ClassificationInput{
		Make:      "Audi",
		Model:     "A4",
		Year:      2023,
		PriceGBP:  25000,
		Mileage:   intPtr(15000),
		Condition: "front end accident damage, drives",
	})
	require.NoError(t, err)

	require.Equal(t, "AVOID", result.Verdict)
	require.Equal(t, FaultLabelMechanical, result.FaultType)
	require.False(t, result.CheckpointPassed)
}

func TestHeuristicClassifierBudgetHardFail(t *testing.T) {
	h := newFixedHeuristic()

	result, err := h.Classify(context.Background(), ClassificationInput{
		Make:         "BMW",
		Model:        "3 Series",
		Year:         2019,
		PriceGBP:     18500,
		Mileage:      intPtr(42000),
		Condition:    "Good",
		MaxBudgetGBP: 15000,
	})
	require.NoError(t, err)

	require.Equal(t, "AVOID", result.Verdict)
	require.Contains(t, result.Reason, "over budget")
}

func TestHeuristicClassifierProfitFormula(t *testing.T) {
	h := newFixedHeuristic()

	// 2025 car, 20k miles: base 50, -10 age, -10 mileage => risk 30.
	result, err := h.Classify(context.Background(), ClassificationInput{
		Make:      "Kia",
		Model:     "Sportage",
		Year:      2025,
		PriceGBP:  20000,
		Mileage:   intPtr(20000),
		Condition: "tidy",
	})
	require.NoError(t, err)

	require.Equal(t, 30, result.RiskScore)
	// 20000*0.15 - 30*50 = 1500
	require.InDelta(t, 1500.0, result.ProfitPotentialGBP, 0.001)
	require.Equal(t, "HEALTHY", result.Verdict)
	require.True(t, result.CheckpointPassed)
}

func TestHeuristicClassifierThinMarginAvoided(t *testing.T) {
	h := newFixedHeuristic()

	// Risk 50 at price 5000 gives profit 0, below the £1000 floor.
	result, err := h.Classify(context.Background(), ClassificationInput{
		Make:      "Ford",
		Model:     "Focus",
		Year:      2019,
		PriceGBP:  5000,
		Mileage:   intPtr(60000),
		Condition: "average",
	})
	require.NoError(t, err)

	require.Equal(t, "AVOID", result.Verdict)
	require.Contains(t, result.Reason, "insufficient profit margin")
}

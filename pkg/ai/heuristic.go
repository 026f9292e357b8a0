package ai

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// heuristicConfidence is the fixed confidence reported by the fallback
// classifier. Kept above MinTrustedConfidence so heuristic verdicts stand on
// their own merits rather than being downgraded by the guardrail layer.
const heuristicConfidence = 75

var damageKeywords = []string{"damage", "damaged", "accident", "salvage", "cat s", "cat n", "cat-s", "cat-n", "write-off", "write off"}

var structuralKeywords = []string{"salvage", "cat s", "cat n", "cat-s", "cat-n", "write-off", "write off"}

var excellentKeywords = []string{"excellent", "immaculate", "pristine", "full service history", "fsh"}

// HeuristicClassifier is the deterministic, network-free fallback used when
// the model backend is unavailable or a per-listing call fails. Identical
// inputs always produce identical classifications.
type HeuristicClassifier struct {
	now func() time.Time
}

// NewHeuristicClassifier constructs the fallback classifier.
func NewHeuristicClassifier() *HeuristicClassifier {
	return &HeuristicClassifier{now: time.Now}
}

// Classify scores a listing from observable fields alone.
func (h *HeuristicClassifier) Classify(_ context.Context, input ClassificationInput) (Classification, error) {
	risk := 50
	reasons := make([]string, 0, 4)
	flags := make([]string, 0, 2)

	age := h.now().Year() - input.Year
	switch {
	case age > 15:
		risk += 20
		reasons = append(reasons, fmt.Sprintf("vehicle is %d years old", age))
	case age > 10:
		risk += 10
		reasons = append(reasons, fmt.Sprintf("vehicle is %d years old", age))
	case age < 3 && age >= 0:
		risk -= 10
		reasons = append(reasons, "nearly new")
	}

	if input.Mileage != nil {
		switch {
		case *input.Mileage > 150_000:
			risk += 20
			reasons = append(reasons, "very high mileage")
		case *input.Mileage > 100_000:
			risk += 10
			reasons = append(reasons, "high mileage")
		case *input.Mileage < 30_000:
			risk -= 10
			reasons = append(reasons, "low mileage")
		}
	}

	condition := strings.ToLower(input.Condition)
	damaged := containsAny(condition, damageKeywords)
	if damaged {
		if containsAny(condition, structuralKeywords) {
			risk += 40
			reasons = append(reasons, "structural damage history")
		} else {
			risk += 30
			reasons = append(reasons, "damage reported in condition notes")
		}
		flags = append(flags, "damage keyword")
	} else if containsAny(condition, excellentKeywords) {
		risk -= 15
		reasons = append(reasons, "excellent reported condition")
	}

	switch {
	case input.PriceGBP < 1000:
		risk += 25
		reasons = append(reasons, "suspiciously cheap")
		flags = append(flags, "too cheap")
	case input.PriceGBP > 50_000:
		risk += 15
		reasons = append(reasons, "high-value vehicle")
	}

	risk = ClampScore(risk)

	// Repair cost proxy scales with risk; profit assumes a 15% resale margin.
	repairCost := float64(risk) * 50
	profit := input.PriceGBP*0.15 - repairCost
	if profit < 0 {
		profit = 0
	}

	verdict := "HEALTHY"
	switch {
	case risk > 70:
		verdict = "AVOID"
		reasons = append(reasons, "risk score too high")
	case damaged:
		verdict = "AVOID"
	case input.MaxBudgetGBP > 0 && input.PriceGBP > input.MaxBudgetGBP:
		verdict = "AVOID"
		reasons = append(reasons, "over budget")
	case input.MaxMileage > 0 && input.Mileage != nil && *input.Mileage > input.MaxMileage:
		verdict = "AVOID"
		reasons = append(reasons, "over mileage limit")
	case profit < 1000:
		verdict = "AVOID"
		reasons = append(reasons, "insufficient profit margin")
	}

	fault := FaultLabelNone
	if damaged {
		fault = FaultLabelMechanical
	}

	return Classification{
		Verdict:            verdict,
		FaultType:          fault,
		Reason:             strings.Join(reasons, "; "),
		RiskScore:          risk,
		Confidence:         heuristicConfidence,
		RepairCostGBP:      repairCost,
		ProfitPotentialGBP: profit,
		CheckpointPassed:   verdict == "HEALTHY",
		QualityFlags:       flags,
	}, nil
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

package ai

import "context"

// ClassificationInput carries one listing plus optional dealer context into a
// classification pass. Zero-valued dealer fields mean no context was supplied.
type ClassificationInput struct {
	Make      string
	Model     string
	Year      int
	PriceGBP  float64
	Mileage   *int
	Condition string

	// Optional dealer context used by the checkpoint prompt and the
	// heuristic hard-fail rules.
	MaxBudgetGBP   float64
	MaxMileage     int
	MinYear        int
	PreferredMakes []string
}

// Fault labels shared between the model prompt and the heuristic fallback.
const (
	FaultLabelNone       = "None"
	FaultLabelBattery    = "Battery"
	FaultLabelTyre       = "Tyre"
	FaultLabelKeys       = "Keys"
	FaultLabelMechanical = "Mechanical"
	FaultLabelElectrical = "Electrical"
	FaultLabelUnknown    = "Unknown"
)

// Classification is the structured verdict for a single listing.
type Classification struct {
	Verdict              string   `json:"verdict"`
	FaultType            string   `json:"fault_type"`
	Reason               string   `json:"reason"`
	RiskScore            int      `json:"risk_score"`
	Confidence           int      `json:"confidence"`
	RepairCostGBP        float64  `json:"repair_cost_gbp"`
	ProfitPotentialGBP   float64  `json:"profit_potential_gbp"`
	CheckpointPassed     bool     `json:"checkpoint_passed"`
	PreferenceMatchScore int      `json:"preference_match_score"`
	QualityFlags         []string `json:"quality_flags,omitempty"`
}

// Classifier describes a backend capable of producing a verdict for one
// listing. Callers must pass the result through ApplyGuardrails; the
// guardrail layer is deliberately backend-agnostic.
type Classifier interface {
	Classify(ctx context.Context, input ClassificationInput) (Classification, error)
}

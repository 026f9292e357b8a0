package ai

import "strings"

// MinTrustedConfidence is the confidence floor below which a verdict is
// forced to AVOID, regardless of what the backend claimed.
const MinTrustedConfidence = 70

// ApplyGuardrails normalises and post-validates a classification. It runs
// after every backend, model or heuristic, so no backend can bypass the
// conservative overrides:
//
//   - verdicts are upper-cased; anything other than HEALTHY becomes AVOID
//   - risk, confidence and preference-match scores are clamped to [0,100]
//   - confidence below MinTrustedConfidence forces AVOID
//   - a failed checkpoint with a HEALTHY verdict forces AVOID
func ApplyGuardrails(c Classification) Classification {
	verdict := strings.ToUpper(strings.TrimSpace(c.Verdict))
	if verdict != "HEALTHY" {
		verdict = "AVOID"
	}
	c.Verdict = verdict

	c.RiskScore = ClampScore(c.RiskScore)
	c.Confidence = ClampScore(c.Confidence)
	c.PreferenceMatchScore = ClampScore(c.PreferenceMatchScore)
	if c.RepairCostGBP < 0 {
		c.RepairCostGBP = 0
	}
	if c.ProfitPotentialGBP < 0 {
		c.ProfitPotentialGBP = 0
	}

	if c.Confidence < MinTrustedConfidence {
		if c.Verdict == "HEALTHY" {
			c.Verdict = "AVOID"
		}
		c.QualityFlags = appendFlag(c.QualityFlags, "low confidence")
		if !strings.Contains(strings.ToLower(c.Reason), "low confidence") {
			c.Reason = strings.TrimSpace(c.Reason + " (low confidence)")
		}
	}

	if !c.CheckpointPassed && c.Verdict == "HEALTHY" {
		c.Verdict = "AVOID"
		c.QualityFlags = appendFlag(c.QualityFlags, "checkpoint failed")
	}

	if c.FaultType == "" {
		c.FaultType = "Unknown"
	}

	return c
}

// ClampScore bounds a score to the documented [0,100] range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func appendFlag(flags []string, flag string) []string {
	for _, f := range flags {
		if f == flag {
			return flags
		}
	}
	return append(flags, flag)
}

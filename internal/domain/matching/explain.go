package matching

const (
	maxReasons      = 5
	reasonThreshold = 0.3
)

const fallbackReason = "Limited profile data, complete your profile for sharper matches"

// Explain turns the strongest sub-scores into reason sentences, at most five,
// in contribution order. Sub-scores whose value is below 0.3, neutral ones and
// weightless ones other than keyword hits are skipped.
func Explain(subs []SubScore, c CandidateFeatureSet) []string {
	_, ordered := Aggregate(subs)

	reasons := make([]string, 0, maxReasons)
	for _, s := range ordered {
		if len(reasons) == maxReasons {
			break
		}
		if s.Neutral || s.Value < reasonThreshold || s.ContributionNote == "" {
			continue
		}
		if s.Weight == 0 && s.Dimension != DimensionKeyword {
			continue
		}
		reasons = append(reasons, s.ContributionNote)
	}

	if len(reasons) == 0 && hasContribution(ordered) {
		reasons = append(reasons, strongestNote(ordered, c))
	}
	return reasons
}

func hasContribution(subs []SubScore) bool {
	for _, s := range subs {
		if s.Contribution() > 0 {
			return true
		}
	}
	return false
}

func strongestNote(ordered []SubScore, c CandidateFeatureSet) string {
	for _, s := range ordered {
		if s.Contribution() > 0 && !s.Neutral && s.ContributionNote != "" {
			return s.ContributionNote
		}
	}
	if c.Title != "" {
		return fallbackReason + ": " + c.Title
	}
	return fallbackReason
}

package matching

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	neutralValue = 0.5

	keywordBoostStep = 0.025
	keywordBoostMax  = 0.1

	categoryPartialValue = 0.4

	recencyFloor          = 0.2
	recencyDefaultHorizon = 30 * 24 * time.Hour
	resourceRecencyValue  = 0.7
)

// Scorers fill Dimension, Value and ContributionNote; weights are applied by the engine.

func ScoreSkills(s SeekerFeatureSet, c CandidateFeatureSet) SubScore {
	matched := intersect(s.Skills, c.RequiredSkills)
	total := len(c.RequiredSkills)
	value := float64(len(matched)) / float64(max(1, total))

	boost, _ := keywordBoost(s, c)
	value = clamp01(value + boost)

	note := fmt.Sprintf("You have %d of %d required skills", len(matched), total)
	if total == 0 {
		note = "No specific skills listed"
	}
	return SubScore{Dimension: DimensionSkills, Value: value, ContributionNote: note}
}

// ScoreKeyword exposes the keyword boost folded into the skills value as its
// own dimension. It carries no weight.
func ScoreKeyword(s SeekerFeatureSet, c CandidateFeatureSet) SubScore {
	boost, hits := keywordBoost(s, c)
	note := "No profile keywords mentioned"
	if len(hits) > 0 {
		note = "Mentions keywords from your profile: " + joinLimited(hits, 3)
	}
	return SubScore{Dimension: DimensionKeyword, Value: clamp01(boost / keywordBoostMax), ContributionNote: note}
}

// keywordBoost returns the boost for bio keywords appearing as whole words in
// the candidate text, and the keywords that hit.
func keywordBoost(s SeekerFeatureSet, c CandidateFeatureSet) (float64, []string) {
	if len(s.BioKeywords) == 0 || len(c.Keywords) == 0 {
		return 0, nil
	}
	var hits []string
	for _, k := range s.BioKeywords {
		if _, ok := c.Keywords[k]; ok {
			hits = append(hits, k)
		}
	}
	return math.Min(keywordBoostMax, keywordBoostStep*float64(len(hits))), hits
}

// ScoreGapCoverage scores a learning resource by how much of the seeker's skill
// gap it teaches. gapWeights maps gap skills to frequency/maxFrequency; when it
// is empty the share of resource skills the seeker lacks is used instead.
func ScoreGapCoverage(s SeekerFeatureSet, c CandidateFeatureSet, gapWeights map[string]float64) SubScore {
	missing := Gap(s.Skills, c.RequiredSkills)
	total := max(1, len(c.RequiredSkills))

	var value float64
	var covered []string
	if len(gapWeights) > 0 {
		sum := 0.0
		for _, skill := range missing {
			if w, ok := gapWeights[skill]; ok && w > 0 {
				sum += w
				covered = append(covered, skill)
			}
		}
		value = sum / float64(total)
	} else {
		covered = missing
		value = float64(len(missing)) / float64(total)
	}

	note := "Builds on skills you already have"
	switch {
	case len(c.RequiredSkills) == 0:
		note = "No specific skills listed"
	case len(covered) > 0:
		note = "Covers skills you are missing: " + joinLimited(covered, 3)
	}
	return SubScore{Dimension: DimensionSkills, Value: clamp01(value), ContributionNote: note}
}

func ScoreExperience(s SeekerFeatureSet, c CandidateFeatureSet) SubScore {
	if c.ExperienceLevel == LevelUnknown || s.ExperienceLevel == LevelUnknown {
		return SubScore{Dimension: DimensionExperience, Value: neutralValue, ContributionNote: "Experience level not specified", Neutral: true}
	}

	dist := int(c.ExperienceLevel) - int(s.ExperienceLevel)
	if dist < 0 {
		dist = -dist
	}
	noun := "experience level"
	if c.Kind == KindResource {
		noun = "level"
	}
	switch dist {
	case 0:
		return SubScore{Dimension: DimensionExperience, Value: 1.0, ContributionNote: fmt.Sprintf("Matches your %s %s", s.ExperienceLevel, noun)}
	case 1:
		return SubScore{Dimension: DimensionExperience, Value: 0.6, ContributionNote: fmt.Sprintf("Close to your %s %s", s.ExperienceLevel, noun)}
	default:
		return SubScore{Dimension: DimensionExperience, Value: 0.2, ContributionNote: fmt.Sprintf("Targets %s level, you are %s", c.ExperienceLevel, s.ExperienceLevel)}
	}
}

func ScoreLocation(s SeekerFeatureSet, c CandidateFeatureSet) SubScore {
	sub := SubScore{Dimension: DimensionLocation}

	if c.City != "" {
		if _, ok := s.PreferredLocations[c.City]; ok {
			sub.Value = 1.0
			sub.ContributionNote = "Matches your preferred location: " + c.City
			return sub
		}
	}

	switch {
	case c.WorkMode == WorkModeRemote && s.RemotePreference == RemoteOnsite:
		sub.ContributionNote = "Remote role, you prefer on-site work"
	case c.WorkMode == WorkModeRemote:
		sub.Value = 1.0
		sub.ContributionNote = "Remote role matches your preference"
	case s.RemotePreference == RemoteOnly && c.WorkMode != WorkModeUnspecified:
		sub.ContributionNote = "Requires office presence, you prefer remote work"
	case c.City == "" && c.WorkMode == WorkModeUnspecified,
		len(s.PreferredLocations) == 0:
		sub.Value = neutralValue
		sub.Neutral = true
		sub.ContributionNote = "Location not specified"
	default:
		sub.ContributionNote = "Outside your preferred locations"
	}
	return sub
}

func ScoreSalary(s SeekerFeatureSet, c CandidateFeatureSet) SubScore {
	sr, cr := s.SalaryExpectation, c.Salary
	neutral := SubScore{Dimension: DimensionSalary, Value: neutralValue, ContributionNote: "Salary not specified", Neutral: true}
	if !sr.Specified() || !cr.Specified() {
		return neutral
	}
	if sr.Currency != "" && cr.Currency != "" && sr.Currency != cr.Currency {
		neutral.ContributionNote = fmt.Sprintf("Salary in %s, you expect %s", cr.Currency, sr.Currency)
		return neutral
	}

	lo := max(sr.Min, cr.Min)
	hi := min(sr.Max, cr.Max)
	if hi < lo {
		return SubScore{Dimension: DimensionSalary, Value: 0, ContributionNote: "Salary range is outside your expectation"}
	}

	width := sr.Max - sr.Min
	var value float64
	switch {
	case width == 0, cr.Max == cr.Min:
		// A point range that lies inside the other range overlaps it fully.
		value = 1.0
	default:
		value = float64(hi-lo) / float64(width)
	}
	value = clamp01(value)

	note := "Salary range fits your expectation"
	if value < 1.0 {
		note = fmt.Sprintf("Salary range overlaps %d%% of your expectation", int(math.Round(value*100)))
	}
	return SubScore{Dimension: DimensionSalary, Value: value, ContributionNote: note}
}

func ScoreCategory(s SeekerFeatureSet, c CandidateFeatureSet) SubScore {
	if c.Category == "" || (len(s.InterestCategories) == 0 && len(s.BioKeywords) == 0) {
		return SubScore{Dimension: DimensionCategory, Value: neutralValue, ContributionNote: "Category not specified", Neutral: true}
	}
	if _, ok := s.InterestCategories[c.Category]; ok {
		return SubScore{Dimension: DimensionCategory, Value: 1.0, ContributionNote: "In your field of interest: " + c.Category}
	}
	if relatedCategory(s, c.Category) {
		return SubScore{Dimension: DimensionCategory, Value: categoryPartialValue, ContributionNote: "Related to your interests: " + c.Category}
	}
	return SubScore{Dimension: DimensionCategory, Value: 0, ContributionNote: "Outside your usual categories"}
}

// relatedCategory reports a partial match: one category name contains the
// other, or they share a keyword with the interests or the bio.
func relatedCategory(s SeekerFeatureSet, category string) bool {
	tokens := tokenSet(category)
	for interest := range s.InterestCategories {
		if strings.Contains(interest, category) || strings.Contains(category, interest) {
			return true
		}
		for t := range tokenSet(interest) {
			if _, ok := tokens[t]; ok {
				return true
			}
		}
	}
	for _, k := range s.BioKeywords {
		if _, ok := tokens[k]; ok {
			return true
		}
	}
	return false
}

// ScoreRecency decays linearly from 1.0 at posting to 0.2 at the deadline, or
// over a 30 day horizon when the posting has no deadline.
func ScoreRecency(c CandidateFeatureSet, now time.Time) SubScore {
	if c.Kind == KindResource {
		return SubScore{Dimension: DimensionRecency, Value: resourceRecencyValue, ContributionNote: "Evergreen learning content"}
	}
	if c.PostedAt == nil || c.PostedAt.IsZero() {
		return SubScore{Dimension: DimensionRecency, Value: neutralValue, ContributionNote: "Posting date unknown", Neutral: true}
	}

	posted := *c.PostedAt
	end := posted.Add(recencyDefaultHorizon)
	if c.Deadline != nil && !c.Deadline.IsZero() {
		end = *c.Deadline
	}
	if !now.Before(end) {
		return SubScore{Dimension: DimensionRecency, Value: recencyFloor, ContributionNote: "Application window has closed"}
	}

	age := now.Sub(posted)
	if age < 0 {
		age = 0
	}
	span := end.Sub(posted)
	value := recencyFloor
	if span > 0 {
		value = 1.0 - (1.0-recencyFloor)*(float64(age)/float64(span))
	}

	days := int(age.Hours() / 24)
	note := "Posted today"
	switch {
	case days == 1:
		note = "Posted yesterday"
	case days > 1:
		note = fmt.Sprintf("Posted %d days ago", days)
	}
	return SubScore{Dimension: DimensionRecency, Value: clamp01(value), ContributionNote: note}
}

func intersect(a, b map[string]struct{}) []string {
	out := make(map[string]struct{})
	for k := range b {
		if _, ok := a[k]; ok {
			out[k] = struct{}{}
		}
	}
	return sortedKeys(out)
}

func joinLimited(items []string, n int) string {
	if len(items) <= n {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(items[:n], ", "), len(items)-n)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

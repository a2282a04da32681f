package matching

import "sort"

const GapRelevanceThreshold = 0.3

// Gap returns the required skills the seeker lacks, sorted.
func Gap(seekerSkills, required map[string]struct{}) []string {
	out := make([]string, 0, len(required))
	for k := range required {
		if _, ok := seekerSkills[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// AggregateGaps counts each gap skill across the results scoring at least
// minScore. Entries are ordered by frequency, then skill name.
func AggregateGaps(results []MatchResult, minScore float64) GapReport {
	freq := make(map[string]int)
	for _, r := range results {
		if r.Score < minScore {
			continue
		}
		for _, s := range r.SkillsGap {
			freq[s]++
		}
	}

	report := make(GapReport, 0, len(freq))
	for skill, n := range freq {
		report = append(report, GapEntry{Skill: skill, Frequency: n})
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].Frequency != report[j].Frequency {
			return report[i].Frequency > report[j].Frequency
		}
		return report[i].Skill < report[j].Skill
	})
	return report
}

// Weights maps each gap skill to its frequency relative to the most frequent one.
func (g GapReport) Weights() map[string]float64 {
	if len(g) == 0 {
		return nil
	}
	top := 0
	for _, e := range g {
		if e.Frequency > top {
			top = e.Frequency
		}
	}
	if top == 0 {
		return nil
	}
	out := make(map[string]float64, len(g))
	for _, e := range g {
		out[e.Skill] = float64(e.Frequency) / float64(top)
	}
	return out
}

// Top returns at most n entries.
func (g GapReport) Top(n int) GapReport {
	if n <= 0 || n >= len(g) {
		return g
	}
	return g[:n]
}

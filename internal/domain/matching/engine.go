package matching

import (
	"time"
)

// Engine scores candidate feature sets against a seeker. It holds only the
// weight tables and a clock, so one Engine serves concurrent requests.
type Engine struct {
	weights Weights
	now     func() time.Time
}

func NewEngine(weights Weights) (*Engine, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Engine{weights: weights, now: time.Now}, nil
}

// WithClock returns a copy of the engine reading time from now.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	cp := *e
	cp.now = now
	return &cp
}

func (e *Engine) Now() time.Time {
	return e.now().UTC()
}

func (e *Engine) Weights() Weights {
	return e.weights
}

// ScoreJob scores a job posting. now is fixed once per request so every
// candidate in a batch sees the same recency clock.
func (e *Engine) ScoreJob(s SeekerFeatureSet, c CandidateFeatureSet, now time.Time) MatchResult {
	table := e.weights.Job
	subs := make([]SubScore, 0, len(table)+1)
	for _, d := range table.Dimensions() {
		var sub SubScore
		switch d {
		case DimensionSkills:
			sub = ScoreSkills(s, c)
		case DimensionExperience:
			sub = ScoreExperience(s, c)
		case DimensionLocation:
			sub = ScoreLocation(s, c)
		case DimensionSalary:
			sub = ScoreSalary(s, c)
		case DimensionCategory:
			sub = ScoreCategory(s, c)
		case DimensionRecency:
			sub = ScoreRecency(c, now)
		default:
			continue
		}
		sub.Weight = table[d]
		subs = append(subs, sub)
	}
	subs = append(subs, ScoreKeyword(s, c))

	return e.result(s, c, subs)
}

// ScoreResource scores a learning resource against the seeker's gap weights
// (see GapReport.Weights).
func (e *Engine) ScoreResource(s SeekerFeatureSet, c CandidateFeatureSet, gapWeights map[string]float64) MatchResult {
	table := e.weights.Resource
	subs := make([]SubScore, 0, len(table)+1)
	for _, d := range table.Dimensions() {
		var sub SubScore
		switch d {
		case DimensionSkills:
			sub = ScoreGapCoverage(s, c, gapWeights)
		case DimensionExperience:
			sub = ScoreExperience(s, c)
		case DimensionCategory:
			sub = ScoreCategory(s, c)
		default:
			continue
		}
		sub.Weight = table[d]
		subs = append(subs, sub)
	}
	// Recency is reported for resources but never weighted.
	subs = append(subs, ScoreRecency(c, time.Time{}))

	return e.result(s, c, subs)
}

func (e *Engine) result(s SeekerFeatureSet, c CandidateFeatureSet, subs []SubScore) MatchResult {
	score, ordered := Aggregate(subs)
	return MatchResult{
		CandidateID:   c.ID,
		Kind:          c.Kind,
		Title:         c.Title,
		Score:         score,
		SubScores:     ordered,
		Reasons:       Explain(ordered, c),
		MatchedSkills: intersect(s.Skills, c.RequiredSkills),
		SkillsGap:     Gap(s.Skills, c.RequiredSkills),
	}
}

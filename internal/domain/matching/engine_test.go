package matching

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultWeights())
	require.NoError(t, err)
	return e.WithClock(func() time.Time { return testNow })
}

func idFor(n int) uuid.UUID {
	var id uuid.UUID
	id[15] = byte(n)
	id[14] = byte(n >> 8)
	return id
}

func jobFeatures(n int, skills ...string) CandidateFeatureSet {
	posted := testNow.Add(-48 * time.Hour)
	return CandidateFeatureSet{
		ID:              idFor(n),
		Kind:            KindJob,
		Title:           fmt.Sprintf("Job %d", n),
		RequiredSkills:  set(skills...),
		ExperienceLevel: LevelMid,
		City:            "jakarta",
		WorkMode:        WorkModeOnsite,
		Category:        "software engineering",
		PostedAt:        &posted,
	}
}

func seekerFeatures(skills ...string) SeekerFeatureSet {
	return SeekerFeatureSet{
		SeekerID:           uuid.New(),
		Skills:             set(skills...),
		ExperienceLevel:    LevelMid,
		PreferredLocations: set("jakarta"),
		RemotePreference:   RemoteFlexible,
		InterestCategories: set("software engineering"),
	}
}

func TestEngine_ScoreJob(t *testing.T) {
	e := newTestEngine(t)
	s := seekerFeatures("javascript", "html", "css")
	c := jobFeatures(1, "react", "javascript", "node")

	r := e.ScoreJob(s, c, e.Now())

	assert.Equal(t, c.ID, r.CandidateID)
	assert.Equal(t, KindJob, r.Kind)
	assert.Equal(t, []string{"javascript"}, r.MatchedSkills)
	assert.Equal(t, []string{"node", "react"}, r.SkillsGap)

	bySub := map[Dimension]SubScore{}
	for _, sub := range r.SubScores {
		bySub[sub.Dimension] = sub
	}
	require.Len(t, bySub, 7)
	assert.InDelta(t, 1.0/3.0, bySub[DimensionSkills].Value, 1e-9)
	assert.Equal(t, 0.5, bySub[DimensionSalary].Value)
	assert.Equal(t, 0.0, bySub[DimensionKeyword].Weight)

	var sum float64
	for _, sub := range r.SubScores {
		sum += sub.Value * sub.Weight
	}
	assert.InDelta(t, sum, r.Score, 1e-9)
	assert.GreaterOrEqual(t, r.Score, 0.0)
	assert.LessOrEqual(t, r.Score, 1.0)

	require.NotEmpty(t, r.Reasons)
	assert.LessOrEqual(t, len(r.Reasons), 5)
	assert.Contains(t, r.Reasons, "You have 1 of 3 required skills")
	assert.Contains(t, r.Reasons, "Matches your preferred location: jakarta")
	assert.NotContains(t, r.Reasons, "Salary not specified")
}

func TestEngine_ScoreJob_FullMatchHasNoGap(t *testing.T) {
	e := newTestEngine(t)
	r := e.ScoreJob(seekerFeatures("go", "postgresql", "docker"), jobFeatures(1, "go", "postgresql"), e.Now())

	assert.Empty(t, r.SkillsGap)
	assert.Equal(t, []string{"go", "postgresql"}, r.MatchedSkills)
}

func TestEngine_ScoreJob_Monotonic(t *testing.T) {
	e := newTestEngine(t)
	c := jobFeatures(1, "react", "javascript", "node", "go")

	skills := []string{"html"}
	prev := e.ScoreJob(seekerFeatures(skills...), c, e.Now()).Score
	for _, add := range []string{"javascript", "react", "node", "go"} {
		skills = append(skills, add)
		next := e.ScoreJob(seekerFeatures(skills...), c, e.Now()).Score
		assert.GreaterOrEqual(t, next, prev, "adding %s", add)
		prev = next
	}
}

func TestEngine_ScoreJob_EmptySeekerStillExplained(t *testing.T) {
	e := newTestEngine(t)
	r := e.ScoreJob(SeekerFeatureSet{SeekerID: uuid.New()}, CandidateFeatureSet{ID: idFor(1), Kind: KindJob, Title: "Anything"}, e.Now())

	assert.Greater(t, r.Score, 0.0)
	assert.NotEmpty(t, r.Reasons)
}

func TestEngine_ScoreResource(t *testing.T) {
	e := newTestEngine(t)
	s := seekerFeatures("javascript")
	c := CandidateFeatureSet{ID: idFor(9), Kind: KindResource, Title: "Fullstack course", RequiredSkills: set("react", "node"), ExperienceLevel: LevelMid}

	r := e.ScoreResource(s, c, map[string]float64{"react": 1, "node": 0.5})

	// skills .70*.75 + category .15*.5 + experience .15*1
	assert.InDelta(t, 0.75, r.Score, 1e-9)
	assert.Equal(t, KindResource, r.Kind)
	assert.Equal(t, []string{"node", "react"}, r.SkillsGap)
	assert.Equal(t, "Covers skills you are missing: node, react", r.Reasons[0])

	var recency *SubScore
	for i := range r.SubScores {
		if r.SubScores[i].Dimension == DimensionRecency {
			recency = &r.SubScores[i]
		}
	}
	require.NotNil(t, recency)
	assert.Equal(t, 0.7, recency.Value)
	assert.Equal(t, 0.0, recency.Weight)
}

func TestEngine_ResourcesFollowGapFrequency(t *testing.T) {
	e := newTestEngine(t)
	s := seekerFeatures("javascript")
	report := GapReport{{Skill: "react", Frequency: 4}, {Skill: "node", Frequency: 1}}

	reactCourse := CandidateFeatureSet{ID: idFor(2), Kind: KindResource, RequiredSkills: set("react")}
	nodeCourse := CandidateFeatureSet{ID: idFor(1), Kind: KindResource, RequiredSkills: set("node")}

	ranked := SortRanker{}.Rank([]MatchResult{
		e.ScoreResource(s, nodeCourse, report.Weights()),
		e.ScoreResource(s, reactCourse, report.Weights()),
	}, 0)
	assert.Equal(t, reactCourse.ID, ranked[0].CandidateID)
}

func TestEngine_Idempotent(t *testing.T) {
	e := newTestEngine(t)
	s := seekerFeatures("go", "docker")
	c := jobFeatures(3, "go", "kubernetes")

	a, err := json.Marshal(e.ScoreJob(s, c, e.Now()))
	require.NoError(t, err)
	b, err := json.Marshal(e.ScoreJob(s, c, e.Now()))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestNewEngine_RejectsBadWeights(t *testing.T) {
	w := DefaultWeights()
	w.Job = WeightTable{DimensionSkills: 0.9}
	_, err := NewEngine(w)
	assert.ErrorIs(t, err, ErrInvalidWeights)

	w = DefaultWeights()
	w.Resource = WeightTable{DimensionSkills: 0.5, DimensionSalary: 0.5}
	_, err = NewEngine(w)
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestLoadWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	require.NoError(t, os.WriteFile(path, []byte("resource:\n  skills: 0.6\n  category: 0.2\n  experience: 0.2\n"), 0o600))

	w, err := LoadWeights(path)
	require.NoError(t, err)
	assert.Equal(t, 0.6, w.Resource[DimensionSkills])
	assert.Equal(t, DefaultWeights().Job, w.Job)

	def, err := LoadWeights("")
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), def)

	require.NoError(t, os.WriteFile(path, []byte("job:\n  skills: 1.5\n"), 0o600))
	_, err = LoadWeights(path)
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestAggregate_OrdersByContribution(t *testing.T) {
	score, ordered := Aggregate([]SubScore{
		{Dimension: DimensionRecency, Value: 1, Weight: 0.1},
		{Dimension: DimensionSkills, Value: 0.5, Weight: 0.45},
		{Dimension: DimensionSalary, Value: 1, Weight: 0.1},
	})

	assert.InDelta(t, 0.425, score, 1e-9)
	assert.Equal(t, []Dimension{DimensionSkills, DimensionSalary, DimensionRecency},
		[]Dimension{ordered[0].Dimension, ordered[1].Dimension, ordered[2].Dimension})
}

func TestExplain(t *testing.T) {
	var subs []SubScore
	for _, d := range []Dimension{DimensionRecency, DimensionCategory, DimensionSalary, DimensionLocation, DimensionExperience, DimensionSkills} {
		subs = append(subs, SubScore{Dimension: d, Value: 1, Weight: 1.0 / 6, ContributionNote: string(d)})
	}
	assert.Equal(t, []string{"skills", "experience", "location", "salary", "category"}, Explain(subs, CandidateFeatureSet{}))

	low := []SubScore{
		{Dimension: DimensionSkills, Value: 0.2, Weight: 0.7, ContributionNote: "weak skills"},
		{Dimension: DimensionSalary, Value: 0.5, Weight: 0.3, ContributionNote: "Salary not specified", Neutral: true},
	}
	assert.Equal(t, []string{"weak skills"}, Explain(low, CandidateFeatureSet{}))

	neutral := []SubScore{{Dimension: DimensionSalary, Value: 0.5, Weight: 1, Neutral: true, ContributionNote: "Salary not specified"}}
	assert.Equal(t, []string{fallbackReason}, Explain(neutral, CandidateFeatureSet{}))

	assert.Empty(t, Explain([]SubScore{{Dimension: DimensionSkills, Value: 0, Weight: 1}}, CandidateFeatureSet{}))
}

func TestAggregateGaps(t *testing.T) {
	report := AggregateGaps([]MatchResult{
		{Score: 0.5, SkillsGap: []string{"go", "sql"}},
		{Score: 0.3, SkillsGap: []string{"go", "docker"}},
		{Score: 0.1, SkillsGap: []string{"rust"}},
	}, GapRelevanceThreshold)

	assert.Equal(t, GapReport{{Skill: "go", Frequency: 2}, {Skill: "docker", Frequency: 1}, {Skill: "sql", Frequency: 1}}, report)
	assert.Equal(t, map[string]float64{"go": 1, "docker": 0.5, "sql": 0.5}, report.Weights())
	assert.Len(t, report.Top(1), 1)
	assert.Empty(t, AggregateGaps(nil, GapRelevanceThreshold))
}

func TestRankers_TieBreaks(t *testing.T) {
	results := []MatchResult{
		{CandidateID: idFor(2), Score: 0.8, MatchedSkills: []string{"a"}},
		{CandidateID: idFor(3), Score: 0.8, MatchedSkills: []string{"a", "b"}},
		{CandidateID: idFor(1), Score: 0.8, MatchedSkills: []string{"c"}},
		{CandidateID: idFor(4), Score: 0.9},
	}

	ranked := SortRanker{}.Rank(results, 0)
	got := make([]uuid.UUID, len(ranked))
	for i, r := range ranked {
		got[i] = r.CandidateID
	}
	assert.Equal(t, []uuid.UUID{idFor(4), idFor(3), idFor(1), idFor(2)}, got)
	assert.Equal(t, idFor(2), results[0].CandidateID, "input must not be reordered")
}

func TestRankers_HeapMatchesSort(t *testing.T) {
	var results []MatchResult
	for i := 0; i < 200; i++ {
		matched := make([]string, i%3)
		results = append(results, MatchResult{
			CandidateID:   idFor((i * 37) % 251),
			Score:         float64(i%7) / 7,
			MatchedSkills: matched,
		})
	}

	for _, k := range []int{1, 6, 20, 199, 200, 500, 0} {
		assert.Equal(t, SortRanker{}.Rank(results, k), HeapRanker{}.Rank(results, k), "k=%d", k)
	}
}

func TestRank_InvariantUnderReordering(t *testing.T) {
	e := newTestEngine(t)
	s := seekerFeatures("go", "docker", "postgresql")
	var batch []MatchResult
	for i := 0; i < 12; i++ {
		skills := []string{"go", "docker", "kubernetes", "postgresql"}[:1+i%4]
		batch = append(batch, e.ScoreJob(s, jobFeatures(i, skills...), e.Now()))
	}

	reversed := make([]MatchResult, len(batch))
	for i := range batch {
		reversed[len(batch)-1-i] = batch[i]
	}

	assert.Equal(t, SortRanker{}.Rank(batch, 0), SortRanker{}.Rank(reversed, 0))
}

func TestPaginate(t *testing.T) {
	results := make([]MatchResult, 5)
	for i := range results {
		results[i].CandidateID = idFor(i)
	}

	assert.Len(t, Paginate(results, 0, 2), 2)
	assert.Equal(t, idFor(4), Paginate(results, 4, 2)[0].CandidateID)
	assert.Len(t, Paginate(results, 4, 2), 1)
	assert.Empty(t, Paginate(results, 10, 2))
	assert.Len(t, Paginate(results, 1, 0), 4)
}

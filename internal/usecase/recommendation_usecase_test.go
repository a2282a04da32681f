package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"skill-match/internal/domain/matching"
	"skill-match/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProfileRepo struct {
	profile matching.SeekerProfile
	err     error
}

func (m mockProfileRepo) FindByUserID(_ context.Context, id uuid.UUID) (matching.SeekerProfile, error) {
	if m.err != nil {
		return matching.SeekerProfile{}, m.err
	}
	if id != m.profile.UserID {
		return matching.SeekerProfile{}, repository.ErrSeekerProfileNotFound
	}
	return m.profile, nil
}

type mockJobRepo struct {
	items []matching.JobRecord
	calls atomic.Int32
}

func (m *mockJobRepo) ListActiveJobs(context.Context, int) ([]matching.JobRecord, error) {
	m.calls.Add(1)
	return m.items, nil
}
func (m *mockJobRepo) ActiveVersion(context.Context) (string, error) { return "1", nil }

type mockResourceRepo struct {
	items []matching.ResourceRecord
}

func (m *mockResourceRepo) ListActiveResources(context.Context, int) ([]matching.ResourceRecord, error) {
	return m.items, nil
}
func (m *mockResourceRepo) ActiveVersion(context.Context) (string, error) { return "1", nil }

type mockCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	sets    int
	deleted []string
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (c *mockCache) GetJSON(_ context.Context, key string, out any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, out)
}

func (c *mockCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	c.sets++
	return nil
}

func (c *mockCache) DeleteByPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

var (
	seekerID = uuid.MustParse("10000000-0000-0000-0000-000000000000")
	jobOne   = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	jobTwo   = uuid.MustParse("00000000-0000-0000-0000-0000000000a2")
	resOne   = uuid.MustParse("00000000-0000-0000-0000-0000000000b1")
	resTwo   = uuid.MustParse("00000000-0000-0000-0000-0000000000b2")
)

func fixture() (mockProfileRepo, *mockJobRepo, *mockResourceRepo) {
	profiles := mockProfileRepo{profile: matching.SeekerProfile{
		UserID:  seekerID,
		Version: 7,
		Skills:  []string{"JavaScript", "HTML", "CSS"},
	}}
	jobs := &mockJobRepo{items: []matching.JobRecord{
		{ID: jobOne, Title: "Fullstack Developer", Skills: []string{"React", "JavaScript", "Node.js"}, IsActive: true},
		{ID: jobTwo, Title: "Frontend Developer", Skills: []string{"javascript", "html"}, IsActive: true},
	}}
	resources := &mockResourceRepo{items: []matching.ResourceRecord{
		{ID: resOne, Title: "React in Depth", Skills: []string{"react"}, IsActive: true},
		{ID: resTwo, Title: "Cooking Basics", Skills: []string{"cooking"}, IsActive: true},
	}}
	return profiles, jobs, resources
}

func newUsecase(t *testing.T, profiles repository.SeekerProfileRepository, jobs repository.JobRepository, resources repository.LearningResourceRepository, cache RecommendationCache) *Recommendation {
	t.Helper()
	engine, err := matching.NewEngine(matching.DefaultWeights())
	require.NoError(t, err)
	engine = engine.WithClock(func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) })
	return NewRecommendationUsecase(profiles, jobs, resources, engine, cache, nil, RecommendationOptions{Workers: 4, ScoringTimeout: 5 * time.Second})
}

func ids(results []matching.MatchResult) []uuid.UUID {
	out := make([]uuid.UUID, len(results))
	for i, r := range results {
		out[i] = r.CandidateID
	}
	return out
}

func TestRecommendation_GetRecommendations_RanksJobsAndResources(t *testing.T) {
	profiles, jobs, resources := fixture()
	uc := newUsecase(t, profiles, jobs, resources, nil)

	res, err := uc.GetRecommendations(context.Background(), seekerID, RecommendationParams{})
	require.NoError(t, err)

	assert.False(t, res.Partial)
	assert.False(t, res.Empty)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, []uuid.UUID{resOne, jobTwo, jobOne, resTwo}, ids(res.Recommendations))
	assert.Equal(t, matching.GapReport{{Skill: "node", Frequency: 1}, {Skill: "react", Frequency: 1}}, res.GapReport)

	fullstack := res.Recommendations[2]
	assert.Equal(t, []string{"node", "react"}, fullstack.SkillsGap)
	assert.Equal(t, []string{"javascript"}, fullstack.MatchedSkills)
	for _, r := range res.Recommendations {
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
		assert.NotEmpty(t, r.Reasons)
	}
}

func TestRecommendation_GetRecommendations_EmptyCorpus(t *testing.T) {
	profiles, _, _ := fixture()
	uc := newUsecase(t, profiles, &mockJobRepo{}, &mockResourceRepo{}, nil)

	res, err := uc.GetRecommendations(context.Background(), seekerID, RecommendationParams{})
	require.NoError(t, err)

	assert.True(t, res.Empty)
	assert.NotNil(t, res.Recommendations)
	assert.Empty(t, res.Recommendations)
	assert.Empty(t, res.GapReport)
}

func TestRecommendation_GetRecommendations_InvalidProfile(t *testing.T) {
	profiles, jobs, resources := fixture()
	profiles.profile.ExperienceLevel = "wizard"
	uc := newUsecase(t, profiles, jobs, resources, nil)

	_, err := uc.GetRecommendations(context.Background(), seekerID, RecommendationParams{})
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestRecommendation_GetRecommendations_StoredProfileUnreadable(t *testing.T) {
	_, jobs, resources := fixture()
	profiles := mockProfileRepo{err: errors.Join(matching.ErrInvalidProfile, errors.New("bad json"))}
	uc := newUsecase(t, profiles, jobs, resources, nil)

	_, err := uc.GetRecommendations(context.Background(), seekerID, RecommendationParams{})
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestRecommendation_GetRecommendations_Errors(t *testing.T) {
	profiles, jobs, resources := fixture()
	uc := newUsecase(t, profiles, jobs, resources, nil)
	ctx := context.Background()

	_, err := uc.GetRecommendations(ctx, uuid.Nil, RecommendationParams{})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = uc.GetRecommendations(ctx, uuid.New(), RecommendationParams{})
	assert.ErrorIs(t, err, ErrSeekerNotFound)

	for _, p := range []RecommendationParams{{Limit: -1}, {Limit: 51}, {Offset: -1}, {MinScore: 1.5}, {Kind: "course"}} {
		_, err = uc.GetRecommendations(ctx, seekerID, p)
		assert.ErrorIs(t, err, ErrInvalidInput, "%+v", p)
	}

	_, err = uc.GetRecommendations(ctx, seekerID, RecommendationParams{Filter: "result.score >"})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = uc.GetRecommendations(ctx, seekerID, RecommendationParams{Filter: "1"})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	broken := mockProfileRepo{err: errors.New("connection refused")}
	_, err = newUsecase(t, broken, jobs, resources, nil).GetRecommendations(ctx, seekerID, RecommendationParams{})
	assert.ErrorIs(t, err, ErrInternal)
}

func TestRecommendation_GetRecommendations_SkipsBadCandidates(t *testing.T) {
	profiles, jobs, resources := fixture()
	bad := uuid.MustParse("00000000-0000-0000-0000-0000000000ff")
	jobs.items = append(jobs.items, matching.JobRecord{ID: bad, Title: "Broken", Salary: matching.SalaryRecord{Min: 10, Max: 1}})
	uc := newUsecase(t, profiles, jobs, resources, nil)

	res, err := uc.GetRecommendations(context.Background(), seekerID, RecommendationParams{Kind: "job"})
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{jobTwo, jobOne}, ids(res.Recommendations))
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, bad, res.Diagnostics[0].CandidateID)
	assert.Equal(t, matching.KindJob, res.Diagnostics[0].Kind)
	assert.False(t, res.Partial)
}

// slowScorer delays one job so the scoring timeout fires mid-batch.
type slowScorer struct {
	*matching.Engine
	slow  uuid.UUID
	delay time.Duration
}

func (s slowScorer) ScoreJob(seeker matching.SeekerFeatureSet, c matching.CandidateFeatureSet, now time.Time) matching.MatchResult {
	if c.ID == s.slow {
		time.Sleep(s.delay)
	}
	return s.Engine.ScoreJob(seeker, c, now)
}

func TestRecommendation_GetRecommendations_ScoringTimeoutKeepsCompleted(t *testing.T) {
	profiles, jobs, resources := fixture()
	cache := newMockCache()
	engine, err := matching.NewEngine(matching.DefaultWeights())
	require.NoError(t, err)
	scorer := slowScorer{Engine: engine, slow: jobOne, delay: 200 * time.Millisecond}

	uc := NewRecommendationUsecase(profiles, jobs, resources, scorer, cache, nil, RecommendationOptions{
		Workers:        1,
		ScoringTimeout: 20 * time.Millisecond,
	})

	res, err := uc.GetRecommendations(context.Background(), seekerID, RecommendationParams{Kind: "job"})
	require.NoError(t, err)

	assert.True(t, res.Partial)
	assert.False(t, res.Empty)
	assert.Equal(t, []uuid.UUID{jobOne}, ids(res.Recommendations))
	assert.Empty(t, res.Diagnostics)
	assert.Zero(t, cache.sets)
}

func TestRecommendation_GetRecommendations_CallerCancelDoesNotCutSharedWork(t *testing.T) {
	profiles, jobs, resources := fixture()
	cache := newMockCache()
	uc := newUsecase(t, profiles, jobs, resources, cache)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := uc.GetRecommendations(ctx, seekerID, RecommendationParams{})
	require.NoError(t, err)

	assert.False(t, res.Partial)
	assert.Len(t, res.Recommendations, 4)
	assert.Equal(t, 1, cache.sets)
}

func TestRecommendation_GetRecommendations_CachesCompleteResults(t *testing.T) {
	profiles, jobs, resources := fixture()
	cache := newMockCache()
	uc := newUsecase(t, profiles, jobs, resources, cache)
	ctx := context.Background()

	first, err := uc.GetRecommendations(ctx, seekerID, RecommendationParams{Limit: 3})
	require.NoError(t, err)
	second, err := uc.GetRecommendations(ctx, seekerID, RecommendationParams{Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, int32(1), jobs.calls.Load())
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, first, second)

	_, err = uc.GetRecommendations(ctx, seekerID, RecommendationParams{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int32(2), jobs.calls.Load())

	require.NoError(t, uc.Invalidate(ctx, seekerID))
	assert.Empty(t, cache.data)
	assert.Equal(t, []string{"reco:seeker:" + seekerID.String() + ":*"}, cache.deleted)
}

func TestRecommendation_GetRecommendations_Idempotent(t *testing.T) {
	profiles, jobs, resources := fixture()
	uc := newUsecase(t, profiles, jobs, resources, nil)

	a, err := uc.GetRecommendations(context.Background(), seekerID, RecommendationParams{})
	require.NoError(t, err)
	b, err := uc.GetRecommendations(context.Background(), seekerID, RecommendationParams{})
	require.NoError(t, err)

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	assert.JSONEq(t, string(ja), string(jb))
	assert.Equal(t, string(ja), string(jb))
}

func TestRecommendation_GetRecommendations_InvariantUnderCorpusOrder(t *testing.T) {
	profiles, jobs, resources := fixture()
	a, err := newUsecase(t, profiles, jobs, resources, nil).GetRecommendations(context.Background(), seekerID, RecommendationParams{})
	require.NoError(t, err)

	reversedJobs := &mockJobRepo{items: []matching.JobRecord{jobs.items[1], jobs.items[0]}}
	reversedRes := &mockResourceRepo{items: []matching.ResourceRecord{resources.items[1], resources.items[0]}}
	b, err := newUsecase(t, profiles, reversedJobs, reversedRes, nil).GetRecommendations(context.Background(), seekerID, RecommendationParams{})
	require.NoError(t, err)

	assert.Equal(t, a.Recommendations, b.Recommendations)
	assert.Equal(t, a.GapReport, b.GapReport)
}

func TestRecommendation_GetRecommendations_FiltersAndPages(t *testing.T) {
	profiles, jobs, resources := fixture()
	uc := newUsecase(t, profiles, jobs, resources, nil)
	ctx := context.Background()

	res, err := uc.GetRecommendations(ctx, seekerID, RecommendationParams{Kind: "resource"})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{resOne, resTwo}, ids(res.Recommendations))
	assert.NotEmpty(t, res.GapReport)

	res, err = uc.GetRecommendations(ctx, seekerID, RecommendationParams{MinScore: 0.5})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{resOne, jobTwo}, ids(res.Recommendations))

	res, err = uc.GetRecommendations(ctx, seekerID, RecommendationParams{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, []uuid.UUID{jobTwo}, ids(res.Recommendations))

	res, err = uc.GetRecommendations(ctx, seekerID, RecommendationParams{Filter: `result.kind == "job" && "react" in result.skills_gap`})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{jobOne}, ids(res.Recommendations))
}

func TestRecommendation_GetSkillGaps(t *testing.T) {
	profiles, jobs, resources := fixture()
	cache := newMockCache()
	uc := newUsecase(t, profiles, jobs, resources, cache)

	res, err := uc.GetSkillGaps(context.Background(), seekerID)
	require.NoError(t, err)

	assert.Equal(t, matching.GapReport{{Skill: "node", Frequency: 1}, {Skill: "react", Frequency: 1}}, res.GapReport)
	assert.Equal(t, int64(7), res.ProfileVersion)
	assert.Equal(t, 1, cache.sets)

	_, err = uc.GetSkillGaps(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRecommendationCacheKey(t *testing.T) {
	p := RecommendationParams{Limit: 6, Kind: KindBoth, Filter: "  result.score > 0.5 "}
	a := RecommendationCacheKey(seekerID, 1, "j1:r1", p)

	p.Filter = "result.score > 0.5"
	assert.Equal(t, a, RecommendationCacheKey(seekerID, 1, "j1:r1", p))

	p.Filter = `result.title == "Go  Developer"`
	spaced := RecommendationCacheKey(seekerID, 1, "j1:r1", p)
	p.Filter = `result.title == "Go Developer"`
	assert.NotEqual(t, spaced, RecommendationCacheKey(seekerID, 1, "j1:r1", p))

	p.Filter = "result.score > 0.5"
	assert.NotEqual(t, a, RecommendationCacheKey(seekerID, 2, "j1:r1", p))
	assert.NotEqual(t, a, RecommendationCacheKey(seekerID, 1, "j2:r1", p))
	assert.True(t, strings.HasPrefix(a, "reco:seeker:"+seekerID.String()+":list:"))
}

func TestRecommendation_GetRecommendations_FilterKeepsStringLiterals(t *testing.T) {
	profiles, jobs, resources := fixture()
	spaced := uuid.MustParse("00000000-0000-0000-0000-0000000000a3")
	jobs.items = append(jobs.items, matching.JobRecord{ID: spaced, Title: "Go  Developer", Skills: []string{"go"}, IsActive: true})
	uc := newUsecase(t, profiles, jobs, resources, newMockCache())
	ctx := context.Background()

	res, err := uc.GetRecommendations(ctx, seekerID, RecommendationParams{Filter: `  result.title == "Go  Developer"  `})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{spaced}, ids(res.Recommendations))

	res, err = uc.GetRecommendations(ctx, seekerID, RecommendationParams{Filter: `result.title == "Go Developer"`})
	require.NoError(t, err)
	assert.Empty(t, res.Recommendations)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"skill-match/internal/domain/matching"
	"skill-match/internal/pkg/dsl"
	"skill-match/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	KindBoth = "both"

	defaultLimit          = 20
	maxLimit              = 50
	defaultScoringTimeout = 2 * time.Second
	defaultCorpusLimit    = 2000
	defaultCacheTTL       = 10 * time.Minute
)

type RecommendationParams struct {
	Limit    int
	Offset   int
	Kind     string
	MinScore float64
	Filter   string
}

// Diagnostic records a candidate that was skipped or a filter that could not
// be evaluated. It never fails the request.
type Diagnostic struct {
	CandidateID uuid.UUID     `json:"candidate_id"`
	Kind        matching.Kind `json:"kind"`
	Message     string        `json:"message"`
}

type RecommendationResult struct {
	Recommendations []matching.MatchResult `json:"recommendations"`
	GapReport       matching.GapReport     `json:"gap_report"`
	Total           int                    `json:"total"`
	Partial         bool                   `json:"partial"`
	Empty           bool                   `json:"empty"`
	Diagnostics     []Diagnostic           `json:"diagnostics,omitempty"`
	ProfileVersion  int64                  `json:"profile_version"`
	CorpusVersion   string                 `json:"corpus_version"`
}

type SkillGapResult struct {
	GapReport      matching.GapReport `json:"gap_report"`
	Partial        bool               `json:"partial"`
	Empty          bool               `json:"empty"`
	ProfileVersion int64              `json:"profile_version"`
	CorpusVersion  string             `json:"corpus_version"`
}

type RecommendationUsecase interface {
	GetRecommendations(ctx context.Context, seekerID uuid.UUID, params RecommendationParams) (RecommendationResult, error)
	GetSkillGaps(ctx context.Context, seekerID uuid.UUID) (SkillGapResult, error)
	Invalidate(ctx context.Context, seekerID uuid.UUID) error
}

type RecommendationOptions struct {
	Workers        int
	ScoringTimeout time.Duration
	CorpusLimit    int
	DefaultLimit   int
	MaxLimit       int
	CacheTTL       time.Duration
	Ranker         matching.Ranker
}

func (o RecommendationOptions) withDefaults() RecommendationOptions {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.ScoringTimeout <= 0 {
		o.ScoringTimeout = defaultScoringTimeout
	}
	if o.CorpusLimit <= 0 {
		o.CorpusLimit = defaultCorpusLimit
	}
	if o.DefaultLimit <= 0 {
		o.DefaultLimit = defaultLimit
	}
	if o.MaxLimit <= 0 {
		o.MaxLimit = maxLimit
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = defaultCacheTTL
	}
	if o.Ranker == nil {
		o.Ranker = matching.HeapRanker{}
	}
	return o
}

// Scorer is the slice of matching.Engine the orchestrator depends on.
type Scorer interface {
	Now() time.Time
	ScoreJob(s matching.SeekerFeatureSet, c matching.CandidateFeatureSet, now time.Time) matching.MatchResult
	ScoreResource(s matching.SeekerFeatureSet, c matching.CandidateFeatureSet, gapWeights map[string]float64) matching.MatchResult
}

type Recommendation struct {
	profiles  repository.SeekerProfileRepository
	jobs      repository.JobRepository
	resources repository.LearningResourceRepository
	engine    Scorer
	cache     RecommendationCache
	logger    *zap.Logger
	opts      RecommendationOptions

	flight singleflight.Group
}

func NewRecommendationUsecase(
	profiles repository.SeekerProfileRepository,
	jobs repository.JobRepository,
	resources repository.LearningResourceRepository,
	engine Scorer,
	cache RecommendationCache,
	logger *zap.Logger,
	opts RecommendationOptions,
) *Recommendation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recommendation{
		profiles:  profiles,
		jobs:      jobs,
		resources: resources,
		engine:    engine,
		cache:     cache,
		logger:    logger,
		opts:      opts.withDefaults(),
	}
}

func (u *Recommendation) GetRecommendations(ctx context.Context, seekerID uuid.UUID, params RecommendationParams) (RecommendationResult, error) {
	if seekerID == uuid.Nil {
		return RecommendationResult{}, ErrUnauthorized
	}
	params, err := u.normalizeParams(params)
	if err != nil {
		return RecommendationResult{}, err
	}

	var filter *dsl.Filter
	if params.Filter != "" {
		filter, err = dsl.Compile(params.Filter)
		if err != nil {
			return RecommendationResult{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
	}

	profile, corpusVersion, err := u.loadProfile(ctx, seekerID)
	if err != nil {
		return RecommendationResult{}, err
	}

	key := RecommendationCacheKey(seekerID, profile.Version, corpusVersion, params)
	var cached RecommendationResult
	if u.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	// The shared call outlives any single caller; only the scoring timeout
	// bounds it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := u.flight.Do(key, func() (any, error) {
		res, err := u.recommend(shared, profile, corpusVersion, params, filter)
		if err != nil {
			return RecommendationResult{}, err
		}
		if !res.Partial {
			u.cacheSet(shared, key, res)
		}
		return res, nil
	})
	if err != nil {
		return RecommendationResult{}, err
	}
	return v.(RecommendationResult), nil
}

func (u *Recommendation) GetSkillGaps(ctx context.Context, seekerID uuid.UUID) (SkillGapResult, error) {
	if seekerID == uuid.Nil {
		return SkillGapResult{}, ErrUnauthorized
	}

	profile, corpusVersion, err := u.loadProfile(ctx, seekerID)
	if err != nil {
		return SkillGapResult{}, err
	}

	key := SkillGapCacheKey(seekerID, profile.Version, corpusVersion)
	var cached SkillGapResult
	if u.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	c, err := u.compute(ctx, profile, false)
	if err != nil {
		return SkillGapResult{}, err
	}
	res := SkillGapResult{
		GapReport:      c.gaps,
		Partial:        c.partial,
		Empty:          c.emptyJobs,
		ProfileVersion: profile.Version,
		CorpusVersion:  corpusVersion,
	}
	if !res.Partial {
		u.cacheSet(ctx, key, res)
	}
	return res, nil
}

// Invalidate drops every cached result of the seeker.
func (u *Recommendation) Invalidate(ctx context.Context, seekerID uuid.UUID) error {
	if u.cache == nil || seekerID == uuid.Nil {
		return nil
	}
	return u.cache.DeleteByPattern(ctx, seekerCachePrefix(seekerID)+"*")
}

func (u *Recommendation) normalizeParams(p RecommendationParams) (RecommendationParams, error) {
	if p.Limit == 0 {
		p.Limit = u.opts.DefaultLimit
	}
	if p.Limit < 0 || p.Limit > u.opts.MaxLimit {
		return p, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, u.opts.MaxLimit)
	}
	if p.Offset < 0 {
		return p, fmt.Errorf("%w: offset must not be negative", ErrInvalidInput)
	}
	if p.MinScore < 0 || p.MinScore > 1 {
		return p, fmt.Errorf("%w: min_score must be within [0,1]", ErrInvalidInput)
	}
	switch p.Kind {
	case "", KindBoth:
		p.Kind = KindBoth
	case string(matching.KindJob), string(matching.KindResource):
	default:
		return p, fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, p.Kind)
	}
	p.Filter = strings.TrimSpace(p.Filter)
	return p, nil
}

func (u *Recommendation) loadProfile(ctx context.Context, seekerID uuid.UUID) (matching.SeekerProfile, string, error) {
	profile, err := u.profiles.FindByUserID(ctx, seekerID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSeekerProfileNotFound):
			return matching.SeekerProfile{}, "", ErrSeekerNotFound
		case errors.Is(err, matching.ErrInvalidProfile):
			return matching.SeekerProfile{}, "", fmt.Errorf("%w: %v", ErrInvalidProfile, err)
		}
		u.logger.Error("load seeker profile failed", zap.String("seeker_id", seekerID.String()), zap.Error(err))
		return matching.SeekerProfile{}, "", ErrInternal
	}

	jobsVersion, err := u.jobs.ActiveVersion(ctx)
	if err != nil {
		u.logger.Error("load job corpus version failed", zap.Error(err))
		return matching.SeekerProfile{}, "", ErrInternal
	}
	resourcesVersion, err := u.resources.ActiveVersion(ctx)
	if err != nil {
		u.logger.Error("load resource corpus version failed", zap.Error(err))
		return matching.SeekerProfile{}, "", ErrInternal
	}
	return profile, "j" + jobsVersion + ":r" + resourcesVersion, nil
}

func (u *Recommendation) recommend(ctx context.Context, profile matching.SeekerProfile, corpusVersion string, params RecommendationParams, filter *dsl.Filter) (RecommendationResult, error) {
	start := time.Now()
	withResources := params.Kind != string(matching.KindJob)

	c, err := u.compute(ctx, profile, withResources)
	if err != nil {
		return RecommendationResult{}, err
	}

	res := RecommendationResult{
		Recommendations: []matching.MatchResult{},
		GapReport:       c.gaps,
		Partial:         c.partial,
		Diagnostics:     c.diagnostics,
		ProfileVersion:  profile.Version,
		CorpusVersion:   corpusVersion,
	}

	var pool []matching.MatchResult
	switch params.Kind {
	case string(matching.KindJob):
		res.Empty = c.emptyJobs
		pool = c.jobs
	case string(matching.KindResource):
		res.Empty = c.emptyResources
		pool = c.resources
	default:
		res.Empty = c.emptyJobs && c.emptyResources
		pool = append(append(pool, c.jobs...), c.resources...)
	}
	if res.Empty {
		res.GapReport = matching.GapReport{}
		return res, nil
	}

	kept := make([]matching.MatchResult, 0, len(pool))
	for _, r := range pool {
		if r.Score >= params.MinScore {
			kept = append(kept, r)
		}
	}
	if filter != nil {
		var errs []error
		kept, errs = filter.Apply(kept)
		for _, e := range errs {
			res.Diagnostics = append(res.Diagnostics, Diagnostic{Message: "filter: " + e.Error()})
		}
	}

	res.Total = len(kept)
	ranked := u.opts.Ranker.Rank(kept, params.Offset+params.Limit)
	res.Recommendations = append(res.Recommendations, matching.Paginate(ranked, params.Offset, params.Limit)...)

	u.logger.Info("recommendations computed",
		zap.String("seeker_id", profile.UserID.String()),
		zap.Int("jobs", len(c.jobs)),
		zap.Int("resources", len(c.resources)),
		zap.Int("total", res.Total),
		zap.Int("returned", len(res.Recommendations)),
		zap.Bool("partial", res.Partial),
		zap.Int("skipped", len(c.diagnostics)),
		zap.Duration("duration", time.Since(start)),
	)
	return res, nil
}

type computation struct {
	jobs           []matching.MatchResult
	resources      []matching.MatchResult
	gaps           matching.GapReport
	partial        bool
	emptyJobs      bool
	emptyResources bool
	diagnostics    []Diagnostic
}

// compute runs extraction, the job pass, gap aggregation and, when asked, the
// resource pass. Both passes share one scoring deadline.
func (u *Recommendation) compute(ctx context.Context, profile matching.SeekerProfile, withResources bool) (computation, error) {
	now := u.engine.Now()
	seeker, err := matching.ExtractSeeker(profile, now)
	if err != nil {
		return computation{}, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	jobs, err := u.jobs.ListActiveJobs(ctx, u.opts.CorpusLimit)
	if err != nil {
		u.logger.Error("list active jobs failed", zap.Error(err))
		return computation{}, ErrInternal
	}
	var resources []matching.ResourceRecord
	if withResources {
		resources, err = u.resources.ListActiveResources(ctx, u.opts.CorpusLimit)
		if err != nil {
			u.logger.Error("list active resources failed", zap.Error(err))
			return computation{}, ErrInternal
		}
	}

	c := computation{
		jobs:           []matching.MatchResult{},
		resources:      []matching.MatchResult{},
		gaps:           matching.GapReport{},
		emptyJobs:      len(jobs) == 0,
		emptyResources: len(resources) == 0,
	}

	scoreCtx, cancel := context.WithTimeout(ctx, u.opts.ScoringTimeout)
	defer cancel()

	jobPass := fanOut(scoreCtx, u.opts.Workers, jobs,
		func(j matching.JobRecord) uuid.UUID { return j.ID },
		func(j matching.JobRecord) (matching.MatchResult, error) {
			fs, err := matching.ExtractJob(j)
			if err != nil {
				return matching.MatchResult{}, err
			}
			return u.engine.ScoreJob(seeker, fs, now), nil
		},
	)
	c.jobs = jobPass.results
	c.partial = jobPass.partial
	c.diagnostics = u.diagnose(profile.UserID, matching.KindJob, jobPass.failures)
	c.gaps = matching.AggregateGaps(c.jobs, matching.GapRelevanceThreshold)

	if withResources {
		gapWeights := c.gaps.Weights()
		resPass := fanOut(scoreCtx, u.opts.Workers, resources,
			func(r matching.ResourceRecord) uuid.UUID { return r.ID },
			func(r matching.ResourceRecord) (matching.MatchResult, error) {
				fs, err := matching.ExtractResource(r)
				if err != nil {
					return matching.MatchResult{}, err
				}
				return u.engine.ScoreResource(seeker, fs, gapWeights), nil
			},
		)
		c.resources = resPass.results
		c.partial = c.partial || resPass.partial
		c.diagnostics = append(c.diagnostics, u.diagnose(profile.UserID, matching.KindResource, resPass.failures)...)
	}

	if c.partial {
		u.logger.Warn("scoring deadline reached, returning partial results",
			zap.String("seeker_id", profile.UserID.String()),
			zap.Duration("timeout", u.opts.ScoringTimeout),
			zap.Int("jobs_scored", len(c.jobs)),
			zap.Int("resources_scored", len(c.resources)),
		)
	}
	return c, nil
}

func (u *Recommendation) diagnose(seekerID uuid.UUID, kind matching.Kind, failures []scoreFailure) []Diagnostic {
	if len(failures) == 0 {
		return nil
	}
	out := make([]Diagnostic, 0, len(failures))
	for _, f := range failures {
		u.logger.Warn("candidate skipped",
			zap.String("seeker_id", seekerID.String()),
			zap.String("candidate_id", f.id.String()),
			zap.String("kind", string(kind)),
			zap.Error(f.err),
		)
		out = append(out, Diagnostic{CandidateID: f.id, Kind: kind, Message: f.err.Error()})
	}
	return out
}

func (u *Recommendation) cacheGet(ctx context.Context, key string, out any) bool {
	if u.cache == nil {
		return false
	}
	hit, err := u.cache.GetJSON(ctx, key, out)
	if err != nil {
		u.logger.Debug("cache read failed", zap.String("cache_key", key), zap.Error(err))
		return false
	}
	return hit
}

func (u *Recommendation) cacheSet(ctx context.Context, key string, value any) {
	if u.cache == nil {
		return
	}
	if err := u.cache.SetJSON(ctx, key, value, u.opts.CacheTTL); err != nil {
		u.logger.Debug("cache write failed", zap.String("cache_key", key), zap.Error(err))
	}
}

type scoreFailure struct {
	id  uuid.UUID
	err error
}

type passResult struct {
	results  []matching.MatchResult
	failures []scoreFailure
	partial  bool
}

// fanOut scores items on at most workers goroutines. Each worker writes only
// its own slot, so results keep input order. Items not started before ctx
// ends are dropped and the pass is marked partial; a running item finishes
// and is kept.
func fanOut[T any](ctx context.Context, workers int, items []T, id func(T) uuid.UUID, score func(T) (matching.MatchResult, error)) passResult {
	slots := make([]*matching.MatchResult, len(items))
	errs := make([]error, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range items {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			r, err := score(items[i])
			if err != nil {
				errs[i] = err
				return nil
			}
			slots[i] = &r
			return nil
		})
	}
	_ = g.Wait()

	out := passResult{results: make([]matching.MatchResult, 0, len(items))}
	for i := range items {
		switch {
		case errs[i] != nil:
			out.failures = append(out.failures, scoreFailure{id: id(items[i]), err: errs[i]})
		case slots[i] != nil:
			out.results = append(out.results, *slots[i])
		default:
			out.partial = true
		}
	}
	return out
}

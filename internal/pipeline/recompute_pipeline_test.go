package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"skill-match/internal/domain/matching"
	"skill-match/internal/repository"
	"skill-match/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSeekers struct {
	ids []uuid.UUID
}

func (f *fakeSeekers) ListSeekerIDs(_ context.Context, limit, offset int) ([]uuid.UUID, error) {
	if offset >= len(f.ids) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.ids) {
		end = len(f.ids)
	}
	return f.ids[offset:end], nil
}

type fakeRecommend struct {
	mu          sync.Mutex
	errs        map[uuid.UUID]error
	partial     map[uuid.UUID]bool
	invalidated map[uuid.UUID]int
	params      []usecase.RecommendationParams
	maxLimit    int
}

func (f *fakeRecommend) GetRecommendations(_ context.Context, id uuid.UUID, params usecase.RecommendationParams) (usecase.RecommendationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = append(f.params, params)
	if f.maxLimit > 0 && params.Limit > f.maxLimit {
		return usecase.RecommendationResult{}, usecase.ErrInvalidInput
	}
	if err := f.errs[id]; err != nil {
		return usecase.RecommendationResult{}, err
	}
	return usecase.RecommendationResult{
		Recommendations: []matching.MatchResult{{CandidateID: uuid.New(), Kind: matching.KindJob, Score: 0.5}},
		Total:           1,
		Partial:         f.partial[id],
	}, nil
}

func (f *fakeRecommend) GetSkillGaps(context.Context, uuid.UUID) (usecase.SkillGapResult, error) {
	return usecase.SkillGapResult{}, nil
}

func (f *fakeRecommend) Invalidate(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalidated == nil {
		f.invalidated = map[uuid.UUID]int{}
	}
	f.invalidated[id]++
	return nil
}

type fakeSnapshots struct {
	mu     sync.Mutex
	stored map[uuid.UUID][]matching.MatchResult
	fail   uuid.UUID
}

func (f *fakeSnapshots) Replace(_ context.Context, id uuid.UUID, results []matching.MatchResult, _ time.Time) error {
	if id == f.fail {
		return errors.New("write failed")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored == nil {
		f.stored = map[uuid.UUID][]matching.MatchResult{}
	}
	f.stored[id] = results
	return nil
}

type fakeStats struct{}

func (fakeStats) GetCorpusStats(context.Context) (repository.CorpusStats, error) {
	return repository.CorpusStats{ActiveJobs: 2, ActiveResources: 1}, nil
}

func (fakeStats) GetSnapshotSummary(context.Context) (repository.SnapshotSummary, error) {
	return repository.SnapshotSummary{}, nil
}

type fakeLock struct {
	held    bool
	err     error
	deleted int
}

func (l *fakeLock) SetIfNotExists(context.Context, string, string, time.Duration) (bool, error) {
	if l.err != nil {
		return false, l.err
	}
	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

func (l *fakeLock) Delete(context.Context, string) error {
	l.held = false
	l.deleted++
	return nil
}

func ids(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func TestRecomputePipeline_Run(t *testing.T) {
	seekers := ids(450)
	missing, partial, broken, unwritable := seekers[3], seekers[10], seekers[200], seekers[449]

	rec := &fakeRecommend{
		errs: map[uuid.UUID]error{
			missing: usecase.ErrSeekerNotFound,
			broken:  usecase.ErrInternal,
		},
		partial: map[uuid.UUID]bool{partial: true},
	}
	snaps := &fakeSnapshots{fail: unwritable}
	lock := &fakeLock{}

	p := NewRecomputePipeline(&fakeSeekers{ids: seekers}, rec, snaps, fakeStats{}, lock, nil)
	sum, err := p.Run(context.Background(), RecomputeParams{Workers: 8, SnapshotLimit: 10})
	require.NoError(t, err)

	assert.Equal(t, RecomputeSummary{Seekers: 450, Stored: 446, Skipped: 1, Partial: 1, Failed: 2}, sum)
	assert.Len(t, snaps.stored, 446)
	assert.NotContains(t, snaps.stored, partial)
	assert.Len(t, rec.invalidated, 450)
	for _, params := range rec.params {
		assert.Equal(t, 10, params.Limit)
		assert.Equal(t, usecase.KindBoth, params.Kind)
	}
	assert.False(t, lock.held)
	assert.Equal(t, 1, lock.deleted)
}

func TestRecomputePipeline_LockHeld(t *testing.T) {
	lock := &fakeLock{held: true}
	p := NewRecomputePipeline(&fakeSeekers{ids: ids(3)}, &fakeRecommend{}, &fakeSnapshots{}, nil, lock, nil)

	_, err := p.Run(context.Background(), RecomputeParams{})
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.True(t, lock.held)
}

func TestRecomputePipeline_LockUnavailableStillRuns(t *testing.T) {
	snaps := &fakeSnapshots{}
	lock := &fakeLock{err: errors.New("redis unavailable")}
	p := NewRecomputePipeline(&fakeSeekers{ids: ids(3)}, &fakeRecommend{}, snaps, nil, lock, nil)

	sum, err := p.Run(context.Background(), RecomputeParams{Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Stored)
	assert.Len(t, snaps.stored, 3)
}

func TestRecomputePipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewRecomputePipeline(&fakeSeekers{ids: ids(1000)}, &fakeRecommend{}, &fakeSnapshots{}, nil, nil, nil)
	sum, err := p.Run(ctx, RecomputeParams{Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, sum.Seekers, 1000)
}

func TestRecomputePipeline_ClampsSnapshotLimit(t *testing.T) {
	seekers := ids(5)
	rec := &fakeRecommend{maxLimit: 50}
	snaps := &fakeSnapshots{}
	p := NewRecomputePipeline(&fakeSeekers{ids: seekers}, rec, snaps, fakeStats{}, nil, nil)

	sum, err := p.Run(context.Background(), RecomputeParams{Workers: 2, SnapshotLimit: 100, MaxLimit: 50})
	require.NoError(t, err)

	assert.Equal(t, 5, sum.Stored)
	assert.Zero(t, sum.Failed)
	assert.Len(t, snaps.stored, 5)
	for _, params := range rec.params {
		assert.Equal(t, 50, params.Limit)
	}
}

func TestRecomputeParams_WithDefaults(t *testing.T) {
	p := RecomputeParams{}.withDefaults()
	assert.Equal(t, 50, p.SnapshotLimit)
	assert.Equal(t, 50, p.MaxLimit)

	p = RecomputeParams{SnapshotLimit: 80, MaxLimit: 30}.withDefaults()
	assert.Equal(t, 30, p.SnapshotLimit)

	p = RecomputeParams{SnapshotLimit: 10, MaxLimit: 30}.withDefaults()
	assert.Equal(t, 10, p.SnapshotLimit)
}

func TestWorkerPool_RunsEveryTask(t *testing.T) {
	pool := NewWorkerPool(3, 0)
	results := pool.Run(context.Background())

	go func() {
		defer pool.Close()
		for i := 0; i < 20; i++ {
			pool.Submit(context.Background(), func(context.Context) Result {
				return Result{Outcome: OutcomeStored}
			})
		}
	}()

	var n int
	for r := range results {
		assert.Equal(t, OutcomeStored, r.Outcome)
		n++
	}
	assert.Equal(t, 20, n)
}

func drainPool(ctx context.Context, pool *WorkerPool, n int) int {
	results := pool.Run(ctx)
	go func() {
		defer pool.Close()
		for i := 0; i < n; i++ {
			if !pool.Submit(ctx, func(context.Context) Result { return Result{Outcome: OutcomeStored} }) {
				return
			}
		}
	}()
	var got int
	for range results {
		got++
	}
	return got
}

func TestWorkerPool_HighRateLimitRunsEveryTask(t *testing.T) {
	pool := NewWorkerPool(2, 0)
	require.NotPanics(t, func() { pool.SetRateLimit(2_000_000_000) })

	assert.Equal(t, 10, drainPool(context.Background(), pool, 10))
}

func TestWorkerPool_RateLimitSpacesTasks(t *testing.T) {
	pool := NewWorkerPool(4, 0)
	pool.SetRateLimit(20)

	start := time.Now()
	assert.Equal(t, 5, drainPool(context.Background(), pool, 5))
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestWorkerPool_RateLimitRespectsCancel(t *testing.T) {
	pool := NewWorkerPool(1, 0)
	pool.SetRateLimit(1)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	got := drainPool(ctx, pool, 5)
	assert.Less(t, got, 5)
	assert.Less(t, time.Since(start), 2*time.Second)
}

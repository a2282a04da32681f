package pipeline

import (
	"context"
	"errors"
	"time"

	"skill-match/internal/repository"
	"skill-match/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	recomputeLockKey = "reco:recompute:lock"
	seekerPageSize   = 200
)

var ErrAlreadyRunning = errors.New("recompute already running")

type Outcome string

const (
	OutcomeStored  Outcome = "stored"
	OutcomeSkipped Outcome = "skipped"
	OutcomePartial Outcome = "partial"
	OutcomeFailed  Outcome = "failed"
)

// RunLock is a best-effort mutual exclusion across recompute processes.
type RunLock interface {
	SetIfNotExists(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// RecomputeParams tune one recompute run. SnapshotLimit is clamped to
// MaxLimit, the largest page the recommendation usecase accepts.
type RecomputeParams struct {
	Workers       int
	SnapshotLimit int
	MaxLimit      int
	RatePerSecond int
	LockTTL       time.Duration
}

type RecomputeSummary struct {
	Seekers int
	Stored  int
	Skipped int
	Partial int
	Failed  int
}

// RecomputePipeline refreshes the stored recommendation snapshot of every
// seeker. Seekers whose profile is missing or incomplete are skipped; partial
// results are never stored.
type RecomputePipeline struct {
	seekers   repository.SeekerQueryRepository
	recommend usecase.RecommendationUsecase
	snapshots repository.RecommendationSnapshotRepository
	stats     repository.PipelineRepository
	lock      RunLock
	logger    *zap.Logger
	now       func() time.Time
}

func NewRecomputePipeline(
	seekers repository.SeekerQueryRepository,
	recommend usecase.RecommendationUsecase,
	snapshots repository.RecommendationSnapshotRepository,
	stats repository.PipelineRepository,
	lock RunLock,
	logger *zap.Logger,
) *RecomputePipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecomputePipeline{
		seekers:   seekers,
		recommend: recommend,
		snapshots: snapshots,
		stats:     stats,
		lock:      lock,
		logger:    logger,
		now:       time.Now,
	}
}

func (p *RecomputePipeline) Run(ctx context.Context, params RecomputeParams) (RecomputeSummary, error) {
	if p == nil || p.seekers == nil || p.recommend == nil || p.snapshots == nil {
		return RecomputeSummary{}, errors.New("recompute pipeline not configured")
	}
	requested := params.SnapshotLimit
	params = params.withDefaults()
	if requested > params.SnapshotLimit {
		p.logger.Warn("pipeline=recompute snapshot limit clamped",
			zap.Int("requested", requested),
			zap.Int("max_limit", params.MaxLimit),
		)
	}

	release, err := p.acquire(ctx, params.LockTTL)
	if err != nil {
		return RecomputeSummary{}, err
	}
	defer release()

	start := time.Now()
	p.logger.Info("pipeline=recompute status=started",
		zap.Int("workers", params.Workers),
		zap.Int("snapshot_limit", params.SnapshotLimit),
	)

	p.logCorpus(ctx)

	pool := NewWorkerPool(params.Workers, params.Workers*2)
	pool.SetRateLimit(params.RatePerSecond)
	results := pool.Run(ctx)

	var listErr error
	submitDone := make(chan struct{})
	go func() {
		defer close(submitDone)
		defer pool.Close()
		listErr = p.submitAll(ctx, pool, params)
	}()

	var sum RecomputeSummary
	for r := range results {
		sum.Seekers++
		switch r.Outcome {
		case OutcomeStored:
			sum.Stored++
		case OutcomeSkipped:
			sum.Skipped++
		case OutcomePartial:
			sum.Partial++
		default:
			sum.Failed++
		}
	}
	<-submitDone

	p.logger.Info("pipeline=recompute status=finished",
		zap.Int("seekers", sum.Seekers),
		zap.Int("stored", sum.Stored),
		zap.Int("skipped", sum.Skipped),
		zap.Int("partial", sum.Partial),
		zap.Int("failed", sum.Failed),
		zap.Duration("duration", time.Since(start)),
	)
	p.logSnapshots(ctx)

	if listErr != nil {
		return sum, listErr
	}
	return sum, ctx.Err()
}

func (p RecomputeParams) withDefaults() RecomputeParams {
	if p.Workers <= 0 {
		p.Workers = 4
	}
	if p.MaxLimit <= 0 {
		p.MaxLimit = 50
	}
	if p.SnapshotLimit <= 0 {
		p.SnapshotLimit = 50
	}
	if p.SnapshotLimit > p.MaxLimit {
		p.SnapshotLimit = p.MaxLimit
	}
	if p.LockTTL <= 0 {
		p.LockTTL = 30 * time.Minute
	}
	return p
}

func (p *RecomputePipeline) acquire(ctx context.Context, ttl time.Duration) (func(), error) {
	noop := func() {}
	if p.lock == nil {
		return noop, nil
	}
	ok, err := p.lock.SetIfNotExists(ctx, recomputeLockKey, p.now().UTC().Format(time.RFC3339), ttl)
	if err != nil {
		// A cache outage should not stop snapshots from being refreshed.
		p.logger.Warn("pipeline=recompute step=lock status=unavailable", zap.Error(err))
		return noop, nil
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return func() {
		if err := p.lock.Delete(context.Background(), recomputeLockKey); err != nil {
			p.logger.Warn("pipeline=recompute step=unlock status=error", zap.Error(err))
		}
	}, nil
}

func (p *RecomputePipeline) submitAll(ctx context.Context, pool *WorkerPool, params RecomputeParams) error {
	for off := 0; ; {
		ids, err := p.seekers.ListSeekerIDs(ctx, seekerPageSize, off)
		if err != nil {
			p.logger.Error("pipeline=recompute step=list_seekers status=error", zap.Int("offset", off), zap.Error(err))
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		for _, id := range ids {
			id := id
			if !pool.Submit(ctx, func(ctx context.Context) Result {
				return p.recomputeOne(ctx, id, params.SnapshotLimit)
			}) {
				return ctx.Err()
			}
		}
		off += len(ids)
	}
}

func (p *RecomputePipeline) recomputeOne(ctx context.Context, seekerID uuid.UUID, limit int) Result {
	log := p.logger.With(zap.Stringer("seeker_id", seekerID))

	if err := p.recommend.Invalidate(ctx, seekerID); err != nil {
		log.Warn("pipeline=recompute step=invalidate status=error", zap.Error(err))
	}

	res, err := p.recommend.GetRecommendations(ctx, seekerID, usecase.RecommendationParams{
		Limit: limit,
		Kind:  usecase.KindBoth,
	})
	switch {
	case errors.Is(err, usecase.ErrSeekerNotFound), errors.Is(err, usecase.ErrInvalidProfile):
		log.Info("pipeline=recompute step=score status=skipped", zap.Error(err))
		return Result{SeekerID: seekerID, Outcome: OutcomeSkipped}
	case err != nil:
		log.Error("pipeline=recompute step=score status=error", zap.Error(err))
		return Result{SeekerID: seekerID, Outcome: OutcomeFailed, Err: err}
	case res.Partial:
		log.Warn("pipeline=recompute step=score status=partial", zap.Int("diagnostics", len(res.Diagnostics)))
		return Result{SeekerID: seekerID, Outcome: OutcomePartial}
	}

	if err := p.snapshots.Replace(ctx, seekerID, res.Recommendations, p.now().UTC()); err != nil {
		log.Error("pipeline=recompute step=store status=error", zap.Error(err))
		return Result{SeekerID: seekerID, Outcome: OutcomeFailed, Err: err}
	}

	log.Debug("pipeline=recompute step=store status=ok", zap.Int("recommended", len(res.Recommendations)))
	return Result{SeekerID: seekerID, Outcome: OutcomeStored}
}

func (p *RecomputePipeline) logCorpus(ctx context.Context) {
	if p.stats == nil {
		return
	}
	st, err := p.stats.GetCorpusStats(ctx)
	if err != nil {
		p.logger.Warn("pipeline=recompute step=corpus_stats status=error", zap.Error(err))
		return
	}
	p.logger.Info("pipeline=recompute summary corpus",
		zap.Int("active_jobs", st.ActiveJobs),
		zap.Int("jobs_today", st.JobsToday),
		zap.Int("active_resources", st.ActiveResources),
	)
}

func (p *RecomputePipeline) logSnapshots(ctx context.Context) {
	if p.stats == nil || ctx.Err() != nil {
		return
	}
	st, err := p.stats.GetSnapshotSummary(ctx)
	if err != nil {
		p.logger.Warn("pipeline=recompute step=snapshot_stats status=error", zap.Error(err))
		return
	}
	p.logger.Info("pipeline=recompute summary snapshots",
		zap.Int("seekers", st.Seekers),
		zap.Int("rows", st.Rows),
		zap.Float64("average_score", st.AverageScore),
		zap.Time("last_matched_at", st.LastMatchedAt),
	)
}

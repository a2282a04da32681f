package app

import (
	"context"
	"time"

	"skill-match/internal/config"
	"skill-match/internal/database"
	"skill-match/internal/database/migration"
	dbpostgres "skill-match/internal/database/postgres"
	"skill-match/internal/domain/matching"
	"skill-match/internal/infrastructure/cache"
	"skill-match/internal/pipeline"
	"skill-match/internal/repository"
	"skill-match/internal/usecase"
	"skill-match/migrations"

	"go.uber.org/zap"
)

type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Cache  *cache.Redis

	Recommendations *usecase.Recommendation
	Health          *usecase.Health
	Recompute       *pipeline.RecomputePipeline
}

func NewContainer(cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	weights, err := matching.LoadWeights(cfg.Recommend.WeightsFile)
	if err != nil {
		return nil, err
	}
	engine, err := matching.NewEngine(weights)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database, logger.Named("db"))
	if err != nil {
		return nil, err
	}

	redis := cache.NewRedis(cfg.Redis, logger.Named("cache"))

	reco := usecase.NewRecommendationUsecase(
		repository.NewPostgresSeekerProfileRepository(db),
		repository.NewPostgresJobRepository(db),
		repository.NewPostgresLearningResourceRepository(db),
		engine,
		redis,
		logger.Named("recommendation"),
		usecase.RecommendationOptions{
			Workers:        cfg.Recommend.Workers,
			ScoringTimeout: cfg.Recommend.ScoringTimeout,
			CorpusLimit:    cfg.Recommend.CorpusLimit,
			DefaultLimit:   cfg.Recommend.DefaultLimit,
			MaxLimit:       cfg.Recommend.MaxLimit,
			CacheTTL:       cfg.Redis.TTL,
		},
	)

	recompute := pipeline.NewRecomputePipeline(
		repository.NewPostgresSeekerQueryRepository(db),
		reco,
		repository.NewPostgresRecommendationSnapshotRepository(db),
		repository.NewPostgresPipelineRepository(db),
		redis,
		logger.Named("pipeline"),
	)

	return &Container{
		Config:          cfg,
		Logger:          logger,
		DB:              db,
		Cache:           redis,
		Recommendations: reco,
		Health:          usecase.NewHealthUsecase(db, redis),
		Recompute:       recompute,
	}, nil
}

// Migrate applies the embedded schema migrations.
func (c *Container) Migrate(ctx context.Context) error {
	return migration.Runner{Files: migrations.Files, Logger: c.Logger.Named("migration")}.Run(ctx, c.DB.SQLDB())
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			c.Logger.Warn("cache close failed", zap.Error(err))
		}
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

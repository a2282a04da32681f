package repository

import (
	"context"
	"database/sql"
	"time"

	"skill-match/internal/database"
)

type CorpusStats struct {
	ActiveJobs      int
	ActiveResources int
	JobsToday       int
}

type SnapshotSummary struct {
	Seekers       int
	Rows          int
	AverageScore  float64
	LastMatchedAt time.Time
}

type PipelineRepository interface {
	GetCorpusStats(ctx context.Context) (CorpusStats, error)
	GetSnapshotSummary(ctx context.Context) (SnapshotSummary, error)
}

type PostgresPipelineRepository struct {
	db database.DB
}

func NewPostgresPipelineRepository(db database.DB) *PostgresPipelineRepository {
	return &PostgresPipelineRepository{db: db}
}

func (r *PostgresPipelineRepository) GetCorpusStats(ctx context.Context) (CorpusStats, error) {
	var out CorpusStats

	row := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(SUM(CASE WHEN created_at >= CURRENT_DATE THEN 1 ELSE 0 END), 0)
		 FROM jobs WHERE is_active = TRUE`,
	)
	if err := row.Scan(&out.ActiveJobs, &out.JobsToday); err != nil {
		return CorpusStats{}, err
	}

	row = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM learning_resources WHERE is_active = TRUE`)
	if err := row.Scan(&out.ActiveResources); err != nil {
		return CorpusStats{}, err
	}

	return out, nil
}

func (r *PostgresPipelineRepository) GetSnapshotSummary(ctx context.Context) (SnapshotSummary, error) {
	var (
		out  SnapshotSummary
		last sql.NullTime
	)
	row := r.db.QueryRow(ctx,
		`SELECT COUNT(DISTINCT seeker_id), COUNT(*), COALESCE(AVG(score), 0), MAX(matched_at)
		 FROM recommendation_snapshots`,
	)
	if err := row.Scan(&out.Seekers, &out.Rows, &out.AverageScore, &last); err != nil {
		return SnapshotSummary{}, err
	}
	if last.Valid {
		out.LastMatchedAt = last.Time.UTC()
	}
	return out, nil
}

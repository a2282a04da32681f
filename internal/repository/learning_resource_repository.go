package repository

import (
	"context"

	"skill-match/internal/database"
	"skill-match/internal/domain/matching"
)

type LearningResourceRepository interface {
	ListActiveResources(ctx context.Context, limit int) ([]matching.ResourceRecord, error)
	ActiveVersion(ctx context.Context) (string, error)
}

type PostgresLearningResourceRepository struct {
	db database.DB
}

func NewPostgresLearningResourceRepository(db database.DB) *PostgresLearningResourceRepository {
	return &PostgresLearningResourceRepository{db: db}
}

func (r *PostgresLearningResourceRepository) ListActiveResources(ctx context.Context, limit int) ([]matching.ResourceRecord, error) {
	if limit <= 0 {
		limit = 2000
	}

	rows, err := r.db.Query(ctx,
		`SELECT id,
		        COALESCE(title, ''),
		        skills,
		        COALESCE(difficulty, ''),
		        COALESCE(category, ''),
		        COALESCE(duration, '')
		 FROM learning_resources
		 WHERE is_active = TRUE
		 ORDER BY id ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]matching.ResourceRecord, 0)
	for rows.Next() {
		res := matching.ResourceRecord{IsActive: true}
		if err := rows.Scan(&res.ID, &res.Title, &res.Skills, &res.Difficulty, &res.Category, &res.Duration); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresLearningResourceRepository) ActiveVersion(ctx context.Context) (string, error) {
	return tableVersion(ctx, r.db, `SELECT COUNT(*), MAX(updated_at) FROM learning_resources WHERE is_active = TRUE`)
}

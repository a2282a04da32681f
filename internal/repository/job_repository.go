package repository

import (
	"context"
	"fmt"
	"time"

	"skill-match/internal/database"
	"skill-match/internal/domain/matching"
)

type JobRepository interface {
	ListActiveJobs(ctx context.Context, limit int) ([]matching.JobRecord, error)
	ActiveVersion(ctx context.Context) (string, error)
}

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

// ListActiveJobs returns active postings, newest first, with their required
// skill names.
func (r *PostgresJobRepository) ListActiveJobs(ctx context.Context, limit int) ([]matching.JobRecord, error) {
	if limit <= 0 {
		limit = 2000
	}

	rows, err := r.db.Query(ctx,
		`SELECT j.id,
		        COALESCE(j.title, ''),
		        COALESCE(j.description, ''),
		        COALESCE(j.experience_level, ''),
		        COALESCE(j.location, ''),
		        COALESCE(j.work_mode, ''),
		        COALESCE(j.salary_min, 0),
		        COALESCE(j.salary_max, 0),
		        COALESCE(j.salary_currency, ''),
		        COALESCE(j.job_category, ''),
		        j.posted_at,
		        j.application_deadline,
		        COALESCE(array_agg(s.name ORDER BY s.name) FILTER (WHERE s.name IS NOT NULL), '{}')
		 FROM jobs j
		 LEFT JOIN job_skills js ON js.job_id = j.id
		 LEFT JOIN skills s ON s.id = js.skill_id
		 WHERE j.is_active = TRUE
		 GROUP BY j.id
		 ORDER BY COALESCE(j.posted_at, j.created_at) DESC, j.id ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]matching.JobRecord, 0)
	for rows.Next() {
		j := matching.JobRecord{IsActive: true}
		if err := rows.Scan(
			&j.ID,
			&j.Title,
			&j.Description,
			&j.ExperienceLevel,
			&j.Location,
			&j.WorkMode,
			&j.Salary.Min,
			&j.Salary.Max,
			&j.Salary.Currency,
			&j.Category,
			&j.PostedAt,
			&j.ApplicationDeadline,
			&j.Skills,
		); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveVersion changes whenever an active posting is added, removed or edited.
func (r *PostgresJobRepository) ActiveVersion(ctx context.Context) (string, error) {
	return tableVersion(ctx, r.db, `SELECT COUNT(*), MAX(updated_at) FROM jobs WHERE is_active = TRUE`)
}

func tableVersion(ctx context.Context, db database.DB, query string) (string, error) {
	var (
		count   int64
		updated *time.Time
	)
	if err := db.QueryRow(ctx, query).Scan(&count, &updated); err != nil {
		return "", err
	}
	var ts int64
	if updated != nil {
		ts = updated.UnixNano()
	}
	return fmt.Sprintf("%d.%d", count, ts), nil
}

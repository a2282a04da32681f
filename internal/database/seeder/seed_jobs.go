package seeder

import (
	"context"
	"fmt"
	"time"

	"skill-match/internal/database"

	"github.com/google/uuid"
)

// seedNamespace derives stable ids so reseeding updates rows instead of
// duplicating them.
var seedNamespace = uuid.MustParse("6f1d8a52-3c1e-4f0b-9f43-2b0c6f0a7d11")

type demoJob struct {
	Title       string
	Description string
	Level       string
	Location    string
	WorkMode    string
	SalaryMin   int
	SalaryMax   int
	Category    string
	Skills      []string
	PostedDays  int
}

var demoJobs = []demoJob{
	{
		Title:       "Backend Engineer (Go)",
		Description: "Build and maintain Go services, REST APIs and PostgreSQL-backed systems.",
		Level:       "mid", Location: "Jakarta", WorkMode: "hybrid",
		SalaryMin: 15000000, SalaryMax: 25000000, Category: "engineering",
		Skills: []string{"go", "postgresql", "redis", "docker"}, PostedDays: 2,
	},
	{
		Title:       "Fullstack Engineer (React + Go)",
		Description: "Develop web apps with React and TypeScript and backend services in Go.",
		Level:       "mid", Location: "Bandung", WorkMode: "onsite",
		SalaryMin: 12000000, SalaryMax: 20000000, Category: "engineering",
		Skills: []string{"go", "react", "typescript"}, PostedDays: 5,
	},
	{
		Title:       "DevOps Engineer",
		Description: "Operate CI/CD, Docker, Kubernetes and cloud infrastructure for production workloads.",
		Level:       "senior", WorkMode: "remote",
		SalaryMin: 20000000, SalaryMax: 35000000, Category: "infrastructure",
		Skills: []string{"docker", "kubernetes", "aws"}, PostedDays: 1,
	},
	{
		Title:       "Data Engineer",
		Description: "Build data pipelines, manage warehouses and optimize SQL for analytics.",
		Level:       "mid", Location: "Surabaya", WorkMode: "onsite",
		Category: "data",
		Skills:   []string{"python", "sql", "postgresql"}, PostedDays: 10,
	},
	{
		Title:       "Frontend Engineer",
		Description: "Ship product features in TypeScript with a strong focus on UI quality.",
		Level:       "entry", WorkMode: "remote",
		SalaryMin: 8000000, SalaryMax: 14000000, Category: "engineering",
		Skills: []string{"javascript", "typescript", "react", "node"}, PostedDays: 3,
	},
}

type JobsSeeder struct{}

func (JobsSeeder) Name() string { return "jobs" }

func (JobsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "jobs",
		"id", "title", "description", "experience_level", "location", "work_mode",
		"salary_min", "salary_max", "salary_currency", "job_category", "posted_at", "is_active",
	); err != nil {
		return err
	}
	if err := EnsureTableColumns(ctx, db, "job_skills", "job_id", "skill_id"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	now := time.Now().UTC()
	for _, j := range demoJobs {
		id := uuid.NewSHA1(seedNamespace, []byte("job:"+j.Title))
		posted := now.AddDate(0, 0, -j.PostedDays)

		if _, err := tx.Exec(ctx,
			`INSERT INTO jobs (id, title, description, experience_level, location, work_mode,
			                   salary_min, salary_max, salary_currency, job_category, posted_at, is_active)
			 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, NULLIF($7, 0), NULLIF($8, 0), 'IDR', $9, $10, TRUE)
			 ON CONFLICT (id) DO UPDATE SET
			   description = EXCLUDED.description,
			   posted_at = EXCLUDED.posted_at,
			   updated_at = now()`,
			id, j.Title, j.Description, j.Level, j.Location, j.WorkMode,
			j.SalaryMin, j.SalaryMax, j.Category, posted,
		); err != nil {
			return fmt.Errorf("job %q: %w", j.Title, err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO job_skills (job_id, skill_id)
			 SELECT $1, s.id FROM skills s WHERE s.name = ANY($2)
			 ON CONFLICT DO NOTHING`,
			id, j.Skills,
		); err != nil {
			return fmt.Errorf("job skills %q: %w", j.Title, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

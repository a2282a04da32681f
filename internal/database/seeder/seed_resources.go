package seeder

import (
	"context"
	"fmt"

	"skill-match/internal/database"

	"github.com/google/uuid"
)

var demoResources = []struct {
	Title      string
	Skills     []string
	Difficulty string
	Category   string
	Duration   string
}{
	{Title: "React from Zero", Skills: []string{"react", "javascript"}, Difficulty: "entry", Category: "engineering", Duration: "6h"},
	{Title: "Node.js Services in Practice", Skills: []string{"node", "javascript"}, Difficulty: "mid", Category: "engineering", Duration: "8h"},
	{Title: "Kubernetes for Application Developers", Skills: []string{"kubernetes", "docker"}, Difficulty: "mid", Category: "infrastructure", Duration: "10h"},
	{Title: "SQL Performance Basics", Skills: []string{"sql", "postgresql"}, Difficulty: "entry", Category: "data", Duration: "4h"},
	{Title: "AWS Foundations", Skills: []string{"aws"}, Difficulty: "entry", Category: "infrastructure", Duration: "5h"},
}

type LearningResourcesSeeder struct{}

func (LearningResourcesSeeder) Name() string { return "learning_resources" }

func (LearningResourcesSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "learning_resources",
		"id", "title", "skills", "difficulty", "category", "duration", "is_active",
	); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, r := range demoResources {
		id := uuid.NewSHA1(seedNamespace, []byte("resource:"+r.Title))
		if _, err := tx.Exec(ctx,
			`INSERT INTO learning_resources (id, title, skills, difficulty, category, duration, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, TRUE)
			 ON CONFLICT (id) DO UPDATE SET skills = EXCLUDED.skills, updated_at = now()`,
			id, r.Title, r.Skills, r.Difficulty, r.Category, r.Duration,
		); err != nil {
			return fmt.Errorf("resource %q: %w", r.Title, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

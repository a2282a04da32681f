package seeder

import (
	"context"
	"fmt"

	"skill-match/internal/database"
	"skill-match/internal/domain/matching"

	"github.com/google/uuid"
)

var demoSkills = []string{
	"go", "javascript", "typescript", "react", "node", "postgresql",
	"redis", "docker", "kubernetes", "aws", "python", "sql",
}

type SkillsSeeder struct{}

func (SkillsSeeder) Name() string { return "skills" }

func (SkillsSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "skills", "id", "name"); err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, name := range demoSkills {
		if _, err := tx.Exec(ctx,
			`INSERT INTO skills (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			uuid.New(), matching.NormalizeSkill(name),
		); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

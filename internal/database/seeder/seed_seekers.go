package seeder

import (
	"context"
	"encoding/json"
	"fmt"

	"skill-match/internal/database"
	"skill-match/internal/domain/matching"

	"github.com/google/uuid"
)

// DemoSeekerID is the user the demo profile is stored under.
var DemoSeekerID = uuid.NewSHA1(seedNamespace, []byte("seeker:demo"))

type DemoSeekerSeeder struct{}

func (DemoSeekerSeeder) Name() string { return "demo_seeker" }

func (DemoSeekerSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "seeker_profiles",
		"user_id", "skills", "bio", "experience_level", "job_preferences",
	); err != nil {
		return err
	}

	prefs, err := json.Marshal(matching.JobPreferences{
		Locations:        []string{"Jakarta"},
		Industries:       []string{"engineering"},
		RemotePreference: string(matching.RemoteFlexible),
		SalaryRange:      matching.SalaryRecord{Min: 14000000, Max: 22000000, Currency: "IDR"},
	})
	if err != nil {
		return err
	}
	skills, err := json.Marshal([]string{"go", "postgresql", "docker", "javascript"})
	if err != nil {
		return err
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	if _, err := tx.Exec(ctx,
		`INSERT INTO users (id, email, role) VALUES ($1, 'demo.seeker@example.com', 'seeker')
		 ON CONFLICT (id) DO NOTHING`,
		DemoSeekerID,
	); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO seeker_profiles (user_id, skills, bio, experience_level, job_preferences)
		 VALUES ($1, $2::jsonb, $3, 'mid', $4::jsonb)
		 ON CONFLICT (user_id) DO UPDATE SET
		   skills = EXCLUDED.skills,
		   bio = EXCLUDED.bio,
		   job_preferences = EXCLUDED.job_preferences,
		   updated_at = now()`,
		DemoSeekerID, string(skills), "Backend developer working with Go services and APIs.", string(prefs),
	); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"encoding/json"
	"time"

	"skill-match/internal/database"
	"skill-match/internal/domain/matching"

	"github.com/google/uuid"
)

type RecommendationSnapshotRepository interface {
	Replace(ctx context.Context, seekerID uuid.UUID, results []matching.MatchResult, matchedAt time.Time) error
}

type PostgresRecommendationSnapshotRepository struct {
	db database.DB
}

func NewPostgresRecommendationSnapshotRepository(db database.DB) *PostgresRecommendationSnapshotRepository {
	return &PostgresRecommendationSnapshotRepository{db: db}
}

// Replace swaps the seeker's stored recommendations for results in one
// transaction, so readers never see a half-written set.
func (r *PostgresRecommendationSnapshotRepository) Replace(ctx context.Context, seekerID uuid.UUID, results []matching.MatchResult, matchedAt time.Time) (err error) {
	if seekerID == uuid.Nil {
		return nil
	}
	if matchedAt.IsZero() {
		matchedAt = time.Now().UTC()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM recommendation_snapshots WHERE seeker_id = $1`, seekerID); err != nil {
		return err
	}

	for _, res := range results {
		if res.CandidateID == uuid.Nil {
			continue
		}
		reasons, mErr := json.Marshal(nonNil(res.Reasons))
		if mErr != nil {
			return mErr
		}
		gap, mErr := json.Marshal(nonNil(res.SkillsGap))
		if mErr != nil {
			return mErr
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO recommendation_snapshots (seeker_id, candidate_id, kind, score, reasons, skills_gap, matched_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)
			 ON CONFLICT (seeker_id, candidate_id) DO UPDATE SET
				kind = EXCLUDED.kind,
				score = EXCLUDED.score,
				reasons = EXCLUDED.reasons,
				skills_gap = EXCLUDED.skills_gap,
				matched_at = EXCLUDED.matched_at`,
			seekerID,
			res.CandidateID,
			string(res.Kind),
			res.Score,
			reasons,
			gap,
			matchedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

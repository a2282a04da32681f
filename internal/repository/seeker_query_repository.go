package repository

import (
	"context"

	"skill-match/internal/database"

	"github.com/google/uuid"
)

type SeekerQueryRepository interface {
	ListSeekerIDs(ctx context.Context, limit, offset int) ([]uuid.UUID, error)
}

type PostgresSeekerQueryRepository struct {
	db database.DB
}

func NewPostgresSeekerQueryRepository(db database.DB) *PostgresSeekerQueryRepository {
	return &PostgresSeekerQueryRepository{db: db}
}

// ListSeekerIDs pages through users that have a seeker profile, oldest first.
func (r *PostgresSeekerQueryRepository) ListSeekerIDs(ctx context.Context, limit, offset int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx,
		`SELECT u.id
		 FROM users u
		 JOIN seeker_profiles p ON p.user_id = u.id
		 WHERE u.role = 'seeker'
		 ORDER BY u.created_at ASC, u.id ASC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

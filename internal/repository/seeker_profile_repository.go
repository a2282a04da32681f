package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"skill-match/internal/database"
	"skill-match/internal/domain/matching"

	"github.com/google/uuid"
)

var ErrSeekerProfileNotFound = errors.New("seeker profile not found")

type SeekerProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (matching.SeekerProfile, error)
}

type PostgresSeekerProfileRepository struct {
	db database.DB
}

func NewPostgresSeekerProfileRepository(db database.DB) *PostgresSeekerProfileRepository {
	return &PostgresSeekerProfileRepository{db: db}
}

// FindByUserID loads the profile with the categories of jobs the seeker
// applied to. Version moves whenever the profile or its applications change.
func (r *PostgresSeekerProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (matching.SeekerProfile, error) {
	var (
		p              matching.SeekerProfile
		skills         []byte
		education      []byte
		workExperience []byte
		preferences    []byte
		updatedAt      time.Time
		applications   int
		lastAppliedAt  *time.Time
	)

	row := r.db.QueryRow(ctx,
		`SELECT p.user_id,
		        p.skills,
		        COALESCE(p.bio, ''),
		        COALESCE(p.experience_level, ''),
		        p.education,
		        p.work_experience,
		        p.job_preferences,
		        p.updated_at,
		        COALESCE((
		            SELECT array_agg(DISTINCT j.job_category ORDER BY j.job_category)
		            FROM applications a
		            JOIN jobs j ON j.id = a.job_id
		            WHERE a.user_id = p.user_id AND COALESCE(j.job_category, '') <> ''
		        ), '{}'),
		        app.cnt,
		        app.last_at
		 FROM seeker_profiles p
		 CROSS JOIN LATERAL (
		     SELECT COUNT(*) AS cnt, MAX(a.created_at) AS last_at
		     FROM applications a
		     WHERE a.user_id = p.user_id
		 ) app
		 WHERE p.user_id = $1`,
		userID,
	)
	if err := row.Scan(&p.UserID, &skills, &p.Bio, &p.ExperienceLevel, &education, &workExperience, &preferences, &updatedAt, &p.AppliedCategories, &applications, &lastAppliedAt); err != nil {
		if database.IsNoRows(err) {
			return matching.SeekerProfile{}, ErrSeekerProfileNotFound
		}
		return matching.SeekerProfile{}, err
	}
	p.Version = profileVersion(updatedAt, lastAppliedAt, applications)

	if err := decodeJSONB(skills, &p.Skills); err != nil {
		return matching.SeekerProfile{}, fmt.Errorf("%w: skills: %v", matching.ErrInvalidProfile, err)
	}
	if err := decodeJSONB(education, &p.Education); err != nil {
		return matching.SeekerProfile{}, fmt.Errorf("%w: education: %v", matching.ErrInvalidProfile, err)
	}
	if err := decodeJSONB(preferences, &p.JobPreferences); err != nil {
		return matching.SeekerProfile{}, fmt.Errorf("%w: job_preferences: %v", matching.ErrInvalidProfile, err)
	}

	var rows []workExperienceRow
	if err := decodeJSONB(workExperience, &rows); err != nil {
		return matching.SeekerProfile{}, fmt.Errorf("%w: work_experience: %v", matching.ErrInvalidProfile, err)
	}
	p.WorkExperience = make([]matching.WorkExperience, 0, len(rows))
	for i, w := range rows {
		start, err := parseProfileDate(w.StartDate)
		if err != nil {
			return matching.SeekerProfile{}, fmt.Errorf("%w: work_experience[%d].start_date: %v", matching.ErrInvalidProfile, i, err)
		}
		end, err := parseProfileDate(w.EndDate)
		if err != nil {
			return matching.SeekerProfile{}, fmt.Errorf("%w: work_experience[%d].end_date: %v", matching.ErrInvalidProfile, i, err)
		}
		p.WorkExperience = append(p.WorkExperience, matching.WorkExperience{
			Title:     w.Title,
			Company:   w.Company,
			StartDate: start,
			EndDate:   end,
			Current:   w.Current,
		})
	}

	return p, nil
}

// profileVersion is the latest of the profile edit and the newest application,
// in unix nanoseconds, plus the application count so a removed application
// also yields a new version.
func profileVersion(updatedAt time.Time, lastAppliedAt *time.Time, applications int) int64 {
	latest := updatedAt
	if lastAppliedAt != nil && lastAppliedAt.After(latest) {
		latest = *lastAppliedAt
	}
	return latest.UnixNano() + int64(applications)
}

// workExperienceRow mirrors the stored JSON, where dates are free-form strings
// written by the profile editor.
type workExperienceRow struct {
	Title     string `json:"title"`
	Company   string `json:"company"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Current   bool   `json:"current"`
}

var profileDateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01", "2006"}

func parseProfileDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range profileDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", s)
}

func decodeJSONB(b []byte, out any) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	return json.Unmarshal(b, out)
}

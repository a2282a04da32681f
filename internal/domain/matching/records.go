package matching

import (
	"time"

	"github.com/google/uuid"
)

// Records below are read-only snapshots owned by the profile and job stores.

type SeekerProfile struct {
	UserID            uuid.UUID        `json:"user_id" validate:"required"`
	Version           int64            `json:"version"`
	Skills            []string         `json:"skills" validate:"dive,max=100"`
	Bio               string           `json:"bio" validate:"max=10000"`
	ExperienceLevel   string           `json:"experience_level" validate:"omitempty,oneof=entry mid senior lead"`
	Education         []Education      `json:"education" validate:"dive"`
	WorkExperience    []WorkExperience `json:"work_experience" validate:"dive"`
	JobPreferences    JobPreferences   `json:"job_preferences"`
	AppliedCategories []string         `json:"applied_categories"`
}

type Education struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study"`
}

type WorkExperience struct {
	Title     string     `json:"title"`
	Company   string     `json:"company"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Current   bool       `json:"current"`
}

type JobPreferences struct {
	JobTypes         []string     `json:"job_types"`
	Locations        []string     `json:"locations"`
	SalaryRange      SalaryRecord `json:"salary_range"`
	Industries       []string     `json:"industries"`
	RemotePreference string       `json:"remote_preference" validate:"omitempty,oneof=remote hybrid onsite flexible"`
}

type SalaryRecord struct {
	Min      int    `json:"min" validate:"gte=0"`
	Max      int    `json:"max" validate:"gte=0"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

type JobRecord struct {
	ID                  uuid.UUID
	Title               string
	Description         string
	Skills              []string
	ExperienceLevel     string
	Location            string
	WorkMode            string
	Salary              SalaryRecord
	Category            string
	PostedAt            *time.Time
	ApplicationDeadline *time.Time
	IsActive            bool
}

type ResourceRecord struct {
	ID         uuid.UUID
	Title      string
	Skills     []string
	Difficulty string
	Category   string
	Duration   string
	IsActive   bool
}

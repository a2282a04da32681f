package matching

import (
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindJob      Kind = "job"
	KindResource Kind = "resource"
)

type Dimension string

const (
	DimensionSkills     Dimension = "skills"
	DimensionExperience Dimension = "experience"
	DimensionLocation   Dimension = "location"
	DimensionSalary     Dimension = "salary"
	DimensionCategory   Dimension = "category"
	DimensionRecency    Dimension = "recency"
	DimensionKeyword    Dimension = "keyword"
)

// dimensionOrder breaks contribution ties when sub-scores are ordered.
var dimensionOrder = map[Dimension]int{
	DimensionSkills:     0,
	DimensionExperience: 1,
	DimensionLocation:   2,
	DimensionSalary:     3,
	DimensionCategory:   4,
	DimensionRecency:    5,
	DimensionKeyword:    6,
}

type ExperienceLevel int

const (
	LevelUnknown ExperienceLevel = iota
	LevelEntry
	LevelMid
	LevelSenior
	LevelLead
)

func (l ExperienceLevel) String() string {
	switch l {
	case LevelEntry:
		return "entry"
	case LevelMid:
		return "mid"
	case LevelSenior:
		return "senior"
	case LevelLead:
		return "lead"
	default:
		return "unknown"
	}
}

type RemotePreference string

const (
	RemoteFlexible RemotePreference = "flexible"
	RemoteOnly     RemotePreference = "remote"
	RemoteHybrid   RemotePreference = "hybrid"
	RemoteOnsite   RemotePreference = "onsite"
)

type WorkMode string

const (
	WorkModeUnspecified WorkMode = ""
	WorkModeRemote      WorkMode = "remote"
	WorkModeHybrid      WorkMode = "hybrid"
	WorkModeOnsite      WorkMode = "onsite"
)

type SalaryRange struct {
	Min      int
	Max      int
	Currency string
}

// Specified reports whether the range carries any bound.
func (r SalaryRange) Specified() bool {
	return r.Min > 0 || r.Max > 0
}

type SeekerFeatureSet struct {
	SeekerID           uuid.UUID
	Skills             map[string]struct{}
	ExperienceLevel    ExperienceLevel
	ExperienceMonths   int
	PreferredLocations map[string]struct{}
	RemotePreference   RemotePreference
	SalaryExpectation  SalaryRange
	InterestCategories map[string]struct{}
	BioKeywords        []string
}

type CandidateFeatureSet struct {
	ID              uuid.UUID
	Kind            Kind
	Title           string
	Text            string
	Keywords        map[string]struct{}
	RequiredSkills  map[string]struct{}
	ExperienceLevel ExperienceLevel
	City            string
	WorkMode        WorkMode
	Salary          SalaryRange
	Category        string
	PostedAt        *time.Time
	Deadline        *time.Time
}

type SubScore struct {
	Dimension        Dimension `json:"dimension"`
	Value            float64   `json:"value"`
	Weight           float64   `json:"weight"`
	ContributionNote string    `json:"contribution_note"`
	// Neutral marks a dimension left unspecified on either side.
	Neutral bool `json:"neutral,omitempty"`
}

// Contribution is the sub-score's share of the aggregated score.
func (s SubScore) Contribution() float64 {
	return s.Value * s.Weight
}

// MatchResult is the single result shape for both jobs and learning resources.
// Score is always in [0,1]; presentation layers own any percentage scaling.
type MatchResult struct {
	CandidateID   uuid.UUID  `json:"candidate_id"`
	Kind          Kind       `json:"kind"`
	Title         string     `json:"title"`
	Score         float64    `json:"score"`
	SubScores     []SubScore `json:"sub_scores"`
	Reasons       []string   `json:"reasons"`
	MatchedSkills []string   `json:"matched_skills"`
	SkillsGap     []string   `json:"skills_gap"`
}

type GapEntry struct {
	Skill     string `json:"skill"`
	Frequency int    `json:"frequency"`
}

type GapReport []GapEntry

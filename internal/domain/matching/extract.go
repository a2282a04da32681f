package matching

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrInvalidProfile            = errors.New("invalid seeker profile")
	ErrCandidateExtractionFailed = errors.New("candidate extraction failed")
)

var validate = validator.New()

const (
	entryMaxMonths  = 24
	midMaxMonths    = 60
	seniorMaxMonths = 120
)

// ExtractSeeker builds the comparable feature set of a seeker. A seeker without
// skills or history is valid; only malformed records fail.
func ExtractSeeker(p SeekerProfile, now time.Time) (SeekerFeatureSet, error) {
	if err := validate.Struct(p); err != nil {
		return SeekerFeatureSet{}, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	sal := p.JobPreferences.SalaryRange
	if sal.Min > 0 && sal.Max > 0 && sal.Min > sal.Max {
		return SeekerFeatureSet{}, fmt.Errorf("%w: salary min %d exceeds max %d", ErrInvalidProfile, sal.Min, sal.Max)
	}

	months, err := totalExperienceMonths(p.WorkExperience, now)
	if err != nil {
		return SeekerFeatureSet{}, err
	}

	level := parseLevel(p.ExperienceLevel)
	if level == LevelUnknown {
		level = levelForMonths(months)
	}

	interests := textSet(p.JobPreferences.Industries)
	for k := range textSet(p.AppliedCategories) {
		interests[k] = struct{}{}
	}

	return SeekerFeatureSet{
		SeekerID:           p.UserID,
		Skills:             skillSet(p.Skills),
		ExperienceLevel:    level,
		ExperienceMonths:   months,
		PreferredLocations: locationSet(p.JobPreferences.Locations),
		RemotePreference:   resolveRemotePreference(p.JobPreferences),
		SalaryExpectation:  salaryRange(sal),
		InterestCategories: interests,
		BioKeywords:        keywordTokens(p.Bio),
	}, nil
}

func ExtractJob(j JobRecord) (CandidateFeatureSet, error) {
	if j.ID == uuid.Nil {
		return CandidateFeatureSet{}, fmt.Errorf("%w: job without id", ErrCandidateExtractionFailed)
	}
	if err := checkSalary(j.Salary); err != nil {
		return CandidateFeatureSet{}, fmt.Errorf("%w: job %s: %v", ErrCandidateExtractionFailed, j.ID, err)
	}
	if j.PostedAt != nil && j.ApplicationDeadline != nil && j.ApplicationDeadline.Before(*j.PostedAt) {
		return CandidateFeatureSet{}, fmt.Errorf("%w: job %s: deadline before posting date", ErrCandidateExtractionFailed, j.ID)
	}

	city, mode := resolveLocation(j.Location, j.WorkMode)
	text := strings.ToLower(j.Title + " " + j.Description)

	return CandidateFeatureSet{
		ID:              j.ID,
		Kind:            KindJob,
		Title:           strings.TrimSpace(j.Title),
		Text:            text,
		Keywords:        tokenSet(text),
		RequiredSkills:  skillSet(j.Skills),
		ExperienceLevel: parseLevel(j.ExperienceLevel),
		City:            city,
		WorkMode:        mode,
		Salary:          salaryRange(j.Salary),
		Category:        normalizeText(j.Category),
		PostedAt:        j.PostedAt,
		Deadline:        j.ApplicationDeadline,
	}, nil
}

func ExtractResource(r ResourceRecord) (CandidateFeatureSet, error) {
	if r.ID == uuid.Nil {
		return CandidateFeatureSet{}, fmt.Errorf("%w: resource without id", ErrCandidateExtractionFailed)
	}

	text := strings.ToLower(r.Title)

	return CandidateFeatureSet{
		ID:              r.ID,
		Kind:            KindResource,
		Title:           strings.TrimSpace(r.Title),
		Text:            text,
		Keywords:        tokenSet(text),
		RequiredSkills:  skillSet(r.Skills),
		ExperienceLevel: parseDifficulty(r.Difficulty),
		Category:        normalizeText(r.Category),
	}, nil
}

func totalExperienceMonths(entries []WorkExperience, now time.Time) (int, error) {
	total := 0
	for i, e := range entries {
		if e.StartDate == nil {
			continue
		}
		var end time.Time
		switch {
		case e.Current:
			end = now
		case e.EndDate != nil:
			end = *e.EndDate
		default:
			continue
		}
		if end.Before(*e.StartDate) {
			return 0, fmt.Errorf("%w: work_experience[%d] ends before it starts", ErrInvalidProfile, i)
		}
		total += monthsBetween(*e.StartDate, end)
	}
	return total, nil
}

func monthsBetween(start, end time.Time) int {
	start = start.UTC()
	end = end.UTC()
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

func levelForMonths(months int) ExperienceLevel {
	switch {
	case months <= entryMaxMonths:
		return LevelEntry
	case months <= midMaxMonths:
		return LevelMid
	case months <= seniorMaxMonths:
		return LevelSenior
	default:
		return LevelLead
	}
}

func parseLevel(s string) ExperienceLevel {
	switch normalizeText(s) {
	case "entry", "entry level", "entry-level", "junior", "intern", "internship", "fresher":
		return LevelEntry
	case "mid", "mid level", "mid-level", "intermediate", "associate":
		return LevelMid
	case "senior", "senior level", "senior-level", "expert":
		return LevelSenior
	case "lead", "principal", "staff", "manager", "executive", "director":
		return LevelLead
	default:
		return LevelUnknown
	}
}

func parseDifficulty(s string) ExperienceLevel {
	switch normalizeText(s) {
	case "beginner", "basic", "introductory":
		return LevelEntry
	case "intermediate":
		return LevelMid
	case "advanced":
		return LevelSenior
	case "expert":
		return LevelLead
	default:
		return parseLevel(s)
	}
}

func resolveRemotePreference(p JobPreferences) RemotePreference {
	switch RemotePreference(normalizeText(p.RemotePreference)) {
	case RemoteOnly:
		return RemoteOnly
	case RemoteHybrid:
		return RemoteHybrid
	case RemoteOnsite:
		return RemoteOnsite
	case RemoteFlexible:
		return RemoteFlexible
	}

	var remote, hybrid, onsite bool
	for _, t := range p.JobTypes {
		switch normalizeText(t) {
		case "remote":
			remote = true
		case "hybrid":
			hybrid = true
		case "onsite", "on-site", "on site", "office":
			onsite = true
		}
	}
	switch {
	case remote && !hybrid && !onsite:
		return RemoteOnly
	case onsite && !remote && !hybrid:
		return RemoteOnsite
	case hybrid && !remote && !onsite:
		return RemoteHybrid
	default:
		return RemoteFlexible
	}
}

func locationSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, l := range in {
		city, _ := resolveLocation(l, "")
		if city == "" {
			continue
		}
		out[city] = struct{}{}
	}
	return out
}

// resolveLocation splits a free-form location ("Remote", "Lagos, Nigeria",
// "Remote - Berlin") into a city and a work mode.
func resolveLocation(location, workMode string) (string, WorkMode) {
	mode := WorkMode(normalizeText(workMode))
	switch mode {
	case WorkModeRemote, WorkModeHybrid, WorkModeOnsite:
	case "on-site", "on site":
		mode = WorkModeOnsite
	default:
		mode = WorkModeUnspecified
	}

	loc := normalizeText(location)
	if strings.Contains(loc, "remote") {
		if mode == WorkModeUnspecified {
			mode = WorkModeRemote
		}
		loc = strings.TrimSpace(strings.Trim(strings.ReplaceAll(loc, "remote", ""), " -,/()"))
	}
	if loc == "" {
		return "", mode
	}
	if i := strings.Index(loc, ","); i >= 0 {
		loc = strings.TrimSpace(loc[:i])
	}
	return loc, mode
}

func salaryRange(s SalaryRecord) SalaryRange {
	r := SalaryRange{Min: s.Min, Max: s.Max, Currency: strings.ToUpper(strings.TrimSpace(s.Currency))}
	if r.Min < 0 {
		r.Min = 0
	}
	if r.Max < 0 {
		r.Max = 0
	}
	if r.Max == 0 && r.Min > 0 {
		r.Max = r.Min
	}
	return r
}

func checkSalary(s SalaryRecord) error {
	if s.Min < 0 || s.Max < 0 {
		return errors.New("negative salary")
	}
	if s.Min > 0 && s.Max > 0 && s.Min > s.Max {
		return fmt.Errorf("salary min %d exceeds max %d", s.Min, s.Max)
	}
	return nil
}

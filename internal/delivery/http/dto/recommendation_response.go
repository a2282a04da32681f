package dto

import (
	"math"

	"skill-match/internal/domain/matching"
	"skill-match/internal/usecase"

	"github.com/google/uuid"
)

type SubScoreResponse struct {
	Dimension    string  `json:"dimension"`
	Value        float64 `json:"value"`
	Weight       float64 `json:"weight"`
	Note         string  `json:"note"`
	Neutral      bool    `json:"neutral,omitempty"`
	Contribution float64 `json:"contribution"`
}

type RecommendationItemResponse struct {
	CandidateID   uuid.UUID          `json:"candidate_id"`
	Kind          string             `json:"kind"`
	Title         string             `json:"title"`
	Score         float64            `json:"score"`
	ScorePercent  int                `json:"score_percent"`
	Reasons       []string           `json:"reasons"`
	MatchedSkills []string           `json:"matched_skills"`
	SkillsGap     []string           `json:"skills_gap"`
	SubScores     []SubScoreResponse `json:"sub_scores"`
}

type GapEntryResponse struct {
	Skill     string `json:"skill"`
	Frequency int    `json:"frequency"`
}

type DiagnosticResponse struct {
	CandidateID *uuid.UUID `json:"candidate_id,omitempty"`
	Kind        string     `json:"kind,omitempty"`
	Message     string     `json:"message"`
}

type RecommendationListResponse struct {
	Items       []RecommendationItemResponse `json:"items"`
	SkillGaps   []GapEntryResponse           `json:"skill_gaps"`
	Total       int                          `json:"total"`
	Limit       int                          `json:"limit"`
	Offset      int                          `json:"offset"`
	Partial     bool                         `json:"partial"`
	Empty       bool                         `json:"empty"`
	Diagnostics []DiagnosticResponse         `json:"diagnostics,omitempty"`
}

type SkillGapResponse struct {
	SkillGaps []GapEntryResponse `json:"skill_gaps"`
	Partial   bool               `json:"partial"`
	Empty     bool               `json:"empty"`
}

func NewRecommendationListResponse(res usecase.RecommendationResult, limit, offset int) RecommendationListResponse {
	items := make([]RecommendationItemResponse, 0, len(res.Recommendations))
	for _, r := range res.Recommendations {
		items = append(items, newRecommendationItem(r))
	}

	var diags []DiagnosticResponse
	for _, d := range res.Diagnostics {
		dr := DiagnosticResponse{Kind: string(d.Kind), Message: d.Message}
		if d.CandidateID != uuid.Nil {
			id := d.CandidateID
			dr.CandidateID = &id
		}
		diags = append(diags, dr)
	}

	return RecommendationListResponse{
		Items:       items,
		SkillGaps:   newGapEntries(res.GapReport),
		Total:       res.Total,
		Limit:       limit,
		Offset:      offset,
		Partial:     res.Partial,
		Empty:       res.Empty,
		Diagnostics: diags,
	}
}

func NewSkillGapResponse(res usecase.SkillGapResult) SkillGapResponse {
	return SkillGapResponse{
		SkillGaps: newGapEntries(res.GapReport),
		Partial:   res.Partial,
		Empty:     res.Empty,
	}
}

func newRecommendationItem(r matching.MatchResult) RecommendationItemResponse {
	subs := make([]SubScoreResponse, 0, len(r.SubScores))
	for _, s := range r.SubScores {
		subs = append(subs, SubScoreResponse{
			Dimension:    string(s.Dimension),
			Value:        s.Value,
			Weight:       s.Weight,
			Note:         s.ContributionNote,
			Neutral:      s.Neutral,
			Contribution: s.Contribution(),
		})
	}
	return RecommendationItemResponse{
		CandidateID:   r.CandidateID,
		Kind:          string(r.Kind),
		Title:         r.Title,
		Score:         r.Score,
		ScorePercent:  int(math.Round(r.Score * 100)),
		Reasons:       nonNil(r.Reasons),
		MatchedSkills: nonNil(r.MatchedSkills),
		SkillsGap:     nonNil(r.SkillsGap),
		SubScores:     subs,
	}
}

func newGapEntries(report matching.GapReport) []GapEntryResponse {
	out := make([]GapEntryResponse, 0, len(report))
	for _, g := range report {
		out = append(out, GapEntryResponse{Skill: g.Skill, Frequency: g.Frequency})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

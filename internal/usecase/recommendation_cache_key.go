package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

type recommendationCacheKeyInput struct {
	ProfileVersion int64   `json:"profile_version"`
	CorpusVersion  string  `json:"corpus_version"`
	Limit          int     `json:"limit"`
	Offset         int     `json:"offset"`
	Kind           string  `json:"kind"`
	MinScore       float64 `json:"min_score"`
	Filter         string  `json:"filter"`
}

// RecommendationCacheKey hashes everything a result depends on. Keys are
// grouped per seeker so a seeker's entries can be evicted together.
func RecommendationCacheKey(seekerID uuid.UUID, profileVersion int64, corpusVersion string, params RecommendationParams) string {
	in := recommendationCacheKeyInput{
		ProfileVersion: profileVersion,
		CorpusVersion:  corpusVersion,
		Limit:          params.Limit,
		Offset:         params.Offset,
		Kind:           params.Kind,
		MinScore:       params.MinScore,
		Filter:         strings.TrimSpace(params.Filter),
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return seekerCachePrefix(seekerID) + "list:" + hex.EncodeToString(sum[:])
}

func SkillGapCacheKey(seekerID uuid.UUID, profileVersion int64, corpusVersion string) string {
	return seekerCachePrefix(seekerID) + "gaps:" + strconv.FormatInt(profileVersion, 10) + ":" + corpusVersion
}

func seekerCachePrefix(seekerID uuid.UUID) string {
	return "reco:seeker:" + seekerID.String() + ":"
}

package dto

type RecommendationQuery struct {
	Limit    int     `query:"limit" validate:"omitempty,min=1"`
	Offset   int     `query:"offset" validate:"min=0"`
	Kind     string  `query:"kind" validate:"omitempty,oneof=job resource both"`
	MinScore float64 `query:"min_score" validate:"min=0,max=1"`
	Filter   string  `query:"filter" validate:"max=512"`
}

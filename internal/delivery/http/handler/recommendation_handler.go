package handler

import (
	"errors"

	"skill-match/internal/delivery/http/dto"
	"skill-match/internal/delivery/http/middleware"
	"skill-match/internal/pkg/response"
	"skill-match/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

var validate = validator.New()

type RecommendationHandler struct {
	uc           usecase.RecommendationUsecase
	defaultLimit int
}

func NewRecommendationHandler(uc usecase.RecommendationUsecase, defaultLimit int) *RecommendationHandler {
	if defaultLimit <= 0 {
		defaultLimit = 20
	}
	return &RecommendationHandler{uc: uc, defaultLimit: defaultLimit}
}

func (h *RecommendationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/recommendations")
	grp.Get("/", h.GetRecommendations)
	grp.Get("/skill-gaps", h.GetSkillGaps)
}

func (h *RecommendationHandler) GetRecommendations(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	var q dto.RecommendationQuery
	if err := c.Bind().Query(&q); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid query parameters", nil, err)
	}
	if err := validate.Struct(q); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid query parameters", validationDetails(err), err)
	}
	if q.Limit == 0 {
		q.Limit = h.defaultLimit
	}

	res, err := h.uc.GetRecommendations(c.Context(), userID, usecase.RecommendationParams{
		Limit:    q.Limit,
		Offset:   q.Offset,
		Kind:     q.Kind,
		MinScore: q.MinScore,
		Filter:   q.Filter,
	})
	if err != nil {
		return mapRecommendationUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.ResultMessage(res.Partial, res.Empty), dto.NewRecommendationListResponse(res, q.Limit, q.Offset))
}

func (h *RecommendationHandler) GetSkillGaps(c fiber.Ctx) error {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}

	res, err := h.uc.GetSkillGaps(c.Context(), userID)
	if err != nil {
		return mapRecommendationUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.ResultMessage(res.Partial, res.Empty), dto.NewSkillGapResponse(res))
}

func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func mapRecommendationUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrInvalidFilter):
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	case errors.Is(err, usecase.ErrSeekerNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Seeker profile not found", nil, err)
	case errors.Is(err, usecase.ErrInvalidProfile):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Seeker profile is incomplete", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}

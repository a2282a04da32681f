package handler

import (
	"skill-match/internal/pkg/response"
	"skill-match/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type HealthHandler struct {
	uc usecase.HealthUsecase
}

func NewHealthHandler(uc usecase.HealthUsecase) *HealthHandler {
	return &HealthHandler{uc: uc}
}

func (h *HealthHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/health", h.Health)
}

// Health always answers 200 so load balancers can reach the process; the
// payload reports dependency state.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	if h.uc == nil {
		return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.uc.GetStatus(c.Context()))
}

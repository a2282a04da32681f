package v1

import (
	"skill-match/internal/delivery/http/handler"
	"skill-match/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

func Register(r fiber.Router, recommendation *handler.RecommendationHandler, auth *middleware.AuthMiddleware) {
	if r == nil || recommendation == nil || auth == nil {
		return
	}

	protected := r.Group("", auth.Middleware())
	recommendation.RegisterRoutes(protected)
}

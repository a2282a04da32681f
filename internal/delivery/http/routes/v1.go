package routes

import (
	"skill-match/internal/delivery/http/handler"
	"skill-match/internal/delivery/http/middleware"
	v1 "skill-match/internal/delivery/http/routes/v1"

	"github.com/gofiber/fiber/v3"
)

func RegisterV1(r fiber.Router, recommendation *handler.RecommendationHandler, auth *middleware.AuthMiddleware) {
	if r == nil {
		return
	}

	v1.Register(r, recommendation, auth)
}

package routes

import (
	"skill-match/internal/delivery/http/handler"
	"skill-match/internal/delivery/http/middleware"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health         *handler.HealthHandler
	recommendation *handler.RecommendationHandler
	auth           *middleware.AuthMiddleware
}

func NewRegistry(health *handler.HealthHandler, recommendation *handler.RecommendationHandler, auth *middleware.AuthMiddleware) *Registry {
	return &Registry{health: health, recommendation: recommendation, auth: auth}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil || r == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health == nil {
		return
	}
	r.health.RegisterRoutes(app)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.recommendation, r.auth)
}

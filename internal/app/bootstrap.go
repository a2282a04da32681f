package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"skill-match/internal/config"
	"skill-match/internal/delivery/http/handler"
	"skill-match/internal/delivery/http/middleware"
	"skill-match/internal/delivery/http/routes"
	"skill-match/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c.Logger)
	registerRoutes(f, c)

	return &App{Fiber: f, Container: c}
}

// Bootstrap wires the container, applies migrations and builds the HTTP app.
// The returned cleanup releases the database and cache.
func Bootstrap(cfg config.Config, logger *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := c.Migrate(ctx); err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}

	return New(c), c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *zap.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger.Named("http")).Middleware())
	app.Use(middleware.NewErrorMiddleware(logger.Named("http")).Middleware())
}

func registerRoutes(app *fiber.App, c *Container) {
	if app == nil {
		return
	}

	verifier := jwt.NewHMACVerifier(c.Config.JWT.AccessSecret, c.Config.JWT.Issuer)

	routes.NewRegistry(
		handler.NewHealthHandler(c.Health),
		handler.NewRecommendationHandler(c.Recommendations, c.Config.Recommend.DefaultLimit),
		middleware.NewAuthMiddleware(verifier),
	).Register(app)
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}

package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-result-api/internal/config"
	"github.com/noah-isme/gema-result-api/internal/handler"
	"github.com/noah-isme/gema-result-api/internal/middleware"
	"github.com/noah-isme/gema-result-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ResultHandler      *handler.ResultHandler
	ResultSheetHandler *handler.ResultSheetHandler
	AssessmentHandler  *handler.AssessmentHandler
	ResultFeedHandler  *handler.ResultFeedHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Published cards must be registered before the staff group: its role
	// guard is mounted on the shared /results prefix.
	if deps.ResultHandler != nil {
		deps.ResultHandler.RegisterPublished(api.Group("/results/published", jwtMiddleware))
	}

	staff := api.Group("/results", jwtMiddleware, middleware.RequireRole("admin", "teacher"))

	if deps.ResultHandler != nil {
		printLimiter := middleware.RateLimit("results_print", cfg.PrintRateLimit, time.Minute)
		deps.ResultHandler.RegisterStaff(staff, printLimiter)
	}
	if deps.ResultSheetHandler != nil {
		deps.ResultSheetHandler.Register(staff)
	}
	if deps.AssessmentHandler != nil {
		deps.AssessmentHandler.Register(staff)
	}
	if deps.ResultFeedHandler != nil {
		deps.ResultFeedHandler.Register(staff)
	}
}

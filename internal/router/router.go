package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/c50bossio/6fb-workbook-api/internal/config"
	"github.com/c50bossio/6fb-workbook-api/internal/handler"
	"github.com/c50bossio/6fb-workbook-api/internal/middleware"
	"github.com/c50bossio/6fb-workbook-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProgressHandler    *handler.ProgressHandler
	LiveSessionHandler *handler.LiveSessionHandler
	AnalyticsHandler   *handler.AnalyticsHandler
	NoteHandler        *handler.NoteHandler
	ActivityHandler    *handler.ActivityHandler
	JWTMiddleware      fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	knownRole := middleware.RequireRole("member", "coach", "admin")

	// Workbook progress (modules, lessons, assessments)
	if deps.ProgressHandler != nil {
		workbook := app.Group("/api/v1/workbook", jwtMiddleware, knownRole)
		deps.ProgressHandler.Register(workbook)
	}

	// Live sessions. Engagement pings arrive continuously, so writes are
	// rate limited per user.
	if deps.LiveSessionHandler != nil {
		sessions := app.Group("/api/v1/sessions", jwtMiddleware, knownRole,
			middleware.RateLimit("sessions", 120, time.Minute))
		deps.LiveSessionHandler.Register(sessions)
	}

	// Learning analytics
	if deps.AnalyticsHandler != nil {
		analytics := app.Group("/api/v1/analytics", jwtMiddleware, knownRole)
		deps.AnalyticsHandler.Register(analytics)
	}

	// Workbook notes
	if deps.NoteHandler != nil {
		notes := app.Group("/api/v1/notes", jwtMiddleware, knownRole,
			middleware.RateLimit("notes", 60, time.Minute))
		deps.NoteHandler.Register(notes)
	}

	// Activity feed
	if deps.ActivityHandler != nil {
		activity := app.Group("/api/v1/activity", jwtMiddleware, knownRole,
			middleware.RateLimit("activity", 120, time.Minute))
		deps.ActivityHandler.Register(activity)
	}
}

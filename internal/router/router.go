package router

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-gradebook/internal/config"
	"github.com/noah-isme/gema-gradebook/internal/handler"
	"github.com/noah-isme/gema-gradebook/internal/middleware"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	StudentHandler      *handler.StudentHandler
	ClassHandler        *handler.ClassHandler
	AssignmentHandler   *handler.AssignmentHandler
	ScoreHandler        *handler.ScoreHandler
	EnrollmentHandler   *handler.EnrollmentHandler
	OverallGradeHandler *handler.OverallGradeHandler
	JWTMiddleware       fiber.Handler
	DatabasePing        func(ctx context.Context) error
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DatabasePing))

	// Use provided JWT middleware, or a no-op if nil
	guards := []fiber.Handler{func(c *fiber.Ctx) error { return c.Next() }}
	if deps.JWTMiddleware != nil {
		guards = []fiber.Handler{
			deps.JWTMiddleware,
			middleware.RequireWriteRole(middleware.RoleAdmin, middleware.RoleTeacher),
		}
	}

	mount := func(path string, register func(fiber.Router)) {
		register(api.Group(path, guards...))
	}

	if deps.StudentHandler != nil {
		mount("/students", deps.StudentHandler.Register)
	}
	if deps.ClassHandler != nil {
		mount("/classes", deps.ClassHandler.Register)
	}
	if deps.AssignmentHandler != nil {
		mount("/assignments", deps.AssignmentHandler.Register)
	}
	if deps.ScoreHandler != nil {
		mount("/scores", deps.ScoreHandler.Register)
	}
	if deps.EnrollmentHandler != nil {
		mount("/enrollments", deps.EnrollmentHandler.Register)
	}
	if deps.OverallGradeHandler != nil {
		mount("/overall-grades", deps.OverallGradeHandler.Register)
	}
}
